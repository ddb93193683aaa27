package admin

import (
	"context"
	"fmt"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
)

const (
	defaultPage = 50
	maxPage     = 500
)

type Service struct {
	store repository.Store
}

func New(store repository.Store) *Service {
	return &Service{store: store}
}

// Summary returns system-wide counters. Revenue excludes cancelled orders.
func (s *Service) Summary(ctx context.Context) (*domain.SystemSummary, error) {
	const op = "service.admin.Summary"

	sum, err := s.store.Reports().Summary(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return sum, nil
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	const op = "service.admin.ListOrders"

	limit, offset = clampPage(limit, offset)

	orders, err := s.store.Orders().ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return orders, nil
}

func (s *Service) ListTickets(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	const op = "service.admin.ListTickets"

	limit, offset = clampPage(limit, offset)

	tickets, err := s.store.Tickets().ListAll(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return tickets, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPage
	}

	if limit > maxPage {
		limit = maxPage
	}

	return limit, max(offset, 0)
}
