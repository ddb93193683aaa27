package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
	"github.com/shopspring/decimal"
)

// Service stages products per user before checkout.
type Service struct {
	store repository.Store
}

func New(store repository.Store) *Service {
	return &Service{store: store}
}

// AddItem adds quantity units of a product, merging with an existing line.
func (s *Service) AddItem(ctx context.Context, userID, productID int64, quantity int) (*domain.Cart, error) {
	const op = "service.cart.AddItem"

	if userID <= 0 || productID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("", "userId and productId are required."))
	}

	if quantity < 1 {
		return nil, fmt.Errorf("%s:%w", op,
			domain.Invalid("quantity", "Quantities must be whole numbers greater than zero."))
	}

	if _, err := s.store.Catalog().GetProduct(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrProductNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	if err := s.store.Carts().AddItem(ctx, userID, productID, quantity); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s:%w", op, ErrUserNotFound)
		}
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	return s.Get(ctx, userID)
}

// Get returns the cart priced at current catalog prices.
func (s *Service) Get(ctx context.Context, userID int64) (*domain.Cart, error) {
	const op = "service.cart.Get"

	if userID <= 0 {
		return nil, fmt.Errorf("%s:%w", op, domain.Invalid("userId", "userId is required."))
	}

	items, err := s.store.Carts().Items(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s:%w", op, err)
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return &domain.Cart{UserID: userID, Items: items, Total: total}, nil
}

func (s *Service) Clear(ctx context.Context, userID int64) error {
	const op = "service.cart.Clear"

	if userID <= 0 {
		return fmt.Errorf("%s:%w", op, domain.Invalid("userId", "userId is required."))
	}

	if err := s.store.Carts().Clear(ctx, userID); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}
