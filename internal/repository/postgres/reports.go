package postgresrepo

import (
	"context"

	"github.com/kirinyoku/parktix/internal/domain"
)

type ReportRepo struct {
	db DB
}

func (r *ReportRepo) Summary(ctx context.Context) (*domain.SystemSummary, error) {
	const op = "postgresrepo.ReportRepo.Summary"

	var s domain.SystemSummary
	err := r.db.QueryRow(ctx,
		`SELECT
           (SELECT count(*) FROM users),
           (SELECT count(*) FROM orders),
           (SELECT COALESCE(sum(total_amount), 0) FROM orders WHERE status <> 'CANCELLED'),
           count(*),
           count(*) FILTER (WHERE status = 'ACTIVE'),
           count(*) FILTER (WHERE status = 'CANCELLED'),
           count(*) FILTER (WHERE status = 'RESCHEDULED')
         FROM tickets`,
	).Scan(
		&s.TotalUsers, &s.TotalOrders, &s.TotalRevenue,
		&s.TotalTickets, &s.ActiveTickets, &s.CancelledTickets, &s.RescheduledTickets,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &s, nil
}
