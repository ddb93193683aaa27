package postgresrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
)

type TicketRepo struct {
	db DB
}

const ticketSelect = `SELECT t.id, t.order_id, t.user_id, t.park_id, p.name, t.visit_date,
              t.status, t.redemption_code, t.created_at
         FROM tickets t
         JOIN parks p ON p.id = t.park_id`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	var status string
	if err := row.Scan(
		&t.ID, &t.OrderID, &t.UserID, &t.ParkID, &t.ParkName, &t.VisitDate,
		&status, &t.RedemptionCode, &t.CreatedAt,
	); err != nil {
		return domain.Ticket{}, err
	}
	t.Status = domain.TicketStatus(status)
	t.VisitDate = domain.Day(t.VisitDate, time.UTC)
	return t, nil
}

func (r *TicketRepo) Get(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.Get"

	t, err := scanTicket(r.db.QueryRow(ctx, ticketSelect+` WHERE t.id = $1`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

func (r *TicketRepo) GetForUpdate(ctx context.Context, id int64) (*domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.GetForUpdate"

	t, err := scanTicket(r.db.QueryRow(ctx, ticketSelect+` WHERE t.id = $1 FOR UPDATE OF t`, id))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &t, nil
}

// LockParkDay takes a transaction-scoped advisory lock for the park and
// day. Concurrent transactions touching the same pair queue behind it
// until commit or rollback.
func (r *TicketRepo) LockParkDay(ctx context.Context, parkID int64, day time.Time) error {
	const op = "postgresrepo.TicketRepo.LockParkDay"

	key := fmt.Sprintf("tickets:park:%d:%s", parkID, domain.FormatDate(day))
	if _, err := r.db.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *TicketRepo) CountActive(ctx context.Context, parkID int64, day time.Time) (int, error) {
	const op = "postgresrepo.TicketRepo.CountActive"

	var n int
	if err := r.db.QueryRow(ctx,
		`SELECT count(*)
       	 FROM tickets
      	 WHERE park_id = $1
       	   AND visit_date = $2
       	   AND status <> 'CANCELLED'`,
		parkID, day,
	).Scan(&n); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return n, nil
}

func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []domain.Ticket) error {
	const op = "postgresrepo.TicketRepo.CreateBatch"

	if len(tickets) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, t := range tickets {
		batch.Queue(
			`INSERT INTO tickets(id, order_id, user_id, park_id, visit_date, status, redemption_code, created_at)
         	 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			t.ID, t.OrderID, t.UserID, t.ParkID, t.VisitDate, string(t.Status), t.RedemptionCode, t.CreatedAt,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *TicketRepo) UpdateStatus(ctx context.Context, id int64, status domain.TicketStatus) error {
	const op = "postgresrepo.TicketRepo.UpdateStatus"

	tag, err := r.db.Exec(ctx, `UPDATE tickets SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) Reschedule(ctx context.Context, id int64, day time.Time) error {
	const op = "postgresrepo.TicketRepo.Reschedule"

	tag, err := r.db.Exec(ctx,
		`UPDATE tickets SET visit_date = $2, status = 'RESCHEDULED'
      	 WHERE id = $1 AND status <> 'CANCELLED'`,
		id, day,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}

func (r *TicketRepo) CancelByOrder(ctx context.Context, orderID int64) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.CancelByOrder"

	rows, err := r.db.Query(ctx,
		`UPDATE tickets SET status = 'CANCELLED'
      	 WHERE order_id = $1 AND status <> 'CANCELLED'
      	 RETURNING id, park_id, visit_date`,
		orderID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t := domain.Ticket{OrderID: orderID, Status: domain.TicketCancelled}
		if err := rows.Scan(&t.ID, &t.ParkID, &t.VisitDate); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListByUser"

	out, err := r.list(ctx, ticketSelect+` WHERE t.user_id = $1 ORDER BY t.visit_date, t.id`, userID)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Ticket, error) {
	const op = "postgresrepo.TicketRepo.ListAll"

	out, err := r.list(ctx,
		ticketSelect+` ORDER BY t.order_id DESC, t.id DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

func (r *TicketRepo) list(ctx context.Context, sql string, args ...any) ([]domain.Ticket, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}
