package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/parktix/internal/domain"
	"github.com/kirinyoku/parktix/internal/repository"
)

type OrderRepo struct {
	db DB
}

// Create persists the order header and all of its items. Identifiers are
// allocated by the caller from the store sequences.
//
// Returns:
//   - error: repository.ErrConflict if an identifier is already taken.
//   - error: repository.ErrNotFound if the user or a product does not exist.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	const op = "postgresrepo.OrderRepo.Create"

	if _, err := r.db.Exec(ctx,
		`INSERT INTO orders(id, user_id, created_at, status, total_amount)
       	 VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.UserID, o.CreatedAt, string(o.Status), o.TotalAmount,
	); err != nil {
		return wrapDBErr(op, err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(
			`INSERT INTO order_items(id, order_id, product_id, quantity, locked_price)
         	 VALUES ($1, $2, $3, $4, $5)`,
			it.ID, o.ID, it.ProductID, it.Quantity, it.LockedPrice,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *OrderRepo) Get(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "postgresrepo.OrderRepo.Get"

	var o domain.Order
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, created_at, status, total_amount
       	 FROM orders WHERE id = $1`,
		id,
	).Scan(&o.ID, &o.UserID, &o.CreatedAt, &status, &o.TotalAmount)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	o.Status = domain.OrderStatus(status)

	orders := []domain.Order{o}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &orders[0], nil
}

func (r *OrderRepo) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	const op = "postgresrepo.OrderRepo.ListByUser"

	orders, err := r.list(ctx,
		`SELECT id, user_id, created_at, status, total_amount
       	 FROM orders
      	 WHERE user_id = $1
      	 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return orders, nil
}

func (r *OrderRepo) ListAll(ctx context.Context, limit, offset int) ([]domain.Order, error) {
	const op = "postgresrepo.OrderRepo.ListAll"

	orders, err := r.list(ctx,
		`SELECT id, user_id, created_at, status, total_amount
       	 FROM orders
      	 ORDER BY created_at DESC, id DESC
      	 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return orders, nil
}

func (r *OrderRepo) MarkCancelled(ctx context.Context, id int64) error {
	const op = "postgresrepo.OrderRepo.MarkCancelled"

	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET status = 'CANCELLED'
      	 WHERE id = $1 AND status <> 'CANCELLED'`,
		id,
	)
	if err != nil {
		return wrapDBErr(op, err)
	}

	if tag.RowsAffected() == 0 {
		return wrapDBErr(op, repository.ErrNotFound)
	}

	return nil
}

func (r *OrderRepo) list(ctx context.Context, sql string, args ...any) ([]domain.Order, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var out []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		if err := rows.Scan(&o.ID, &o.UserID, &o.CreatedAt, &status, &o.TotalAmount); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(status)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, out); err != nil {
		return nil, err
	}

	return out, nil
}

func (r *OrderRepo) attachItems(ctx context.Context, orders []domain.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, len(orders))
	index := make(map[int64]int, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		index[o.ID] = i
	}

	rows, err := r.db.Query(ctx,
		`SELECT i.id, i.order_id, i.product_id, p.name, i.quantity, i.locked_price
       	 FROM order_items i
       	 JOIN products p ON p.id = i.product_id
      	 WHERE i.order_id = ANY($1)
      	 ORDER BY i.id`,
		ids,
	)
	if err != nil {
		return err
	}

	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity, &it.LockedPrice); err != nil {
			return err
		}
		i := index[it.OrderID]
		orders[i].Items = append(orders[i].Items, it)
	}

	return rows.Err()
}
