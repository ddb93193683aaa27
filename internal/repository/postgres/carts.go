package postgresrepo

import (
	"context"

	"github.com/kirinyoku/parktix/internal/domain"
)

type CartRepo struct {
	db DB
}

func (r *CartRepo) Items(ctx context.Context, userID int64) ([]domain.CartItem, error) {
	const op = "postgresrepo.CartRepo.Items"

	rows, err := r.db.Query(ctx,
		`SELECT c.user_id, c.product_id, p.name, p.unit_price, c.quantity
       	 FROM cart_items c
       	 JOIN products p ON p.id = c.product_id
      	 WHERE c.user_id = $1
      	 ORDER BY c.created_at, c.product_id`,
		userID,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.CartItem
	for rows.Next() {
		var it domain.CartItem
		if err := rows.Scan(&it.UserID, &it.ProductID, &it.ProductName, &it.UnitPrice, &it.Quantity); err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}

// AddItem adds quantity units of the product to the user's cart, merging
// with an existing line.
//
// Returns:
//   - error: repository.ErrNotFound if the user or product does not exist.
func (r *CartRepo) AddItem(ctx context.Context, userID, productID int64, quantity int) error {
	const op = "postgresrepo.CartRepo.AddItem"

	if _, err := r.db.Exec(ctx,
		`INSERT INTO cart_items(user_id, product_id, quantity)
       	 VALUES ($1, $2, $3)
     	 ON CONFLICT (user_id, product_id) DO UPDATE
       	   SET quantity = cart_items.quantity + EXCLUDED.quantity`,
		userID, productID, quantity,
	); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}

func (r *CartRepo) Clear(ctx context.Context, userID int64) error {
	const op = "postgresrepo.CartRepo.Clear"

	if _, err := r.db.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return wrapDBErr(op, err)
	}

	return nil
}
