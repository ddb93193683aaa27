package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/parktix/internal/domain"
)

type CatalogRepo struct {
	db DB
}

// GetPark retrieves a park by its ID.
//
// Returns:
//   - *domain.Park: the park when found.
//   - error: repository.ErrNotFound if the park is not found.
func (r *CatalogRepo) GetPark(ctx context.Context, id int64) (*domain.Park, error) {
	const op = "postgresrepo.CatalogRepo.GetPark"

	var p domain.Park
	var status string
	err := r.db.QueryRow(ctx,
		`SELECT id, name, daily_capacity, location, status
       	 FROM parks WHERE id = $1`,
		id,
	).Scan(&p.ID, &p.Name, &p.DailyCapacity, &p.Location, &status)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}
	p.Status = domain.ParkStatus(status)

	return &p, nil
}

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var typ string
	if err := row.Scan(&p.ID, &p.Name, &p.UnitPrice, &typ, &p.ParkID); err != nil {
		return domain.Product{}, err
	}
	p.Type = domain.ProductType(typ)
	return p, nil
}

func (r *CatalogRepo) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "postgresrepo.CatalogRepo.GetProduct"

	p, err := scanProduct(r.db.QueryRow(ctx,
		`SELECT id, name, unit_price, type, park_id
       	 FROM products WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return &p, nil
}

func (r *CatalogRepo) ProductsByIDs(ctx context.Context, ids []int64) ([]domain.Product, error) {
	const op = "postgresrepo.CatalogRepo.ProductsByIDs"

	rows, err := r.db.Query(ctx,
		`SELECT id, name, unit_price, type, park_id
       	 FROM products WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	var out []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, wrapDBErr(op, err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
