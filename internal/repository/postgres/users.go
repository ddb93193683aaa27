package postgresrepo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/kirinyoku/parktix/internal/domain"
)

type UserRepo struct {
	db DB
}

const userColumns = `id, email, password_hash, full_name, role, created_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &role, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByID"

	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.GetByEmail"

	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return u, nil
}

func (r *UserRepo) Create(ctx context.Context, u domain.User) (int64, error) {
	const op = "postgresrepo.UserRepo.Create"

	var id int64
	if err := r.db.QueryRow(ctx,
		`INSERT INTO users(email, password_hash, full_name, role)
       	 VALUES ($1, $2, $3, $4)
     	 RETURNING id`,
		u.Email, u.PasswordHash, u.FullName, string(u.Role),
	).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *UserRepo) Upsert(ctx context.Context, u domain.User) (*domain.User, error) {
	const op = "postgresrepo.UserRepo.Upsert"

	out, err := scanUser(r.db.QueryRow(ctx,
		`INSERT INTO users(email, password_hash, full_name, role)
       	 VALUES ($1, $2, $3, $4)
     	 ON CONFLICT (email) DO UPDATE
       	   SET password_hash = EXCLUDED.password_hash,
       	       full_name = EXCLUDED.full_name,
       	       role = EXCLUDED.role
     	 RETURNING `+userColumns,
		u.Email, u.PasswordHash, u.FullName, string(u.Role),
	))
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	return out, nil
}
