package postgresrepo

import (
	"context"

	"github.com/kirinyoku/parktix/internal/repository"
)

// SequenceRepo allocates identifiers from Postgres sequences. nextval is
// atomic and never hands out the same value twice, even when the calling
// transaction rolls back.
type SequenceRepo struct {
	db DB
}

func (r *SequenceRepo) Next(ctx context.Context, seq repository.Sequence) (int64, error) {
	const op = "postgresrepo.SequenceRepo.Next"

	var id int64
	if err := r.db.QueryRow(ctx, `SELECT nextval($1::regclass)`, string(seq)).Scan(&id); err != nil {
		return 0, wrapDBErr(op, err)
	}

	return id, nil
}

func (r *SequenceRepo) NextN(ctx context.Context, seq repository.Sequence, n int) ([]int64, error) {
	const op = "postgresrepo.SequenceRepo.NextN"

	if n <= 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT id FROM (
       	   SELECT nextval($1::regclass) AS id FROM generate_series(1, $2)
     	 ) s ORDER BY id`,
		string(seq), n,
	)
	if err != nil {
		return nil, wrapDBErr(op, err)
	}

	defer rows.Close()

	ids := make([]int64, 0, n)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, wrapDBErr(op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr(op, err)
	}

	return ids, nil
}
