package dataplatform

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/cookbook-go/db"
)

// Store reads documents and entries.
type Store interface {
	// DocumentIDs returns the documents of dataset that have key = value.
	DocumentIDs(ctx context.Context, dataset, key, value string) ([]string, error)
	// CountValues counts the values of key. A nil ids counts over the whole dataset.
	CountValues(ctx context.Context, dataset, key string, ids []string) (map[string]int, error)
	Datasets(ctx context.Context) ([]Dataset, error)
	Keys(ctx context.Context, dataset string) ([]string, error)
}

// PgStore implements Store over PostgreSQL.
type PgStore struct {
	pool *pgxpool.Pool
}

// NewPgStore creates a PgStore.
func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) DocumentIDs(ctx context.Context, dataset, key, value string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.document_id FROM data_entries e
		JOIN data_documents d ON d.id = e.document_id
		WHERE d.dataset = $1 AND e.key = $2 AND e.value = $3`, dataset, key, value)
	if err != nil {
		return nil, db.MapError(err, "data entries")
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, db.MapError(err, "data entries")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "data entries")
	}
	return ids, nil
}

func (s *PgStore) CountValues(ctx context.Context, dataset, key string, ids []string) (map[string]int, error) {
	sql := `
		SELECT e.value, count(*) FROM data_entries e
		JOIN data_documents d ON d.id = e.document_id
		WHERE d.dataset = $1 AND e.key = $2`
	args := []any{dataset, key}
	if ids != nil {
		sql += ` AND e.document_id = ANY($3)`
		args = append(args, ids)
	}
	sql += ` GROUP BY e.value`

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.MapError(err, "data entries")
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var v string
		var c int
		if err := rows.Scan(&v, &c); err != nil {
			return nil, db.MapError(err, "data entries")
		}
		counts[v] = c
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "data entries")
	}
	return counts, nil
}

func (s *PgStore) Datasets(ctx context.Context) ([]Dataset, error) {
	rows, err := s.pool.Query(ctx, `SELECT dataset, count(*) FROM data_documents GROUP BY dataset ORDER BY dataset`)
	if err != nil {
		return nil, db.MapError(err, "datasets")
	}
	defer rows.Close()
	out := make([]Dataset, 0)
	for rows.Next() {
		var d Dataset
		if err := rows.Scan(&d.Name, &d.Documents); err != nil {
			return nil, db.MapError(err, "datasets")
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "datasets")
	}
	return out, nil
}

func (s *PgStore) Keys(ctx context.Context, dataset string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT e.key FROM data_entries e
		JOIN data_documents d ON d.id = e.document_id
		WHERE d.dataset = $1
		ORDER BY e.key`, dataset)
	if err != nil {
		return nil, db.MapError(err, "dataset keys")
	}
	defer rows.Close()
	out := make([]string, 0)
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, db.MapError(err, "dataset keys")
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err, "dataset keys")
	}
	return out, nil
}
