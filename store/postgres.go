package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres implements [Store] on a single records table. The composite
// primary key (namespace, key) carries the contract's namespace isolation;
// ON CONFLICT upserts keep single-key writes atomic.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps the given pool. Call [Postgres.Migrate] once before use.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Store = (*Postgres)(nil)

// Migrate creates the records table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS records (
	namespace TEXT  NOT NULL,
	key       TEXT  NOT NULL,
	value     BYTEA NOT NULL,
	PRIMARY KEY (namespace, key)
)`
	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Postgres) Get(ctx context.Context, ns Namespace, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM records WHERE namespace = $1 AND key = $2`,
		string(ns), key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return value, nil
}

func (s *Postgres) Set(ctx context.Context, ns Namespace, key string, value []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO records (namespace, key, value) VALUES ($1, $2, $3)
		 ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value`,
		string(ns), key, value,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, ns Namespace, key string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM records WHERE namespace = $1 AND key = $2`,
		string(ns), key,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *Postgres) List(ctx context.Context, ns Namespace) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key FROM records WHERE namespace = $1`, string(ns))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		keys = append(keys, key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return keys, nil
}

func (s *Postgres) GetAll(ctx context.Context, ns Namespace) (map[string][]byte, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT key, value FROM records WHERE namespace = $1`, string(ns))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer rows.Close()

	out := make(map[string][]byte)
	for rows.Next() {
		var (
			key   string
			value []byte
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return out, nil
}
