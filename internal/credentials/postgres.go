package credentials

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore reads connections from Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// OpenPostgresStore connects to databaseURL and verifies the connection.
func OpenPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return NewPostgresStore(pool), nil
}

// Close releases the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ListConnections implements Store.
func (s *PostgresStore) ListConnections(ctx context.Context, userID string) ([]Connection, error) {
	const query = `
		SELECT id, user_id, refresh_token, property_id, created_at
		FROM user_ga_connections
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, strings.TrimSpace(userID))
	if err != nil {
		return nil, fmt.Errorf("query connections: %w", err)
	}

	conns, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Connection, error) {
		var c Connection
		err := row.Scan(&c.ID, &c.UserID, &c.RefreshToken, &c.PropertyID, &c.CreatedAt)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan connections: %w", err)
	}
	return conns, nil
}

// AddConnection stores a new connection and returns it with its id and
// creation time.
func (s *PostgresStore) AddConnection(ctx context.Context, userID, refreshToken string, propertyID *string) (Connection, error) {
	const query = `
		INSERT INTO user_ga_connections (user_id, refresh_token, property_id)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, refresh_token, property_id, created_at
	`

	var c Connection
	err := s.pool.QueryRow(ctx, query, strings.TrimSpace(userID), refreshToken, propertyID).
		Scan(&c.ID, &c.UserID, &c.RefreshToken, &c.PropertyID, &c.CreatedAt)
	if err != nil {
		return Connection{}, fmt.Errorf("insert connection: %w", err)
	}
	return c, nil
}
