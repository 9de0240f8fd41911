package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/B3hnamR/viranumpro/internal/domain/errors"
	"github.com/B3hnamR/viranumpro/internal/domain/model"
)

// pool is the subset of pgxpool.Pool the registry uses; pgxmock satisfies it.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// Storage is a durable order registry backed by PostgreSQL. It implements
// the same compare-and-set contract as the volatile registry.
type Storage struct {
	pool   pool
	logger *slog.Logger
}

// New creates storage with schema initialization.
func New(ctx context.Context, dsn string, logger *slog.Logger) (*Storage, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}

	pgPool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	storage := &Storage{pool: pgPool, logger: logger}
	if err := storage.initSchema(ctx); err != nil {
		pgPool.Close()
		return nil, err
	}

	return storage, nil
}

// Close releases database resources.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Storage) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS orders (
            id TEXT PRIMARY KEY,
            owner_id BIGINT NOT NULL,
            product TEXT NOT NULL,
            country TEXT NOT NULL,
            operator TEXT NOT NULL,
            phone TEXT NOT NULL,
            price DOUBLE PRECISION NOT NULL DEFAULT 0,
            status TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            expires_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS order_sms (
            order_id TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            sms_id TEXT NOT NULL,
            sender TEXT NOT NULL DEFAULT '',
            text TEXT NOT NULL DEFAULT '',
            code TEXT NOT NULL DEFAULT '',
            received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            PRIMARY KEY (order_id, sms_id)
        )`,
		`CREATE INDEX IF NOT EXISTS idx_orders_owner ON orders(owner_id, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}

// Insert stores a new order. Duplicate identifiers are rejected.
func (s *Storage) Insert(ctx context.Context, order *model.Order) error {
	const query = `INSERT INTO orders (id, owner_id, product, country, operator, phone, price, status, created_at, expires_at)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := s.pool.Exec(ctx, query,
		order.ID, order.OwnerID, order.Product, order.Country, order.Operator,
		order.Phone, order.Price, order.Status, order.CreatedAt, order.ExpiresAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// Get returns the order with its received messages.
func (s *Storage) Get(ctx context.Context, orderID string) (*model.Order, error) {
	const query = `SELECT id, owner_id, product, country, operator, phone, price, status, created_at, expires_at
                   FROM orders WHERE id=$1`
	var o model.Order
	err := s.pool.QueryRow(ctx, query, orderID).Scan(&o.ID, &o.OwnerID, &o.Product, &o.Country,
		&o.Operator, &o.Phone, &o.Price, &o.Status, &o.CreatedAt, &o.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}

	sms, err := s.loadSMS(ctx, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.SMS = sms[o.ID]
	return &o, nil
}

// ListByOwner returns all orders held by owner, newest first.
func (s *Storage) ListByOwner(ctx context.Context, ownerID int64) ([]model.Order, error) {
	const query = `SELECT id, owner_id, product, country, operator, phone, price, status, created_at, expires_at
                   FROM orders WHERE owner_id=$1 ORDER BY created_at DESC`
	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	var ids []string
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.OwnerID, &o.Product, &o.Country, &o.Operator,
			&o.Phone, &o.Price, &o.Status, &o.CreatedAt, &o.ExpiresAt); err != nil {
			return nil, err
		}
		result = append(result, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return result, nil
	}

	sms, err := s.loadSMS(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range result {
		result[i].SMS = sms[result[i].ID]
	}
	return result, nil
}

func (s *Storage) loadSMS(ctx context.Context, orderIDs []string) (map[string][]model.SMS, error) {
	const query = `SELECT order_id, sms_id, sender, text, code, received_at
                   FROM order_sms WHERE order_id = ANY($1) ORDER BY received_at`
	rows, err := s.pool.Query(ctx, query, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string][]model.SMS)
	for rows.Next() {
		var orderID string
		var sms model.SMS
		if err := rows.Scan(&orderID, &sms.ID, &sms.Sender, &sms.Text, &sms.Code, &sms.ReceivedAt); err != nil {
			return nil, err
		}
		result[orderID] = append(result[orderID], sms)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateStatus applies the compare-and-set transition inside the query: the
// row is updated only when the current status is an allowed predecessor.
func (s *Storage) UpdateStatus(ctx context.Context, orderID string, status model.OrderStatus) (bool, error) {
	predecessors := model.Predecessors(status)
	allowed := make([]string, len(predecessors))
	for i, p := range predecessors {
		allowed[i] = string(p)
	}

	const query = `UPDATE orders SET status=$1 WHERE id=$2 AND status = ANY($3)`
	tag, err := s.pool.Exec(ctx, query, status, orderID, allowed)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	// Distinguish stale from unknown order.
	if _, err := s.Get(ctx, orderID); err != nil {
		return false, err
	}
	s.logger.Debug("stale status update skipped",
		slog.String("order", orderID),
		slog.String("requested", string(status)),
	)
	return false, nil
}

// AppendSMS inserts a received message, deduplicated by its identifier.
func (s *Storage) AppendSMS(ctx context.Context, orderID string, sms model.SMS) (bool, error) {
	const query = `INSERT INTO order_sms (order_id, sms_id, sender, text, code, received_at)
                   VALUES ($1, $2, $3, $4, $5, $6)
                   ON CONFLICT (order_id, sms_id) DO NOTHING`
	tag, err := s.pool.Exec(ctx, query, orderID, sms.ID, sms.Sender, sms.Text, sms.Code, sms.ReceivedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return false, domainErrors.ErrNotFound
		}
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Remove deletes the order and its messages.
func (s *Storage) Remove(ctx context.Context, orderID string) error {
	const query = `DELETE FROM orders WHERE id=$1`
	tag, err := s.pool.Exec(ctx, query, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

// HealthCheck verifies database connectivity.
func (s *Storage) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.pool.Ping(ctx)
}
