// Package postgres is the PostgreSQL-backed task and nonce store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Asad272002/TaskWiser-V2/internal/store"
	wiserr "github.com/Asad272002/TaskWiser-V2/pkg/errors"
)

// Store implements store.Store on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL and verifies the connection.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.pool.Close()
}

const taskColumns = `id, title, status, reward, reward_amount, assignee_address, paid, paid_tx_hash, paid_at, created_at, updated_at`

func scanTask(row pgx.Row) (*store.Task, error) {
	var t store.Task
	if err := row.Scan(
		&t.ID, &t.Title, &t.Status, &t.Reward, &t.RewardAmount, &t.AssigneeAddress,
		&t.Paid, &t.PaidTxHash, &t.PaidAt, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Get implements store.TaskStore.
func (s *Store) Get(ctx context.Context, id string) (*store.Task, error) {
	t, err := scanTask(s.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, wiserr.WithDetails(wiserr.ErrTaskNotFound, map[string]string{"task": id})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return t, nil
}

// ListPayable implements store.TaskStore.
func (s *Store) ListPayable(ctx context.Context) ([]store.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM tasks
		WHERE lower(status) = $1 AND NOT paid AND reward <> '' AND reward_amount <> '' AND assignee_address <> ''
		ORDER BY created_at, id`, store.TaskDone)
	if err != nil {
		return nil, fmt.Errorf("failed to list payable tasks: %w", err)
	}
	defer rows.Close()

	var out []store.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// MarkPaid implements store.TaskStore.
func (s *Store) MarkPaid(ctx context.Context, id, txHash string) error {
	ct, err := s.pool.Exec(ctx,
		`UPDATE tasks SET paid = TRUE, paid_tx_hash = $2, paid_at = NOW(), updated_at = NOW() WHERE id = $1`,
		id, txHash)
	if err != nil {
		return fmt.Errorf("failed to mark task %s paid: %w", id, err)
	}
	if ct.RowsAffected() == 0 {
		return wiserr.WithDetails(wiserr.ErrTaskNotFound, map[string]string{"task": id})
	}
	return nil
}

// Save implements store.TaskStore.
func (s *Store) Save(ctx context.Context, t store.Task) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, title, status, reward, reward_amount, assignee_address, paid, paid_tx_hash, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			reward = EXCLUDED.reward,
			reward_amount = EXCLUDED.reward_amount,
			assignee_address = EXCLUDED.assignee_address,
			paid = EXCLUDED.paid,
			paid_tx_hash = EXCLUDED.paid_tx_hash,
			paid_at = EXCLUDED.paid_at,
			updated_at = NOW()`,
		t.ID, t.Title, t.Status, t.Reward, t.RewardAmount, t.AssigneeAddress, t.Paid, t.PaidTxHash, t.PaidAt)
	if err != nil {
		return fmt.Errorf("failed to save task %s: %w", t.ID, err)
	}
	return nil
}

// PutNonce implements store.NonceStore.
func (s *Store) PutNonce(ctx context.Context, n store.Nonce) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO wallet_nonces (address, nonce, created_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (address) DO UPDATE SET
			nonce = EXCLUDED.nonce,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at`,
		store.NonceKey(n.Address), n.Value, n.CreatedAt, n.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to store nonce: %w", err)
	}
	return nil
}

// GetNonce implements store.NonceStore. Expired rows are not returned.
func (s *Store) GetNonce(ctx context.Context, address string) (*store.Nonce, error) {
	var n store.Nonce
	err := s.pool.QueryRow(ctx,
		`SELECT address, nonce, created_at, expires_at FROM wallet_nonces WHERE address = $1 AND expires_at > $2`,
		store.NonceKey(address), time.Now()).Scan(&n.Address, &n.Value, &n.CreatedAt, &n.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, wiserr.ErrNonceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}
	return &n, nil
}

// ConsumeNonce implements store.NonceStore with a single conditional
// DELETE, so concurrent callers race on the row rather than on a read.
func (s *Store) ConsumeNonce(ctx context.Context, address, value string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM wallet_nonces WHERE address = $1 AND nonce = $2 AND expires_at > $3`,
		store.NonceKey(address), value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return wiserr.ErrNonceNotFound
	}
	return nil
}

var _ store.Store = (*Store)(nil)
