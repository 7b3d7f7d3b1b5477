package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.ReceiptSink = SettlementsRepository{}

// A SettlementsRepository journals settlement outcomes in SQL.
// The schema is managed by cmd/migrator.
type SettlementsRepository struct {
	sqldb sqldb
}

func NewSettlementsRepository(sqldb sqldb) SettlementsRepository {
	return SettlementsRepository{sqldb}
}

func (r SettlementsRepository) SinkReceipt(
	ctx context.Context, v domain.Receipt,
) error {
	const op = "SettlementsRepository.SinkReceipt"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `
		INSERT INTO settlements (
			method, status, total, tendered, change, balance, issued_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`

	retryCfg := retry.Config{
		MaxAttempts: 3,
		Backoff:     retry.LinearBackoff(50 * time.Millisecond),
	}

	err := retry.Do(ctx, retryCfg, func() error {
		_, err := r.sqldb.ExecContext(ctx, query,
			string(v.Method), string(v.Status),
			v.Total, v.Tendered, v.Change, v.Balance,
			v.IssuedAt,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("%s: failed to exec: %w", op, err)
	}

	return nil
}
