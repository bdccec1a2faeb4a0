package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"conferencecentral/internal/domain"
)

const defaultTxTimeout = 5 * time.Second

type transactor struct {
	db      *sql.DB
	timeout time.Duration
}

// NewTransactor returns a Transactor whose stores run on a single *sql.Tx.
// A transaction without a deadline on ctx gets the default timeout.
func NewTransactor(db *sql.DB) domain.Transactor {
	return &transactor{db: db, timeout: defaultTxTimeout}
}

func (t *transactor) RunInTx(ctx context.Context, fn func(ctx context.Context, stores domain.TxStores) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stores := domain.TxStores{
		Profiles:    &profileRepository{db: tx},
		Conferences: &conferenceRepository{db: tx},
	}
	if err := fn(ctx, stores); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
