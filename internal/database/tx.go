package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"chronoflux-server/internal/interfaces"
)

// Compile-time check
var _ interfaces.TxManager = (*pgxTxManager)(nil)

type pgxTxManager struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewTxManager wraps a pgx pool into the TxManager contract.
func NewTxManager(pool *pgxpool.Pool, logger *zap.Logger) interfaces.TxManager {
	return &pgxTxManager{
		pool:   pool,
		logger: logger.Named("TxManager"),
	}
}

// WithTx begins a transaction, runs fn with it and commits, rolling back
// on any error or panic.
func (m *pgxTxManager) WithTx(ctx context.Context, fn func(q interfaces.DBTX) error) error {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				m.logger.Error("Rollback after panic failed", zap.Error(rbErr))
			}
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			m.logger.Error("Rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
