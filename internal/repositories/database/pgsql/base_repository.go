package pgsql

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/SscSPs/estate_ledger/internal/apperrors"
	portsrepo "github.com/SscSPs/estate_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes mapped to application errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

type txKey struct{}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	Pool *pgxpool.Pool
}

// db returns the transaction carried on ctx, or the pool when there is none.
func (r *BaseRepository) db(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return r.Pool
}

// inTx reports whether ctx carries a transaction. FOR UPDATE queries outside one lock nothing.
func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(pgx.Tx)
	return ok
}

// Begin starts a new database transaction
func (r *BaseRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to begin transaction", err)
	}
	return tx, nil
}

// Commit commits a transaction
func (r *BaseRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Commit(ctx); err != nil {
		return apperrors.NewAppError(500, "failed to commit transaction", err)
	}
	return nil
}

// Rollback rolls back a transaction
func (r *BaseRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return apperrors.NewAppError(500, "failed to rollback transaction", err)
	}
	return nil
}

// TxManager runs units of work in a Postgres transaction carried on the context.
type TxManager struct {
	BaseRepository
}

var _ portsrepo.TransactionManager = (*TxManager)(nil)

func newTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{BaseRepository: BaseRepository{Pool: pool}}
}

// WithinTx commits when fn returns nil and rolls back otherwise. Nested calls join the outer transaction.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}
	tx, err := m.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			m.rollback(ctx, tx)
			err = fmt.Errorf("transaction panicked: %v", p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		m.rollback(ctx, tx)
		return err
	}
	return m.Commit(ctx, tx)
}

func (m *TxManager) rollback(ctx context.Context, tx pgx.Tx) {
	// the request context may already be cancelled
	if err := m.Rollback(context.WithoutCancel(ctx), tx); err != nil {
		slog.ErrorContext(ctx, "Transaction rollback failed", slog.String("error", err.Error()))
	}
}

// mapError translates driver errors into application errors. what names the failed operation.
func mapError(err error, what string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrDuplicate, what, pgErr.ConstraintName)
		case pgForeignKeyViolation, pgCheckViolation:
			return fmt.Errorf("%w: %s: %s", apperrors.ErrValidation, what, pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("failed to %s: %w", what, err)
}

// execBatch sends a batch and reports the first failing statement. With requireRows, a statement
// that touched no row fails with ErrNotFound.
func execBatch(ctx context.Context, q querier, batch *pgx.Batch, what string, requireRows bool) error {
	if batch.Len() == 0 {
		return nil
	}
	br := q.SendBatch(ctx, batch)
	var batchErr error
	for i := 0; i < batch.Len(); i++ {
		ct, err := br.Exec()
		if batchErr != nil {
			continue
		}
		if err != nil {
			batchErr = mapError(err, what)
		} else if requireRows && ct.RowsAffected() == 0 {
			batchErr = fmt.Errorf("%w: %s: statement %d matched no row", apperrors.ErrNotFound, what, i+1)
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = mapError(err, what)
	}
	return batchErr
}
