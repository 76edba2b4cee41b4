package repositories

import (
	"context"
)

// TransactionManager runs a unit of work atomically.
type TransactionManager interface {
	// WithinTx runs fn inside a transaction carried on the context passed to fn. Repositories called
	// with that context join the transaction. A nested call reuses the outer transaction. The
	// transaction commits when fn returns nil and rolls back on error or panic.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
