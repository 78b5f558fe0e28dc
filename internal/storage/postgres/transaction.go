package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/seu-repo/csms/internal/ports"
)

type txKeyType struct{}

var txKey = txKeyType{}

// withTx stashes a transaction-scoped *gorm.DB in ctx so repository methods
// called within it use the same transaction instead of the base pool.
func withTx(ctx context.Context, tx *gorm.DB) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// dbFor returns the tx-scoped handle stashed in ctx by a Transactor, falling
// back to base when ctx isn't inside a transaction.
func dbFor(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return base.WithContext(ctx)
}

type transactor struct {
	db *gorm.DB
}

// NewTransactor adapts GORM's db.Transaction onto ports.Transactor.
func NewTransactor(db *gorm.DB) ports.Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(withTx(ctx, tx))
	})
}
