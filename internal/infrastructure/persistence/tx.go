package persistence

import (
	"context"

	"github.com/SAMI-SEP490/SAMI-BackEnd-sub002/internal/domain/shared"
	"gorm.io/gorm"
)

type txContextKey struct{}

// GormTxManager implements shared.TxManager on a GORM connection. The
// transaction handle travels in the context, so repositories constructed on
// the base connection transparently join the transaction of the ctx they
// are called with.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// Do runs fn inside one database transaction. Nested calls join the
// enclosing transaction instead of opening a second one.
func (m *GormTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

var _ shared.TxManager = (*GormTxManager)(nil)

// dbFor returns the transaction bound to ctx when one is open, otherwise
// the base connection scoped to ctx.
func dbFor(ctx context.Context, base *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok {
		return tx
	}
	return base.WithContext(ctx)
}
