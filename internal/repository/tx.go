package repository

import (
	"context"

	"gorm.io/gorm"
)

type txKey struct{}

// TxManager runs a function inside one database transaction. The transaction
// handle travels through the context, so every repository call made within fn
// joins the same transaction.
type TxManager interface {
	Transact(ctx context.Context, fn func(ctx context.Context) error) error
}

type GormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

func (m *GormTxManager) Transact(ctx context.Context, fn func(ctx context.Context) error) error {
	// Nested Transact joins the ambient transaction instead of opening a
	// savepoint; cascades always commit or roll back with their trigger.
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// FromContext returns the in-flight transaction, or fallback scoped to ctx
// when no transaction is open.
func FromContext(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return fallback.WithContext(ctx)
}
