package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/gigbook/service-booking/internal/domain"
)

const (
	pgUniqueViolation       = "23505"
	pgForeignKeyViolation   = "23503"
	pgCheckViolation        = "23514"
	pgSerializationFailure  = "40001"
	pgDeadlockDetected      = "40P01"
	concurrentUpdateMessage = "the request conflicted with a concurrent update"
)

type txKey struct{}

// GormTransactor runs units of work in serializable transactions.
type GormTransactor struct {
	db *gorm.DB
}

// NewGormTransactor creates a new GormTransactor.
func NewGormTransactor(db *gorm.DB) *GormTransactor {
	return &GormTransactor{db: db}
}

// WithinTransaction runs fn in a serializable transaction carried by ctx.
// Repositories called with that ctx join the transaction. Nested calls reuse the outer one.
func (t *GormTransactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		if _, ok := domain.AsDomainError(err); ok {
			return err
		}
		if isSerializationFailure(err) {
			return &domain.DomainError{Kind: domain.KindConflict, Code: domain.CodeConflict, Message: concurrentUpdateMessage, Err: err}
		}
		return err
	}
	return nil
}

// conn returns the transaction bound to ctx, or the base handle.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || pgCode(err) == pgUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	return errors.Is(err, gorm.ErrForeignKeyViolated) || pgCode(err) == pgForeignKeyViolation
}

func isCheckViolation(err error) bool {
	return errors.Is(err, gorm.ErrCheckConstraintViolated) || pgCode(err) == pgCheckViolation
}

func isSerializationFailure(err error) bool {
	code := pgCode(err)
	return code == pgSerializationFailure || code == pgDeadlockDetected
}

// classifyWriteError maps store constraint failures onto domain errors.
func classifyWriteError(err error, uniqueErr *domain.DomainError) error {
	switch {
	case isUniqueViolation(err):
		uniqueErr.Err = err
		return uniqueErr
	case isSerializationFailure(err):
		return &domain.DomainError{Kind: domain.KindConflict, Code: domain.CodeConflict, Message: concurrentUpdateMessage, Err: err}
	case isCheckViolation(err):
		return &domain.DomainError{Kind: domain.KindValidation, Code: domain.CodeValidation, Message: "value violates a store constraint", Err: err}
	}
	return nil
}
