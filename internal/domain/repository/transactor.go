package repository

import (
	"context"

	"gorm.io/gorm"
)

// Transactor runs fn inside a database transaction, committing when fn
// returns nil and rolling back otherwise. fn's error is returned unchanged.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}
