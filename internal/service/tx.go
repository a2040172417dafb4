package service

import (
	"context"

	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction. Any error rolls the whole
// transaction back; storage errors come back as DatabaseError naming op.
func runTx(ctx context.Context, db *gorm.DB, op string, fn func(tx *gorm.DB) error) error {
	return dbErr(op, db.WithContext(ctx).Transaction(fn))
}
