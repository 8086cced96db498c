package repos

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate applies a row lock on dialects that support it. The
// embedded sqlite driver has a single writer, so its transactions already
// serialize and FOR UPDATE would be a syntax error there.
func lockForUpdate(tx *gorm.DB, options string) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE", Options: options})
}
