package mysql

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"lending-ledger/internal/domain/account"
	"lending-ledger/internal/domain/event"
	"lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/subloan"
)

// AutoMigrate creates the full schema, counters included.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&program.LendingProgram{},
		&subloan.SubLoan{},
		&operation.Operation{},
		&account.Account{},
		&event.LedgerEvent{},
		&counterRow{},
	)
}

// forUpdate adds SELECT ... FOR UPDATE on dialects that support it. The
// sqlite driver used in tests has no row locks; there the transaction itself
// serializes writers.
func forUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
