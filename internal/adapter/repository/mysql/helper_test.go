package mysql

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lending-ledger/internal/domain/subloan"
)

// openTestDB creates an in-memory sqlite DB with the full schema. The models
// carry no mysql-only column types, so the domain schema migrates as-is.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeSubLoan(id uint64) *subloan.SubLoan {
	return &subloan.SubLoan{
		ID: id,
		Inception: subloan.Inception{
			BorrowedAmount: 1_000,
			StartTimestamp: 1_700_000_000,
			ProgramID:      1,
			Borrower:       "borrower-1",
			FirstSubLoanID: id,
			IndexInLoan:    0,
			SiblingCount:   1,
		},
		State: subloan.State{
			Status:           subloan.StatusOngoing,
			Duration:         30,
			TrackedTimestamp: 1_700_000_000,
			TrackedPrincipal: 1_000,
		},
	}
}
