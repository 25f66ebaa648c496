package mysql

import (
	"context"
	"errors"
	"testing"

	"lending-ledger/internal/domain/subloan"
)

func TestSubLoan_CreateBatchAndGet(t *testing.T) {
	repo := NewSubLoanRepository(openTestDB(t))
	ctx := context.Background()

	a := makeSubLoan(10)
	b := makeSubLoan(11)
	a.SiblingCount, b.SiblingCount = 2, 2
	b.FirstSubLoanID, b.IndexInLoan = 10, 1
	if err := repo.CreateBatch(ctx, []*subloan.SubLoan{a, b}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	got, err := repo.GetByID(ctx, 11)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FirstSubLoanID != 10 || got.IndexInLoan != 1 || got.TrackedPrincipal != 1_000 {
		t.Fatalf("row: %+v", got)
	}

	if _, err := repo.GetByID(ctx, 99); !errors.Is(err, subloan.ErrNotFound) {
		t.Fatalf("missing row: want ErrNotFound, got %v", err)
	}
}

func TestSubLoan_SavePersistsStateChanges(t *testing.T) {
	repo := NewSubLoanRepository(openTestDB(t))
	ctx := context.Background()

	sl := makeSubLoan(1)
	if err := repo.CreateBatch(ctx, []*subloan.SubLoan{sl}); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	sl.TrackedPrincipal = 400
	sl.RepaidPrincipal = 600
	sl.UpdateIndex = 1
	if err := repo.Save(ctx, sl); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.GetByIDForUpdate(ctx, 1)
	if err != nil {
		t.Fatalf("GetByIDForUpdate: %v", err)
	}
	if got.TrackedPrincipal != 400 || got.RepaidPrincipal != 600 || got.UpdateIndex != 1 {
		t.Fatalf("row after save: %+v", got.State)
	}
}

func TestSubLoan_GetLoanMembersForUpdate(t *testing.T) {
	repo := NewSubLoanRepository(openTestDB(t))
	ctx := context.Background()

	var sls []*subloan.SubLoan
	for i := uint64(0); i < 3; i++ {
		sl := makeSubLoan(20 + i)
		sl.FirstSubLoanID, sl.IndexInLoan, sl.SiblingCount = 20, i, 3
		sls = append(sls, sl)
	}
	if err := repo.CreateBatch(ctx, sls); err != nil {
		t.Fatalf("CreateBatch: %v", err)
	}

	members, err := repo.GetLoanMembersForUpdate(ctx, 20, 3)
	if err != nil {
		t.Fatalf("GetLoanMembersForUpdate: %v", err)
	}
	if len(members) != 3 {
		t.Fatalf("members: %d", len(members))
	}
	for i, sl := range members {
		if sl.ID != 20+uint64(i) {
			t.Fatalf("order: %+v", members)
		}
	}

	// a hole in the id run is a hard error
	if _, err := repo.GetLoanMembersForUpdate(ctx, 20, 4); !errors.Is(err, subloan.ErrNotFound) {
		t.Fatalf("incomplete run: want ErrNotFound, got %v", err)
	}
}
