package mysql

import (
	"context"
	"testing"

	"lending-ledger/internal/domain/counter"
)

func TestAllocateBlock_FreshCounterStartsAtOne(t *testing.T) {
	repo := NewCounterRepository(openTestDB(t))
	ctx := context.Background()

	first, err := repo.AllocateBlock(ctx, counter.NameSubLoanID, 3)
	if err != nil {
		t.Fatalf("AllocateBlock: %v", err)
	}
	if first != 1 {
		t.Fatalf("fresh counter: want 1, got %d", first)
	}
}

func TestAllocateBlock_BlocksAreContiguous(t *testing.T) {
	repo := NewCounterRepository(openTestDB(t))
	ctx := context.Background()

	next := uint64(1)
	for _, n := range []uint64{3, 1, 5} {
		first, err := repo.AllocateBlock(ctx, counter.NameSubLoanID, n)
		if err != nil {
			t.Fatalf("AllocateBlock(%d): %v", n, err)
		}
		if first != next {
			t.Fatalf("block of %d: want first %d, got %d", n, next, first)
		}
		next += n
	}
}

func TestAllocateBlock_NamesAreIndependent(t *testing.T) {
	repo := NewCounterRepository(openTestDB(t))
	ctx := context.Background()

	if _, err := repo.AllocateBlock(ctx, counter.NameSubLoanID, 10); err != nil {
		t.Fatalf("sub-loan counter: %v", err)
	}
	first, err := repo.AllocateBlock(ctx, counter.NameProgramID, 1)
	if err != nil {
		t.Fatalf("program counter: %v", err)
	}
	if first != 1 {
		t.Fatalf("program counter must start fresh: %d", first)
	}
}
