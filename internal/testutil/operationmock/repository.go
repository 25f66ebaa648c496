package operationmock

import (
	"context"

	domain "lending-ledger/internal/domain/operation"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn             func(ctx context.Context, op *domain.Operation) error
	SaveFn               func(ctx context.Context, op *domain.Operation) error
	GetBySeqFn           func(ctx context.Context, subLoanID, seq uint64) (*domain.Operation, error)
	ListBySubLoanFn      func(ctx context.Context, subLoanID uint64) ([]*domain.Operation, error)
	ListPendingFn        func(ctx context.Context, subLoanID uint64) ([]*domain.Operation, error)
	LastAppliedFn        func(ctx context.Context, subLoanID, excludeSeq uint64) (*domain.Operation, error)
	MarkPendingSkippedFn func(ctx context.Context, subLoanID uint64) error
}

func (m *Repo) Create(ctx context.Context, op *domain.Operation) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, op)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, op *domain.Operation) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, op)
	}
	return nil
}

func (m *Repo) GetBySeq(ctx context.Context, subLoanID, seq uint64) (*domain.Operation, error) {
	if m.GetBySeqFn != nil {
		return m.GetBySeqFn(ctx, subLoanID, seq)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*domain.Operation, error) {
	if m.ListBySubLoanFn != nil {
		return m.ListBySubLoanFn(ctx, subLoanID)
	}
	return nil, nil
}

func (m *Repo) ListPending(ctx context.Context, subLoanID uint64) ([]*domain.Operation, error) {
	if m.ListPendingFn != nil {
		return m.ListPendingFn(ctx, subLoanID)
	}
	return nil, nil
}

func (m *Repo) LastApplied(ctx context.Context, subLoanID, excludeSeq uint64) (*domain.Operation, error) {
	if m.LastAppliedFn != nil {
		return m.LastAppliedFn(ctx, subLoanID, excludeSeq)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) MarkPendingSkipped(ctx context.Context, subLoanID uint64) error {
	if m.MarkPendingSkippedFn != nil {
		return m.MarkPendingSkippedFn(ctx, subLoanID)
	}
	return nil
}
