package operation

import "context"

type Repository interface {
	Create(ctx context.Context, op *Operation) error
	Save(ctx context.Context, op *Operation) error
	GetBySeq(ctx context.Context, subLoanID, seq uint64) (*Operation, error)
	// ListBySubLoan returns every operation of the sub-loan in
	// (timestamp, seq) order.
	ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*Operation, error)
	// ListPending returns the sub-loan's Pending operations in
	// (timestamp, seq) order.
	ListPending(ctx context.Context, subLoanID uint64) ([]*Operation, error)
	// LastApplied returns the Applied operation with the highest
	// (timestamp, seq), excluding excludeSeq (0 = exclude none);
	// ErrNotFound when there is none.
	LastApplied(ctx context.Context, subLoanID, excludeSeq uint64) (*Operation, error)
	// MarkPendingSkipped flips every Pending operation of the sub-loan to
	// Skipped (loan revocation path).
	MarkPendingSkipped(ctx context.Context, subLoanID uint64) error
}
