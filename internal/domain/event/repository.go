package event

import "context"

type Repository interface {
	Append(ctx context.Context, e *LedgerEvent) error
	ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*LedgerEvent, error)
}
