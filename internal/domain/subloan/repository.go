package subloan

import "context"

type Repository interface {
	CreateBatch(ctx context.Context, sls []*SubLoan) error
	GetByID(ctx context.Context, id uint64) (*SubLoan, error)
	// GetByIDForUpdate locks the row for the rest of the transaction.
	GetByIDForUpdate(ctx context.Context, id uint64) (*SubLoan, error)
	// GetLoanMembersForUpdate returns the contiguous id run [firstID, firstID+count),
	// locked, ordered by id.
	GetLoanMembersForUpdate(ctx context.Context, firstID, count uint64) ([]*SubLoan, error)
	Save(ctx context.Context, sl *SubLoan) error
}
