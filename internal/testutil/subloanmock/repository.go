package subloanmock

import (
	"context"

	domain "lending-ledger/internal/domain/subloan"
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Only methods you need are included; add more as tests require.
type Repo struct {
	CreateBatchFn             func(ctx context.Context, sls []*domain.SubLoan) error
	GetByIDFn                 func(ctx context.Context, id uint64) (*domain.SubLoan, error)
	GetByIDForUpdateFn        func(ctx context.Context, id uint64) (*domain.SubLoan, error)
	GetLoanMembersForUpdateFn func(ctx context.Context, firstID, count uint64) ([]*domain.SubLoan, error)
	SaveFn                    func(ctx context.Context, sl *domain.SubLoan) error
}

func (m *Repo) CreateBatch(ctx context.Context, sls []*domain.SubLoan) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, sls)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.SubLoan, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.SubLoan, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetLoanMembersForUpdate(ctx context.Context, firstID, count uint64) ([]*domain.SubLoan, error) {
	if m.GetLoanMembersForUpdateFn != nil {
		return m.GetLoanMembersForUpdateFn(ctx, firstID, count)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, sl *domain.SubLoan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, sl)
	}
	return nil
}
