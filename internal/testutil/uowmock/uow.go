package uowmock

import (
	"context"
	"errors"

	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return errUnimplemented.
type UoW struct {
	WithinTxFn        func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinSubLoanTxFn func(ctx context.Context, subLoanID uint64, fn func(r uow.Repos, sl *subloan.SubLoan) error) error
}

func New() *UoW { return &UoW{} }

// Passthrough runs every transaction body directly against repos, resolving
// the locked sub-loan through repos.SubLoans like the real implementation.
func Passthrough(repos uow.Repos) *UoW {
	return &UoW{
		WithinTxFn: func(ctx context.Context, fn func(r uow.Repos) error) error {
			return fn(repos)
		},
		WithinSubLoanTxFn: func(ctx context.Context, subLoanID uint64, fn func(r uow.Repos, sl *subloan.SubLoan) error) error {
			sl, err := repos.SubLoans.GetByIDForUpdate(ctx, subLoanID)
			if err != nil {
				return err
			}
			return fn(repos, sl)
		},
	}
}

func (m *UoW) Reset() { *m = UoW{} }

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinSubLoanTx(ctx context.Context, subLoanID uint64, fn func(r uow.Repos, sl *subloan.SubLoan) error) error {
	if m.WithinSubLoanTxFn != nil {
		return m.WithinSubLoanTxFn(ctx, subLoanID, fn)
	}
	return errUnimplemented
}
