package uow

import (
	"context"

	"lending-ledger/internal/domain/account"
	"lending-ledger/internal/domain/counter"
	"lending-ledger/internal/domain/event"
	"lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/subloan"
)

type Repos struct {
	Programs   program.Repository
	SubLoans   subloan.Repository
	Operations operation.Repository
	Accounts   account.Repository
	Events     event.Repository
	Counters   counter.Repository
}

// UnitOfWork gives the usecases their atomicity guarantee: every external call
// runs to completion inside one transaction or fully reverts.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the sub-loan row first, then pass it in
	WithinSubLoanTx(ctx context.Context, subLoanID uint64, fn func(r Repos, sl *subloan.SubLoan) error) error
}
