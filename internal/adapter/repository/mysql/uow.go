package mysql

import (
	"context"

	"gorm.io/gorm"

	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/domain/uow"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

// NewRepos returns repositories bound to the root session, for reads that
// need no transaction.
func NewRepos(db *gorm.DB) uow.Repos { return reposFor(db) }

func reposFor(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Programs:   &ProgramRepository{db: tx},
		SubLoans:   &SubLoanRepository{db: tx},
		Operations: &OperationRepository{db: tx},
		Accounts:   &AccountRepository{db: tx},
		Events:     &EventRepository{db: tx},
		Counters:   &CounterRepository{db: tx},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(reposFor(tx))
	})
}

func (u *GormUoW) WithinSubLoanTx(ctx context.Context, subLoanID uint64, fn func(r uow.Repos, sl *subloan.SubLoan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := reposFor(tx)
		// lock the sub-loan row up-front to prevent races
		sl, err := r.SubLoans.GetByIDForUpdate(ctx, subLoanID)
		if err != nil {
			return err
		}
		return fn(r, sl)
	})
}
