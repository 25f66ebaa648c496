package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	accountDomain "lending-ledger/internal/domain/account"
)

type AccountRepository struct{ db *gorm.DB }

func NewAccountRepository(db *gorm.DB) *AccountRepository { return &AccountRepository{db: db} }

func (r *AccountRepository) Intern(ctx context.Context, address string) (uint64, error) {
	a := accountDomain.Account{Address: address}
	// idempotent insert; a concurrent insert of the same address loses the
	// race and reads the winner's row
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "address"}}, DoNothing: true}).
		Create(&a).Error
	if err != nil {
		return 0, err
	}
	if a.ID != 0 {
		return a.ID, nil
	}
	var out accountDomain.Account
	if err := r.db.WithContext(ctx).Where("address = ?", address).First(&out).Error; err != nil {
		return 0, err
	}
	return out.ID, nil
}

func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*accountDomain.Account, error) {
	var out accountDomain.Account
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, accountDomain.ErrNotFound
	}
	return &out, res.Error
}
