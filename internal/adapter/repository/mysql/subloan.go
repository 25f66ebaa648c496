package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	subloanDomain "lending-ledger/internal/domain/subloan"
)

type SubLoanRepository struct{ db *gorm.DB }

func NewSubLoanRepository(db *gorm.DB) *SubLoanRepository { return &SubLoanRepository{db: db} }

func (r *SubLoanRepository) CreateBatch(ctx context.Context, sls []*subloanDomain.SubLoan) error {
	return r.db.WithContext(ctx).Create(sls).Error
}

func (r *SubLoanRepository) Save(ctx context.Context, sl *subloanDomain.SubLoan) error {
	return r.db.WithContext(ctx).Save(sl).Error
}

func (r *SubLoanRepository) GetByID(ctx context.Context, id uint64) (*subloanDomain.SubLoan, error) {
	return r.get(r.db.WithContext(ctx), id)
}

func (r *SubLoanRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*subloanDomain.SubLoan, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), id)
}

func (r *SubLoanRepository) get(db *gorm.DB, id uint64) (*subloanDomain.SubLoan, error) {
	var out subloanDomain.SubLoan
	res := db.Where("id = ?", id).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, subloanDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *SubLoanRepository) GetLoanMembersForUpdate(ctx context.Context, firstID, count uint64) ([]*subloanDomain.SubLoan, error) {
	var out []*subloanDomain.SubLoan
	res := forUpdate(r.db.WithContext(ctx)).
		Where("id >= ? AND id < ?", firstID, firstID+count).
		Order("id ASC").
		Find(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if uint64(len(out)) != count {
		return nil, subloanDomain.ErrNotFound
	}
	return out, nil
}
