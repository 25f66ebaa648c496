package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	programDomain "lending-ledger/internal/domain/program"
)

type ProgramRepository struct{ db *gorm.DB }

func NewProgramRepository(db *gorm.DB) *ProgramRepository { return &ProgramRepository{db: db} }

func (r *ProgramRepository) Create(ctx context.Context, p *programDomain.LendingProgram) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProgramRepository) Save(ctx context.Context, p *programDomain.LendingProgram) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProgramRepository) GetByID(ctx context.Context, id uint64) (*programDomain.LendingProgram, error) {
	var out programDomain.LendingProgram
	res := r.db.WithContext(ctx).Where("id = ?", id).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, programDomain.ErrNotFound
	}
	return &out, res.Error
}

func (r *ProgramRepository) GetByIDForUpdate(ctx context.Context, id uint64) (*programDomain.LendingProgram, error) {
	var out programDomain.LendingProgram
	res := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, programDomain.ErrNotFound
	}
	return &out, res.Error
}
