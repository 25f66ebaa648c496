package programmock

import (
	"context"

	domain "lending-ledger/internal/domain/program"
)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn           func(ctx context.Context, p *domain.LendingProgram) error
	GetByIDFn          func(ctx context.Context, id uint64) (*domain.LendingProgram, error)
	GetByIDForUpdateFn func(ctx context.Context, id uint64) (*domain.LendingProgram, error)
	SaveFn             func(ctx context.Context, p *domain.LendingProgram) error
}

func (m *Repo) Create(ctx context.Context, p *domain.LendingProgram) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, p)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.LendingProgram, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) GetByIDForUpdate(ctx context.Context, id uint64) (*domain.LendingProgram, error) {
	if m.GetByIDForUpdateFn != nil {
		return m.GetByIDForUpdateFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) Save(ctx context.Context, p *domain.LendingProgram) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, p)
	}
	return nil
}
