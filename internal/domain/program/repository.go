package program

import "context"

type Repository interface {
	Create(ctx context.Context, p *LendingProgram) error
	GetByID(ctx context.Context, id uint64) (*LendingProgram, error)
	GetByIDForUpdate(ctx context.Context, id uint64) (*LendingProgram, error)
	Save(ctx context.Context, p *LendingProgram) error
}
