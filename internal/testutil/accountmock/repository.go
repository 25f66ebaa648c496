package accountmock

import (
	"context"

	domain "lending-ledger/internal/domain/account"
)

// Repo is a function-backed mock that satisfies domain.Repository. The
// zero value interns every address as id 1.
type Repo struct {
	InternFn  func(ctx context.Context, address string) (uint64, error)
	GetByIDFn func(ctx context.Context, id uint64) (*domain.Account, error)
}

func (m *Repo) Intern(ctx context.Context, address string) (uint64, error) {
	if m.InternFn != nil {
		return m.InternFn(ctx, address)
	}
	return 1, nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Account, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
}
