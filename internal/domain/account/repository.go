package account

import "context"

type Repository interface {
	// Intern returns the id for address, creating the row on first sight.
	Intern(ctx context.Context, address string) (uint64, error)
	GetByID(ctx context.Context, id uint64) (*Account, error)
}
