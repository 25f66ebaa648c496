package counter

import "context"

// Names of the monotonic counters. Ids allocated from them are never reused.
const (
	NameProgramID = "program_id"
	NameSubLoanID = "sub_loan_id"
)

type Repository interface {
	// AllocateBlock reserves n consecutive ids from the named counter and
	// returns the first. Must run inside the enclosing transaction.
	AllocateBlock(ctx context.Context, name string, n uint64) (uint64, error)
}
