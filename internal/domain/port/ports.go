// Package port holds the interfaces behind which the external collaborators
// sit. They are invoked synchronously inside the enclosing unit of work; any
// error aborts the whole transaction, carrying the collaborator's own detail
// so the caller can diagnose the external failure.
package port

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotConforming = errors.New("collaborator does not expose the expected marker")

// HookError wraps a collaborator-reported failure.
type HookError struct {
	Collaborator string // address / base URL
	Hook         string
	Detail       string
}

func (e *HookError) Error() string {
	return fmt.Sprintf("collaborator %s: hook %s failed: %s", e.Collaborator, e.Hook, e.Detail)
}

// CreditLine is notified around loan lifecycle transitions.
type CreditLine interface {
	OnBeforeLoanOpened(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error
	OnAfterLoanClosed(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error
}

// LiquidityPool is notified before liquidity leaves or re-enters it.
type LiquidityPool interface {
	OnBeforeLiquidityOut(ctx context.Context, amount uint64) error
	OnBeforeLiquidityIn(ctx context.Context, amount uint64) error
}

// Token moves funds between external accounts.
type Token interface {
	Transfer(ctx context.Context, from, to string, amount uint64) error
}

// Registry resolves collaborator addresses to clients, verifying conformance
// (the marker check of program opening). A non-conforming or unreachable
// address yields ErrNotConforming.
type Registry interface {
	CreditLine(ctx context.Context, address string) (CreditLine, error)
	LiquidityPool(ctx context.Context, address string) (LiquidityPool, error)
}
