package portmock

import (
	"context"
	"sync"

	"lending-ledger/internal/domain/port"
)

var (
	_ port.CreditLine    = (*CreditLine)(nil)
	_ port.LiquidityPool = (*LiquidityPool)(nil)
	_ port.Token         = (*Token)(nil)
	_ port.Registry      = (*Registry)(nil)
)

// CreditLine records hook invocations; set the Fn fields to inject failures.
type CreditLine struct {
	OnBeforeLoanOpenedFn func(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error
	OnAfterLoanClosedFn  func(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error

	mu     sync.Mutex
	Opened []uint64
	Closed []uint64
}

func (m *CreditLine) OnBeforeLoanOpened(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error {
	if m.OnBeforeLoanOpenedFn != nil {
		return m.OnBeforeLoanOpenedFn(ctx, subLoanID, borrower, amount)
	}
	m.mu.Lock()
	m.Opened = append(m.Opened, subLoanID)
	m.mu.Unlock()
	return nil
}

func (m *CreditLine) OnAfterLoanClosed(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error {
	if m.OnAfterLoanClosedFn != nil {
		return m.OnAfterLoanClosedFn(ctx, subLoanID, borrower, amount)
	}
	m.mu.Lock()
	m.Closed = append(m.Closed, subLoanID)
	m.mu.Unlock()
	return nil
}

type LiquidityPool struct {
	OnBeforeLiquidityOutFn func(ctx context.Context, amount uint64) error
	OnBeforeLiquidityInFn  func(ctx context.Context, amount uint64) error

	mu  sync.Mutex
	Out []uint64
	In  []uint64
}

func (m *LiquidityPool) OnBeforeLiquidityOut(ctx context.Context, amount uint64) error {
	if m.OnBeforeLiquidityOutFn != nil {
		return m.OnBeforeLiquidityOutFn(ctx, amount)
	}
	m.mu.Lock()
	m.Out = append(m.Out, amount)
	m.mu.Unlock()
	return nil
}

func (m *LiquidityPool) OnBeforeLiquidityIn(ctx context.Context, amount uint64) error {
	if m.OnBeforeLiquidityInFn != nil {
		return m.OnBeforeLiquidityInFn(ctx, amount)
	}
	m.mu.Lock()
	m.In = append(m.In, amount)
	m.mu.Unlock()
	return nil
}

// Transfer is one recorded token movement.
type Transfer struct {
	From   string
	To     string
	Amount uint64
}

type Token struct {
	TransferFn func(ctx context.Context, from, to string, amount uint64) error

	mu        sync.Mutex
	Transfers []Transfer
}

func (m *Token) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if m.TransferFn != nil {
		return m.TransferFn(ctx, from, to, amount)
	}
	m.mu.Lock()
	m.Transfers = append(m.Transfers, Transfer{From: from, To: to, Amount: amount})
	m.mu.Unlock()
	return nil
}

// Registry hands out the same mocks for every address. Set the Fn fields to
// simulate a non-conforming collaborator.
type Registry struct {
	CreditLineFn    func(ctx context.Context, address string) (port.CreditLine, error)
	LiquidityPoolFn func(ctx context.Context, address string) (port.LiquidityPool, error)

	CL *CreditLine
	LP *LiquidityPool
}

func NewRegistry() *Registry {
	return &Registry{CL: &CreditLine{}, LP: &LiquidityPool{}}
}

func (m *Registry) CreditLine(ctx context.Context, address string) (port.CreditLine, error) {
	if m.CreditLineFn != nil {
		return m.CreditLineFn(ctx, address)
	}
	return m.CL, nil
}

func (m *Registry) LiquidityPool(ctx context.Context, address string) (port.LiquidityPool, error) {
	if m.LiquidityPoolFn != nil {
		return m.LiquidityPoolFn(ctx, address)
	}
	return m.LP, nil
}
