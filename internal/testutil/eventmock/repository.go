package eventmock

import (
	"context"
	"sync"

	domain "lending-ledger/internal/domain/event"
)

// Repo records appended events in memory. Set AppendFn to override.
type Repo struct {
	AppendFn        func(ctx context.Context, e *domain.LedgerEvent) error
	ListBySubLoanFn func(ctx context.Context, subLoanID uint64) ([]*domain.LedgerEvent, error)

	mu       sync.Mutex
	Appended []*domain.LedgerEvent
}

func (m *Repo) Append(ctx context.Context, e *domain.LedgerEvent) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	m.mu.Lock()
	m.Appended = append(m.Appended, e)
	m.mu.Unlock()
	return nil
}

func (m *Repo) ListBySubLoan(ctx context.Context, subLoanID uint64) ([]*domain.LedgerEvent, error) {
	if m.ListBySubLoanFn != nil {
		return m.ListBySubLoanFn(ctx, subLoanID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*domain.LedgerEvent
	for _, e := range m.Appended {
		if e.SubLoanID == subLoanID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Types lists the appended event types in order, handy for assertions.
func (m *Repo) Types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Appended))
	for _, e := range m.Appended {
		out = append(out, e.Type)
	}
	return out
}
