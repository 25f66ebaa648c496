package collaborator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"lending-ledger/internal/domain/port"
)

type creditLineClient struct {
	base   string
	client *http.Client
}

type loanHookPayload struct {
	SubLoanID uint64 `json:"sub_loan_id"`
	Borrower  string `json:"borrower"`
	Amount    uint64 `json:"amount"`
}

func (c *creditLineClient) OnBeforeLoanOpened(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error {
	return postHook(ctx, c.client, c.base, "before-loan-opened", loanHookPayload{subLoanID, borrower, amount})
}

func (c *creditLineClient) OnAfterLoanClosed(ctx context.Context, subLoanID uint64, borrower string, amount uint64) error {
	return postHook(ctx, c.client, c.base, "after-loan-closed", loanHookPayload{subLoanID, borrower, amount})
}

type liquidityPoolClient struct {
	base   string
	client *http.Client
}

type liquidityHookPayload struct {
	Amount uint64 `json:"amount"`
}

func (c *liquidityPoolClient) OnBeforeLiquidityOut(ctx context.Context, amount uint64) error {
	return postHook(ctx, c.client, c.base, "before-liquidity-out", liquidityHookPayload{amount})
}

func (c *liquidityPoolClient) OnBeforeLiquidityIn(ctx context.Context, amount uint64) error {
	return postHook(ctx, c.client, c.base, "before-liquidity-in", liquidityHookPayload{amount})
}

// TokenClient moves funds through the external token service.
type TokenClient struct {
	base   string
	client *http.Client
}

func NewTokenClient(base string, timeout time.Duration) *TokenClient {
	return &TokenClient{base: strings.TrimRight(base, "/"), client: &http.Client{Timeout: timeout}}
}

var _ port.Token = (*TokenClient)(nil)

type transferPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func (c *TokenClient) Transfer(ctx context.Context, from, to string, amount uint64) error {
	if amount == 0 {
		return nil
	}
	return postHook(ctx, c.client, c.base, "transfer", transferPayload{from, to, amount})
}
