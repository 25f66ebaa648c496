// Package collaborator implements the credit line, liquidity pool and token
// ports as HTTP clients. A collaborator address is a base URL exposing a
// marker endpoint plus POST hook endpoints; any non-2xx hook response aborts
// the enclosing ledger transaction with the collaborator's reported detail.
package collaborator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"lending-ledger/internal/domain/port"
)

const (
	markerPath = "/.well-known/lending-collaborator"

	KindCreditLine    = "credit-line"
	KindLiquidityPool = "liquidity-pool"
)

type Registry struct {
	client *http.Client
}

func NewRegistry(timeout time.Duration) *Registry {
	return &Registry{client: &http.Client{Timeout: timeout}}
}

var _ port.Registry = (*Registry)(nil)

func (r *Registry) CreditLine(ctx context.Context, address string) (port.CreditLine, error) {
	if err := r.checkMarker(ctx, address, KindCreditLine); err != nil {
		return nil, err
	}
	return &creditLineClient{base: strings.TrimRight(address, "/"), client: r.client}, nil
}

func (r *Registry) LiquidityPool(ctx context.Context, address string) (port.LiquidityPool, error) {
	if err := r.checkMarker(ctx, address, KindLiquidityPool); err != nil {
		return nil, err
	}
	return &liquidityPoolClient{base: strings.TrimRight(address, "/"), client: r.client}, nil
}

func (r *Registry) checkMarker(ctx context.Context, address, wantKind string) error {
	if !strings.HasPrefix(address, "http://") && !strings.HasPrefix(address, "https://") {
		return fmt.Errorf("%w: %s is not a URL", port.ErrNotConforming, address)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(address, "/")+markerPath, nil)
	if err != nil {
		return err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s unreachable: %v", port.ErrNotConforming, address, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", port.ErrNotConforming, address, resp.StatusCode)
	}
	var marker struct {
		Kind string `json:"kind"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&marker); err != nil || marker.Kind != wantKind {
		return fmt.Errorf("%w: %s is not a %s", port.ErrNotConforming, address, wantKind)
	}
	return nil
}

// postHook POSTs a JSON payload and maps failures to port.HookError.
func postHook(ctx context.Context, client *http.Client, base, hook string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/hooks/"+hook, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return &port.HookError{Collaborator: base, Hook: hook, Detail: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &port.HookError{Collaborator: base, Hook: hook, Detail: strings.TrimSpace(string(detail))}
	}
	return nil
}
