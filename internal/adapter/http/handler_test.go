package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/domain/account"
	"lending-ledger/internal/domain/operation"
	domainProgram "lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/subloan"
	"lending-ledger/internal/domain/uow"
	"lending-ledger/internal/testutil/countermock"
	"lending-ledger/internal/testutil/eventmock"
	"lending-ledger/internal/testutil/operationmock"
	"lending-ledger/internal/testutil/portmock"
	"lending-ledger/internal/testutil/programmock"
	"lending-ledger/internal/testutil/subloanmock"
	"lending-ledger/internal/testutil/uowmock"
	ucloan "lending-ledger/internal/usecase/loan"
	ucoperation "lending-ledger/internal/usecase/operation"
	ucprogram "lending-ledger/internal/usecase/program"
)

const testNow = int64(1_700_000_000)

// accountStore is a tiny in-memory intern table.
type accountStore struct {
	mu   sync.Mutex
	byID map[uint64]string
}

func (s *accountStore) Intern(ctx context.Context, address string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, addr := range s.byID {
		if addr == address {
			return id, nil
		}
	}
	id := uint64(len(s.byID) + 1)
	s.byID[id] = address
	return id, nil
}

func (s *accountStore) GetByID(ctx context.Context, id uint64) (*account.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.byID[id]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &account.Account{ID: id, Address: addr}, nil
}

type server struct {
	e        *echo.Echo
	subloans map[uint64]*subloan.SubLoan
	ops      map[uint64][]*operation.Operation
	token    *portmock.Token
}

func newServer(t *testing.T) *server {
	t.Helper()
	s := &server{
		subloans: map[uint64]*subloan.SubLoan{},
		ops:      map[uint64][]*operation.Operation{},
		token:    &portmock.Token{},
	}

	programs := &programmock.Repo{
		CreateFn: func(ctx context.Context, p *domainProgram.LendingProgram) error { return nil },
		GetByIDFn: func(ctx context.Context, id uint64) (*domainProgram.LendingProgram, error) {
			if id != 1 {
				return nil, domainProgram.ErrNotFound
			}
			return &domainProgram.LendingProgram{
				ID:            1,
				Status:        domainProgram.StatusActive,
				CreditLine:    "http://credit-line",
				LiquidityPool: "http://pool",
			}, nil
		},
	}
	subloans := &subloanmock.Repo{
		CreateBatchFn: func(ctx context.Context, sls []*subloan.SubLoan) error {
			for _, sl := range sls {
				s.subloans[sl.ID] = sl
			}
			return nil
		},
		GetByIDFn: func(ctx context.Context, id uint64) (*subloan.SubLoan, error) {
			sl, ok := s.subloans[id]
			if !ok {
				return nil, subloan.ErrNotFound
			}
			return sl, nil
		},
		GetByIDForUpdateFn: func(ctx context.Context, id uint64) (*subloan.SubLoan, error) {
			sl, ok := s.subloans[id]
			if !ok {
				return nil, subloan.ErrNotFound
			}
			return sl, nil
		},
		GetLoanMembersForUpdateFn: func(ctx context.Context, firstID, count uint64) ([]*subloan.SubLoan, error) {
			var out []*subloan.SubLoan
			for id := firstID; id < firstID+count; id++ {
				sl, ok := s.subloans[id]
				if !ok {
					return nil, subloan.ErrNotFound
				}
				out = append(out, sl)
			}
			return out, nil
		},
		SaveFn: func(ctx context.Context, sl *subloan.SubLoan) error {
			s.subloans[sl.ID] = sl
			return nil
		},
	}
	operations := &operationmock.Repo{
		CreateFn: func(ctx context.Context, op *operation.Operation) error {
			s.ops[op.SubLoanID] = append(s.ops[op.SubLoanID], op)
			return nil
		},
		SaveFn: func(ctx context.Context, op *operation.Operation) error { return nil },
		GetBySeqFn: func(ctx context.Context, subLoanID, seq uint64) (*operation.Operation, error) {
			for _, op := range s.ops[subLoanID] {
				if op.Seq == seq {
					return op, nil
				}
			}
			return nil, operation.ErrNotFound
		},
		ListBySubLoanFn: func(ctx context.Context, subLoanID uint64) ([]*operation.Operation, error) {
			return s.ops[subLoanID], nil
		},
		ListPendingFn: func(ctx context.Context, subLoanID uint64) ([]*operation.Operation, error) {
			var out []*operation.Operation
			for _, op := range s.ops[subLoanID] {
				if op.Status == operation.StatusPending {
					out = append(out, op)
				}
			}
			return out, nil
		},
		MarkPendingSkippedFn: func(ctx context.Context, subLoanID uint64) error {
			for _, op := range s.ops[subLoanID] {
				if op.Status == operation.StatusPending {
					op.Status = operation.StatusSkipped
				}
			}
			return nil
		},
	}

	repos := uow.Repos{
		Programs:   programs,
		SubLoans:   subloans,
		Operations: operations,
		Accounts:   &accountStore{byID: map[uint64]string{}},
		Events:     &eventmock.Repo{},
		Counters:   &countermock.Repo{},
	}
	tx := uowmock.Passthrough(repos)
	registry := portmock.NewRegistry()
	terms := subloan.Terms{AccuracyFactor: 1}
	now := func() time.Time { return time.Unix(testNow, 0).UTC() }

	programUC := ucprogram.NewUsecase(repos, tx, registry)
	loanUC := ucloan.NewUsecase(ucloan.Deps{
		Repos:         repos,
		UoW:           tx,
		Registry:      registry,
		Token:         s.token,
		Terms:         terms,
		MaxSubLoans:   4,
		AddonTreasury: "treasury",
		Now:           now,
	})
	operationUC := ucoperation.NewUsecase(ucoperation.Deps{
		Repos: repos,
		UoW:   tx,
		Token: s.token,
		Terms: terms,
		Now:   now,
	})

	e := echo.New()
	e.Validator = NewValidator()
	h := NewHandler()
	ph := NewProgramHandler(programUC)
	lh := NewLoanHandler(loanUC)
	oh := NewOperationHandler(operationUC)

	e.GET("/health", h.Health)
	e.POST("/v1/programs", ph.OpenProgram)
	e.POST("/v1/programs/:program_id/close", ph.CloseProgram)
	e.GET("/v1/programs/:program_id", ph.GetProgram)
	e.POST("/v1/loans", lh.TakeLoan)
	e.POST("/v1/sub-loans/:sub_loan_id/revoke", lh.RevokeLoan)
	e.POST("/v1/operations", oh.SubmitBatch)
	e.POST("/v1/operations/void", oh.VoidBatch)
	e.GET("/v1/sub-loans/:sub_loan_id/state", lh.GetState)
	e.GET("/v1/sub-loans/:sub_loan_id/preview", lh.GetSubLoanPreview)
	e.GET("/v1/sub-loans/:sub_loan_id/operations", oh.ListOperations)
	e.GET("/v1/sub-loans/:sub_loan_id/operations/:seq", oh.GetOperation)

	s.e = e
	return s
}

// seedSubLoan installs one ongoing sub-loan outside the counter's id range.
func (s *server) seedSubLoan(id uint64) {
	s.subloans[id] = &subloan.SubLoan{
		ID: id,
		Inception: subloan.Inception{
			BorrowedAmount: 1_000,
			StartTimestamp: testNow,
			ProgramID:      1,
			Borrower:       "borrower-1",
			FirstSubLoanID: id,
			IndexInLoan:    0,
			SiblingCount:   1,
		},
		State: subloan.State{
			Status:           subloan.StatusOngoing,
			Duration:         30,
			TrackedTimestamp: testNow,
			TrackedPrincipal: 1_000,
		},
	}
}

func (s *server) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var out ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, rec.Body.String())
	}
	return out
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestOpenProgram_Created(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/programs",
		`{"credit_line":"http://cl","liquidity_pool":"http://lp"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var dto ucprogram.ProgramDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.ID != 1 || dto.Status != string(domainProgram.StatusActive) {
		t.Fatalf("dto: %+v", dto)
	}
}

func TestOpenProgram_MalformedBody(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/programs", `{"credit_line":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestOpenProgram_MissingField(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/programs", `{"liquidity_pool":"http://lp"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if !containsFieldMsg(body.Details, "CreditLine", "required") {
		t.Fatalf("details: %+v", body.Details)
	}
}

func TestGetProgram_NotFound(t *testing.T) {
	s := newServer(t)
	if rec := s.do(http.MethodGet, "/v1/programs/2", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/v1/programs/abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad param status %d", rec.Code)
	}
}

func TestTakeLoan_Created(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/loans", `{
		"borrower": "borrower-1",
		"program_id": 1,
		"sub_loans": [
			{"borrowed_amount": 1000, "duration": 30},
			{"borrowed_amount": 2000, "addon_amount": 100, "duration": 60}
		]
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res ucloan.TakeLoanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FirstSubLoanID != 1 || len(res.SubLoanIDs) != 2 {
		t.Fatalf("result: %+v", res)
	}
	if res.TotalBorrowed != 3000 || res.TotalAddon != 100 {
		t.Fatalf("totals: %+v", res)
	}
	if len(s.token.Transfers) == 0 {
		t.Fatalf("no transfers recorded")
	}
}

func TestTakeLoan_RateOutOfRange(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/loans", `{
		"borrower": "borrower-1",
		"program_id": 1,
		"sub_loans": [{"borrowed_amount": 1000, "remuneratory_rate": 1000000001, "duration": 30}]
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if !containsFieldMsg(body.Details, "RemuneratoryRate", "rate factor") {
		t.Fatalf("details: %+v", body.Details)
	}
}

func TestTakeLoan_ProgramNotFound(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/loans", `{
		"borrower": "borrower-1",
		"program_id": 2,
		"sub_loans": [{"borrowed_amount": 1000, "duration": 30}]
	}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitBatch_RepaymentApplied(t *testing.T) {
	s := newServer(t)
	s.seedSubLoan(10)

	rec := s.do(http.MethodPost, "/v1/operations", `{
		"requests": [{"sub_loan_id": 10, "kind": "repayment", "value": 400, "account": "payer-1"}]
	}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res ucoperation.SubmitBatchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Operations) != 1 || res.Operations[0].Status != string(operation.StatusApplied) {
		t.Fatalf("result: %+v", res)
	}
	if s.subloans[10].TrackedPrincipal != 600 {
		t.Fatalf("principal: %d", s.subloans[10].TrackedPrincipal)
	}
	want := portmock.Transfer{From: "payer-1", To: "http://pool", Amount: 400}
	if len(s.token.Transfers) != 1 || s.token.Transfers[0] != want {
		t.Fatalf("transfers: %+v", s.token.Transfers)
	}
}

func TestSubmitBatch_UnknownKind(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/operations", `{
		"requests": [{"sub_loan_id": 10, "kind": "donation", "value": 1}]
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if !containsFieldMsg(body.Details, "Kind", "operation kind") {
		t.Fatalf("details: %+v", body.Details)
	}
}

func TestVoidBatch_MissingSeq(t *testing.T) {
	s := newServer(t)
	rec := s.do(http.MethodPost, "/v1/operations/void", `{
		"requests": [{"sub_loan_id": 10}]
	}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeError(t, rec)
	if !containsFieldMsg(body.Details, "Seq", "required") {
		t.Fatalf("details: %+v", body.Details)
	}
}

func TestGetState(t *testing.T) {
	s := newServer(t)
	s.seedSubLoan(10)

	rec := s.do(http.MethodGet, "/v1/sub-loans/10/state", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var dto ucloan.StateDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dto.SubLoanID != 10 || dto.TrackedPrincipal != 1_000 {
		t.Fatalf("dto: %+v", dto)
	}

	if rec := s.do(http.MethodGet, "/v1/sub-loans/11/state", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("missing status %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/v1/sub-loans/abc/state", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad param status %d", rec.Code)
	}
}

func TestGetSubLoanPreview_BadQuery(t *testing.T) {
	s := newServer(t)
	s.seedSubLoan(10)

	if rec := s.do(http.MethodGet, "/v1/sub-loans/10/preview?as_of=abc", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d", rec.Code)
	}
	if rec := s.do(http.MethodGet, "/v1/sub-loans/10/preview", ""); rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRevokeLoan_OK(t *testing.T) {
	s := newServer(t)
	s.seedSubLoan(10)

	rec := s.do(http.MethodPost, "/v1/sub-loans/10/revoke", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var res ucloan.RevokeLoanResult
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.FirstSubLoanID != 10 || res.TotalBorrowed != 1_000 {
		t.Fatalf("result: %+v", res)
	}
	if s.subloans[10].Status != subloan.StatusRevoked {
		t.Fatalf("status: %s", s.subloans[10].Status)
	}
}

func TestGetOperation_NotFound(t *testing.T) {
	s := newServer(t)
	s.seedSubLoan(10)

	if rec := s.do(http.MethodGet, "/v1/sub-loans/10/operations/3", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("status %d", rec.Code)
	}
}
