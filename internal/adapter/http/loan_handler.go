package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/usecase/loan"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type subLoanReq struct {
	BorrowedAmount    uint64 `json:"borrowed_amount"     validate:"required"`
	AddonAmount       uint64 `json:"addon_amount"`
	RemuneratoryRate  uint64 `json:"remuneratory_rate"   validate:"rate"`
	MoratoryRate      uint64 `json:"moratory_rate"       validate:"rate"`
	LateFeeRate       uint64 `json:"late_fee_rate"       validate:"rate"`
	GraceDiscountRate uint64 `json:"grace_discount_rate" validate:"rate"`
	Duration          uint64 `json:"duration"            validate:"lte=65535"`
}

type takeLoanReq struct {
	Borrower       string       `json:"borrower"        validate:"required,max=128"`
	ProgramID      uint64       `json:"program_id"      validate:"required"`
	StartTimestamp int64        `json:"start_timestamp"`
	SubLoans       []subLoanReq `json:"sub_loans"       validate:"required,min=1,dive"`
}

func (h *LoanHandler) TakeLoan(c echo.Context) error {
	var req takeLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := loan.TakeLoanInput{
		Borrower:       req.Borrower,
		ProgramID:      req.ProgramID,
		StartTimestamp: req.StartTimestamp,
	}
	for _, sl := range req.SubLoans {
		in.SubLoans = append(in.SubLoans, loan.SubLoanRequest(sl))
	}
	res, err := h.uc.TakeLoan(c.Request().Context(), in)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *LoanHandler) RevokeLoan(c echo.Context) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	res, err := h.uc.RevokeLoan(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) GetInception(c echo.Context) error {
	return h.read(c, func(id uint64) (any, error) {
		return h.uc.GetInception(c.Request().Context(), id)
	})
}

func (h *LoanHandler) GetMetadata(c echo.Context) error {
	return h.read(c, func(id uint64) (any, error) {
		return h.uc.GetMetadata(c.Request().Context(), id)
	})
}

func (h *LoanHandler) GetState(c echo.Context) error {
	return h.read(c, func(id uint64) (any, error) {
		return h.uc.GetState(c.Request().Context(), id)
	})
}

func (h *LoanHandler) read(c echo.Context, fn func(id uint64) (any, error)) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	dto, err := fn(id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// GetSubLoanPreview projects one sub-loan. Query params: as_of unix seconds
// (0 or absent = stored state), flags bitmask (0x1 = rounded components).
func (h *LoanHandler) GetSubLoanPreview(c echo.Context) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	asOf, err := parseIntQuery(c, "as_of", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid as_of"})
	}
	flags, err := parseUintQuery(c, "flags", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid flags"})
	}
	dto, err := h.uc.SubLoanPreview(c.Request().Context(), id, asOf, uint32(flags))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoanPreview(c echo.Context) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	asOf, err := parseIntQuery(c, "as_of", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid as_of"})
	}
	flags, err := parseUintQuery(c, "flags", 0)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid flags"})
	}
	dto, err := h.uc.LoanPreview(c.Request().Context(), id, asOf, uint32(flags))
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
