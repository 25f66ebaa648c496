package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/usecase/operation"
)

type OperationHandler struct{ uc *operation.Usecase }

func NewOperationHandler(uc *operation.Usecase) *OperationHandler {
	return &OperationHandler{uc: uc}
}

type operationItemReq struct {
	SubLoanID uint64 `json:"sub_loan_id" validate:"required"`
	Kind      string `json:"kind"        validate:"required,opkind"`
	Timestamp int64  `json:"timestamp"   validate:"gte=0"`
	Value     uint64 `json:"value"`
	Account   string `json:"account"     validate:"max=128"`
}

type submitBatchReq struct {
	Requests []operationItemReq `json:"requests" validate:"required,min=1,dive"`
}

func (h *OperationHandler) SubmitBatch(c echo.Context) error {
	var req submitBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := operation.SubmitBatchInput{}
	for _, item := range req.Requests {
		in.Requests = append(in.Requests, operation.OperationRequest(item))
	}
	res, err := h.uc.SubmitBatch(c.Request().Context(), in)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type voidItemReq struct {
	SubLoanID    uint64 `json:"sub_loan_id"  validate:"required"`
	Seq          uint64 `json:"seq"          validate:"required"`
	Counterparty string `json:"counterparty" validate:"max=128"`
}

type voidBatchReq struct {
	Requests []voidItemReq `json:"requests" validate:"required,min=1,dive"`
}

func (h *OperationHandler) VoidBatch(c echo.Context) error {
	var req voidBatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	in := operation.VoidBatchInput{}
	for _, item := range req.Requests {
		in.Requests = append(in.Requests, operation.VoidRequest(item))
	}
	res, err := h.uc.VoidBatch(c.Request().Context(), in)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *OperationHandler) ListOperations(c echo.Context) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	seqs, err := h.uc.ListSeqs(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"sub_loan_id": id, "operation_seqs": seqs})
}

func (h *OperationHandler) GetOperation(c echo.Context) error {
	id, err := parseUintParam(c, "sub_loan_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid sub_loan_id"})
	}
	seq, err := parseUintParam(c, "seq")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid seq"})
	}
	dto, err := h.uc.Get(c.Request().Context(), id, seq)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
