package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/usecase/program"
)

type ProgramHandler struct{ uc *program.Usecase }

func NewProgramHandler(uc *program.Usecase) *ProgramHandler { return &ProgramHandler{uc: uc} }

type openProgramReq struct {
	CreditLine    string `json:"credit_line"    validate:"required,max=128"`
	LiquidityPool string `json:"liquidity_pool" validate:"required,max=128"`
}

func (h *ProgramHandler) OpenProgram(c echo.Context) error {
	var req openProgramReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Open(c.Request().Context(), program.OpenInput{
		CreditLine:    req.CreditLine,
		LiquidityPool: req.LiquidityPool,
	})
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ProgramHandler) CloseProgram(c echo.Context) error {
	id, err := parseUintParam(c, "program_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid program_id"})
	}
	dto, err := h.uc.Close(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ProgramHandler) GetProgram(c echo.Context) error {
	id, err := parseUintParam(c, "program_id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid program_id"})
	}
	dto, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
