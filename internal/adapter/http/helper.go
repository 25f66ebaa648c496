package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"lending-ledger/internal/domain/operation"
	"lending-ledger/internal/domain/port"
	"lending-ledger/internal/domain/program"
	"lending-ledger/internal/domain/subloan"
	ucloan "lending-ledger/internal/usecase/loan"
	ucoperation "lending-ledger/internal/usecase/operation"
	ucprogram "lending-ledger/internal/usecase/program"
)

// jsonError renders a domain/usecase error with the status its failure
// class maps to: validation 422, not found 404, stale state 409,
// collaborator failure 502.
func jsonError(c echo.Context, err error) error {
	var hookErr *port.HookError
	switch {
	case errors.As(err, &hookErr):
		return c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
	case errors.Is(err, subloan.ErrNotFound),
		errors.Is(err, program.ErrNotFound),
		errors.Is(err, operation.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, program.ErrNotActive),
		errors.Is(err, program.ErrAlreadyClosed),
		errors.Is(err, subloan.ErrRevoked),
		errors.Is(err, subloan.ErrFrozen),
		errors.Is(err, subloan.ErrNotFrozen),
		errors.Is(err, subloan.ErrNotOngoing),
		errors.Is(err, operation.ErrNotVoidable),
		errors.Is(err, operation.ErrNotRecentApplied),
		errors.Is(err, ucloan.ErrAlreadyRevoked):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, subloan.ErrTimestampTooEarly),
		errors.Is(err, subloan.ErrInsufficientOutstanding),
		errors.Is(err, subloan.ErrAmountOverflow),
		errors.Is(err, operation.ErrUnknownKind),
		errors.Is(err, operation.ErrRevocationNotAllowed),
		errors.Is(err, operation.ErrTimestampOutOfRange),
		errors.Is(err, operation.ErrZeroValue),
		errors.Is(err, operation.ErrRateOutOfRange),
		errors.Is(err, operation.ErrDurationOutOfRange),
		errors.Is(err, port.ErrNotConforming),
		errors.Is(err, ucloan.ErrNoSubLoans),
		errors.Is(err, ucloan.ErrTooManySubLoans),
		errors.Is(err, ucloan.ErrDurationsNotAscending),
		errors.Is(err, ucloan.ErrZeroBorrowed),
		errors.Is(err, ucloan.ErrRateOutOfRange),
		errors.Is(err, ucloan.ErrDurationTooLarge),
		errors.Is(err, ucloan.ErrStartTimestampFuture),
		errors.Is(err, ucloan.ErrStartTimestampReserved),
		errors.Is(err, ucloan.ErrMissingBorrower),
		errors.Is(err, ucoperation.ErrEmptyBatch),
		errors.Is(err, ucoperation.ErrAccountRequired),
		errors.Is(err, ucoperation.ErrCounterpartyNeeded),
		errors.Is(err, ucprogram.ErrMissingCollaborator):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func parseUintParam(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

func parseIntQuery(c echo.Context, name string, def int64) (int64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseUintQuery(c echo.Context, name string, def uint64) (uint64, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseUint(raw, 10, 64)
}
