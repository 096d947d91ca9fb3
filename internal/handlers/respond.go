package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
	"github.com/Skotchmaster/lab_inventory/internal/stock"
)

type errorBody struct {
	Error string `json:"error"`
}

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, errorBody{Error: err.Error()})
}

// mapError turns the service error taxonomy into transport responses.
func mapError(c echo.Context, err error) error {
	var conflict *orderflow.StateConflictError
	var short *stock.InsufficientStockError

	switch {
	case errors.Is(err, orderflow.ErrValidation):
		return errorResponse(c, http.StatusBadRequest, err)
	case errors.Is(err, orderflow.ErrNotFound):
		return errorResponse(c, http.StatusNotFound, err)
	case errors.As(err, &short):
		return c.JSON(http.StatusConflict, errorBody{
			Error: fmt.Sprintf("Insufficient stock. Only %d available.", short.Available),
		})
	case errors.As(err, &conflict):
		return errorResponse(c, http.StatusConflict, err)
	default:
		return c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
