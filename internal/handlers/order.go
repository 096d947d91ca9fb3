package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_inventory/internal/identity"
	"github.com/Skotchmaster/lab_inventory/internal/logging"
	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
	"github.com/Skotchmaster/lab_inventory/internal/util"
)

type OrderHandler struct {
	Svc *orderflow.Service
}

// CreateOrders accepts either a single order object or an array of them,
// matching what the frontend submits at checkout.
func (h *OrderHandler) CreateOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create")

	id, ok := identity.FromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var inputs []orderflow.CreateOrderInput
	if err := json.Unmarshal(body, &inputs); err != nil {
		var one orderflow.CreateOrderInput
		if err := json.Unmarshal(body, &one); err != nil {
			l.Warn("create_order_error", "status", 400, "reason", "invalid body", "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
		}
		inputs = []orderflow.CreateOrderInput{one}
	}

	orders, err := h.Svc.CreateMany(ctx, inputs, orderflow.Identity{UserID: id.UserID, Username: id.Username})
	if err != nil {
		l.Warn("create_order_error", "error", err)
		return mapError(c, err)
	}

	l.Info("create_order_success", "count", len(orders))
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Order Created",
		"orders":  orders,
	})
}

func (h *OrderHandler) UserOrders(c echo.Context) error {
	ctx := c.Request().Context()

	id, ok := identity.FromEcho(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing identity")
	}

	orders, err := h.Svc.UserOrders(ctx, id.Username)
	if err != nil {
		return mapError(c, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": orders})
}

func (h *OrderHandler) AllOrders(c echo.Context) error {
	ctx := c.Request().Context()

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.AllOrders(ctx, offset, limit)
	if err != nil {
		return mapError(c, err)
	}
	if orders == nil {
		orders = []models.Order{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders": orders,
		"meta": echo.Map{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) AcceptOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.accept")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	order, err := h.Svc.Accept(ctx, orderID)
	if err != nil {
		l.Warn("accept_order_error", "order_id", orderID, "error", err)
		return mapError(c, err)
	}

	l.Info("accept_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order accepted and added to processing queue",
		"order":   order,
	})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	order, err := h.Svc.Cancel(ctx, orderID)
	if err != nil {
		l.Warn("cancel_order_error", "order_id", orderID, "error", err)
		return mapError(c, err)
	}

	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Order cancelled successfully",
		"order":   order,
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
