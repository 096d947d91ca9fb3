package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/logging"
	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
)

type ProductHandler struct {
	DB  *gorm.DB
	Svc *orderflow.Service
}

type lowStockProduct struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	Category          string `json:"category"`
	StockQuantity     int    `json:"stock_quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	IsOutOfStock      bool   `json:"is_out_of_stock"`
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("category, name").Find(&products).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) GetLowStockProducts(c echo.Context) error {
	ctx := c.Request().Context()

	products, err := h.Svc.ListLowStock(ctx)
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	lowStock := make([]lowStockProduct, 0, len(products))
	for i := range products {
		p := &products[i]
		lowStock = append(lowStock, lowStockProduct{
			ID:                p.ID,
			Name:              p.Name,
			Category:          p.Category,
			StockQuantity:     p.StockQuantity,
			LowStockThreshold: p.LowStockThreshold,
			IsOutOfStock:      p.IsOutOfStock(),
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"low_stock_products": lowStock})
}

func (h *ProductHandler) UpdateStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.update_stock")

	productID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}

	var req struct {
		StockQuantity *int `json:"stock_quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return errorResponse(c, http.StatusBadRequest, err)
	}
	if req.StockQuantity == nil {
		return c.JSON(http.StatusBadRequest, errorBody{Error: "stock_quantity is required"})
	}

	if err := h.Svc.UpdateStock(ctx, productID, *req.StockQuantity); err != nil {
		l.Warn("update_stock_error", "product_id", productID, "error", err)
		return mapError(c, err)
	}

	l.Info("update_stock_success", "product_id", productID, "stock_quantity", *req.StockQuantity)
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Stock updated to %d", *req.StockQuantity),
	})
}
