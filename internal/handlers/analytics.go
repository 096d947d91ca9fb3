package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
)

// AnalyticsHandler serves the admin reporting views. Aggregation over
// committed rows only, no concurrency concerns.
type AnalyticsHandler struct {
	DB *gorm.DB
}

var acceptedStatuses = []string{
	string(orderflow.StatusProcessing),
	string(orderflow.StatusProcessed),
}

func (h *AnalyticsHandler) Sales(c echo.Context) error {
	var statusRows []struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	if err := h.DB.Model(&models.Order{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	var unitsAccepted int64
	if err := h.DB.Model(&models.Order{}).
		Where("status IN ?", acceptedStatuses).
		Select("COALESCE(SUM(item_quantity), 0)").
		Scan(&unitsAccepted).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	// revenue covers linked orders only; unlinked ones have no price
	var revenue float64
	if err := h.DB.Table("orders").
		Joins("JOIN products ON products.id = orders.product_id").
		Where("orders.status IN ?", acceptedStatuses).
		Select("COALESCE(SUM(orders.item_quantity * products.price), 0)").
		Scan(&revenue).Error; err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"orders_by_status": statusRows,
		"units_accepted":   unitsAccepted,
		"revenue_accepted": revenue,
	})
}

func (h *AnalyticsHandler) PopularProducts(c echo.Context) error {
	var rows []struct {
		ProductID int    `json:"product_id"`
		Name      string `json:"name"`
		Units     int64  `json:"units"`
	}
	err := h.DB.Table("orders").
		Joins("JOIN products ON products.id = orders.product_id").
		Where("orders.status IN ?", acceptedStatuses).
		Select("products.id as product_id, products.name as name, SUM(orders.item_quantity) as units").
		Group("products.id, products.name").
		Order("units DESC").
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"popular_products": rows})
}

func (h *AnalyticsHandler) StockInventory(c echo.Context) error {
	var rows []struct {
		Category   string `json:"category"`
		Products   int64  `json:"products"`
		TotalStock int64  `json:"total_stock"`
		LowStock   int64  `json:"low_stock"`
	}
	err := h.DB.Model(&models.Product{}).
		Select("category, COUNT(*) as products, COALESCE(SUM(stock_quantity), 0) as total_stock, " +
			"SUM(CASE WHEN stock_quantity <= low_stock_threshold THEN 1 ELSE 0 END) as low_stock").
		Group("category").
		Order("category").
		Scan(&rows).Error
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"inventory": rows})
}
