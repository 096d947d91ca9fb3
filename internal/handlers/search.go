package handlers

import (
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/logging"
	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/service/search"
)

const searchLimit = 10

type SearchHandler struct {
	DB    *gorm.DB
	ES    *elasticsearch.Client // optional; database search when nil
	Index string
}

type searchMatch struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
}

// Search answers a case-insensitive name-prefix lookup over in-stock
// products, capped at 10 results.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	prefix := strings.TrimSpace(c.QueryParam("search"))
	if prefix == "" {
		return c.JSON(http.StatusOK, echo.Map{"message": []searchMatch{}})
	}

	var (
		products []models.Product
		err      error
	)
	if h.ES != nil {
		products, err = search.Products(ctx, h.ES, h.Index, prefix, searchLimit)
		if err != nil {
			l.Warn("search: elasticsearch failed, falling back to database", "error", err)
			products, err = h.searchDB(prefix)
		}
	} else {
		products, err = h.searchDB(prefix)
	}
	if err != nil {
		return errorResponse(c, http.StatusInternalServerError, err)
	}

	matches := make([]searchMatch, 0, len(products))
	for i := range products {
		p := &products[i]
		matches = append(matches, searchMatch{
			ID:       p.ID,
			Name:     p.Name,
			Price:    p.Price.InexactFloat64(),
			Stock:    p.StockQuantity,
			Category: p.Category,
		})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": matches})
}

func (h *SearchHandler) searchDB(prefix string) ([]models.Product, error) {
	var products []models.Product
	err := h.DB.
		Where("LOWER(name) LIKE LOWER(?)", prefix+"%").
		Where("stock_quantity > 0").
		Order("name").
		Limit(searchLimit).
		Find(&products).Error
	return products, err
}
