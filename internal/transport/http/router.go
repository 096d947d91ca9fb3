package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/lab_inventory/internal/handlers"
	"github.com/Skotchmaster/lab_inventory/internal/identity"
)

type Deps struct {
	JWTSecret        []byte
	OrderHandler     *handlers.OrderHandler
	ProductHandler   *handlers.ProductHandler
	SearchHandler    *handlers.SearchHandler
	AnalyticsHandler *handlers.AnalyticsHandler
	StreamHandler    *handlers.StreamHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1", identity.Middleware(d.JWTSecret))

	orders := v1.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrders)
	orders.GET("/user", d.OrderHandler.UserOrders)

	admin := v1.Group("/admin", identity.AdminOnly())
	admin.GET("/orders", d.OrderHandler.AllOrders)
	admin.POST("/orders/:id/accept", d.OrderHandler.AcceptOrder)
	admin.POST("/orders/:id/cancel", d.OrderHandler.CancelOrder)
	admin.GET("/analytics/sales", d.AnalyticsHandler.Sales)
	admin.GET("/analytics/popular", d.AnalyticsHandler.PopularProducts)
	admin.GET("/inventory/stock", d.AnalyticsHandler.StockInventory)

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/search", d.SearchHandler.Search)
	products.GET("/low-stock", d.ProductHandler.GetLowStockProducts)
	products.POST("/:id/stock", d.ProductHandler.UpdateStock, identity.AdminOnly())

	v1.GET("/events/stream", d.StreamHandler.Stream)
}
