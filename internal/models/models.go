package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryGlassware   = "glassware"
	CategoryChemicals   = "chemicals"
	CategoryEquipment   = "equipment"
	CategoryConsumables = "consumables"
	CategorySafety      = "safety"
)

type Product struct {
	ID                int             `gorm:"primaryKey;autoIncrement"            json:"id"`
	Name              string          `gorm:"not null;index"                      json:"name"`
	Description       string          `json:"description"`
	Category          string          `gorm:"not null;default:consumables"        json:"category"`
	Price             decimal.Decimal `gorm:"type:decimal(10,2);not null"         json:"price"`
	StockQuantity     int             `gorm:"not null;default:0"                  json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null;default:10"                 json:"low_stock_threshold"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.LowStockThreshold
}

func (p *Product) IsOutOfStock() bool {
	return p.StockQuantity <= 0
}

// Order keeps a weak link to Product: the product may be removed later,
// historical orders stay and degrade to unlinked.
type Order struct {
	ID           int       `gorm:"primaryKey;autoIncrement"            json:"id"`
	UserID       uint      `gorm:"index;not null"                      json:"user_id"`
	Username     string    `gorm:"index;not null"                      json:"username"`
	ProductID    *int      `gorm:"index"                               json:"item_id"`
	Product      *Product  `gorm:"constraint:OnDelete:SET NULL"        json:"-"`
	ItemName     string    `gorm:"not null"                            json:"item_name"`
	ItemQuantity int       `gorm:"not null;check:item_quantity>0"      json:"item_quantity"`
	Status       string    `gorm:"not null;default:Pending;index"      json:"status"`
	CreatedOn    time.Time `gorm:"autoCreateTime"                      json:"created_on"`
}
