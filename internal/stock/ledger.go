package stock

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// InsufficientStockError reports a reservation that could not be satisfied.
// The counter is left untouched.
type InsufficientStockError struct {
	ProductID int
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %d: requested %d, only %d available",
		e.ProductID, e.Requested, e.Available)
}

// Ledger owns the stock counters. Every mutation goes through here: the
// check-and-decrement of Reserve is atomic with respect to all other calls
// on the same product, serialized by a per-product lock around a database
// transaction.
type Ledger struct {
	db *gorm.DB

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, locks: make(map[int]*sync.Mutex)}
}

func (l *Ledger) lockFor(productID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[productID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[productID] = m
	}
	return m
}

// Reserve takes qty units from the product's counter and returns the
// remaining stock. It fails with *InsufficientStockError when fewer than
// qty units are available, leaving the counter unchanged.
func (l *Ledger) Reserve(ctx context.Context, productID, qty int) (int, error) {
	if qty <= 0 {
		return 0, fmt.Errorf("%w: must reserve at least one unit", ErrInvalidQuantity)
	}

	mu := l.lockFor(productID)
	mu.Lock()
	defer mu.Unlock()

	var remaining int
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p models.Product
		if err := tx.First(&p, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProductNotFound
			}
			return err
		}
		if p.StockQuantity < qty {
			return &InsufficientStockError{ProductID: productID, Requested: qty, Available: p.StockQuantity}
		}
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", qty)).Error; err != nil {
			return err
		}
		remaining = p.StockQuantity - qty
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}

// Release returns qty units to the counter. Used to compensate a
// reservation whose surrounding transition failed to commit.
func (l *Ledger) Release(ctx context.Context, productID, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("%w: must release at least one unit", ErrInvalidQuantity)
	}

	mu := l.lockFor(productID)
	mu.Lock()
	defer mu.Unlock()

	res := l.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// SetAbsolute overwrites the counter unconditionally. It carries no
// reservation semantics and may race with a concurrent Reserve; the
// per-product lock only keeps the write itself from interleaving.
func (l *Ledger) SetAbsolute(ctx context.Context, productID, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock cannot be negative", ErrInvalidQuantity)
	}

	mu := l.lockFor(productID)
	mu.Lock()
	defer mu.Unlock()

	res := l.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", productID).
		Update("stock_quantity", qty)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}
