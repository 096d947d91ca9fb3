package stock

import (
	"context"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	// a second pooled connection would see its own empty :memory: db
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
	}
	if err := db.AutoMigrate(&models.Product{}, &models.Order{}); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func createProduct(t *testing.T, db *gorm.DB, name string, stock, threshold int) *models.Product {
	p := &models.Product{
		Name:              name,
		Category:          models.CategoryGlassware,
		Price:             decimal.NewFromFloat(12.99),
		StockQuantity:     stock,
		LowStockThreshold: threshold,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestReserve(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)
	p := createProduct(t, db, "Beaker 250ml", 10, 3)

	remaining, err := ledger.Reserve(context.Background(), p.ID, 4)
	require.NoError(t, err)
	require.Equal(t, 6, remaining)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 6, got.StockQuantity)
}

func TestReserveInsufficient(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)
	p := createProduct(t, db, "Beaker 250ml", 3, 1)

	_, err := ledger.Reserve(context.Background(), p.ID, 5)

	var short *InsufficientStockError
	require.ErrorAs(t, err, &short)
	require.Equal(t, 3, short.Available)
	require.Equal(t, 5, short.Requested)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 3, got.StockQuantity, "failed reservation must not mutate the counter")
}

func TestReserveUnknownProduct(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)

	_, err := ledger.Reserve(context.Background(), 999, 1)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestReserveInvalidQuantity(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)
	p := createProduct(t, db, "Beaker 250ml", 3, 1)

	_, err := ledger.Reserve(context.Background(), p.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = ledger.Reserve(context.Background(), p.ID, -2)
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestReserveConcurrentNoOversell(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)

	const stockUnits = 5
	const callers = 20
	p := createProduct(t, db, "Test Tube 15ml", stockUnits, 0)

	var wg sync.WaitGroup
	results := make(chan error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := ledger.Reserve(context.Background(), p.ID, 1)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes, shortages := 0, 0
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var short *InsufficientStockError
		require.ErrorAs(t, err, &short)
		shortages++
	}

	require.Equal(t, stockUnits, successes)
	require.Equal(t, callers-stockUnits, shortages)

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 0, got.StockQuantity)
}

func TestRelease(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)
	p := createProduct(t, db, "Beaker 250ml", 2, 1)

	require.NoError(t, ledger.Release(context.Background(), p.ID, 3))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 5, got.StockQuantity)

	require.ErrorIs(t, ledger.Release(context.Background(), 999, 1), ErrProductNotFound)
}

func TestSetAbsolute(t *testing.T) {
	db := initTestDB(t)
	ledger := NewLedger(db)
	p := createProduct(t, db, "Beaker 250ml", 42, 10)

	require.NoError(t, ledger.SetAbsolute(context.Background(), p.ID, 7))
	require.NoError(t, ledger.SetAbsolute(context.Background(), p.ID, 7))

	var got models.Product
	require.NoError(t, db.First(&got, p.ID).Error)
	require.Equal(t, 7, got.StockQuantity)

	err := ledger.SetAbsolute(context.Background(), p.ID, -1)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	require.ErrorIs(t, ledger.SetAbsolute(context.Background(), 999, 1), ErrProductNotFound)
}
