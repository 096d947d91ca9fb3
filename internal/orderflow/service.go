package orderflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"github.com/Skotchmaster/lab_inventory/internal/models"
	"github.com/Skotchmaster/lab_inventory/internal/notify"
	"github.com/Skotchmaster/lab_inventory/internal/stock"
)

type Identity struct {
	UserID   uint
	Username string
}

type CreateOrderInput struct {
	ItemID       *int   `json:"item_id"`
	ItemName     string `json:"item_name"`
	ItemQuantity int    `json:"item_quantity"`
}

// Service is the only write surface for orders. It sequences the status
// transition, the stock reservation and the fulfillment enqueue as one
// unit per call, then publishes notifications strictly after the commit.
type Service struct {
	db     *gorm.DB
	ledger *stock.Ledger
	queue  Queue
	bus    *notify.Bus
	log    *slog.Logger

	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

// Queue matches fulfillment.Queue; redeclared here so the core does not
// depend on the queue implementations.
type Queue interface {
	Enqueue(ctx context.Context, orderID int) error
}

func NewService(db *gorm.DB, ledger *stock.Ledger, queue Queue, bus *notify.Bus, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		db:     db,
		ledger: ledger,
		queue:  queue,
		bus:    bus,
		log:    log,
		locks:  make(map[int]*sync.Mutex),
	}
}

// lockFor serializes transitions per order. An operation holds at most
// this one order lock plus, inside the ledger, one product lock.
func (s *Service) lockFor(orderID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.locks[orderID]
	if !ok {
		m = &sync.Mutex{}
		s.locks[orderID] = m
	}
	return m
}

// Create validates the input, resolves the product link and persists a
// Pending order. Link resolution tries the exact id first, then a
// case-insensitive name match; creation succeeds unlinked when neither
// resolves.
func (s *Service) Create(ctx context.Context, in CreateOrderInput, id Identity) (*models.Order, error) {
	if id.Username == "" {
		return nil, fmt.Errorf("%w: caller identity missing", ErrValidation)
	}
	if in.ItemName == "" {
		return nil, fmt.Errorf("%w: item_name required", ErrValidation)
	}
	if in.ItemQuantity <= 0 {
		return nil, fmt.Errorf("%w: item_quantity must be > 0", ErrValidation)
	}

	order := &models.Order{
		UserID:       id.UserID,
		Username:     id.Username,
		ProductID:    s.resolveProduct(ctx, in),
		ItemName:     in.ItemName,
		ItemQuantity: in.ItemQuantity,
		Status:       string(StatusPending),
	}
	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}

	s.bus.Publish(notify.UserGroup(order.Username),
		notify.OrderStatus(order.ID, order.Status, order.ItemName))
	s.bus.Publish(notify.AdminGroup,
		notify.OrderUpdate(order.ID, notify.ActionNewOrder, order.Status))

	return order, nil
}

// CreateMany creates a batch of Pending orders for one caller. The batch
// is validated up front so either every order is created or none is.
func (s *Service) CreateMany(ctx context.Context, ins []CreateOrderInput, id Identity) ([]*models.Order, error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("%w: at least one order required", ErrValidation)
	}
	for i := range ins {
		if ins[i].ItemName == "" {
			return nil, fmt.Errorf("%w: item_name required", ErrValidation)
		}
		if ins[i].ItemQuantity <= 0 {
			return nil, fmt.Errorf("%w: item_quantity must be > 0", ErrValidation)
		}
	}

	orders := make([]*models.Order, 0, len(ins))
	for _, in := range ins {
		order, err := s.Create(ctx, in, id)
		if err != nil {
			return orders, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s *Service) resolveProduct(ctx context.Context, in CreateOrderInput) *int {
	var p models.Product
	if in.ItemID != nil {
		if err := s.db.WithContext(ctx).First(&p, *in.ItemID).Error; err == nil {
			return &p.ID
		}
	}
	if err := s.db.WithContext(ctx).
		Where("LOWER(name) = LOWER(?)", in.ItemName).First(&p).Error; err == nil {
		return &p.ID
	}
	return nil
}

// Accept moves a Pending order to Processing. For a linked order the
// reservation happens exactly once, before the status commit; a failed
// reservation aborts the transition with the status unchanged.
func (s *Service) Accept(ctx context.Context, orderID int) (*models.Order, error) {
	mu := s.lockFor(orderID)
	mu.Lock()
	defer mu.Unlock()

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if Status(order.Status) != StatusPending {
		return nil, &StateConflictError{OrderID: orderID, Current: Status(order.Status), Requested: StatusProcessing}
	}

	var alert *notify.Event
	reserved := 0
	reservedProduct := 0

	if order.ProductID != nil {
		var p models.Product
		err := s.db.WithContext(ctx).First(&p, *order.ProductID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			// dangling link: the product was removed, treat as unlinked
			s.log.Warn("accept: product link dangling", "order_id", orderID, "product_id", *order.ProductID)
		case err != nil:
			return nil, err
		default:
			remaining, err := s.ledger.Reserve(ctx, p.ID, order.ItemQuantity)
			if err != nil {
				return nil, err
			}
			reserved = order.ItemQuantity
			reservedProduct = p.ID
			if remaining <= p.LowStockThreshold {
				ev := notify.LowStockAlert(p.ID, p.Name, remaining, p.LowStockThreshold)
				alert = &ev
			}
		}
	}

	order.Status = string(StatusProcessing)
	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		if reserved > 0 {
			if rerr := s.ledger.Release(ctx, reservedProduct, reserved); rerr != nil {
				s.log.Error("accept: release after failed commit", "order_id", orderID, "error", rerr)
			}
		}
		return nil, err
	}

	if err := s.queue.Enqueue(ctx, order.ID); err != nil {
		// transition stands; recovery re-derives Processing orders
		s.log.Warn("accept: enqueue failed", "order_id", order.ID, "error", err)
	}

	s.bus.Publish(notify.UserGroup(order.Username),
		notify.OrderStatus(order.ID, order.Status, order.ItemName))
	s.bus.Publish(notify.AdminGroup,
		notify.OrderUpdate(order.ID, notify.ActionAccepted, order.Status))
	if alert != nil {
		s.bus.Publish(notify.AdminGroup, *alert)
	}

	return &order, nil
}

// Cancel moves a Pending or Processing order to Cancelled. Reserved units
// of a Processing order are not returned to stock.
func (s *Service) Cancel(ctx context.Context, orderID int) (*models.Order, error) {
	mu := s.lockFor(orderID)
	mu.Lock()
	defer mu.Unlock()

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if !CanTransition(Status(order.Status), StatusCancelled) {
		return nil, &StateConflictError{OrderID: orderID, Current: Status(order.Status), Requested: StatusCancelled}
	}

	order.Status = string(StatusCancelled)
	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}

	s.bus.Publish(notify.UserGroup(order.Username),
		notify.OrderStatus(order.ID, order.Status, order.ItemName))
	s.bus.Publish(notify.AdminGroup,
		notify.OrderUpdate(order.ID, notify.ActionCancelled, order.Status))

	return &order, nil
}

// Complete is the fulfillment worker's transition: Processing orders move
// to Processed once their work is done. Terminal states are enforced the
// same way as everywhere else.
func (s *Service) Complete(ctx context.Context, orderID int) (*models.Order, error) {
	mu := s.lockFor(orderID)
	mu.Lock()
	defer mu.Unlock()

	var order models.Order
	if err := s.db.WithContext(ctx).First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, orderID)
		}
		return nil, err
	}
	if Status(order.Status) != StatusProcessing {
		return nil, &StateConflictError{OrderID: orderID, Current: Status(order.Status), Requested: StatusProcessed}
	}

	order.Status = string(StatusProcessed)
	if err := s.db.WithContext(ctx).Save(&order).Error; err != nil {
		return nil, err
	}

	s.bus.Publish(notify.UserGroup(order.Username),
		notify.OrderStatus(order.ID, order.Status, order.ItemName))

	return &order, nil
}

// UpdateStock overwrites a product's counter. Administrative correction,
// no reservation semantics, no alerts.
func (s *Service) UpdateStock(ctx context.Context, productID, quantity int) error {
	err := s.ledger.SetAbsolute(ctx, productID, quantity)
	switch {
	case errors.Is(err, stock.ErrProductNotFound):
		return fmt.Errorf("%w: product %d", ErrNotFound, productID)
	case errors.Is(err, stock.ErrInvalidQuantity):
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return err
}

func (s *Service) ListLowStock(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := s.db.WithContext(ctx).
		Where("stock_quantity <= low_stock_threshold").
		Order("category, name").
		Find(&products).Error
	return products, err
}

func (s *Service) UserOrders(ctx context.Context, username string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Where("username = ?", username).
		Order("created_on DESC").
		Find(&orders).Error
	return orders, err
}

func (s *Service) AllOrders(ctx context.Context, offset, limit int) ([]models.Order, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := s.db.WithContext(ctx).
		Order("created_on DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}
