package notify

import "github.com/google/uuid"

const (
	TypeOrderStatus   = "order_status"
	TypeOrderUpdate   = "order_update"
	TypeLowStockAlert = "low_stock_alert"
)

const (
	ActionNewOrder  = "new_order"
	ActionAccepted  = "accepted"
	ActionCancelled = "cancelled"
)

// Event is the wire shape delivered to subscribers: a type discriminator
// plus a message object fixed per type.
type Event struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Message any    `json:"message"`
}

type OrderStatusMessage struct {
	OrderID  int    `json:"order_id"`
	Status   string `json:"status"`
	ItemName string `json:"item_name"`
}

type OrderUpdateMessage struct {
	OrderID int    `json:"order_id"`
	Action  string `json:"action"`
	Status  string `json:"status"`
}

type LowStockAlertMessage struct {
	ProductID      int    `json:"product_id"`
	ProductName    string `json:"product_name"`
	RemainingStock int    `json:"remaining_stock"`
	Threshold      int    `json:"threshold"`
}

func OrderStatus(orderID int, status, itemName string) Event {
	return Event{ID: uuid.NewString(), Type: TypeOrderStatus, Message: OrderStatusMessage{
		OrderID: orderID, Status: status, ItemName: itemName,
	}}
}

func OrderUpdate(orderID int, action, status string) Event {
	return Event{ID: uuid.NewString(), Type: TypeOrderUpdate, Message: OrderUpdateMessage{
		OrderID: orderID, Action: action, Status: status,
	}}
}

func LowStockAlert(productID int, name string, remaining, threshold int) Event {
	return Event{ID: uuid.NewString(), Type: TypeLowStockAlert, Message: LowStockAlertMessage{
		ProductID: productID, ProductName: name, RemainingStock: remaining, Threshold: threshold,
	}}
}
