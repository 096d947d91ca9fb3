package fulfillment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/segmentio/kafka-go"
)

type queuedOrder struct {
	OrderID int `json:"order_id"`
}

// KafkaQueue is the durable queue variant: accepted order ids survive a
// process restart because they live in a kafka topic. The partition key is
// the order id so per-order ordering is kept.
type KafkaQueue struct {
	w *kafka.Writer
	r *kafka.Reader
}

func NewKafkaQueue(brokers []string, topic, group string) *KafkaQueue {
	return &KafkaQueue{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		r: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  group,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
		}),
	}
}

func (q *KafkaQueue) Enqueue(ctx context.Context, orderID int) error {
	value, err := json.Marshal(queuedOrder{OrderID: orderID})
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(orderID)),
		Value: value,
	}
	if err := q.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("fulfillment: enqueue failed: %w", err)
	}
	return nil
}

func (q *KafkaQueue) Dequeue(ctx context.Context) (int, error) {
	m, err := q.r.ReadMessage(ctx)
	if err != nil {
		return 0, err
	}
	var qo queuedOrder
	if err := json.Unmarshal(m.Value, &qo); err != nil {
		return 0, fmt.Errorf("fulfillment: bad queue message: %w", err)
	}
	return qo.OrderID, nil
}

func (q *KafkaQueue) Close() error {
	werr := q.w.Close()
	rerr := q.r.Close()
	if werr != nil {
		return werr
	}
	return rerr
}
