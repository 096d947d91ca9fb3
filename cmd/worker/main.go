package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Skotchmaster/lab_inventory/internal/config"
	"github.com/Skotchmaster/lab_inventory/internal/fulfillment"
	"github.com/Skotchmaster/lab_inventory/internal/logging"
	"github.com/Skotchmaster/lab_inventory/internal/notify"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
	"github.com/Skotchmaster/lab_inventory/internal/stock"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if configuration.KAFKA_ADDRESS == "" {
		log.Fatal("KAFKA_ADDRESS required: the standalone worker drains the kafka queue")
	}
	queue := fulfillment.NewKafkaQueue(
		[]string{configuration.KAFKA_ADDRESS},
		configuration.FULFILLMENT_TOPIC,
		"fulfillment-worker",
	)
	defer queue.Close()

	bus := notify.NewBus(nil, logger)
	ledger := stock.NewLedger(db)
	svc := orderflow.NewService(db, ledger, queue, bus, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recovered, err := fulfillment.Recover(ctx, db, queue)
	if err != nil {
		log.Fatalf("recovery error: %v", err)
	}
	logger.Info("recovery complete", "requeued", recovered)

	worker := &fulfillment.Worker{
		Svc:   svc,
		Queue: queue,
		Delay: time.Duration(configuration.WORKER_DELAY_MS) * time.Millisecond,
		Log:   logger,
	}
	if err := worker.Run(ctx); err != nil {
		log.Fatalf("worker error: %v", err)
	}

	logger.Info("worker stopped")
}
