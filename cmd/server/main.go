package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/lab_inventory/internal/config"
	"github.com/Skotchmaster/lab_inventory/internal/es"
	"github.com/Skotchmaster/lab_inventory/internal/fulfillment"
	"github.com/Skotchmaster/lab_inventory/internal/handlers"
	"github.com/Skotchmaster/lab_inventory/internal/logging"
	"github.com/Skotchmaster/lab_inventory/internal/mykafka"
	"github.com/Skotchmaster/lab_inventory/internal/notify"
	"github.com/Skotchmaster/lab_inventory/internal/orderflow"
	"github.com/Skotchmaster/lab_inventory/internal/seed"
	"github.com/Skotchmaster/lab_inventory/internal/stock"
	httpserver "github.com/Skotchmaster/lab_inventory/internal/transport/http"
)

func main() {
	seedCatalog := flag.Bool("seed", false, "seed the laboratory catalog and exit")
	flag.Parse()

	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB()
	if err != nil {
		log.Fatalf("database init error: %v", err)
	}

	if *seedCatalog {
		created, updated, err := seed.Apply(db)
		if err != nil {
			log.Fatalf("seed error: %v", err)
		}
		logger.Info("catalog seeded", "created", created, "updated", updated)
		return
	}

	var mirror notify.Mirror
	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer([]string{configuration.KAFKA_ADDRESS}, configuration.NOTIFY_TOPIC)
		mirror = producer
	}

	bus := notify.NewBus(mirror, logger)
	ledger := stock.NewLedger(db)

	var queue fulfillment.Queue
	if configuration.KAFKA_ADDRESS != "" {
		queue = fulfillment.NewKafkaQueue(
			[]string{configuration.KAFKA_ADDRESS},
			configuration.FULFILLMENT_TOPIC,
			"fulfillment-worker",
		)
	} else {
		queue = fulfillment.NewMemoryQueue(configuration.QUEUE_SIZE)
	}

	svc := orderflow.NewService(db, ledger, queue, bus, logger)

	var searchHandler handlers.SearchHandler
	searchHandler.DB = db
	searchHandler.Index = configuration.ES_INDEX
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Warn("elasticsearch unavailable, database search only", "error", err)
		} else {
			searchHandler.ES = esClient
		}
	}

	e := echo.New()
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := logger.With("request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
			return next(c)
		}
	})

	deps := httpserver.Deps{
		JWTSecret:        []byte(configuration.JWT_SECRET),
		OrderHandler:     &handlers.OrderHandler{Svc: svc},
		ProductHandler:   &handlers.ProductHandler{DB: db, Svc: svc},
		SearchHandler:    &searchHandler,
		AnalyticsHandler: &handlers.AnalyticsHandler{DB: db},
		StreamHandler:    &handlers.StreamHandler{Bus: bus},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:        configuration.HTTP_ADDR,
		Handler:     e,
		ReadTimeout: 10 * time.Second,
		// no WriteTimeout: the event stream keeps connections open
		IdleTimeout: 60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}

	log.Println("shutdown complete")
}
