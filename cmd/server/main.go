package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/stockroom/backend/config"
	httpDelivery "github.com/stockroom/backend/internal/delivery/http"
	"github.com/stockroom/backend/internal/domain"
	"github.com/stockroom/backend/internal/infrastructure/cache"
	"github.com/stockroom/backend/internal/infrastructure/events"
	"github.com/stockroom/backend/internal/infrastructure/goupc"
	"github.com/stockroom/backend/internal/infrastructure/mongodb"
	"github.com/stockroom/backend/internal/infrastructure/openfoodfacts"
	"github.com/stockroom/backend/internal/infrastructure/upcitemdb"
	"github.com/stockroom/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Stockroom Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Document store
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	db, err := mongodb.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	log.Printf("MongoDB connected: %s/%s", cfg.Mongo.URI, cfg.Mongo.Database)

	branchRepo := mongodb.NewBranchRepository(db, cfg.Mongo)
	itemRepo := mongodb.NewStockItemRepository(db, cfg.Mongo)
	orderRepo := mongodb.NewPurchaseOrderRepository(db, cfg.Mongo)
	transferRepo := mongodb.NewTransferRepository(db, cfg.Mongo)

	// Movement events; the broker is optional
	var publisher domain.MovementPublisher = events.NopPublisher{}
	if cfg.Events.AMQPURL != "" {
		amqpPublisher, err := events.NewPublisher(cfg.Events.AMQPURL, cfg.Events.Queue)
		if err != nil {
			log.Fatalf("Failed to connect to AMQP broker: %v", err)
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		log.Printf("Movement events publishing to queue %q", cfg.Events.Queue)
	} else {
		log.Printf("WARNING: no AMQP URL configured, stock movements will not be published")
	}

	// Provider chain, in priority order
	goUPC := goupc.NewClient(cfg.Providers.GoUPC.APIKey, cfg.Providers.GoUPC.BaseURL)
	if !goUPC.Enabled() {
		log.Printf("WARNING: Go-UPC key not configured, provider will be skipped")
	}
	upcItemDB := upcitemdb.NewClient(cfg.Providers.UPCItemDB.APIKey, cfg.Providers.UPCItemDB.BaseURL)
	offClient := openfoodfacts.NewClient(cfg.Providers.OpenFoodFacts.BaseURL)

	resolver := usecase.NewResolver(
		[]domain.Provider{goUPC, upcItemDB, offClient},
		cfg.Providers.Timeout,
	)

	productCache := cache.NewMemoryProductCache()
	log.Printf("Lookup cache TTL: %s", cfg.Cache.TTL)

	// Usecase layer
	lookupService := usecase.NewLookupService(resolver, productCache, cfg.Cache.TTL)
	inventoryService := usecase.NewInventoryService(branchRepo, itemRepo, publisher)
	orderService := usecase.NewPurchaseOrderService(orderRepo, branchRepo, itemRepo, publisher)
	transferService := usecase.NewTransferService(transferRepo, branchRepo, itemRepo, publisher)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(lookupService, inventoryService, orderService, transferService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
