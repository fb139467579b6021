package main

import (
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"gudang/internal/accounts"
	"gudang/internal/apperr"
	"gudang/internal/export"
	"gudang/internal/handlers"
	"gudang/internal/middleware"
	"gudang/internal/notify"
	"gudang/internal/services"
	"gudang/internal/session"
	"gudang/internal/store"
	"gudang/internal/views"
	"gudang/pkg/blobstore"
	"gudang/pkg/changefeed"
)

// feedPublisher adapts the AMQP change feed client to the store's Feed hook.
type feedPublisher struct {
	client *changefeed.Client
}

func (f feedPublisher) PublishRecordEvent(op string, kind store.Kind, scope session.Scope, id string) error {
	return f.client.Publish(changefeed.Event{
		Op:       op,
		Kind:     string(kind),
		TenantID: scope.TenantID,
		UserID:   scope.UserID,
		RecordID: id,
	})
}

func main() {
	// --- Configuration ---
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DATABASE_DSN", "gudang.db")
	viper.SetDefault("STORAGE_DIR", "./data/blobs")
	viper.SetDefault("EXPORT_DIR", "./data/exports")
	viper.SetDefault("BASE_URL", "http://localhost:8080/files")
	viper.AutomaticEnv() // Load environment variables

	appPort := viper.GetString("APP_PORT")
	dsn := viper.GetString("DATABASE_DSN")
	storageDir := viper.GetString("STORAGE_DIR")
	exportDir := viper.GetString("EXPORT_DIR")
	baseURL := viper.GetString("BASE_URL")
	rabbitMQURL := viper.GetString("RABBITMQ_URL")

	// The tenant id partitions every record; without it (or a token secret)
	// the application cannot run at all.
	tenantID := viper.GetString("TENANT_ID")
	if tenantID == "" {
		log.Fatalf("Cannot start: %v", &apperr.ConfigError{Key: "TENANT_ID", Reason: "must be set"})
	}
	jwtSecret := viper.GetString("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatalf("Cannot start: %v", &apperr.ConfigError{Key: "JWT_SECRET", Reason: "must be set"})
	}

	// --- Database ---
	db, err := openDatabase(dsn)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	// --- Change Feed (optional) ---
	var feed store.Feed
	var mqClient *changefeed.Client
	if rabbitMQURL != "" {
		mqClient, err = changefeed.NewClient(changefeed.Config{URL: rabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize change feed client: %v", err)
		}
		defer mqClient.Close()
		feed = feedPublisher{client: mqClient}
	} else {
		log.Println("No RABBITMQ_URL configured, change feed disabled.")
	}

	// --- Stores ---
	recordStore, err := store.NewGormStore(db, feed)
	if err != nil {
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	userStore, err := accounts.NewGormStore(db)
	if err != nil {
		log.Fatalf("Failed to initialize account store: %v", err)
	}
	blobs, err := blobstore.New(storageDir, baseURL)
	if err != nil {
		log.Fatalf("Failed to initialize blob store: %v", err)
	}

	// --- Change Feed Consumer ---
	// Peer instances sharing the database publish their mutations here; a
	// refresh rebroadcasts the collection to local subscribers.
	if mqClient != nil {
		err := mqClient.Consume(func(ev changefeed.Event) error {
			recordStore.Refresh(store.Kind(ev.Kind), session.Scope{TenantID: ev.TenantID, UserID: ev.UserID})
			return nil
		})
		if err != nil {
			log.Printf("Failed to start change feed consumer: %v", err)
		}
	}

	// --- Notification Surface ---
	// One notice center and one confirmation slot per session scope.
	surface := notify.NewSurface()

	// --- Services ---
	productService := services.NewProductService(recordStore)
	transactionService := services.NewTransactionService(recordStore)
	authService := services.NewAuthService(userStore, jwtSecret)

	// --- Views & Export ---
	viewManager := views.NewManager(recordStore, surface)
	defer viewManager.Close()
	exporter := export.NewExporter(export.DiskSaver{Dir: exportDir})

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(productService, viewManager, surface, blobs)
	transactionHandler := handlers.NewTransactionHandler(transactionService, viewManager, surface, exporter)
	reportHandler := handlers.NewReportHandler(viewManager, surface, exporter)
	surfaceHandler := handlers.NewSurfaceHandler(surface)

	// --- Initialize Fiber App ---
	app := fiber.New()
	app.Use(logger.New()) // Request logger

	// Uploaded images are served from here; BASE_URL should point at it.
	app.Static("/files", storageDir)

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")

	// Authentication routes (public)
	authHandler.RegisterRoutes(apiV1)

	// Protected routes (require a session token)
	protected := apiV1.Group("", middleware.AuthRequired(authService, tenantID))
	productHandler.RegisterRoutes(protected)
	transactionHandler.RegisterRoutes(protected)
	reportHandler.RegisterRoutes(protected)
	surfaceHandler.RegisterRoutes(protected)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// openDatabase picks the driver from the DSN: anything that looks like a
// Postgres connection string uses the postgres driver, everything else is a
// SQLite path.
func openDatabase(dsn string) (*gorm.DB, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{})
}
