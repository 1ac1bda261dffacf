package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rasayana/storefront/internal/catalog"
	h "github.com/rasayana/storefront/internal/http"
	"github.com/rasayana/storefront/internal/persistence"
	"github.com/rasayana/storefront/internal/state"
)

type Config struct {
	HTTPPort        string
	CatalogDBPath   string
	MigrationsPath  string
	StateBackend    string // redis | mongo | file
	StateDir        string
	RedisAddr       string
	RedisPassword   string
	MongoURI        string
	MongoDBName     string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		CatalogDBPath:   getEnv("CATALOG_DB_PATH", "storefront.db"),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "internal/catalog/migrations"),
		StateBackend:    getEnv("STATE_BACKEND", "redis"),
		StateDir:        getEnv("STATE_DIR", "state"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		MongoURI:        getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:     getEnv("MONGO_DB_NAME", "storefrontdb"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	ctx := context.Background()

	// Catalog database
	repo, err := catalog.NewRepository(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("Failed to open catalog database: %v", err)
	}
	defer repo.Close()

	if err := repo.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run catalog migrations: %v", err)
	}
	log.Printf("Catalog database ready at %s", cfg.CatalogDBPath)

	// Redis backs both the product cache and (by default) state persistence.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection failed:", err)
	}
	log.Printf("Redis ping succeeded")

	catalogService := catalog.NewService(repo, catalog.NewRedisCache(redisClient))

	adapter, cleanup, err := buildAdapter(ctx, cfg, redisClient)
	if err != nil {
		log.Fatalf("Failed to set up state storage: %v", err)
	}
	defer cleanup()
	log.Printf("State persistence backend: %s", cfg.StateBackend)

	registry := state.NewRegistry(adapter)

	cartHandler := h.NewCartHandler(registry, catalogService, cfg.RequestTimeout)
	wishlistHandler := h.NewWishlistHandler(registry, catalogService, cfg.RequestTimeout)
	catalogHandler := h.NewCatalogHandler(catalogService, cfg.RequestTimeout)

	// Setup router
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(h.RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(h.SessionMiddleware)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status":"ok"}`)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/public", func(r chi.Router) {
			r.Get("/products", catalogHandler.ListProducts)
			r.Get("/product/{product_id}", catalogHandler.GetProduct)
			r.Get("/categories", catalogHandler.ListCategories)
			r.Get("/health-benefits", catalogHandler.ListHealthBenefits)
		})
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Delete("/", cartHandler.ClearCart)
		})
		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", wishlistHandler.GetWishlist)
			r.Post("/toggle", wishlistHandler.Toggle)
			r.Delete("/items/{product_id}", wishlistHandler.RemoveEntry)
			r.Delete("/", wishlistHandler.ClearWishlist)
		})
		r.Post("/checkout/complete", cartHandler.CompleteCheckout)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Storefront starting on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server exited")
}

func buildAdapter(ctx context.Context, cfg *Config, redisClient *redis.Client) (persistence.Adapter, func(), error) {
	noop := func() {}

	switch cfg.StateBackend {
	case "redis":
		return persistence.NewRedisAdapter(redisClient), noop, nil
	case "mongo":
		db, err := persistence.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, noop, err
		}
		adapter := persistence.NewMongoAdapter(db)
		if err := adapter.CreateIndexes(ctx); err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := db.Client().Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect failed: %v", err)
			}
		}
		return adapter, cleanup, nil
	case "file":
		adapter, err := persistence.NewFileAdapter(cfg.StateDir)
		if err != nil {
			return nil, noop, err
		}
		return adapter, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown state backend %q", cfg.StateBackend)
	}
}
