package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/joho/godotenv"

	"github.com/AnshRaj112/wardline-backend/internal/config"
	"github.com/AnshRaj112/wardline-backend/internal/database"
	"github.com/AnshRaj112/wardline-backend/internal/handlers"
	"github.com/AnshRaj112/wardline-backend/internal/middleware"
	"github.com/AnshRaj112/wardline-backend/internal/models"
	"github.com/AnshRaj112/wardline-backend/internal/routes"
	"github.com/AnshRaj112/wardline-backend/internal/services"
	"github.com/AnshRaj112/wardline-backend/internal/store"
	"github.com/go-chi/chi/v5"
)

func main() {
	// Load env
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found")
	}
	// Load configuration
	cfg := config.Load()

	// Connect to PostgreSQL (accounts, violations)
	log.Printf("Connecting to PostgreSQL...")
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	defer database.DisconnectPostgres()

	// Connect to Redis (sessions, cancel-code mailbox, alert pub/sub)
	log.Printf("Connecting to Redis...")
	if err := database.ConnectRedis(cfg.RedisURI); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer database.DisconnectRedis()

	// Log connection attempt (without showing password)
	log.Printf("Connecting to MongoDB...")
	if cfg.MongoURI != "" && strings.Contains(cfg.MongoURI, "@") {
		parts := strings.SplitN(cfg.MongoURI, "@", 2)
		log.Printf("MongoDB host: %s", parts[1])
	}

	// Connect to MongoDB (principals, alerts, rules, time windows)
	if err := database.Connect(cfg.MongoURI); err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer database.Disconnect()

	if err := store.EnsureIndexes(context.Background(), database.DB); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB indexes ensured")
	}

	// Initialize Cloudinary for alert video uploads
	var uploader services.VideoUploader
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			log.Println("Alert video uploads will not be available")
		} else {
			uploader = cld
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Alert video uploads will not be available")
	}

	// Wire stores and services
	principalStore := store.NewMongoPrincipalStore(database.Client, database.DB)
	alertStore := store.NewMongoAlertStore(database.DB)
	ruleStore := store.NewMongoRuleStore(database.DB)
	windowStore := store.NewMongoTimeWindowStore(database.DB)

	principalService := services.NewPrincipalService(principalStore)
	associationService := services.NewAssociationService(principalStore)
	ruleService := services.NewRuleService(ruleStore, windowStore)

	alertService := services.NewAlertService(alertStore, uploader)
	alertService.Publish = func(ctx context.Context, a models.Alert) {
		if err := services.PublishAlertEvent(ctx, a); err != nil {
			log.Printf("failed to publish alert event: %v", err)
		}
	}

	handlers.InitServices(principalService, associationService, ruleService, alertService)

	// Start the shared Redis listener feeding WebSocket subscribers
	services.StartRedisAlertSubscriber(context.Background())

	// Setup router
	r := chi.NewRouter()

	// Custom CORS: set headers and respond to OPTIONS with 200 so preflight never gets 403
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	// Production: SecurityHeaders → HostCheck → GlobalRateLimit → LoginRateLimit
	// Non-production: Redis-based rate limit only
	if cfg.IsProduction() {
		for _, mw := range middleware.ProductionSecurity(cfg.AllowedHost) {
			r.Use(mw)
		}
		log.Println("✅ Production security enabled (security headers, host check, per-IP + login rate limiting)")
	} else {
		r.Use(middleware.RateLimitMiddleware)
	}

	// Health check (no rate limit)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Setup routes
	routes.SetupRoutes(r)

	log.Printf("🚀 Wardline backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
