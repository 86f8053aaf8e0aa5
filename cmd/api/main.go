// server/cmd/api/main.go
package main

import (
	"context"
	"log"
	"time"

	"gatepass-api-server/config"
	"gatepass-api-server/internal/api/routes"
	"gatepass-api-server/internal/auth"
	"gatepass-api-server/internal/cache"
	"gatepass-api-server/internal/database"
	"gatepass-api-server/internal/directory"
	"gatepass-api-server/internal/ledger"
	"gatepass-api-server/internal/notify"
	"gatepass-api-server/internal/socket"
	"gatepass-api-server/internal/workflow"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	// 1. Load configuration
	godotenv.Load()
	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if cfg.JWT.Secret != "" {
		auth.JwtSecret = []byte(cfg.JWT.Secret)
	}
	if cfg.JWT.Expiration != "" {
		if d, err := time.ParseDuration(cfg.JWT.Expiration); err == nil {
			auth.Expiration = d
		}
	}

	// 2. Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}
	db := client.Database(cfg.Mongo.DBName)

	// 3. Stores and indexes
	store := ledger.NewStore(db)
	if err := store.EnsureIndexes(ctx); err != nil {
		log.Fatalf("Failed to ensure indexes: %v", err)
	}

	// 4. Directory gateway with its lookup cache
	directoryTTL := 5 * time.Minute
	if cfg.Redis.DirectoryTTL != "" {
		if d, err := time.ParseDuration(cfg.Redis.DirectoryTTL); err == nil {
			directoryTTL = d
		}
	}
	lookupCache := cache.New(cfg.Redis.Addr, directoryTTL)
	dir := directory.NewService(db, lookupCache)

	// 5. Notification gateway and event bus
	mailer := notify.NewMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Sender, cfg.SMTP.Password)
	hub := socket.NewHub()

	// 6. Stage engine
	engine := workflow.NewEngine(store, dir, mailer, hub)

	// 7. Make sure a SuperAdmin exists
	if err := database.SeedSuperAdmin(db, cfg); err != nil {
		log.Fatalf("Failed to seed super admin: %v", err)
	}

	// 8. Router and server
	router := routes.SetupRouter(cfg, db, engine, hub)

	log.Printf("Starting API server on port %s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
