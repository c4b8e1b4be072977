package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/iamasit07/5-in-a-row/backend/internal/config"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/memory"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/postgres"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/redis"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/cleanup"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/game"
	"github.com/iamasit07/5-in-a-row/backend/internal/service/room"
	transportHttp "github.com/iamasit07/5-in-a-row/backend/internal/transport/http"
	"github.com/iamasit07/5-in-a-row/backend/internal/transport/websocket"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../.env"); err != nil {
			log.Println("No .env file found")
		}
	}

	cfg := config.LoadConfig()

	// 1. Archive (optional)
	var (
		archive     game.Archive
		httpArchive transportHttp.Archive
		db          *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(cfg)
		if err != nil {
			log.Fatalf("Database unavailable: %v", err)
		}
		defer db.Close()

		gameRepo := postgres.NewGameRepo(db)
		archive = gameRepo
		httpArchive = gameRepo
	} else {
		log.Println("DATABASE_URL not set, finished games will not be archived")
	}

	// 2. Game store
	var (
		store       game.Store
		memoryStore *memory.GameStore
	)
	switch cfg.StoreBackend {
	case "redis":
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		defer client.Close()
		store = redis.NewGameStore(client, cfg.GameTTL)
		log.Printf("Using Redis game store at %s", cfg.Redis.Addr)
	default:
		memoryStore = memory.NewGameStore()
		store = memoryStore
		log.Println("Using in-memory game store")
	}

	// 3. Services
	gameService := game.NewService(store, archive, cfg.DefaultGame)
	connManager := websocket.NewConnectionManager()
	coordinator := room.NewCoordinator(gameService, connManager, cfg.DefaultGame)

	// 4. Background workers
	targets := []cleanup.Target{
		{Name: "rooms", MaxIdle: cfg.RoomIdle, Evictor: cleanup.EvictorFunc(coordinator.EvictIdle)},
	}
	if memoryStore != nil {
		// Redis expires games through key TTLs.
		targets = append(targets, cleanup.Target{Name: "games", MaxIdle: cfg.GameTTL, Evictor: memoryStore})
	}
	cleanupWorker := cleanup.NewWorker(cfg.CleanupInterval, targets...)
	if err := cleanupWorker.Start(); err != nil {
		log.Fatalf("Failed to start cleanup worker: %v", err)
	}
	defer cleanupWorker.Stop()

	// 5. Transport
	wsHandler := websocket.NewHandler(connManager, coordinator, websocket.Options{
		JWTSecret:      cfg.JWTSecret,
		RequireAuth:    cfg.RequireAuth,
		AllowedOrigins: cfg.AllowedOrigins,
	})
	secureCookie := strings.HasPrefix(cfg.FrontendURL, "https://")

	router := transportHttp.NewRouter(transportHttp.RouterConfig{
		Games:          gameService,
		Rooms:          coordinator,
		Archive:        httpArchive,
		WebSocket:      wsHandler.HandleWebSocket,
		AllowedOrigins: cfg.AllowedOrigins,
		JWTSecret:      cfg.JWTSecret,
		RequireAuth:    cfg.RequireAuth,
		Auth:           transportHttp.NewAuthHandler(cfg.JWTSecret, cfg.TokenTTL, secureCookie),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
