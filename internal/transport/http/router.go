package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/transport/http/middleware"
)

// RouterConfig collects everything the router mounts. Archive may be nil.
type RouterConfig struct {
	Games          GameService
	Rooms          RoomLister
	Archive        Archive
	WebSocket      http.HandlerFunc
	AllowedOrigins []string
	JWTSecret      string
	RequireAuth    bool
	Auth           *AuthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	gameHandler := NewGameHandler(cfg.Games)
	watchHandler := NewWatchHandler(cfg.Rooms)
	historyHandler := NewHistoryHandler(cfg.Archive)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Public Auth Routes
	if cfg.Auth != nil {
		router.POST("/api/auth/guest", cfg.Auth.Guest)
	}

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.RequireAuth))
	{
		api.POST("/games", gameHandler.CreateGame)
		api.GET("/games/:id", gameHandler.GetGame)
		api.POST("/games/:id/moves", gameHandler.ApplyMove)
		api.POST("/games/:id/undo", gameHandler.Undo)
		api.DELETE("/games/:id", gameHandler.DeleteGame)

		api.GET("/rooms", watchHandler.GetRooms)

		api.GET("/history", historyHandler.GetHistory)
		api.GET("/history/:id", historyHandler.GetGameDetails)

		if cfg.Auth != nil {
			api.GET("/auth/me", cfg.Auth.Me)
		}
	}

	// WebSocket Route (auth handled inside the WS handler itself)
	if cfg.WebSocket != nil {
		router.GET("/ws", gin.WrapF(cfg.WebSocket))
	}

	return router
}
