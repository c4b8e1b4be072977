package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

type Config struct {
	Port           string
	AllowedOrigins []string
	FrontendURL    string

	StoreBackend string // "memory" or "redis"
	Redis        RedisConfig
	GameTTL      time.Duration

	DatabaseURL          string
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int

	JWTSecret   string
	RequireAuth bool
	TokenTTL    time.Duration

	DefaultGame domain.Config

	CleanupInterval time.Duration
	RoomIdle        time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func LoadConfig() *Config {
	port := GetEnv("PORT", "8080")

	// Frontend & CORS
	frontendURL := GetEnv("FRONTEND_URL", "http://localhost:5173")
	allowedOrigins := []string{frontendURL}
	for _, origin := range strings.Split(GetEnv("ALLOWED_ORIGINS", ""), ",") {
		if trimmed := strings.TrimSpace(origin); trimmed != "" {
			allowedOrigins = append(allowedOrigins, trimmed)
		}
	}

	// Game store
	storeBackend := strings.ToLower(GetEnv("STORE_BACKEND", "memory"))
	if storeBackend != "memory" && storeBackend != "redis" {
		log.Printf("Unknown STORE_BACKEND %q, using memory", storeBackend)
		storeBackend = "memory"
	}

	// Archive database; empty disables archiving.
	// Append simple_protocol for PgBouncer compatibility (pgx driver)
	dbURL := GetEnv("DATABASE_URL", "")
	if dbURL != "" {
		if u, err := url.Parse(dbURL); err == nil {
			q := u.Query()
			if q.Get("default_query_exec_mode") == "" {
				q.Set("default_query_exec_mode", "simple_protocol")
				u.RawQuery = q.Encode()
				dbURL = u.String()
			}
		}
	}

	firstPlayer, err := domain.ParsePlayer(GetEnv("DEFAULT_FIRST_PLAYER", "B"))
	if err != nil || firstPlayer == domain.Empty {
		log.Printf("Invalid DEFAULT_FIRST_PLAYER, using B")
		firstPlayer = domain.Black
	}
	defaultGame := domain.Config{
		Size:           GetEnvAsInt("DEFAULT_BOARD_SIZE", domain.DefaultBoardSize),
		WinLength:      GetEnvAsInt("DEFAULT_WIN_LENGTH", domain.DefaultWinLength),
		AllowOverlines: GetEnvAsBool("DEFAULT_ALLOW_OVERLINES", false),
		FirstPlayer:    firstPlayer,
	}
	if err := defaultGame.Validate(); err != nil {
		log.Printf("Invalid default game config (%v), using 15x15 five in a row", err)
		defaultGame = domain.Config{}.WithDefaults()
	}

	return &Config{
		Port:           port,
		AllowedOrigins: allowedOrigins,
		FrontendURL:    frontendURL,
		StoreBackend:   storeBackend,
		Redis: RedisConfig{
			Addr:     GetEnv("REDIS_URL", "localhost:6379"),
			Password: GetEnv("REDIS_PASSWORD", ""),
			DB:       GetEnvAsInt("REDIS_DB", 0),
		},
		GameTTL:              time.Duration(GetEnvAsInt("GAME_TTL_MINUTES", 24*60)) * time.Minute,
		DatabaseURL:          dbURL,
		DBMaxOpenConns:       GetEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:       GetEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetimeMin: GetEnvAsInt("DB_CONN_MAX_LIFETIME_MINUTES", 5),
		JWTSecret:            GetEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		RequireAuth:          GetEnvAsBool("REQUIRE_AUTH", false),
		TokenTTL:             time.Duration(GetEnvAsInt("TOKEN_TTL_HOURS", 72)) * time.Hour,
		DefaultGame:          defaultGame,
		CleanupInterval:      time.Duration(GetEnvAsInt("CLEANUP_INTERVAL_MINUTES", 10)) * time.Minute,
		RoomIdle:             time.Duration(GetEnvAsInt("ROOM_IDLE_MINUTES", 60)) * time.Minute,
	}
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s: %s, using default: %d", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s: %s, using default: %t", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}
