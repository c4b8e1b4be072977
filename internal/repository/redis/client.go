package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/config"
	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

const gameKeyPrefix = "game:"

// NewClient connects to Redis and pings it once so a bad address fails at startup.
func NewClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}

	log.Println("[REDIS] Connected successfully")
	return client, nil
}

// GameStore keeps game snapshots in Redis as JSON. A ttl of 0 keeps keys forever.
type GameStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGameStore(client *redis.Client, ttl time.Duration) *GameStore {
	return &GameStore{client: client, ttl: ttl}
}

func (s *GameStore) Create(ctx context.Context, g *domain.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
	}

	created, err := s.client.SetNX(ctx, gameKey(g.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store game %s: %w", g.ID, err)
	}
	if !created {
		return fmt.Errorf("%w: game %s already exists", domain.ErrBadRequest, g.ID)
	}
	return nil
}

func (s *GameStore) Get(ctx context.Context, id string) (*domain.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: game %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", id, err)
	}

	var g domain.Game
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game %s: %w", id, err)
	}
	return &g, nil
}

// Replace overwrites an existing snapshot and refreshes its TTL.
func (s *GameStore) Replace(ctx context.Context, g *domain.Game) error {
	data, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal game %s: %w", g.ID, err)
	}

	updated, err := s.client.SetXX(ctx, gameKey(g.ID), data, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to update game %s: %w", g.ID, err)
	}
	if !updated {
		return fmt.Errorf("%w: game %s", domain.ErrNotFound, g.ID)
	}
	return nil
}

func (s *GameStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, gameKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete game %s: %w", id, err)
	}
	return nil
}

func gameKey(id string) string {
	return gameKeyPrefix + id
}
