package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// GameService is implemented by *game.Service.
type GameService interface {
	Defaults() domain.Config
	Create(ctx context.Context, cfg domain.Config) (*domain.Game, error)
	Get(ctx context.Context, id string) (*domain.Game, error)
	ApplyMove(ctx context.Context, id string, x, y int) (*domain.Game, error)
	Undo(ctx context.Context, id string, steps int) (*domain.Game, error)
	Clear(ctx context.Context, id string) error
}

type GameHandler struct {
	Games GameService
}

func NewGameHandler(games GameService) *GameHandler {
	return &GameHandler{Games: games}
}

type createGameRequest struct {
	Size           int    `json:"size"`
	FirstPlayer    string `json:"firstPlayer"`
	WinLength      int    `json:"winLength"`
	AllowOverlines *bool  `json:"allowOverlines"`
}

type moveRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

type undoRequest struct {
	Steps int `json:"steps"`
}

// bindOptional decodes a JSON body that may be absent.
func bindOptional(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", domain.ErrBadRequest, err)
	}
	return nil
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}

	firstPlayer, err := domain.ParsePlayer(req.FirstPlayer)
	if err != nil {
		respondError(c, err)
		return
	}
	cfg := domain.Config{
		Size:           req.Size,
		WinLength:      req.WinLength,
		AllowOverlines: h.Games.Defaults().AllowOverlines,
		FirstPlayer:    firstPlayer,
	}
	if req.AllowOverlines != nil {
		cfg.AllowOverlines = *req.AllowOverlines
	}

	g, err := h.Games.Create(c.Request.Context(), cfg)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g.Snapshot())
}

func (h *GameHandler) GetGame(c *gin.Context) {
	g, err := h.Games.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

func (h *GameHandler) ApplyMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, fmt.Errorf("%w: %v", domain.ErrBadRequest, err))
		return
	}
	if req.X == nil || req.Y == nil {
		respondError(c, fmt.Errorf("%w: x and y are required", domain.ErrBadRequest))
		return
	}

	g, err := h.Games.ApplyMove(c.Request.Context(), c.Param("id"), *req.X, *req.Y)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

func (h *GameHandler) Undo(c *gin.Context) {
	req := undoRequest{Steps: 1}
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}

	g, err := h.Games.Undo(c.Request.Context(), c.Param("id"), req.Steps)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	if err := h.Games.Clear(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
