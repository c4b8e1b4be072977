package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/internal/repository/postgres"
)

const maxHistoryLimit = 100

// Archive is implemented by *postgres.GameRepo.
type Archive interface {
	GetGame(ctx context.Context, id string) (*domain.Game, error)
	ListRecent(ctx context.Context, limit int) ([]postgres.GameSummary, error)
}

// HistoryHandler serves finished games. A nil Archive means archiving is
// disabled and every lookup is a 404.
type HistoryHandler struct {
	Archive Archive
}

func NewHistoryHandler(archive Archive) *HistoryHandler {
	return &HistoryHandler{Archive: archive}
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	if h.Archive == nil {
		respondError(c, fmt.Errorf("%w: game archive is disabled", domain.ErrNotFound))
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(c, fmt.Errorf("%w: limit must be a positive integer", domain.ErrBadRequest))
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	games, err := h.Archive.ListRecent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	if h.Archive == nil {
		respondError(c, fmt.Errorf("%w: game archive is disabled", domain.ErrNotFound))
		return
	}

	g, err := h.Archive.GetGame(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g.Snapshot())
}
