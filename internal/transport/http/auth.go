package http

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
	"github.com/iamasit07/5-in-a-row/backend/internal/transport/http/middleware"
	"github.com/iamasit07/5-in-a-row/backend/pkg/auth"
	"github.com/iamasit07/5-in-a-row/backend/pkg/httputil"
	"github.com/iamasit07/5-in-a-row/backend/pkg/uid"
)

const maxNameLength = 32

type AuthHandler struct {
	secret       string
	ttl          time.Duration
	secureCookie bool
}

func NewAuthHandler(secret string, ttl time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{secret: secret, ttl: ttl, secureCookie: secureCookie}
}

type guestRequest struct {
	Name string `json:"name"`
}

type guestResponse struct {
	PlayerID  string    `json:"playerId"`
	Name      string    `json:"name"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Guest issues a player token for a display name. There are no accounts: the
// token only pins a stable connection id across reconnects.
func (h *AuthHandler) Guest(c *gin.Context) {
	var req guestRequest
	if err := bindOptional(c, &req); err != nil {
		respondError(c, err)
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "guest"
	}
	if len(name) > maxNameLength {
		respondError(c, fmt.Errorf("%w: name must be at most %d characters", domain.ErrBadRequest, maxNameLength))
		return
	}

	playerID := uid.GeneratePlayerID()
	token, err := auth.GeneratePlayerToken(playerID, name, h.secret, h.ttl)
	if err != nil {
		respondError(c, err)
		return
	}

	httputil.SetAuthCookie(c.Writer, token, h.ttl, h.secureCookie)
	c.JSON(http.StatusCreated, guestResponse{
		PlayerID:  playerID,
		Name:      name,
		Token:     token,
		ExpiresAt: time.Now().Add(h.ttl).UTC(),
	})
}

// Me echoes the identity attached by the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"playerId": c.GetString(middleware.PlayerIDKey),
		"name":     c.GetString(middleware.PlayerNameKey),
	})
}
