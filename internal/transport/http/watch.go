package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/5-in-a-row/backend/internal/service/room"
)

type RoomLister interface {
	Rooms() []room.Summary
}

type WatchHandler struct {
	Rooms RoomLister
}

func NewWatchHandler(rooms RoomLister) *WatchHandler {
	return &WatchHandler{Rooms: rooms}
}

// GetRooms returns every live room, spectators included, so clients can pick
// one to join or watch.
func (h *WatchHandler) GetRooms(c *gin.Context) {
	c.JSON(http.StatusOK, h.Rooms.Rooms())
}
