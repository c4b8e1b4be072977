package room

import (
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// Seat is fixed when a connection joins and never recomputed from join order.
type Seat int

const (
	SeatBlack Seat = iota
	SeatWhite
	Spectator
)

func (s Seat) String() string {
	switch s {
	case SeatBlack:
		return "black"
	case SeatWhite:
		return "white"
	}
	return "spectator"
}

// Player is the colour a seat plays, Empty for spectators.
func (s Seat) Player() domain.Player {
	switch s {
	case SeatBlack:
		return domain.Black
	case SeatWhite:
		return domain.White
	}
	return domain.Empty
}

func (s Seat) Seated() bool {
	return s == SeatBlack || s == SeatWhite
}

type Member struct {
	ConnectionID string
	Seat         Seat
	JoinedAt     time.Time
}

func (m *Member) info() domain.SeatInfo {
	return domain.SeatInfo{
		ConnectionID: m.ConnectionID,
		Seat:         m.Seat.String(),
		Player:       m.Seat.Player(),
	}
}
