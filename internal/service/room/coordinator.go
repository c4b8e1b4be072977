package room

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/iamasit07/5-in-a-row/backend/internal/domain"
)

// GameService is the slice of the game service the coordinator drives.
type GameService interface {
	Create(ctx context.Context, cfg domain.Config) (*domain.Game, error)
	Get(ctx context.Context, id string) (*domain.Game, error)
	ApplyMoveAs(ctx context.Context, id string, player domain.Player, x, y int) (*domain.Game, error)
	Undo(ctx context.Context, id string, steps int) (*domain.Game, error)
}

// Broadcaster delivers an event to one connection.
type Broadcaster interface {
	SendMessage(connectionID string, message domain.ServerMessage) error
}

// Room binds connections to at most one game. Every operation on a room holds
// mu for its whole duration, which makes the room the ordering point for moves
// and for the events they produce.
type Room struct {
	ID           string
	GameID       string
	members      []*Member
	lastActivity time.Time
	closed       bool
	mu           sync.Mutex
}

func (r *Room) member(connectionID string) *Member {
	for _, m := range r.members {
		if m.ConnectionID == connectionID {
			return m
		}
	}
	return nil
}

func (r *Room) freeSeat() Seat {
	taken := map[Seat]bool{}
	for _, m := range r.members {
		taken[m.Seat] = true
	}
	switch {
	case !taken[SeatBlack]:
		return SeatBlack
	case !taken[SeatWhite]:
		return SeatWhite
	}
	return Spectator
}

func (r *Room) seatsFilled() bool {
	return r.freeSeat() == Spectator
}

func (r *Room) membership() []domain.SeatInfo {
	infos := make([]domain.SeatInfo, len(r.members))
	for i, m := range r.members {
		infos[i] = m.info()
	}
	return infos
}

// Summary is a read-only view of a room for listings.
type Summary struct {
	RoomID         string            `json:"roomId"`
	GameID         string            `json:"gameId,omitempty"`
	Members        []domain.SeatInfo `json:"members"`
	SpectatorCount int               `json:"spectatorCount"`
	LastActivity   time.Time         `json:"lastActivity"`
}

type Coordinator struct {
	rooms    map[string]*Room
	mu       sync.RWMutex
	games    GameService
	out      Broadcaster
	defaults domain.Config
	now      func() time.Time
}

// NewCoordinator builds a coordinator that starts games with defaults once both
// seats of a room are taken.
func NewCoordinator(games GameService, out Broadcaster, defaults domain.Config) *Coordinator {
	return &Coordinator{
		rooms:    make(map[string]*Room),
		games:    games,
		out:      out,
		defaults: defaults.WithDefaults(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Join seats connectionID in roomID, creating the room on first use. The first
// free colour seat is assigned (Black before White); later joiners spectate.
// Joining twice returns the existing seat. A non-empty gameID binds a room that
// has no game yet to that existing game.
func (c *Coordinator) Join(ctx context.Context, roomID, connectionID, gameID string) (Seat, error) {
	if roomID == "" || connectionID == "" {
		return Spectator, fmt.Errorf("%w: room and connection ids are required", domain.ErrBadRequest)
	}

	room := c.lockRoom(roomID)
	defer room.mu.Unlock()

	if gameID != "" && room.GameID == "" {
		if _, err := c.games.Get(ctx, gameID); err != nil {
			return Spectator, err
		}
		room.GameID = gameID
		log.Printf("[ROOM] Room %s bound to game %s", roomID, gameID)
	}

	member := room.member(connectionID)
	if member == nil {
		member = &Member{ConnectionID: connectionID, Seat: room.freeSeat(), JoinedAt: c.now()}
		room.members = append(room.members, member)
		log.Printf("[ROOM] %s joined room %s as %s", connectionID, roomID, member.Seat)
	}
	room.lastActivity = c.now()

	c.broadcastMembership(room)

	if room.GameID == "" && room.seatsFilled() {
		if err := c.startGame(ctx, room, c.defaults); err != nil {
			return member.Seat, err
		}
	} else if room.GameID != "" {
		if g, err := c.games.Get(ctx, room.GameID); err == nil {
			snap := g.Snapshot()
			c.send(connectionID, domain.ServerMessage{Type: domain.EventGameState, RoomID: room.ID, GameID: g.ID, Game: &snap})
		}
	}

	return member.Seat, nil
}

// SubmitMove plays (x, y) for the colour seated at connectionID. Rejections are
// reported to the sender as move_rejected and returned; on success peers get
// move_applied and the sender move_ack, in admission order.
func (c *Coordinator) SubmitMove(ctx context.Context, roomID, connectionID string, x, y int) (*domain.Game, error) {
	room, err := c.room(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	g, err := c.submitMoveLocked(ctx, room, connectionID, x, y)
	if err != nil {
		c.send(connectionID, domain.ServerMessage{
			Type:    domain.EventMoveRejected,
			RoomID:  room.ID,
			GameID:  room.GameID,
			X:       x,
			Y:       y,
			Reason:  domain.ErrorCode(err),
			Message: err.Error(),
		})
		return nil, err
	}

	last := g.Moves[len(g.Moves)-1]
	msg := domain.ServerMessage{
		Type:            domain.EventMoveApplied,
		RoomID:          room.ID,
		GameID:          g.ID,
		X:               last.X,
		Y:               last.Y,
		Player:          last.Player,
		SequenceIndex:   last.SequenceIndex,
		ResultingStatus: g.Status,
		Winner:          g.Winner,
		WinningLine:     g.WinningLine,
	}
	for _, m := range room.members {
		if m.ConnectionID != connectionID {
			c.send(m.ConnectionID, msg)
		}
	}
	ack := msg
	ack.Type = domain.EventMoveAck
	c.send(connectionID, ack)

	room.lastActivity = c.now()
	return g, nil
}

func (c *Coordinator) submitMoveLocked(ctx context.Context, room *Room, connectionID string, x, y int) (*domain.Game, error) {
	member := room.member(connectionID)
	if member == nil {
		return nil, fmt.Errorf("%w: %s is not in room %s", domain.ErrWrongSeat, connectionID, room.ID)
	}
	if !member.Seat.Seated() {
		return nil, fmt.Errorf("%w: spectators cannot move", domain.ErrWrongSeat)
	}
	if room.GameID == "" {
		return nil, fmt.Errorf("%w: room %s has no game yet", domain.ErrInvalidState, room.ID)
	}
	return c.games.ApplyMoveAs(ctx, room.GameID, member.Seat.Player(), x, y)
}

// Undo takes back steps moves on behalf of a seated player and sends the
// resulting snapshot to everyone in the room.
func (c *Coordinator) Undo(ctx context.Context, roomID, connectionID string, steps int) (*domain.Game, error) {
	room, err := c.room(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if err := c.requireSeated(room, connectionID); err != nil {
		return nil, err
	}
	if room.GameID == "" {
		return nil, fmt.Errorf("%w: room %s has no game yet", domain.ErrInvalidState, room.ID)
	}

	g, err := c.games.Undo(ctx, room.GameID, steps)
	if err != nil {
		return nil, err
	}

	snap := g.Snapshot()
	c.broadcast(room, domain.ServerMessage{Type: domain.EventUndoApplied, RoomID: room.ID, GameID: g.ID, Game: &snap})
	room.lastActivity = c.now()
	return g, nil
}

// NewGame replaces a finished (or missing) game with a fresh one. cfg may be nil
// to use the defaults.
func (c *Coordinator) NewGame(ctx context.Context, roomID, connectionID string, cfg *domain.Config) (*domain.Game, error) {
	room, err := c.room(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if err := c.requireSeated(room, connectionID); err != nil {
		return nil, err
	}
	if room.GameID != "" {
		current, err := c.games.Get(ctx, room.GameID)
		if err == nil && !current.IsFinished() {
			return nil, fmt.Errorf("%w: game %s is still in progress", domain.ErrInvalidState, current.ID)
		}
	}

	gameCfg := c.defaults
	if cfg != nil {
		gameCfg = *cfg
	}
	if err := c.startGame(ctx, room, gameCfg); err != nil {
		return nil, err
	}
	room.lastActivity = c.now()
	return c.games.Get(ctx, room.GameID)
}

// Leave removes connectionID from the room. The game is kept so players can
// rejoin by room id; a freed colour seat goes to the next joiner.
func (c *Coordinator) Leave(roomID, connectionID string) error {
	room, err := c.room(roomID)
	if err != nil {
		return err
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	for i, m := range room.members {
		if m.ConnectionID == connectionID {
			room.members = append(room.members[:i], room.members[i+1:]...)
			log.Printf("[ROOM] %s left room %s (%s)", connectionID, roomID, m.Seat)
			break
		}
	}
	room.lastActivity = c.now()

	c.broadcastMembership(room)
	return nil
}

// Rooms lists live rooms ordered by id.
func (c *Coordinator) Rooms() []Summary {
	c.mu.RLock()
	rooms := make([]*Room, 0, len(c.rooms))
	for _, r := range c.rooms {
		rooms = append(rooms, r)
	}
	c.mu.RUnlock()

	summaries := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		s := Summary{RoomID: r.ID, GameID: r.GameID, Members: r.membership(), LastActivity: r.lastActivity}
		for _, m := range r.members {
			if m.Seat == Spectator {
				s.SpectatorCount++
			}
		}
		r.mu.Unlock()
		summaries = append(summaries, s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].RoomID < summaries[j].RoomID })
	return summaries
}

// Seat reports the seat held by connectionID in roomID.
func (c *Coordinator) Seat(roomID, connectionID string) (Seat, bool) {
	room, err := c.room(roomID)
	if err != nil {
		return Spectator, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()

	if m := room.member(connectionID); m != nil {
		return m.Seat, true
	}
	return Spectator, false
}

// EvictIdle drops rooms with no members that have been idle since before cutoff.
// Their games are left to the game store's own eviction.
func (c *Coordinator) EvictIdle(cutoff time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	count := 0
	for id, r := range c.rooms {
		r.mu.Lock()
		if len(r.members) == 0 && r.lastActivity.Before(cutoff) {
			r.closed = true
			delete(c.rooms, id)
			count++
		}
		r.mu.Unlock()
	}
	return count
}

func (c *Coordinator) room(roomID string) (*Room, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	room, exists := c.rooms[roomID]
	if !exists {
		return nil, fmt.Errorf("%w: room %s", domain.ErrNotFound, roomID)
	}
	return room, nil
}

// lockRoom returns roomID locked, creating it if needed. A room evicted between
// lookup and lock is replaced by a fresh one.
func (c *Coordinator) lockRoom(roomID string) *Room {
	for {
		c.mu.Lock()
		room, exists := c.rooms[roomID]
		if !exists {
			room = &Room{ID: roomID, lastActivity: c.now()}
			c.rooms[roomID] = room
			log.Printf("[ROOM] Created room %s", roomID)
		}
		c.mu.Unlock()

		room.mu.Lock()
		if !room.closed {
			return room
		}
		room.mu.Unlock()
	}
}

func (c *Coordinator) requireSeated(room *Room, connectionID string) error {
	member := room.member(connectionID)
	if member == nil || !member.Seat.Seated() {
		return fmt.Errorf("%w: only seated players can do that", domain.ErrWrongSeat)
	}
	return nil
}

// startGame must be called with room.mu held.
func (c *Coordinator) startGame(ctx context.Context, room *Room, cfg domain.Config) error {
	g, err := c.games.Create(ctx, cfg)
	if err != nil {
		return err
	}
	room.GameID = g.ID
	log.Printf("[ROOM] Room %s started game %s", room.ID, g.ID)

	snap := g.Snapshot()
	c.broadcast(room, domain.ServerMessage{Type: domain.EventGameStarted, RoomID: room.ID, GameID: g.ID, Game: &snap})
	return nil
}

func (c *Coordinator) broadcastMembership(room *Room) {
	members := room.membership()
	for _, m := range room.members {
		c.send(m.ConnectionID, domain.ServerMessage{
			Type:     domain.EventRoomMembership,
			RoomID:   room.ID,
			GameID:   room.GameID,
			Members:  members,
			YourSeat: m.Seat.String(),
		})
	}
}

func (c *Coordinator) broadcast(room *Room, msg domain.ServerMessage) {
	for _, m := range room.members {
		c.send(m.ConnectionID, msg)
	}
}

// send is best effort: a peer that cannot be reached does not fail the operation.
func (c *Coordinator) send(connectionID string, msg domain.ServerMessage) {
	if err := c.out.SendMessage(connectionID, msg); err != nil {
		log.Printf("[ROOM] Failed to send %s to %s: %v", msg.Type, connectionID, err)
	}
}
