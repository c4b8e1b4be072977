package domain

// Outbound room event types.
const (
	EventRoomMembership = "room_membership"
	EventGameStarted    = "game_started"
	EventMoveApplied    = "move_applied"
	EventMoveAck        = "move_ack"
	EventMoveRejected   = "move_rejected"
	EventUndoApplied    = "undo_applied"
	EventGameState      = "game_state"
	EventError          = "error"
)

// Inbound room message types.
const (
	MessageJoin    = "join"
	MessageMove    = "move"
	MessageUndo    = "undo"
	MessageNewGame = "new_game"
	MessageLeave   = "leave"
)

type ClientMessage struct {
	Type   string  `json:"type"`
	RoomID string  `json:"roomId,omitempty"`
	GameID string  `json:"gameId,omitempty"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
	Steps  int     `json:"steps,omitempty"`
	Config *Config `json:"config,omitempty"`
}

type SeatInfo struct {
	ConnectionID string `json:"connectionId"`
	Seat         string `json:"seat"`
	Player       Player `json:"player,omitempty"`
}

type ServerMessage struct {
	Type            string     `json:"type"`
	RoomID          string     `json:"roomId,omitempty"`
	GameID          string     `json:"gameId,omitempty"`
	Members         []SeatInfo `json:"members,omitempty"`
	YourSeat        string     `json:"yourSeat,omitempty"`
	X               int        `json:"x"`
	Y               int        `json:"y"`
	Player          Player     `json:"player,omitempty"`
	SequenceIndex   int        `json:"sequenceIndex"`
	ResultingStatus GameStatus `json:"resultingStatus,omitempty"`
	Winner          Player     `json:"winner,omitempty"`
	WinningLine     *Line      `json:"winningLine,omitempty"`
	Reason          string     `json:"reason,omitempty"`
	Message         string     `json:"message,omitempty"`
	Game            *Snapshot  `json:"game,omitempty"`
}
