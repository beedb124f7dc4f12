package domain

type ClientMessage struct {
	Type       string `json:"type"`
	JWT        string `json:"jwt,omitempty"`
	RoomCode   string `json:"roomCode,omitempty"`
	GridSize   int    `json:"gridSize,omitempty"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	Symbol     string `json:"symbol,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
}

type ServerMessage struct {
	Type         string `json:"type"`
	Message      string `json:"message,omitempty"`
	GameID       string `json:"gameId,omitempty"`
	RoomCode     string `json:"roomCode,omitempty"`
	GridSize     int    `json:"gridSize,omitempty"`
	Opponent     string `json:"opponent,omitempty"`
	YourSymbol   Symbol `json:"yourSymbol,omitempty"`
	CurrentTurn  Symbol `json:"currentTurn,omitempty"`
	Player       Symbol `json:"player,omitempty"`
	Move         *Move  `json:"move,omitempty"`
	Board        Board  `json:"board,omitempty"`
	Winner       string `json:"winner,omitempty"`
	Loser        string `json:"loser,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Draw         bool   `json:"draw,omitempty"`
	WinningCells []Move `json:"winningCells,omitempty"`
	Requester    string `json:"requester,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// RoomSnapshot is the externally stored view of a room, refreshed after every change.
type RoomSnapshot struct {
	Code             string            `json:"code"`
	GameID           string            `json:"gameId"`
	GridSize         int               `json:"gridSize"`
	Board            Board             `json:"board"`
	CurrentTurn      Symbol            `json:"currentTurn"`
	Players          map[string]string `json:"players"`
	Status           GameStatus        `json:"status"`
	GameActive       bool              `json:"gameActive"`
	Winner           Symbol            `json:"winner,omitempty"`
	Draw             bool              `json:"draw"`
	RestartRequested map[string]bool   `json:"restartRequested"`
	LastMove         *Move             `json:"lastMove,omitempty"`
	BotDifficulty    string            `json:"botDifficulty,omitempty"`
	LastUpdated      int64             `json:"lastUpdated"`
}
