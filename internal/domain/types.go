package domain

import (
	"encoding/json"
	"fmt"
)

var BotNames = map[string]string{
	"easy":   "Alice",
	"medium": "Bob",
	"hard":   "Charles",
}

func GetBotName(difficulty string) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

func IsBotName(username string) bool {
	if username == "BOT" {
		return true
	}
	for _, name := range BotNames {
		if username == name {
			return true
		}
	}
	return false
}

// Cell is the content of one board square.
type Cell uint8

const (
	Empty Cell = iota
	CellX
	CellO
)

func (c Cell) String() string {
	switch c {
	case CellX:
		return "x"
	case CellO:
		return "o"
	default:
		return ""
	}
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "":
		*c = Empty
	case "x", "X":
		*c = CellX
	case "o", "O":
		*c = CellO
	default:
		return fmt.Errorf("invalid cell %q", s)
	}
	return nil
}

// Symbol identifies a player. It never holds an empty value.
type Symbol uint8

const (
	X Symbol = iota + 1
	O
)

func ParseSymbol(s string) (Symbol, error) {
	switch s {
	case "x", "X":
		return X, nil
	case "o", "O":
		return O, nil
	}
	return 0, ErrInvalidSymbol
}

func (s Symbol) Valid() bool {
	return s == X || s == O
}

func (s Symbol) Cell() Cell {
	switch s {
	case X:
		return CellX
	case O:
		return CellO
	}
	return Empty
}

func (s Symbol) Opponent() Symbol {
	if s == X {
		return O
	}
	return X
}

func (s Symbol) String() string {
	return s.Cell().String()
}

func (s Symbol) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Symbol) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = 0
		return nil
	}
	parsed, err := ParseSymbol(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Move addresses one cell.
type Move struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

const (
	MinGridSize     = 3
	MaxGridSize     = 9
	DefaultGridSize = 4
)

// to represent the game status
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusActive   GameStatus = "active"
	StatusFinished GameStatus = "finished"
	StatusDraw     GameStatus = "draw"
)

const (
	ReasonThreeInRow = "three_in_row"
	ReasonDraw       = "draw"
	ReasonAbandon    = "abandon"
)

// basic error that can occur
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrInvalidMove        Error = "invalid move"
	ErrOutOfBounds        Error = "move is out of bounds"
	ErrCellOccupied       Error = "cell is already occupied"
	ErrNotYourTurn        Error = "not your turn"
	ErrGameNotActive      Error = "game is not active"
	ErrInvalidBoard       Error = "board must be square with side between 3 and 9"
	ErrBoardFull          Error = "board has no empty cell"
	ErrInvalidSymbol      Error = "symbol must be x or o"
	ErrInvalidGridSize    Error = "grid size must be between 3 and 9"
	ErrRoomNotFound       Error = "room not found"
	ErrRoomFull           Error = "room is full"
	ErrWaitingForOpponent Error = "waiting for opponent"
	ErrPlayerNotInGame    Error = "player not found in game"
	ErrAlreadyInGame      Error = "player is already in a game"
)
