package game

import (
	"sync"
	"time"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
)

type Player struct {
	UserID   int64
	Username string
}

// GameSession is one room. The game inside it is replaced on every restart.
type GameSession struct {
	GameID           string
	RoomCode         string
	GridSize         int
	Players          map[domain.Symbol]*Player // the bot has no entry
	Game             *domain.Game
	Reason           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
	FinishedAt       time.Time
	BotSymbol        domain.Symbol // zero in PvP rooms
	BotDifficulty    string
	BotName          string
	RestartRequested map[domain.Symbol]bool

	engine *bot.Engine
	closed bool
	mu     sync.Mutex
}

func (gs *GameSession) IsBot() bool {
	return gs.BotSymbol != 0
}

func (gs *GameSession) symbolOf(userID int64) (domain.Symbol, bool) {
	for symbol, p := range gs.Players {
		if p.UserID == userID {
			return symbol, true
		}
	}
	return 0, false
}

func (gs *GameSession) nameOf(symbol domain.Symbol) string {
	if gs.IsBot() && symbol == gs.BotSymbol {
		return gs.BotName
	}
	if p := gs.Players[symbol]; p != nil {
		return p.Username
	}
	return ""
}

func (gs *GameSession) userIDOf(symbol domain.Symbol) *int64 {
	if p := gs.Players[symbol]; p != nil {
		id := p.UserID
		return &id
	}
	return nil
}

func (gs *GameSession) botToMoveLocked() bool {
	return gs.IsBot() && gs.Game.Status == domain.StatusActive && gs.Game.CurrentTurn == gs.BotSymbol
}

func (gs *GameSession) currentGameID() string {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.GameID
}

func (gs *GameSession) startLocked(first domain.Symbol, now time.Time) {
	gs.Game.Status = domain.StatusActive
	gs.Game.CurrentTurn = first
	gs.CreatedAt = now
	gs.UpdatedAt = now
}

func (gs *GameSession) broadcastLocked(conn ConnectionManagerInterface, msg domain.ServerMessage) {
	for _, p := range gs.Players {
		conn.SendMessage(p.UserID, msg)
	}
}

func (gs *GameSession) playerNamesLocked() map[string]string {
	names := make(map[string]string, 2)
	for _, symbol := range []domain.Symbol{domain.X, domain.O} {
		if name := gs.nameOf(symbol); name != "" {
			names[symbol.String()] = name
		}
	}
	return names
}

func (gs *GameSession) snapshotLocked() *domain.RoomSnapshot {
	restart := make(map[string]bool, 2)
	for _, symbol := range []domain.Symbol{domain.X, domain.O} {
		restart[symbol.String()] = gs.RestartRequested[symbol]
	}
	var last *domain.Move
	if gs.Game.LastMove != nil {
		m := *gs.Game.LastMove
		last = &m
	}
	return &domain.RoomSnapshot{
		Code:             gs.RoomCode,
		GameID:           gs.GameID,
		GridSize:         gs.GridSize,
		Board:            gs.Game.Board.Clone(),
		CurrentTurn:      gs.Game.CurrentTurn,
		Players:          gs.playerNamesLocked(),
		Status:           gs.Game.Status,
		GameActive:       gs.Game.Status == domain.StatusActive,
		Winner:           gs.Game.Winner,
		Draw:             gs.Game.Status == domain.StatusDraw,
		RestartRequested: restart,
		LastMove:         last,
		BotDifficulty:    gs.BotDifficulty,
		LastUpdated:      gs.UpdatedAt.UnixMilli(),
	}
}

// recordLocked builds the stored form of a finished game. Player1 is always a human:
// x in PvP rooms, the only human in bot games.
func (gs *GameSession) recordLocked() sqldb.GameRecord {
	p1Symbol := domain.X
	if gs.IsBot() {
		p1Symbol = gs.BotSymbol.Opponent()
	}
	p1 := gs.Players[p1Symbol]

	rec := sqldb.GameRecord{
		GameID:          gs.GameID,
		GridSize:        gs.GridSize,
		Player1ID:       p1.UserID,
		Player1Username: p1.Username,
		Player1Symbol:   p1Symbol,
		Player2ID:       gs.userIDOf(p1Symbol.Opponent()),
		Player2Username: gs.nameOf(p1Symbol.Opponent()),
		BotDifficulty:   gs.BotDifficulty,
		Reason:          gs.Reason,
		TotalMoves:      gs.Game.MoveCount,
		DurationSeconds: int(gs.FinishedAt.Sub(gs.CreatedAt).Seconds()),
		CreatedAt:       gs.CreatedAt,
		FinishedAt:      gs.FinishedAt,
		Board:           gs.Game.Board.Clone(),
	}
	if gs.Game.Status == domain.StatusFinished {
		rec.WinnerID = gs.userIDOf(gs.Game.Winner)
		rec.WinnerUsername = gs.nameOf(gs.Game.Winner)
	}
	return rec
}
