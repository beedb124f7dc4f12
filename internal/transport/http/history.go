package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/transport/http/middleware"
)

type HistoryStore interface {
	GetUserGameHistory(userID int64) ([]sqldb.GameRecord, error)
	GetGameByID(gameID string) (*sqldb.GameRecord, error)
}

type HistoryHandler struct {
	Games HistoryStore
}

func NewHistoryHandler(games HistoryStore) *HistoryHandler {
	return &HistoryHandler{Games: games}
}

type GameHistoryItem struct {
	ID               string    `json:"id"`
	OpponentUsername string    `json:"opponentUsername"`
	Bot              bool      `json:"bot"`
	Result           string    `json:"result"` // "win", "loss", "draw"
	EndReason        string    `json:"endReason"`
	GridSize         int       `json:"gridSize"`
	CreatedAt        time.Time `json:"createdAt"`
	MovesCount       int       `json:"movesCount"`
}

// historyItem describes rec from userID's side. Bot wins have no WinnerID, so a missing
// winner only means a draw when the game was drawn.
func historyItem(rec sqldb.GameRecord, userID int64) GameHistoryItem {
	item := GameHistoryItem{
		ID:         rec.GameID,
		Bot:        rec.Player2ID == nil,
		EndReason:  rec.Reason,
		GridSize:   rec.GridSize,
		CreatedAt:  rec.CreatedAt,
		MovesCount: rec.TotalMoves,
	}

	if rec.Player1ID == userID {
		item.OpponentUsername = rec.Player2Username
	} else {
		item.OpponentUsername = rec.Player1Username
	}

	switch {
	case rec.IsDraw():
		item.Result = "draw"
	case rec.WinnerID != nil && *rec.WinnerID == userID:
		item.Result = "win"
	default:
		item.Result = "loss"
	}
	return item
}

func (h *HistoryHandler) GetHistory(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	records, err := h.Games.GetUserGameHistory(userID)
	if err != nil {
		log.Error().Str("component", "db").Int64("user", userID).Err(err).Msg("history query failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	history := make([]GameHistoryItem, 0, len(records))
	for _, rec := range records {
		history = append(history, historyItem(rec, userID))
	}
	c.JSON(http.StatusOK, history)
}

func (h *HistoryHandler) GetGameDetails(c *gin.Context) {
	gameID := c.Param("id")
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game ID"})
		return
	}

	rec, err := h.Games.GetGameByID(gameID)
	if err != nil {
		log.Error().Str("component", "db").Str("game", gameID).Err(err).Msg("game lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch game"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}
