package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
)

// EngineHandler answers one-off move requests. Each request gets its own engine,
// so nothing is cached between callers.
type EngineHandler struct {
	Config bot.Config
}

func NewEngineHandler(cfg bot.Config) *EngineHandler {
	return &EngineHandler{Config: cfg}
}

type engineMoveRequest struct {
	Board      domain.Board `json:"board"`
	AISymbol   string       `json:"aiSymbol"`
	Difficulty string       `json:"difficulty"`
}

type engineMoveResponse struct {
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	Score    float64 `json:"score"`
	Depth    int     `json:"depth"`
	Nodes    int     `json:"nodes"`
	TimedOut bool    `json:"timedOut,omitempty"`
}

func (h *EngineHandler) Move(c *gin.Context) {
	var req engineMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}

	if err := req.Board.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Board.IsFull() {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrBoardFull.Error()})
		return
	}
	if domain.HasLine(req.Board, domain.X) || domain.HasLine(req.Board, domain.O) {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrGameNotActive.Error()})
		return
	}

	ai := domain.O
	if req.AISymbol != "" {
		parsed, err := domain.ParseSymbol(req.AISymbol)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ai = parsed
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = bot.DifficultyHard
	}
	if !bot.ValidDifficulty(difficulty) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "difficulty must be easy, medium or hard"})
		return
	}

	if difficulty != bot.DifficultyHard {
		m := bot.CalculateBestMove(req.Board, ai, difficulty, nil)
		c.JSON(http.StatusOK, engineMoveResponse{Row: m.Row, Col: m.Col})
		return
	}

	d := bot.NewEngine(h.Config).DecideMove(req.Board, ai.Opponent(), ai)
	c.JSON(http.StatusOK, engineMoveResponse{
		Row:      d.Move.Row,
		Col:      d.Move.Col,
		Score:    d.Score,
		Depth:    d.Depth,
		Nodes:    d.Nodes,
		TimedOut: d.TimedOut,
	})
}
