package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/game"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/uid"
)

type RoomDirectory interface {
	GetLiveGames() []game.LiveGame
	GetRoomSnapshot(code string) (*domain.RoomSnapshot, bool)
}

// SnapshotLoader reads rooms that are not held in this process.
type SnapshotLoader interface {
	Load(ctx context.Context, code string) (*domain.RoomSnapshot, error)
}

type WatchHandler struct {
	Rooms  RoomDirectory
	Stored SnapshotLoader // Optional, can be nil
}

func NewWatchHandler(rooms RoomDirectory, stored SnapshotLoader) *WatchHandler {
	return &WatchHandler{Rooms: rooms, Stored: stored}
}

// GetLiveGames returns every room currently held in memory
func (h *WatchHandler) GetLiveGames(c *gin.Context) {
	c.JSON(http.StatusOK, h.Rooms.GetLiveGames())
}

// GetRoom returns the latest snapshot of one room, falling back to the room store.
func (h *WatchHandler) GetRoom(c *gin.Context) {
	code := uid.NormalizeRoomCode(c.Param("code"))
	if !uid.ValidRoomCode(code) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid room code"})
		return
	}

	if snap, ok := h.Rooms.GetRoomSnapshot(code); ok {
		c.JSON(http.StatusOK, snap)
		return
	}

	if h.Stored != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		snap, err := h.Stored.Load(ctx, code)
		if err != nil {
			log.Warn().Str("component", "redis").Str("room", code).Err(err).Msg("snapshot load failed")
		} else if snap != nil {
			c.JSON(http.StatusOK, snap)
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
}
