package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/uid"
)

const (
	finishedSessionTTL   = 1 * time.Hour
	unfinishedSessionTTL = 24 * time.Hour
	roomStoreTimeout     = 2 * time.Second
)

type ConnectionManagerInterface interface {
	SendMessage(userID int64, message domain.ServerMessage) error
	RemoveConnection(userID int64)
}

type GameRepository interface {
	SaveGame(rec sqldb.GameRecord) error
}

// RoomStore persists room snapshots outside the process. Optional.
type RoomStore interface {
	Save(ctx context.Context, snap *domain.RoomSnapshot) error
	Delete(ctx context.Context, code string) error
}

type Options struct {
	Engine   bot.Config
	BotDelay time.Duration
}

// SessionManager manages active rooms
type SessionManager struct {
	Sessions   map[string]*GameSession // room code → GameSession
	UserToRoom map[int64]string        // userID → room code (for quick lookup)
	mu         sync.RWMutex

	repo  GameRepository
	rooms RoomStore
	conn  ConnectionManagerInterface
	opts  Options

	saves sync.WaitGroup
	now   func() time.Time
	coin  func() bool
	// schedule runs f after d; replaced in tests to run bot moves inline
	schedule func(d time.Duration, f func())
}

func NewSessionManager(repo GameRepository, rooms RoomStore, conn ConnectionManagerInterface, opts Options) *SessionManager {
	return &SessionManager{
		Sessions:   make(map[string]*GameSession),
		UserToRoom: make(map[int64]string),
		repo:       repo,
		rooms:      rooms,
		conn:       conn,
		opts:       opts,
		now:        time.Now,
		coin:       func() bool { return frand.Intn(2) == 0 },
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
}

func (sm *SessionManager) randomSymbol() domain.Symbol {
	if sm.coin() {
		return domain.X
	}
	return domain.O
}

// CreateRoom opens a room with the host playing x and waits for an opponent.
func (sm *SessionManager) CreateRoom(userID int64, username string, gridSize int) (*GameSession, error) {
	if gridSize < domain.MinGridSize || gridSize > domain.MaxGridSize {
		return nil, domain.ErrInvalidGridSize
	}
	sm.HandleLeave(userID)

	gs := sm.newSession(gridSize)
	gs.Players[domain.X] = &Player{UserID: userID, Username: username}
	gs.Game.Status = domain.StatusWaiting

	sm.register(gs, userID)

	gs.mu.Lock()
	defer gs.mu.Unlock()

	log.Info().Str("component", "session").Str("room", gs.RoomCode).Str("host", username).Int("grid", gridSize).Msg("room created")
	sm.conn.SendMessage(userID, domain.ServerMessage{
		Type:       "room_created",
		RoomCode:   gs.RoomCode,
		GridSize:   gridSize,
		YourSymbol: domain.X,
		Board:      gs.Game.Board,
	})
	sm.saveSnapshotLocked(gs)
	return gs, nil
}

// JoinRoom seats the caller as o and starts the game.
func (sm *SessionManager) JoinRoom(code string, userID int64, username string) (*GameSession, error) {
	code = uid.NormalizeRoomCode(code)
	gs, ok := sm.GetSessionByRoomCode(code)
	if !ok {
		return nil, domain.ErrRoomNotFound
	}

	gs.mu.Lock()
	if host := gs.Players[domain.X]; host != nil && host.UserID == userID {
		gs.mu.Unlock()
		return nil, domain.ErrAlreadyInGame
	}
	if gs.IsBot() || gs.Players[domain.O] != nil {
		gs.mu.Unlock()
		return nil, domain.ErrRoomFull
	}
	gs.mu.Unlock()

	if current, ok := sm.GetSessionByUserID(userID); ok && current != gs {
		sm.HandleLeave(userID)
	}

	gs.mu.Lock()
	defer gs.mu.Unlock()
	// the seat may have been taken while we left the previous room
	if gs.Players[domain.O] != nil || gs.closed {
		return nil, domain.ErrRoomFull
	}

	gs.Players[domain.O] = &Player{UserID: userID, Username: username}
	sm.mu.Lock()
	sm.UserToRoom[userID] = gs.RoomCode
	sm.mu.Unlock()

	gs.startLocked(sm.randomSymbol(), sm.now())
	log.Info().Str("component", "session").Str("room", gs.RoomCode).Str("guest", username).Msg("player joined")
	sm.announceStartLocked(gs)
	sm.saveSnapshotLocked(gs)
	return gs, nil
}

// CreateBotGame starts a game against the computer. symbol is the human's side; zero picks x.
func (sm *SessionManager) CreateBotGame(userID int64, username string, gridSize int, symbol domain.Symbol, difficulty string) (*GameSession, error) {
	if gridSize < domain.MinGridSize || gridSize > domain.MaxGridSize {
		return nil, domain.ErrInvalidGridSize
	}
	if symbol == 0 {
		symbol = domain.X
	}
	if !symbol.Valid() {
		return nil, domain.ErrInvalidSymbol
	}
	if !bot.ValidDifficulty(difficulty) {
		difficulty = bot.DifficultyMedium
	}
	sm.HandleLeave(userID)

	gs := sm.newSession(gridSize)
	gs.Players[symbol] = &Player{UserID: userID, Username: username}
	gs.BotSymbol = symbol.Opponent()
	gs.BotDifficulty = difficulty
	gs.BotName = domain.GetBotName(difficulty)
	gs.startLocked(sm.randomSymbol(), sm.now())

	sm.register(gs, userID)

	gs.mu.Lock()
	log.Info().Str("component", "session").Str("room", gs.RoomCode).Str("player", username).Str("difficulty", difficulty).Msg("bot game created")
	sm.announceStartLocked(gs)
	sm.saveSnapshotLocked(gs)
	botTurn := gs.botToMoveLocked()
	gs.mu.Unlock()

	if botTurn {
		sm.scheduleBotMove(gs)
	}
	return gs, nil
}

func (sm *SessionManager) newSession(gridSize int) *GameSession {
	now := sm.now()
	return &GameSession{
		GameID:           uid.GenerateGameID(),
		GridSize:         gridSize,
		Players:          make(map[domain.Symbol]*Player, 2),
		Game:             domain.NewGame(gridSize, domain.X),
		CreatedAt:        now,
		UpdatedAt:        now,
		RestartRequested: make(map[domain.Symbol]bool, 2),
		engine:           bot.NewEngine(sm.opts.Engine),
	}
}

// register assigns a unique room code and indexes the session.
func (sm *SessionManager) register(gs *GameSession, userID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	code := uid.GenerateRoomCode()
	for _, taken := sm.Sessions[code]; taken; _, taken = sm.Sessions[code] {
		code = uid.GenerateRoomCode()
	}
	gs.RoomCode = code
	sm.Sessions[code] = gs
	sm.UserToRoom[userID] = code
}

func (sm *SessionManager) GetSessionByUserID(userID int64) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	code, exists := sm.UserToRoom[userID]
	if !exists {
		return nil, false
	}
	session, exists := sm.Sessions[code]
	return session, exists
}

func (sm *SessionManager) GetSessionByRoomCode(code string) (*GameSession, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.Sessions[uid.NormalizeRoomCode(code)]
	return session, exists
}

// HandleMove applies a human move and, in bot games, queues the reply.
func (sm *SessionManager) HandleMove(userID int64, m domain.Move) error {
	gs, ok := sm.GetSessionByUserID(userID)
	if !ok {
		return domain.ErrPlayerNotInGame
	}

	gs.mu.Lock()
	symbol, isPlayer := gs.symbolOf(userID)
	if !isPlayer {
		gs.mu.Unlock()
		return domain.ErrPlayerNotInGame
	}
	if gs.Game.Status == domain.StatusWaiting {
		gs.mu.Unlock()
		return domain.ErrWaitingForOpponent
	}
	if err := sm.applyMoveLocked(gs, symbol, m); err != nil {
		gs.mu.Unlock()
		return err
	}
	botTurn := gs.botToMoveLocked()
	gs.mu.Unlock()

	if botTurn {
		sm.scheduleBotMove(gs)
	}
	return nil
}

func (sm *SessionManager) scheduleBotMove(gs *GameSession) {
	gameID := gs.currentGameID()
	sm.schedule(sm.opts.BotDelay, func() {
		if err := sm.HandleBotMove(gs, gameID); err != nil {
			log.Error().Str("component", "bot").Str("room", gs.RoomCode).Err(err).Msg("bot move failed")
		}
	})
}

// HandleBotMove plays the computer's turn. gameID guards against a restart in between.
func (sm *SessionManager) HandleBotMove(gs *GameSession, gameID string) error {
	gs.mu.Lock()
	defer gs.mu.Unlock()

	// Verify it's actually bot's turn (race condition check)
	if gs.closed || gs.GameID != gameID || !gs.botToMoveLocked() {
		return nil
	}

	m := bot.CalculateBestMove(gs.Game.Board, gs.BotSymbol, gs.BotDifficulty, gs.engine)
	return sm.applyMoveLocked(gs, gs.BotSymbol, m)
}

func (sm *SessionManager) applyMoveLocked(gs *GameSession, symbol domain.Symbol, m domain.Move) error {
	if err := gs.Game.MakeMove(symbol, m); err != nil {
		return err
	}
	gs.UpdatedAt = sm.now()

	move := m
	gs.broadcastLocked(sm.conn, domain.ServerMessage{
		Type:        "move_made",
		Player:      symbol,
		Move:        &move,
		Board:       gs.Game.Board,
		CurrentTurn: gs.Game.CurrentTurn,
	})

	switch gs.Game.Status {
	case domain.StatusFinished:
		sm.finishLocked(gs, domain.ReasonThreeInRow)
	case domain.StatusDraw:
		sm.finishLocked(gs, domain.ReasonDraw)
	}
	sm.saveSnapshotLocked(gs)
	return nil
}

// finishLocked announces the result and stores the game.
func (sm *SessionManager) finishLocked(gs *GameSession, reason string) {
	gs.FinishedAt = sm.now()
	gs.Reason = reason

	msg := domain.ServerMessage{
		Type:   "game_over",
		GameID: gs.GameID,
		Reason: reason,
		Board:  gs.Game.Board,
		Draw:   gs.Game.Status == domain.StatusDraw,
	}
	if !msg.Draw {
		msg.Winner = gs.nameOf(gs.Game.Winner)
		msg.Loser = gs.nameOf(gs.Game.Loser)
		if reason == domain.ReasonThreeInRow {
			msg.WinningCells = domain.WinningCells(gs.Game.Board, gs.Game.Loser)
		}
	}
	gs.broadcastLocked(sm.conn, msg)

	log.Info().
		Str("component", "session").
		Str("room", gs.RoomCode).
		Str("game", gs.GameID).
		Str("reason", reason).
		Str("winner", msg.Winner).
		Int("moves", gs.Game.MoveCount).
		Msg("game finished")

	sm.saveGameAsync(gs.recordLocked())
}

// Saves game data to database in background to avoid blocking game_over messages
func (sm *SessionManager) saveGameAsync(rec sqldb.GameRecord) {
	if sm.repo == nil {
		return
	}
	sm.saves.Add(1)
	go func() {
		defer sm.saves.Done()
		if err := sm.repo.SaveGame(rec); err != nil {
			log.Error().Str("component", "session").Str("game", rec.GameID).Err(err).Msg("error saving game")
			return
		}
		log.Debug().Str("component", "session").Str("game", rec.GameID).Msg("game saved")
	}()
}

// WaitForSaves blocks until every pending game write has finished.
func (sm *SessionManager) WaitForSaves() {
	sm.saves.Wait()
}

// HandleRestartRequest restarts bot games at once and PvP games once both players asked.
func (sm *SessionManager) HandleRestartRequest(userID int64) error {
	gs, ok := sm.GetSessionByUserID(userID)
	if !ok {
		return domain.ErrPlayerNotInGame
	}

	gs.mu.Lock()
	symbol, isPlayer := gs.symbolOf(userID)
	if !isPlayer {
		gs.mu.Unlock()
		return domain.ErrPlayerNotInGame
	}
	if gs.Game.Status == domain.StatusWaiting {
		gs.mu.Unlock()
		return domain.ErrWaitingForOpponent
	}

	if !gs.IsBot() {
		gs.RestartRequested[symbol] = true
		if !gs.RestartRequested[symbol.Opponent()] {
			opponent := gs.Players[symbol.Opponent()]
			sm.conn.SendMessage(opponent.UserID, domain.ServerMessage{
				Type:      "restart_requested",
				Requester: gs.Players[symbol].Username,
			})
			gs.UpdatedAt = sm.now()
			sm.saveSnapshotLocked(gs)
			gs.mu.Unlock()
			return nil
		}
	}

	sm.restartLocked(gs)
	botTurn := gs.botToMoveLocked()
	gs.mu.Unlock()

	if botTurn {
		sm.scheduleBotMove(gs)
	}
	return nil
}

func (sm *SessionManager) restartLocked(gs *GameSession) {
	gs.GameID = uid.GenerateGameID()
	gs.Reason = ""
	gs.FinishedAt = time.Time{}
	gs.RestartRequested = make(map[domain.Symbol]bool, 2)
	gs.Game = domain.NewGame(gs.GridSize, domain.X)
	gs.engine.Reset()
	gs.startLocked(sm.randomSymbol(), sm.now())

	log.Info().Str("component", "session").Str("room", gs.RoomCode).Str("game", gs.GameID).Msg("game restarted")
	sm.announceStartLocked(gs)
	sm.saveSnapshotLocked(gs)
}

// HandleLeave removes the caller's room. An active game is lost by the player who leaves.
func (sm *SessionManager) HandleLeave(userID int64) {
	gs, ok := sm.GetSessionByUserID(userID)
	if !ok {
		return
	}

	gs.mu.Lock()
	symbol, isPlayer := gs.symbolOf(userID)
	if isPlayer && gs.Game.Status == domain.StatusActive {
		opponent := symbol.Opponent()
		if gs.IsBot() || gs.Players[opponent] != nil {
			gs.Game.Forfeit(opponent)
			sm.finishLocked(gs, domain.ReasonAbandon)
		}
	}
	sm.conn.SendMessage(userID, domain.ServerMessage{Type: "left_room", RoomCode: gs.RoomCode})
	if isPlayer {
		if opp := gs.Players[symbol.Opponent()]; opp != nil {
			sm.conn.SendMessage(opp.UserID, domain.ServerMessage{
				Type:     "opponent_left",
				RoomCode: gs.RoomCode,
				Opponent: gs.Players[symbol].Username,
			})
		}
	}
	gs.closed = true
	code := gs.RoomCode
	gs.mu.Unlock()

	sm.RemoveSession(code)
	log.Info().Str("component", "session").Str("room", code).Int64("user", userID).Msg("player left")
}

// HandleDisconnect treats a dropped connection as leaving the room.
func (sm *SessionManager) HandleDisconnect(userID int64) {
	sm.HandleLeave(userID)
}

func (sm *SessionManager) RemoveSession(code string) {
	sm.mu.Lock()
	gs, exists := sm.Sessions[code]
	if !exists {
		sm.mu.Unlock()
		return
	}
	sm.removeSessionLocked(code, gs)
	sm.mu.Unlock()
	sm.deleteSnapshot(code)
}

// removeSessionLocked removes session from maps without acquiring lock (caller must hold it)
func (sm *SessionManager) removeSessionLocked(code string, gs *GameSession) {
	for _, p := range gs.Players {
		if sm.UserToRoom[p.UserID] == code {
			delete(sm.UserToRoom, p.UserID)
		}
	}
	delete(sm.Sessions, code)
}

// CleanupOldSessions drops finished rooms after an hour and idle unfinished rooms after a day.
func (sm *SessionManager) CleanupOldSessions() int {
	now := sm.now()

	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Sessions))
	for _, gs := range sm.Sessions {
		sessions = append(sessions, gs)
	}
	sm.mu.RUnlock()

	var stale []string
	for _, gs := range sessions {
		gs.mu.Lock()
		expired := false
		switch {
		case len(gs.Players) == 0:
			expired = true
		case gs.Game.IsFinished():
			expired = now.Sub(gs.FinishedAt) > finishedSessionTTL
		default:
			expired = now.Sub(gs.UpdatedAt) > unfinishedSessionTTL
		}
		if expired {
			gs.closed = true
			stale = append(stale, gs.RoomCode)
		}
		gs.mu.Unlock()
	}

	for _, code := range stale {
		sm.RemoveSession(code)
	}
	if len(stale) > 0 {
		log.Info().Str("component", "session").Int("removed", len(stale)).Msg("memory cleanup removed stale rooms")
	}
	return len(stale)
}

// LiveGame is the lobby view of a room.
type LiveGame struct {
	RoomCode    string            `json:"roomCode"`
	GridSize    int               `json:"gridSize"`
	Players     map[string]string `json:"players"`
	Status      domain.GameStatus `json:"status"`
	MoveCount   int               `json:"moveCount"`
	CurrentTurn domain.Symbol     `json:"currentTurn"`
	Bot         bool              `json:"bot"`
}

func (sm *SessionManager) GetLiveGames() []LiveGame {
	sm.mu.RLock()
	sessions := make([]*GameSession, 0, len(sm.Sessions))
	for _, gs := range sm.Sessions {
		sessions = append(sessions, gs)
	}
	sm.mu.RUnlock()

	games := make([]LiveGame, 0, len(sessions))
	for _, gs := range sessions {
		gs.mu.Lock()
		games = append(games, LiveGame{
			RoomCode:    gs.RoomCode,
			GridSize:    gs.GridSize,
			Players:     gs.playerNamesLocked(),
			Status:      gs.Game.Status,
			MoveCount:   gs.Game.MoveCount,
			CurrentTurn: gs.Game.CurrentTurn,
			Bot:         gs.IsBot(),
		})
		gs.mu.Unlock()
	}
	return games
}

func (sm *SessionManager) GetRoomSnapshot(code string) (*domain.RoomSnapshot, bool) {
	gs, ok := sm.GetSessionByRoomCode(code)
	if !ok {
		return nil, false
	}
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return gs.snapshotLocked(), true
}

func (sm *SessionManager) announceStartLocked(gs *GameSession) {
	for symbol, p := range gs.Players {
		sm.conn.SendMessage(p.UserID, domain.ServerMessage{
			Type:        "game_start",
			GameID:      gs.GameID,
			RoomCode:    gs.RoomCode,
			GridSize:    gs.GridSize,
			Opponent:    gs.nameOf(symbol.Opponent()),
			YourSymbol:  symbol,
			CurrentTurn: gs.Game.CurrentTurn,
			Board:       gs.Game.Board,
		})
	}
}

func (sm *SessionManager) saveSnapshotLocked(gs *GameSession) {
	if sm.rooms == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), roomStoreTimeout)
	defer cancel()
	if err := sm.rooms.Save(ctx, gs.snapshotLocked()); err != nil {
		log.Warn().Str("component", "session").Str("room", gs.RoomCode).Err(err).Msg("failed to store room snapshot")
	}
}

func (sm *SessionManager) deleteSnapshot(code string) {
	if sm.rooms == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), roomStoreTimeout)
	defer cancel()
	if err := sm.rooms.Delete(ctx, code); err != nil {
		log.Warn().Str("component", "session").Str("room", code).Err(err).Msg("failed to delete room snapshot")
	}
}
