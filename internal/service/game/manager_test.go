package game

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/repository/sqldb"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
)

type fakeConn struct {
	mu      sync.Mutex
	msgs    map[int64][]domain.ServerMessage
	removed []int64
}

func newFakeConn() *fakeConn {
	return &fakeConn{msgs: make(map[int64][]domain.ServerMessage)}
}

func (c *fakeConn) SendMessage(userID int64, msg domain.ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs[userID] = append(c.msgs[userID], msg)
	return nil
}

func (c *fakeConn) RemoveConnection(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removed = append(c.removed, userID)
}

func (c *fakeConn) last(userID int64, msgType string) (domain.ServerMessage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := c.msgs[userID]
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Type == msgType {
			return msgs[i], true
		}
	}
	return domain.ServerMessage{}, false
}

func (c *fakeConn) count(userID int64, msgType string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.msgs[userID] {
		if m.Type == msgType {
			n++
		}
	}
	return n
}

type fakeRepo struct {
	mu      sync.Mutex
	records []sqldb.GameRecord
}

func (r *fakeRepo) SaveGame(rec sqldb.GameRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec)
	return nil
}

type fakeRooms struct {
	mu      sync.Mutex
	snaps   map[string]*domain.RoomSnapshot
	deleted []string
}

func (f *fakeRooms) Save(_ context.Context, snap *domain.RoomSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snaps[snap.Code] = snap
	return nil
}

func (f *fakeRooms) Delete(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.snaps, code)
	f.deleted = append(f.deleted, code)
	return nil
}

type harness struct {
	sm    *SessionManager
	conn  *fakeConn
	repo  *fakeRepo
	rooms *fakeRooms
	clock time.Time
}

const (
	hostID  int64 = 1
	guestID int64 = 2
	otherID int64 = 3
)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		conn:  newFakeConn(),
		repo:  &fakeRepo{},
		rooms: &fakeRooms{snaps: make(map[string]*domain.RoomSnapshot)},
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	h.sm = NewSessionManager(h.repo, h.rooms, h.conn, Options{
		Engine: bot.Config{TimeBudget: 50 * time.Millisecond},
	})
	h.sm.schedule = func(_ time.Duration, f func()) { f() }
	h.sm.coin = func() bool { return true } // x always starts
	h.sm.now = func() time.Time { return h.clock }
	return h
}

func (h *harness) startPvP(t *testing.T, gridSize int) *GameSession {
	t.Helper()
	gs, err := h.sm.CreateRoom(hostID, "host", gridSize)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	if _, err := h.sm.JoinRoom(gs.RoomCode, guestID, "guest"); err != nil {
		t.Fatalf("join room: %v", err)
	}
	return gs
}

func (h *harness) play(t *testing.T, moves ...[3]int) {
	t.Helper()
	for _, mv := range moves {
		userID := int64(mv[0])
		if err := h.sm.HandleMove(userID, domain.Move{Row: mv[1], Col: mv[2]}); err != nil {
			t.Fatalf("move %v: %v", mv, err)
		}
	}
}

func TestCreateAndJoinRoom(t *testing.T) {
	h := newHarness(t)
	gs, err := h.sm.CreateRoom(hostID, "host", 4)
	if err != nil {
		t.Fatalf("create room: %v", err)
	}

	created, ok := h.conn.last(hostID, "room_created")
	if !ok || created.RoomCode != gs.RoomCode || created.YourSymbol != domain.X {
		t.Fatalf("room_created = %+v", created)
	}
	if snap := h.rooms.snaps[gs.RoomCode]; snap == nil || snap.Status != domain.StatusWaiting {
		t.Fatalf("waiting snapshot not stored: %+v", snap)
	}

	if err := h.sm.HandleMove(hostID, domain.Move{Row: 0, Col: 0}); err != domain.ErrWaitingForOpponent {
		t.Fatalf("move before join = %v", err)
	}

	// codes are case-insensitive for the joiner
	if _, err := h.sm.JoinRoom(strings.ToLower(gs.RoomCode), guestID, "guest"); err != nil {
		t.Fatalf("join: %v", err)
	}

	hostStart, ok1 := h.conn.last(hostID, "game_start")
	guestStart, ok2 := h.conn.last(guestID, "game_start")
	if !ok1 || !ok2 {
		t.Fatalf("both players should receive game_start")
	}
	if hostStart.YourSymbol != domain.X || guestStart.YourSymbol != domain.O {
		t.Fatalf("symbols: host %v guest %v", hostStart.YourSymbol, guestStart.YourSymbol)
	}
	if hostStart.Opponent != "guest" || guestStart.Opponent != "host" {
		t.Fatalf("opponent names: %q %q", hostStart.Opponent, guestStart.Opponent)
	}
	if snap := h.rooms.snaps[gs.RoomCode]; snap == nil || !snap.GameActive || snap.Players["o"] != "guest" {
		t.Fatalf("active snapshot = %+v", snap)
	}
}

func TestJoinRoomErrors(t *testing.T) {
	h := newHarness(t)
	if _, err := h.sm.CreateRoom(hostID, "host", 2); err != domain.ErrInvalidGridSize {
		t.Fatalf("grid 2 = %v", err)
	}
	if _, err := h.sm.JoinRoom("ZZZZZZ", guestID, "guest"); err != domain.ErrRoomNotFound {
		t.Fatalf("unknown room = %v", err)
	}

	gs := h.startPvP(t, 3)
	if _, err := h.sm.JoinRoom(gs.RoomCode, otherID, "other"); err != domain.ErrRoomFull {
		t.Fatalf("third player = %v", err)
	}
	if _, err := h.sm.JoinRoom(gs.RoomCode, hostID, "host"); err != domain.ErrAlreadyInGame {
		t.Fatalf("host joining own room = %v", err)
	}
}

func TestCompletingOwnLineLosesTheRoom(t *testing.T) {
	h := newHarness(t)
	h.startPvP(t, 3)

	if err := h.sm.HandleMove(guestID, domain.Move{Row: 0, Col: 0}); err != domain.ErrNotYourTurn {
		t.Fatalf("guest moving first = %v", err)
	}
	if err := h.sm.HandleMove(otherID, domain.Move{Row: 0, Col: 0}); err != domain.ErrPlayerNotInGame {
		t.Fatalf("outsider move = %v", err)
	}

	h.play(t,
		[3]int{1, 0, 0},
		[3]int{2, 1, 0},
		[3]int{1, 0, 1},
		[3]int{2, 2, 2},
		[3]int{1, 0, 2}, // host completes the top row
	)

	for _, id := range []int64{hostID, guestID} {
		over, ok := h.conn.last(id, "game_over")
		if !ok {
			t.Fatalf("user %d got no game_over", id)
		}
		if over.Winner != "guest" || over.Loser != "host" || over.Reason != domain.ReasonThreeInRow {
			t.Fatalf("game_over = %+v", over)
		}
		if len(over.WinningCells) != 3 {
			t.Fatalf("winning cells = %v", over.WinningCells)
		}
	}

	h.sm.WaitForSaves()
	if len(h.repo.records) != 1 {
		t.Fatalf("expected one saved game, got %d", len(h.repo.records))
	}
	rec := h.repo.records[0]
	if rec.Player1ID != hostID || rec.Player2ID == nil || *rec.Player2ID != guestID {
		t.Fatalf("record players = %+v", rec)
	}
	if rec.WinnerID == nil || *rec.WinnerID != guestID || rec.TotalMoves != 5 {
		t.Fatalf("record result = %+v", rec)
	}
}

func TestRestartNeedsBothPlayers(t *testing.T) {
	h := newHarness(t)
	gs := h.startPvP(t, 3)
	firstGame := gs.GameID
	h.play(t, [3]int{1, 1, 1})

	if err := h.sm.HandleRestartRequest(hostID); err != nil {
		t.Fatalf("host restart: %v", err)
	}
	req, ok := h.conn.last(guestID, "restart_requested")
	if !ok || req.Requester != "host" {
		t.Fatalf("guest should be asked, got %+v", req)
	}
	if gs.GameID != firstGame {
		t.Fatalf("one request must not restart the game")
	}
	if !h.rooms.snaps[gs.RoomCode].RestartRequested["x"] {
		t.Fatalf("snapshot should record the pending request")
	}

	if err := h.sm.HandleRestartRequest(guestID); err != nil {
		t.Fatalf("guest restart: %v", err)
	}
	if gs.GameID == firstGame {
		t.Fatalf("game id should change on restart")
	}
	if !gs.Game.Board.IsEmpty() || gs.Game.Status != domain.StatusActive {
		t.Fatalf("restart should clear the board")
	}
	if h.conn.count(hostID, "game_start") != 2 || h.conn.count(guestID, "game_start") != 2 {
		t.Fatalf("both players should get a second game_start")
	}
	if gs.RestartRequested[domain.X] || gs.RestartRequested[domain.O] {
		t.Fatalf("restart flags should reset")
	}
}

func TestLeaveActiveGameIsAbandon(t *testing.T) {
	h := newHarness(t)
	gs := h.startPvP(t, 4)
	h.play(t, [3]int{1, 0, 0})

	h.sm.HandleLeave(guestID)

	over, ok := h.conn.last(hostID, "game_over")
	if !ok || over.Winner != "host" || over.Reason != domain.ReasonAbandon {
		t.Fatalf("host game_over = %+v", over)
	}
	if _, ok := h.conn.last(hostID, "opponent_left"); !ok {
		t.Fatalf("host should be told the opponent left")
	}
	if _, ok := h.sm.GetSessionByRoomCode(gs.RoomCode); ok {
		t.Fatalf("room should be removed")
	}
	if _, ok := h.sm.GetSessionByUserID(hostID); ok {
		t.Fatalf("host should be free to start another room")
	}
	if len(h.rooms.deleted) != 1 || h.rooms.deleted[0] != gs.RoomCode {
		t.Fatalf("snapshot not deleted: %v", h.rooms.deleted)
	}

	h.sm.WaitForSaves()
	if len(h.repo.records) != 1 || h.repo.records[0].Reason != domain.ReasonAbandon {
		t.Fatalf("abandoned game not saved: %+v", h.repo.records)
	}
}

func TestLeaveWaitingRoom(t *testing.T) {
	h := newHarness(t)
	gs, _ := h.sm.CreateRoom(hostID, "host", 3)
	h.sm.HandleLeave(hostID)
	if _, ok := h.sm.GetSessionByRoomCode(gs.RoomCode); ok {
		t.Fatalf("room should be removed")
	}
	h.sm.WaitForSaves()
	if len(h.repo.records) != 0 {
		t.Fatalf("an unstarted room must not be saved")
	}
}

func TestBotOpensWhenItStarts(t *testing.T) {
	h := newHarness(t)
	// x starts and the human takes o, so the bot plays first
	gs, err := h.sm.CreateBotGame(hostID, "host", 5, domain.O, bot.DifficultyHard)
	if err != nil {
		t.Fatalf("create bot game: %v", err)
	}

	start, ok := h.conn.last(hostID, "game_start")
	if !ok || start.Opponent != "Charles" || start.YourSymbol != domain.O {
		t.Fatalf("game_start = %+v", start)
	}
	moved, ok := h.conn.last(hostID, "move_made")
	if !ok || moved.Player != domain.X || moved.Move == nil || *moved.Move != (domain.Move{Row: 2, Col: 2}) {
		t.Fatalf("bot should open in the centre, got %+v", moved)
	}
	if gs.Game.CurrentTurn != domain.O {
		t.Fatalf("turn should pass to the human")
	}
}

func TestBotRepliesToMove(t *testing.T) {
	h := newHarness(t)
	gs, err := h.sm.CreateBotGame(hostID, "host", 4, domain.X, bot.DifficultyEasy)
	if err != nil {
		t.Fatalf("create bot game: %v", err)
	}
	h.play(t, [3]int{1, 0, 0})

	if gs.Game.MoveCount != 2 {
		t.Fatalf("bot should have replied, move count %d", gs.Game.MoveCount)
	}
	if gs.Game.CurrentTurn != domain.X {
		t.Fatalf("turn should be back with the human")
	}
	if h.conn.count(hostID, "move_made") != 2 {
		t.Fatalf("human should see both moves")
	}
}

func TestBotGameRestartsImmediately(t *testing.T) {
	h := newHarness(t)
	gs, _ := h.sm.CreateBotGame(hostID, "host", 3, domain.X, bot.DifficultyMedium)
	first := gs.GameID

	if err := h.sm.HandleRestartRequest(hostID); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if gs.GameID == first || h.conn.count(hostID, "game_start") != 2 {
		t.Fatalf("bot game should restart on a single request")
	}
}

func TestCreateBotGameInvalidSymbol(t *testing.T) {
	h := newHarness(t)
	if _, err := h.sm.CreateBotGame(hostID, "host", 3, domain.Symbol(7), "hard"); err != domain.ErrInvalidSymbol {
		t.Fatalf("err = %v", err)
	}
}

func TestCleanupOldSessions(t *testing.T) {
	h := newHarness(t)

	finished := h.startPvP(t, 3)
	h.play(t,
		[3]int{1, 0, 0},
		[3]int{2, 1, 0},
		[3]int{1, 0, 1},
		[3]int{2, 2, 2},
		[3]int{1, 0, 2},
	)
	idle, _ := h.sm.CreateRoom(otherID, "other", 4)

	h.clock = h.clock.Add(2 * time.Hour)
	if n := h.sm.CleanupOldSessions(); n != 1 {
		t.Fatalf("removed %d rooms after 2h, want 1", n)
	}
	if _, ok := h.sm.GetSessionByRoomCode(finished.RoomCode); ok {
		t.Fatalf("finished room should be gone")
	}
	if _, ok := h.sm.GetSessionByRoomCode(idle.RoomCode); !ok {
		t.Fatalf("waiting room should survive two hours")
	}

	h.clock = h.clock.Add(23 * time.Hour)
	if n := h.sm.CleanupOldSessions(); n != 1 {
		t.Fatalf("removed %d rooms after 25h, want 1", n)
	}
	if len(h.sm.Sessions) != 0 || len(h.sm.UserToRoom) != 0 {
		t.Fatalf("manager should be empty: %v %v", h.sm.Sessions, h.sm.UserToRoom)
	}
}

func TestLiveGamesAndSnapshot(t *testing.T) {
	h := newHarness(t)
	gs := h.startPvP(t, 4)
	h.play(t, [3]int{1, 3, 3})
	if _, err := h.sm.CreateBotGame(otherID, "other", 3, domain.X, "easy"); err != nil {
		t.Fatalf("bot game: %v", err)
	}

	live := h.sm.GetLiveGames()
	if len(live) != 2 {
		t.Fatalf("live games = %+v", live)
	}

	snap, ok := h.sm.GetRoomSnapshot(gs.RoomCode)
	if !ok {
		t.Fatalf("snapshot missing")
	}
	if snap.LastMove == nil || *snap.LastMove != (domain.Move{Row: 3, Col: 3}) || snap.CurrentTurn != domain.O {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Board[3][3] != domain.CellX {
		t.Fatalf("snapshot board missing the move")
	}
	if _, ok := h.sm.GetRoomSnapshot("NOPE22"); ok {
		t.Fatalf("unknown room should not have a snapshot")
	}
}

func TestCreatingRoomLeavesPreviousOne(t *testing.T) {
	h := newHarness(t)
	first, _ := h.sm.CreateRoom(hostID, "host", 3)
	second, _ := h.sm.CreateRoom(hostID, "host", 4)
	if _, ok := h.sm.GetSessionByRoomCode(first.RoomCode); ok {
		t.Fatalf("previous room should be closed")
	}
	if gs, ok := h.sm.GetSessionByUserID(hostID); !ok || gs != second {
		t.Fatalf("user should map to the new room")
	}
}
