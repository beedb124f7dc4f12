package sqldb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

type GameRepo struct {
	DB *DB
}

func NewGameRepo(db *DB) *GameRepo {
	return &GameRepo{DB: db}
}

// GameRecord represents the result of a finished game. Player2ID is nil against a bot.
type GameRecord struct {
	GameID          string        `json:"gameId"`
	GridSize        int           `json:"gridSize"`
	Player1ID       int64         `json:"player1Id"`
	Player1Username string        `json:"player1Username"`
	Player1Symbol   domain.Symbol `json:"player1Symbol"`
	Player2ID       *int64        `json:"player2Id,omitempty"`
	Player2Username string        `json:"player2Username"`
	BotDifficulty   string        `json:"botDifficulty,omitempty"`
	WinnerID        *int64        `json:"winnerId,omitempty"`
	WinnerUsername  string        `json:"winnerUsername,omitempty"`
	Reason          string        `json:"reason"`
	TotalMoves      int           `json:"totalMoves"`
	DurationSeconds int           `json:"durationSeconds"`
	CreatedAt       time.Time     `json:"createdAt"`
	FinishedAt      time.Time     `json:"finishedAt"`
	Board           domain.Board  `json:"board,omitempty"`
}

func (g *GameRecord) IsDraw() bool {
	return g.Reason == domain.ReasonDraw
}

// SaveGame stores a finished game and updates player stats and ratings in one transaction.
// Saving the same game twice is a no-op.
func (r *GameRepo) SaveGame(rec GameRecord) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}

	defer tx.Rollback()

	var exists int
	err = tx.QueryRow(r.DB.rebind(`SELECT COUNT(*) FROM game WHERE game_id = ?;`), rec.GameID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check game record: %v", err)
	}
	if exists > 0 {
		return nil
	}

	if err := r.updateStatsTx(tx, rec); err != nil {
		return err
	}

	boardJSON, err := json.Marshal(rec.Board.ToInts())
	if err != nil {
		return fmt.Errorf("failed to marshal board state: %v", err)
	}

	query := r.DB.rebind(`
	INSERT INTO game (game_id, grid_size, player1_id, player1_username, player1_symbol, player2_id, player2_username, bot_difficulty, winner_id, winner_username, reason, total_moves, duration_seconds, created_at, finished_at, board_state)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`)
	_, err = tx.Exec(query,
		rec.GameID,
		rec.GridSize,
		rec.Player1ID,
		rec.Player1Username,
		rec.Player1Symbol.String(),
		rec.Player2ID,
		rec.Player2Username,
		rec.BotDifficulty,
		rec.WinnerID,
		rec.WinnerUsername,
		rec.Reason,
		rec.TotalMoves,
		rec.DurationSeconds,
		rec.CreatedAt.UTC(),
		rec.FinishedAt.UTC(),
		string(boardJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to insert game record: %v", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

func (r *GameRepo) updateStatsTx(tx *sql.Tx, rec GameRecord) error {
	score1 := domain.ScoreLoss
	switch {
	case rec.IsDraw():
		score1 = domain.ScoreDraw
	case rec.WinnerID != nil && *rec.WinnerID == rec.Player1ID:
		score1 = domain.ScoreWin
	}

	if rec.Player2ID == nil {
		// bot games count towards the record but leave the rating alone
		return r.updatePlayerTx(tx, rec.Player1ID, score1, nil)
	}

	rating1, err := r.ratingTx(tx, rec.Player1ID)
	if err != nil {
		return err
	}
	rating2, err := r.ratingTx(tx, *rec.Player2ID)
	if err != nil {
		return err
	}
	new1, new2 := domain.RatePair(rating1, rating2, score1)

	if err := r.updatePlayerTx(tx, rec.Player1ID, score1, &new1); err != nil {
		return err
	}
	return r.updatePlayerTx(tx, *rec.Player2ID, 1-score1, &new2)
}

func (r *GameRepo) ratingTx(tx *sql.Tx, userID int64) (int, error) {
	var rating int
	err := tx.QueryRow(r.DB.rebind(`SELECT rating FROM players WHERE id = ?;`), userID).Scan(&rating)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("player %d not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read rating: %v", err)
	}
	return rating, nil
}

// updatePlayerTx bumps the counters for one player and optionally sets a new rating
func (r *GameRepo) updatePlayerTx(tx *sql.Tx, userID int64, score float64, rating *int) error {
	won, drawn := 0, 0
	switch score {
	case domain.ScoreWin:
		won = 1
	case domain.ScoreDraw:
		drawn = 1
	}

	query := `
	UPDATE players
	SET games_played = games_played + 1,
	    games_won = games_won + ?,
	    games_drawn = games_drawn + ?,
	    rating = COALESCE(?, rating)
	WHERE id = ?;
	`
	_, err := tx.Exec(r.DB.rebind(query), won, drawn, rating, userID)
	if err != nil {
		return fmt.Errorf("failed to update player stats in transaction: %v", err)
	}
	return nil
}

const gameSelectFields = `game_id, grid_size, player1_id, player1_username, player1_symbol, player2_id, player2_username,
	       bot_difficulty, winner_id, winner_username, reason, total_moves, duration_seconds,
	       created_at, finished_at`

func scanGame(row interface{ Scan(dest ...any) error }, extra ...any) (*GameRecord, error) {
	var rec GameRecord
	var symbol string
	var player2ID, winnerID sql.NullInt64

	dest := []any{
		&rec.GameID,
		&rec.GridSize,
		&rec.Player1ID,
		&rec.Player1Username,
		&symbol,
		&player2ID,
		&rec.Player2Username,
		&rec.BotDifficulty,
		&winnerID,
		&rec.WinnerUsername,
		&rec.Reason,
		&rec.TotalMoves,
		&rec.DurationSeconds,
		&rec.CreatedAt,
		&rec.FinishedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	rec.Player1Symbol, _ = domain.ParseSymbol(symbol)
	if player2ID.Valid {
		id := player2ID.Int64
		rec.Player2ID = &id
	}
	if winnerID.Valid {
		id := winnerID.Int64
		rec.WinnerID = &id
	}
	return &rec, nil
}

// GetGameByID retrieves a stored game including its final board
func (r *GameRepo) GetGameByID(gameID string) (*GameRecord, error) {
	query := r.DB.rebind(`SELECT ` + gameSelectFields + `, board_state FROM game WHERE game_id = ?;`)

	var boardJSON sql.NullString
	rec, err := scanGame(r.DB.QueryRow(query, gameID), &boardJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game by ID: %v", err)
	}

	if boardJSON.Valid && boardJSON.String != "" {
		var ints [][]int
		if err := json.Unmarshal([]byte(boardJSON.String), &ints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal board state: %v", err)
		}
		rec.Board = boardFromInts(ints)
	}
	return rec, nil
}

// GetUserGameHistory retrieves all games for a user (both as player1 and player2)
func (r *GameRepo) GetUserGameHistory(userID int64) ([]GameRecord, error) {
	query := r.DB.rebind(`
	SELECT ` + gameSelectFields + `
	FROM game
	WHERE player1_id = ? OR player2_id = ?
	ORDER BY finished_at DESC;
	`)

	rows, err := r.DB.Query(query, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %v", err)
	}
	defer rows.Close()

	games := []GameRecord{}
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game row: %v", err)
		}
		games = append(games, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read game history: %v", err)
	}
	return games, nil
}

func boardFromInts(ints [][]int) domain.Board {
	board := domain.NewBoard(len(ints))
	for i := range ints {
		for j := range ints[i] {
			if j < len(board[i]) {
				board[i][j] = domain.Cell(ints[i][j])
			}
		}
	}
	return board
}
