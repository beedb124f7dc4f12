package sqldb

import (
	"database/sql"
	"fmt"
	"time"
)

type UserRepo struct {
	DB *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{DB: db}
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	GamesPlayed  int
	GamesWon     int
	GamesDrawn   int
	Rating       int
	CreatedAt    time.Time
}

type PlayerStats struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

// UserResponse returns a consistent JSON-friendly map of user data
func (u *User) UserResponse() map[string]interface{} {
	return map[string]interface{}{
		"id":       u.ID,
		"username": u.Username,
		"rating":   u.Rating,
		"wins":     u.GamesWon,
		"losses":   u.GamesPlayed - u.GamesWon - u.GamesDrawn,
		"draws":    u.GamesDrawn,
	}
}

// CreateUser inserts a new player with the default rating
func (r *UserRepo) CreateUser(username, passwordHash string) (int64, error) {
	query := r.DB.rebind(`
	INSERT INTO players (username, password_hash, games_played, games_won, games_drawn, rating)
	VALUES (?, ?, 0, 0, 0, 1000)
	RETURNING id;
	`)
	var userID int64
	if err := r.DB.QueryRow(query, username, passwordHash).Scan(&userID); err != nil {
		return 0, fmt.Errorf("failed to create user: %v", err)
	}
	return userID, nil
}

// scanUser is a helper that scans a row into a User struct
func scanUser(row interface{ Scan(dest ...any) error }) (*User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.GamesPlayed,
		&user.GamesWon,
		&user.GamesDrawn,
		&user.Rating,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

const userSelectFields = `id, username, password_hash, games_played, games_won, games_drawn, rating, created_at`

// GetUserByUsername retrieves a user by username
func (r *UserRepo) GetUserByUsername(username string) (*User, error) {
	query := r.DB.rebind(`SELECT ` + userSelectFields + ` FROM players WHERE username = ?;`)
	user, err := scanUser(r.DB.QueryRow(query, username))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by id
func (r *UserRepo) GetUserByID(userID int64) (*User, error) {
	query := r.DB.rebind(`SELECT ` + userSelectFields + ` FROM players WHERE id = ?;`)
	user, err := scanUser(r.DB.QueryRow(query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %v", err)
	}
	return user, nil
}

// GetLeaderboard lists the best rated players that have finished at least one game
func (r *UserRepo) GetLeaderboard(limit int) ([]PlayerStats, error) {
	if limit <= 0 {
		limit = 10
	}
	query := r.DB.rebind(`
	SELECT username, rating, games_played, games_won, games_drawn
	FROM players
	WHERE games_played > 0
	ORDER BY rating DESC, games_won DESC, username ASC
	LIMIT ?;
	`)
	rows, err := r.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %v", err)
	}
	defer rows.Close()

	stats := []PlayerStats{}
	for rows.Next() {
		var s PlayerStats
		var played int
		if err := rows.Scan(&s.Username, &s.Rating, &played, &s.Wins, &s.Draws); err != nil {
			return nil, fmt.Errorf("failed to scan leaderboard row: %v", err)
		}
		s.Losses = played - s.Wins - s.Draws
		s.Rank = len(stats) + 1
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %v", err)
	}
	return stats, nil
}
