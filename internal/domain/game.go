package domain

// Game holds one round of reverse tic-tac-toe. Whoever completes three in a row loses.
type Game struct {
	Board       Board
	CurrentTurn Symbol
	Status      GameStatus
	Winner      Symbol // zero while undecided or on a draw
	Loser       Symbol
	MoveCount   int
	LastMove    *Move
}

func NewGame(size int, first Symbol) *Game {
	return &Game{
		Board:       NewBoard(size),
		CurrentTurn: first,
		Status:      StatusActive,
	}
}

func (g *Game) MakeMove(player Symbol, m Move) error {
	if g.Status != StatusActive {
		return ErrGameNotActive
	}
	if player != g.CurrentTurn {
		return ErrNotYourTurn
	}
	if !g.Board.InBounds(m.Row, m.Col) {
		return ErrOutOfBounds
	}
	if g.Board.At(m) != Empty {
		return ErrCellOccupied
	}

	g.Board.Set(m, player.Cell())
	g.MoveCount++
	last := m
	g.LastMove = &last

	if CompletesLineAt(g.Board, m, player) {
		g.Status = StatusFinished
		g.Loser = player
		g.Winner = player.Opponent()
		return nil
	}

	if g.Board.IsFull() {
		g.Status = StatusDraw
		return nil
	}

	g.CurrentTurn = player.Opponent()
	return nil
}

// Forfeit ends an active game in favour of winner.
func (g *Game) Forfeit(winner Symbol) {
	g.Status = StatusFinished
	g.Winner = winner
	g.Loser = winner.Opponent()
}

func (g *Game) IsFinished() bool {
	return g.Status == StatusFinished || g.Status == StatusDraw
}

// CompletesLineAt reports whether the stone already on m is part of a line of player.
func CompletesLineAt(board Board, m Move, player Symbol) bool {
	c := player.Cell()
	for _, line := range LinesThrough(board.Size(), m) {
		if owned, _ := LineCounts(board, line, c); owned == LineLength {
			return true
		}
	}
	return false
}
