package bot

import (
	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

// calculateEasyMove plays any cell that does not lose on the spot.
func calculateEasyMove(board domain.Board, botSymbol domain.Symbol, intn func(int) int) domain.Move {
	empties := domain.EmptyCells(board)
	if len(empties) == 0 {
		return domain.Move{Row: -1, Col: -1}
	}

	safe := safeMoves(board, empties, botSymbol)
	if len(safe) == 0 {
		return empties[intn(len(empties))]
	}
	return safe[intn(len(safe))]
}
