package bot

import (
	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

// calculateMediumMove takes the best ordered safe move, preferring one that leaves the
// opponent only self-completing replies.
func calculateMediumMove(board domain.Board, botSymbol domain.Symbol) domain.Move {
	empties := domain.EmptyCells(board)
	if len(empties) == 0 {
		return domain.Move{Row: -1, Col: -1}
	}

	ordered := OrderMoves(board, empties, botSymbol)
	safe := safeMoves(board, ordered, botSymbol)
	if len(safe) == 0 {
		return ordered[0]
	}

	opponent := botSymbol.Opponent()
	for _, m := range safe {
		trapped := withStone(board, m, botSymbol.Cell(), func() bool {
			replies := domain.EmptyCells(board)
			return len(replies) > 0 && len(safeMoves(board, replies, opponent)) == 0
		})
		if trapped {
			return m
		}
	}
	return safe[0]
}
