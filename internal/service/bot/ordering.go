package bot

import (
	"sort"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

type rankedMove struct {
	move       domain.Move
	selfLoss   bool
	blocksEdge bool
	forcing    float64
	distance   int
}

// OrderMoves ranks candidate cells for mover, most promising first:
// moves that complete mover's own line go last, then moves filling the gap of an opponent
// two-in-a-row on the border, then higher forcing potential, then closeness to the centre.
// Ties keep the input order. The board is restored before returning.
func OrderMoves(board domain.Board, moves []domain.Move, mover domain.Symbol) []domain.Move {
	opponent := mover.Opponent()
	center := board.Center()

	ranked := make([]rankedMove, len(moves))
	for i, m := range moves {
		rm := rankedMove{
			move:       m,
			selfLoss:   domain.CompletesLine(board, m, mover),
			blocksEdge: fillsEdgeGap(board, m, opponent),
			distance:   abs(m.Row-center.Row) + abs(m.Col-center.Col),
		}
		rm.forcing = withStone(board, m, mover.Cell(), func() float64 {
			return 0.5*float64(twoGapLinesThrough(board, m, mover)) - 0.5*float64(twoGapLines(board, opponent))
		})
		ranked[i] = rm
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.selfLoss != b.selfLoss {
			return !a.selfLoss
		}
		if a.blocksEdge != b.blocksEdge {
			return a.blocksEdge
		}
		if a.forcing != b.forcing {
			return a.forcing > b.forcing
		}
		return a.distance < b.distance
	})

	out := make([]domain.Move, len(ranked))
	for i, rm := range ranked {
		out[i] = rm.move
	}
	return out
}

// fillsEdgeGap reports whether m is the empty cell of a border segment where opponent has two.
func fillsEdgeGap(board domain.Board, m domain.Move, opponent domain.Symbol) bool {
	c := opponent.Cell()
	for _, line := range domain.LinesThrough(board.Size(), m) {
		if !line.TouchesEdge {
			continue
		}
		if owned, empty := domain.LineCounts(board, line, c); owned == 2 && empty == 1 {
			return true
		}
	}
	return false
}

// safeMoves drops the moves that would complete mover's own line.
func safeMoves(board domain.Board, moves []domain.Move, mover domain.Symbol) []domain.Move {
	safe := make([]domain.Move, 0, len(moves))
	for _, m := range moves {
		if !domain.CompletesLine(board, m, mover) {
			safe = append(safe, m)
		}
	}
	return safe
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
