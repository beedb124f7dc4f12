package bot

import (
	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const (
	// Latent risk carried by one three-cell segment. A segment with two of a symbol and one
	// empty cell forbids that symbol from the empty cell; border segments have fewer
	// neighbouring segments to absorb that.
	RISK_TWO_EDGE  = 8
	RISK_TWO_INNER = 4
	RISK_ONE       = 1

	EVAL_SCALE = 10.0
)

// lineRisk scores one segment for the symbol occupying cells with c.
func lineRisk(board domain.Board, line domain.Line, c domain.Cell) int {
	owned, empty := domain.LineCounts(board, line, c)
	switch {
	case owned == 2 && empty == 1:
		if line.TouchesEdge {
			return RISK_TWO_EDGE
		}
		return RISK_TWO_INNER
	case owned == 1 && empty == 2:
		return RISK_ONE
	}
	return 0
}

// Risk sums the latent self-loss risk of symbol over every segment.
func Risk(board domain.Board, symbol domain.Symbol) int {
	c := symbol.Cell()
	total := 0
	for _, line := range domain.Lines(board.Size()) {
		total += lineRisk(board, line, c)
	}
	return total
}

// Evaluate scores a non-terminal position for ai. Positive when the opponent carries more risk.
func Evaluate(board domain.Board, human, ai domain.Symbol) float64 {
	return float64(Risk(board, human)-Risk(board, ai)) / EVAL_SCALE
}

// twoGapLines counts segments holding two of symbol and one empty cell.
func twoGapLines(board domain.Board, symbol domain.Symbol) int {
	c := symbol.Cell()
	count := 0
	for _, line := range domain.Lines(board.Size()) {
		if owned, empty := domain.LineCounts(board, line, c); owned == 2 && empty == 1 {
			count++
		}
	}
	return count
}

// twoGapLinesThrough is twoGapLines restricted to the segments containing m.
func twoGapLinesThrough(board domain.Board, m domain.Move, symbol domain.Symbol) int {
	c := symbol.Cell()
	count := 0
	for _, line := range domain.LinesThrough(board.Size(), m) {
		if owned, empty := domain.LineCounts(board, line, c); owned == 2 && empty == 1 {
			count++
		}
	}
	return count
}
