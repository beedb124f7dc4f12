package bot

import (
	"math"
	"time"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const (
	SCORE_WIN         = 1000.0
	SCORE_LOSS        = -1000.0
	SCORE_FORCED_LOSS = 500.0
	SCORE_DRAW        = 0.0

	// proven outcomes are a sentinel shifted by at most the cell count, so anything past
	// this bound is a terminal or forced result and never a heuristic estimate
	provenThreshold = SCORE_FORCED_LOSS - domain.MaxGridSize*domain.MaxGridSize

	deadlineCheckMask = 15
)

// search is the state of one fixed-depth pass. The board is mutated in place and
// restored after every trial move.
type search struct {
	board    domain.Board
	human    domain.Symbol
	ai       domain.Symbol
	maxDepth int
	cache    *Cache

	deadline  time.Time
	checkTime bool
	now       func() time.Time
	aborted   bool

	nodes int
	hits  int
}

type rootResult struct {
	move   domain.Move
	score  float64
	forced bool
}

// certainWin reports a score that ends the game in the AI's favour, either by a line
// the opponent makes or by leaving the opponent only self-completing moves.
func certainWin(score float64) bool {
	return score >= provenThreshold
}

// toCache makes proven scores relative to the node so they can be reused at another ply.
func toCache(score float64, ply int) float64 {
	switch {
	case score >= provenThreshold:
		return score + float64(ply)
	case score <= -provenThreshold:
		return score - float64(ply)
	}
	return score
}

func fromCache(score float64, ply int) float64 {
	switch {
	case score >= provenThreshold:
		return score - float64(ply)
	case score <= -provenThreshold:
		return score + float64(ply)
	}
	return score
}

func (s *search) expired() bool {
	if !s.checkTime {
		return false
	}
	if s.aborted {
		return true
	}
	if s.nodes&deadlineCheckMask == 0 && s.now().After(s.deadline) {
		s.aborted = true
	}
	return s.aborted
}

// root tries every candidate for the AI and returns the best one.
// ok is false when the deadline interrupted the pass.
func (s *search) root() (rootResult, bool) {
	moves := OrderMoves(s.board, domain.EmptyCells(s.board), s.ai)

	alpha, beta := math.Inf(-1), math.Inf(1)
	best := rootResult{score: math.Inf(-1)}
	found := false

	for _, m := range moves {
		if domain.CompletesLine(s.board, m, s.ai) {
			continue
		}
		if s.checkTime && s.now().After(s.deadline) {
			s.aborted = true
			return rootResult{}, false
		}

		score := withStone(s.board, m, s.ai.Cell(), func() float64 {
			return s.minimax(1, false, alpha, beta)
		})
		if s.aborted {
			return rootResult{}, false
		}

		if !found || score > best.score {
			best = rootResult{move: m, score: score}
			found = true
		}
		alpha = math.Max(alpha, best.score)
		if certainWin(best.score) {
			break
		}
	}

	if !found {
		// every cell completes our own line; ordering still puts the least exposed one first
		return rootResult{move: moves[0], score: SCORE_LOSS + 1, forced: true}, true
	}
	return best, true
}

func (s *search) minimax(ply int, maximizing bool, alpha, beta float64) float64 {
	s.nodes++
	if s.expired() {
		return 0
	}

	if domain.HasLine(s.board, s.human) {
		return SCORE_WIN - float64(ply)
	}
	if domain.HasLine(s.board, s.ai) {
		return SCORE_LOSS + float64(ply)
	}

	empties := domain.EmptyCells(s.board)
	if len(empties) == 0 {
		return SCORE_DRAW
	}
	if ply >= s.maxDepth {
		return Evaluate(s.board, s.human, s.ai)
	}

	key := cacheKey{
		board:      s.board.Key(),
		remaining:  s.maxDepth - ply,
		maximizing: maximizing,
		ai:         s.ai,
	}
	if entry, ok := s.cache.get(key); ok {
		s.hits++
		score := fromCache(entry.score, ply)
		switch entry.flag {
		case boundExact:
			return score
		case boundLower:
			alpha = math.Max(alpha, score)
		case boundUpper:
			beta = math.Min(beta, score)
		}
		if alpha >= beta {
			return score
		}
	}
	origAlpha, origBeta := alpha, beta

	mover := s.human
	best := math.Inf(1)
	if maximizing {
		mover = s.ai
		best = math.Inf(-1)
	}

	explored := false
	for _, m := range OrderMoves(s.board, empties, mover) {
		if domain.CompletesLine(s.board, m, mover) {
			continue
		}
		explored = true

		score := withStone(s.board, m, mover.Cell(), func() float64 {
			return s.minimax(ply+1, !maximizing, alpha, beta)
		})
		if s.aborted {
			return 0
		}

		if maximizing {
			best = math.Max(best, score)
			alpha = math.Max(alpha, best)
		} else {
			best = math.Min(best, score)
			beta = math.Min(beta, best)
		}
		if beta <= alpha {
			break
		}
	}

	if !explored {
		// the side to move must complete its own line
		if maximizing {
			return -(SCORE_FORCED_LOSS - float64(ply))
		}
		return SCORE_FORCED_LOSS - float64(ply)
	}

	flag := boundExact
	switch {
	case best <= origAlpha:
		flag = boundUpper
	case best >= origBeta:
		flag = boundLower
	}
	s.cache.store(key, cacheEntry{score: toCache(best, ply), flag: flag})
	return best
}

// withStone places c on m, runs fn and clears m again, even if fn panics.
func withStone[T any](board domain.Board, m domain.Move, c domain.Cell, fn func() T) T {
	board.Set(m, c)
	defer board.Set(m, domain.Empty)
	return fn()
}
