package bot

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	DefaultTimeBudget = 500 * time.Millisecond
)

// Config tunes the search. Zero values fall back to the defaults.
type Config struct {
	TimeBudget time.Duration
	MaxDepth   int // 0 derives the depth from the board size
	CacheLimit int
}

func DefaultConfig() Config {
	return Config{
		TimeBudget: DefaultTimeBudget,
		CacheLimit: DefaultCacheLimit,
	}
}

// MaxDepthFor is the default iterative deepening ceiling for an n x n board.
func MaxDepthFor(n int) int {
	switch {
	case n <= 3:
		return 9
	case n == 4:
		return 5
	case n == 5:
		return 4
	default:
		return 3
	}
}

// Decision is the outcome of one DecideMove call.
type Decision struct {
	Move      domain.Move
	Score     float64
	Depth     int // deepest fully completed iteration
	Nodes     int
	CacheHits int
	Elapsed   time.Duration
	Opening   bool // centre played without search
	TimedOut  bool
}

// Engine picks moves for one game. It owns its cache, so a game session should hold its own.
type Engine struct {
	mu    sync.Mutex
	cfg   Config
	cache *Cache

	now  func() time.Time
	intn func(n int) int
}

func NewEngine(cfg Config) *Engine {
	if cfg.TimeBudget <= 0 {
		cfg.TimeBudget = DefaultTimeBudget
	}
	if cfg.CacheLimit <= 0 {
		cfg.CacheLimit = DefaultCacheLimit
	}
	return &Engine{
		cfg:   cfg,
		cache: NewCache(cfg.CacheLimit),
		now:   time.Now,
		intn:  frand.Intn,
	}
}

// Reset forgets everything cached from earlier positions.
func (e *Engine) Reset() {
	e.cache.Clear()
}

func (e *Engine) Cache() *Cache {
	return e.cache
}

func (e *Engine) maxDepth(n, empty int) int {
	depth := e.cfg.MaxDepth
	if depth <= 0 {
		depth = MaxDepthFor(n)
	}
	if depth > empty {
		depth = empty
	}
	return depth
}

// DecideMove returns a move for self on board, opponent to reply.
// The board must have at least one empty cell; it is left unchanged.
func (e *Engine) DecideMove(board domain.Board, opponent, self domain.Symbol) Decision {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := e.now()
	n := board.Size()
	empties := domain.EmptyCells(board)

	if len(empties) == 0 {
		log.Warn().Str("component", "bot").Msg("decide move called on a full board")
		return Decision{Move: domain.Move{Row: -1, Col: -1}}
	}
	if len(empties) == n*n {
		return Decision{Move: board.Center(), Opening: true, Elapsed: e.now().Sub(start)}
	}

	deadline := start.Add(e.cfg.TimeBudget)
	maxDepth := e.maxDepth(n, len(empties))

	var (
		best     *rootResult
		decision Decision
	)
	for depth := 1; depth <= maxDepth; depth++ {
		if depth > 1 && e.now().After(deadline) {
			decision.TimedOut = true
			break
		}

		s := &search{
			board:     board,
			human:     opponent,
			ai:        self,
			maxDepth:  depth,
			cache:     e.cache,
			deadline:  deadline,
			checkTime: depth > 1,
			now:       e.now,
		}
		res, ok := s.root()
		decision.Nodes += s.nodes
		decision.CacheHits += s.hits
		if !ok {
			decision.TimedOut = true
			break
		}

		best = &res
		decision.Depth = depth
		if res.forced || certainWin(res.score) {
			break
		}
	}

	if best != nil {
		decision.Move = best.move
		decision.Score = best.score
	} else {
		decision.Move = empties[e.intn(len(empties))]
	}
	decision.Elapsed = e.now().Sub(start)

	log.Debug().
		Str("component", "bot").
		Int("size", n).
		Int("row", decision.Move.Row).
		Int("col", decision.Move.Col).
		Float64("score", decision.Score).
		Int("depth", decision.Depth).
		Int("nodes", decision.Nodes).
		Int("cache_hits", decision.CacheHits).
		Bool("timed_out", decision.TimedOut).
		Dur("elapsed", decision.Elapsed).
		Msg("move decided")

	return decision
}

// CalculateBestMove selects the best move based on difficulty.
// engine may be nil, in which case a throwaway engine serves the hard level.
func CalculateBestMove(board domain.Board, botSymbol domain.Symbol, difficulty string, engine *Engine) domain.Move {
	switch difficulty {
	case DifficultyEasy:
		return calculateEasyMove(board, botSymbol, frand.Intn)
	case DifficultyMedium:
		return calculateMediumMove(board, botSymbol)
	case DifficultyHard:
		if engine == nil {
			engine = NewEngine(DefaultConfig())
		}
		return engine.DecideMove(board, botSymbol.Opponent(), botSymbol).Move
	default:
		return calculateMediumMove(board, botSymbol)
	}
}

func ValidDifficulty(difficulty string) bool {
	switch difficulty {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}
