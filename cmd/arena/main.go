// Command arena plays computer-vs-computer games between two difficulty levels.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/logging"
)

type settings struct {
	games   int
	size    int
	a, b    string
	workers int
	budget  time.Duration
}

// Tally counts results from a's side.
type Tally struct {
	Wins, Losses, Draws int
	Moves               int
}

func main() {
	var s settings
	flag.IntVar(&s.games, "games", 20, "number of games")
	flag.IntVar(&s.size, "size", 4, "board side, 3 to 9")
	flag.StringVar(&s.a, "a", bot.DifficultyHard, "difficulty of the first bot")
	flag.StringVar(&s.b, "b", bot.DifficultyMedium, "difficulty of the second bot")
	flag.IntVar(&s.workers, "workers", runtime.NumCPU(), "games played at once")
	flag.DurationVar(&s.budget, "budget", 100*time.Millisecond, "thinking time per hard move")
	logLevel := flag.String("log", "warn", "log level")
	flag.Parse()

	logging.Setup(*logLevel, "pretty")

	if s.size < domain.MinGridSize || s.size > domain.MaxGridSize {
		fmt.Fprintln(os.Stderr, domain.ErrInvalidGridSize)
		os.Exit(2)
	}
	if !bot.ValidDifficulty(s.a) || !bot.ValidDifficulty(s.b) {
		fmt.Fprintln(os.Stderr, "difficulties must be easy, medium or hard")
		os.Exit(2)
	}

	start := time.Now()
	t, err := runArena(context.Background(), s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("%s vs %s on %dx%d, %d games in %s\n", s.a, s.b, s.size, s.size, s.games, time.Since(start).Round(time.Millisecond))
	fmt.Printf("W %d  L %d  D %d  (avg %.1f moves)\n", t.Wins, t.Losses, t.Draws, float64(t.Moves)/float64(max(s.games, 1)))
}

// runArena plays s.games games; a takes x in even games and o in odd ones, and x always starts.
func runArena(ctx context.Context, s settings) (Tally, error) {
	var (
		mu    sync.Mutex
		tally Tally
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.workers, 1))

	for i := 0; i < s.games; i++ {
		aSymbol := domain.X
		if i%2 == 1 {
			aSymbol = domain.O
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			game, err := playGame(s, aSymbol)
			if err != nil {
				return fmt.Errorf("game %d: %w", i, err)
			}

			mu.Lock()
			defer mu.Unlock()
			tally.Moves += game.MoveCount
			switch {
			case game.Status == domain.StatusDraw:
				tally.Draws++
			case game.Winner == aSymbol:
				tally.Wins++
			default:
				tally.Losses++
			}
			log.Debug().Int("game", i).Str("a", aSymbol.String()).Str("winner", game.Winner.String()).Int("moves", game.MoveCount).Msg("game finished")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Tally{}, err
	}
	return tally, nil
}

// playGame runs one game, each side with its own engine.
func playGame(s settings, aSymbol domain.Symbol) (*domain.Game, error) {
	cfg := bot.Config{TimeBudget: s.budget}
	difficulty := map[domain.Symbol]string{aSymbol: s.a, aSymbol.Opponent(): s.b}
	engines := map[domain.Symbol]*bot.Engine{domain.X: bot.NewEngine(cfg), domain.O: bot.NewEngine(cfg)}

	game := domain.NewGame(s.size, domain.X)
	for !game.IsFinished() {
		mover := game.CurrentTurn
		m := bot.CalculateBestMove(game.Board, mover, difficulty[mover], engines[mover])
		if err := game.MakeMove(mover, m); err != nil {
			return nil, fmt.Errorf("%s bot played %v: %w", difficulty[mover], m, err)
		}
	}
	return game, nil
}
