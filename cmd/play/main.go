// Command play runs reverse tic-tac-toe in the terminal, against the computer or
// two players sharing the keyboard.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/muesli/termenv"
	"lukechampine.com/frand"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/config"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
	"github.com/iamasit07/reverse-tictactoe/backend/internal/service/bot"
	"github.com/iamasit07/reverse-tictactoe/backend/pkg/logging"
)

type options struct {
	mode       string
	size       int
	human      domain.Symbol
	difficulty string
	budget     time.Duration
}

func main() {
	mode := flag.String("mode", "ai", "ai (against the computer) or two (shared keyboard)")
	size := flag.Int("size", 3, "board side, 3 to 9")
	symbol := flag.String("symbol", "x", "your symbol in ai mode")
	difficulty := flag.String("difficulty", bot.DifficultyHard, "easy, medium or hard")
	budget := flag.Duration("budget", bot.DefaultTimeBudget, "thinking time per computer move")
	flag.Parse()

	_ = godotenv.Load()
	logging.Setup(config.GetEnv("LOG_LEVEL", "warn"), "pretty")

	human, err := domain.ParseSymbol(*symbol)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if *size < domain.MinGridSize || *size > domain.MaxGridSize {
		fmt.Fprintln(os.Stderr, domain.ErrInvalidGridSize)
		os.Exit(2)
	}
	if *mode != "ai" && *mode != "two" {
		fmt.Fprintln(os.Stderr, "mode must be ai or two")
		os.Exit(2)
	}
	if !bot.ValidDifficulty(*difficulty) {
		fmt.Fprintln(os.Stderr, "difficulty must be easy, medium or hard")
		os.Exit(2)
	}

	opts := options{mode: *mode, size: *size, human: human, difficulty: *difficulty, budget: *budget}
	if err := run(os.Stdin, termenv.NewOutput(os.Stdout), opts); err != nil && err != io.EOF {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(in io.Reader, out *termenv.Output, opts options) error {
	scanner := bufio.NewScanner(in)
	engine := bot.NewEngine(bot.Config{TimeBudget: opts.budget})

	for {
		// two-player games always open with x; against the computer the first player is random
		first := domain.X
		if opts.mode == "ai" && frand.Intn(2) == 1 {
			first = domain.O
		}
		engine.Reset()
		g := domain.NewGame(opts.size, first)

		if err := playRound(scanner, out, g, engine, opts); err != nil {
			return err
		}

		fmt.Fprint(out, "Play again? [y/N] ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if answer := strings.ToLower(strings.TrimSpace(scanner.Text())); answer != "y" && answer != "yes" {
			return nil
		}
	}
}

func playRound(scanner *bufio.Scanner, out *termenv.Output, g *domain.Game, engine *bot.Engine, opts options) error {
	for !g.IsFinished() {
		fmt.Fprint(out, render(out, g.Board, g.LastMove))

		if opts.mode == "ai" && g.CurrentTurn != opts.human {
			m := bot.CalculateBestMove(g.Board, g.CurrentTurn, opts.difficulty, engine)
			fmt.Fprintf(out, "Computer (%s) plays %d %d\n", g.CurrentTurn, m.Row, m.Col)
			if err := g.MakeMove(g.CurrentTurn, m); err != nil {
				return fmt.Errorf("computer move rejected: %w", err)
			}
			continue
		}

		fmt.Fprintf(out, "%s to move (row col): ", symbolStyle(out, g.CurrentTurn))
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			return io.EOF
		}
		m, err := parseMove(scanner.Text())
		if err != nil {
			fmt.Fprintln(out, out.String(err.Error()).Foreground(out.Color("9")))
			continue
		}
		if err := g.MakeMove(g.CurrentTurn, m); err != nil {
			fmt.Fprintln(out, out.String(err.Error()).Foreground(out.Color("9")))
		}
	}

	fmt.Fprint(out, render(out, g.Board, g.LastMove))
	fmt.Fprintln(out, resultLine(out, g, opts))
	return nil
}

// parseMove reads "row col", separated by spaces or a comma.
func parseMove(line string) (domain.Move, error) {
	var m domain.Move
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	if len(fields) != 2 {
		return m, fmt.Errorf("enter a row and a column, for example: 1 2")
	}
	if _, err := fmt.Sscanf(fields[0]+" "+fields[1], "%d %d", &m.Row, &m.Col); err != nil {
		return m, fmt.Errorf("row and column must be numbers")
	}
	return m, nil
}

func symbolStyle(out *termenv.Output, s domain.Symbol) termenv.Style {
	color := "12"
	if s == domain.O {
		color = "13"
	}
	return out.String(strings.ToUpper(s.String())).Foreground(out.Color(color)).Bold()
}

// render draws the board with indices; the last move is underlined and lines are red.
func render(out *termenv.Output, b domain.Board, last *domain.Move) string {
	losing := make(map[domain.Move]bool)
	for _, s := range []domain.Symbol{domain.X, domain.O} {
		for _, m := range domain.WinningCells(b, s) {
			losing[m] = true
		}
	}

	var sb strings.Builder
	sb.WriteString("\n   ")
	for c := range b {
		fmt.Fprintf(&sb, " %d", c)
	}
	sb.WriteByte('\n')
	for r, row := range b {
		fmt.Fprintf(&sb, " %d ", r)
		for c, cell := range row {
			m := domain.Move{Row: r, Col: c}
			var style termenv.Style
			switch cell {
			case domain.CellX:
				style = symbolStyle(out, domain.X)
			case domain.CellO:
				style = symbolStyle(out, domain.O)
			default:
				style = out.String(".").Faint()
			}
			if losing[m] {
				style = style.Foreground(out.Color("9"))
			}
			if last != nil && *last == m {
				style = style.Underline()
			}
			sb.WriteString(" " + style.String())
		}
		sb.WriteByte('\n')
	}
	sb.WriteByte('\n')
	return sb.String()
}

func resultLine(out *termenv.Output, g *domain.Game, opts options) string {
	if g.Status == domain.StatusDraw {
		return out.String("Draw: the board is full.").Bold().String()
	}
	loser := strings.ToUpper(g.Loser.String())
	winner := strings.ToUpper(g.Winner.String())
	if opts.mode == "ai" {
		if g.Winner == opts.human {
			return out.String(fmt.Sprintf("You win! The computer (%s) made three in a row.", loser)).Foreground(out.Color("10")).Bold().String()
		}
		return out.String(fmt.Sprintf("You lose: you (%s) made three in a row.", loser)).Foreground(out.Color("9")).Bold().String()
	}
	return out.String(fmt.Sprintf("%s made three in a row, %s wins.", loser, winner)).Bold().String()
}
