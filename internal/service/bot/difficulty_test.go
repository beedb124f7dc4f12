package bot

import (
	"testing"

	"github.com/iamasit07/reverse-tictactoe/backend/internal/domain"
)

func TestEasyMoveNeverSelfLoses(t *testing.T) {
	board := mustBoard(t, "oo.", "...", "...")
	for i := 0; i < 10; i++ {
		pick := i
		m := calculateEasyMove(board, domain.O, func(n int) int { return pick % n })
		assertEmptyCell(t, board, m)
		if m == (domain.Move{Row: 0, Col: 2}) {
			t.Fatalf("easy bot completed its own line")
		}
	}
}

func TestEasyMoveFallsBackWhenForced(t *testing.T) {
	board := mustBoard(t, "oo.", "xxo", "xox")
	m := calculateEasyMove(board, domain.O, func(int) int { return 0 })
	if m != (domain.Move{Row: 0, Col: 2}) {
		t.Fatalf("got %v, want the only empty cell", m)
	}
}

func TestMediumMoveTrapsOpponent(t *testing.T) {
	board := mustBoard(t, "xx.", "o.x", "xoo")
	if m := calculateMediumMove(board, domain.O); m != (domain.Move{Row: 1, Col: 1}) {
		t.Fatalf("got %v, want (1,1)", m)
	}
}

func TestMediumMoveTakesTopSafeMove(t *testing.T) {
	board := mustBoard(t,
		"xx..",
		"....",
		"....",
		"....",
	)
	if m := calculateMediumMove(board, domain.O); m != (domain.Move{Row: 0, Col: 2}) {
		t.Fatalf("got %v, want (0,2)", m)
	}
}

func TestFullBoardHasNoMove(t *testing.T) {
	board := mustBoard(t, "xox", "xoo", "oxx")
	none := domain.Move{Row: -1, Col: -1}
	if m := calculateEasyMove(board, domain.O, func(int) int { return 0 }); m != none {
		t.Fatalf("easy: got %v", m)
	}
	if m := calculateMediumMove(board, domain.O); m != none {
		t.Fatalf("medium: got %v", m)
	}
	if d := NewEngine(DefaultConfig()).DecideMove(board, domain.X, domain.O); d.Move != none {
		t.Fatalf("hard: got %v", d.Move)
	}
}
