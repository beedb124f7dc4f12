package domain

import "testing"

func mustBoard(t *testing.T, rows ...string) Board {
	t.Helper()
	b, err := ParseBoard(rows...)
	if err != nil {
		t.Fatalf("parse board: %v", err)
	}
	return b
}

func TestLinesCount(t *testing.T) {
	cases := map[int]int{
		3: 8,
		4: 24,
		5: 48,
	}
	for n, want := range cases {
		if got := len(Lines(n)); got != want {
			t.Fatalf("Lines(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestLinesTouchEdge(t *testing.T) {
	// on a 5x5 board only the segments fully inside the 3x3 core avoid the border
	interior := 0
	for _, line := range Lines(5) {
		if !line.TouchesEdge {
			interior++
		}
	}
	if interior != 8 {
		t.Fatalf("expected 8 interior segments on 5x5, got %d", interior)
	}
}

func TestHasLineEmptyBoard(t *testing.T) {
	for n := MinGridSize; n <= MaxGridSize; n++ {
		b := NewBoard(n)
		if HasLine(b, X) || HasLine(b, O) {
			t.Fatalf("empty %dx%d board must have no line", n, n)
		}
	}
}

func TestLineChecksIgnoreZeroSymbol(t *testing.T) {
	var none Symbol
	b := mustBoard(t, "x..", "...", "..o")
	if HasLine(b, none) {
		t.Fatalf("empty cells must not count as a line")
	}
	if CompletesLine(b, Move{Row: 1, Col: 1}, none) {
		t.Fatalf("zero symbol cannot complete a line")
	}
	if cells := WinningCells(b, none); len(cells) != 0 {
		t.Fatalf("zero symbol has no winning cells, got %v", cells)
	}
}

func TestHasLineAllOrientations(t *testing.T) {
	boards := [][]string{
		{"xxx.", "....", "....", "...."},
		{".x..", ".x..", ".x..", "...."},
		{"....", "x...", ".x..", "..x."},
		{"...x", "..x.", ".x..", "...."},
		{"....", "....", "....", ".xxx"},
	}
	for i, rows := range boards {
		b := mustBoard(t, rows...)
		if !HasLine(b, X) {
			t.Fatalf("board %d: expected a line for x", i)
		}
		if HasLine(b, O) {
			t.Fatalf("board %d: unexpected line for o", i)
		}
	}
}

func TestHasLineShorterRuns(t *testing.T) {
	b := mustBoard(t,
		"xx.x",
		"o.o.",
		"x...",
		".x..",
	)
	if HasLine(b, X) || HasLine(b, O) {
		t.Fatalf("two-runs and gapped runs are not lines")
	}
}

func TestHasLineMixedSymbols(t *testing.T) {
	b := mustBoard(t, "xox", "...", "...")
	if HasLine(b, X) || HasLine(b, O) {
		t.Fatalf("mixed row must not count")
	}
}

func TestCompletesLine(t *testing.T) {
	b := mustBoard(t, "oo.", "...", "...")
	if !CompletesLine(b, Move{Row: 0, Col: 2}, O) {
		t.Fatalf("(0,2) completes o line")
	}
	if CompletesLine(b, Move{Row: 0, Col: 2}, X) {
		t.Fatalf("(0,2) does not complete an x line")
	}
	if CompletesLine(b, Move{Row: 1, Col: 1}, O) {
		t.Fatalf("(1,1) does not complete a line")
	}
	if b.At(Move{Row: 0, Col: 2}) != Empty {
		t.Fatalf("CompletesLine must not write to the board")
	}
}

func TestCompletesLineMiddleGap(t *testing.T) {
	b := mustBoard(t,
		"x...",
		"....",
		"..x.",
		"....",
	)
	if !CompletesLine(b, Move{Row: 1, Col: 1}, X) {
		t.Fatalf("filling the diagonal gap completes the line")
	}
}

func TestEmptyCellsRowMajor(t *testing.T) {
	b := mustBoard(t, "x.o", ".x.", "oo.")
	got := EmptyCells(b)
	want := []Move{{0, 1}, {1, 0}, {1, 2}, {2, 2}}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
	if len(EmptyCells(NewBoard(4))) != 16 {
		t.Fatalf("empty 4x4 board has 16 empty cells")
	}
}

func TestWinningCells(t *testing.T) {
	b := mustBoard(t, "ooo", "x.x", "...")
	cells := WinningCells(b, O)
	if len(cells) != 3 {
		t.Fatalf("expected 3 highlighted cells, got %v", cells)
	}
	if len(WinningCells(b, X)) != 0 {
		t.Fatalf("x has no line")
	}
}
