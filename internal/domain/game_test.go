package domain

import "testing"

func TestMakeMoveSwitchesTurn(t *testing.T) {
	g := NewGame(4, X)
	if err := g.MakeMove(X, Move{Row: 1, Col: 1}); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if g.CurrentTurn != O {
		t.Fatalf("expected o to move, got %v", g.CurrentTurn)
	}
	if g.MoveCount != 1 || g.LastMove == nil || *g.LastMove != (Move{Row: 1, Col: 1}) {
		t.Fatalf("move bookkeeping not updated: %+v", g)
	}
}

func TestMakeMoveRejections(t *testing.T) {
	g := NewGame(3, X)
	if err := g.MakeMove(O, Move{Row: 0, Col: 0}); err != ErrNotYourTurn {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if err := g.MakeMove(X, Move{Row: 3, Col: 0}); err != ErrOutOfBounds {
		t.Fatalf("expected ErrOutOfBounds, got %v", err)
	}
	if err := g.MakeMove(X, Move{Row: 0, Col: 0}); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if err := g.MakeMove(O, Move{Row: 0, Col: 0}); err != ErrCellOccupied {
		t.Fatalf("expected ErrCellOccupied, got %v", err)
	}
}

func TestCompletingOwnLineLoses(t *testing.T) {
	g := NewGame(3, X)
	moves := []struct {
		s Symbol
		m Move
	}{
		{X, Move{0, 0}}, {O, Move{1, 0}},
		{X, Move{0, 1}}, {O, Move{2, 2}},
		{X, Move{0, 2}},
	}
	for i, step := range moves {
		if err := g.MakeMove(step.s, step.m); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
	}
	if g.Status != StatusFinished {
		t.Fatalf("expected finished game, got %s", g.Status)
	}
	if g.Loser != X || g.Winner != O {
		t.Fatalf("x made the line and must lose, got winner=%v loser=%v", g.Winner, g.Loser)
	}
	if err := g.MakeMove(O, Move{1, 1}); err != ErrGameNotActive {
		t.Fatalf("expected ErrGameNotActive, got %v", err)
	}
}

func TestFullBoardWithoutLineIsDraw(t *testing.T) {
	// x o x / x o o / o x x, no three in a row for either side
	g := NewGame(3, X)
	order := []Move{
		{0, 0}, {0, 1}, {0, 2}, {1, 1}, {1, 0}, {1, 2}, {2, 1}, {2, 0}, {2, 2},
	}
	turn := X
	for i, m := range order {
		if err := g.MakeMove(turn, m); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
		turn = turn.Opponent()
	}
	if g.Status != StatusDraw {
		t.Fatalf("expected draw, got %s (board:\n%s)", g.Status, g.Board)
	}
	if g.Winner != 0 || g.Loser != 0 {
		t.Fatalf("draw must not record a winner")
	}
}

func TestForfeit(t *testing.T) {
	g := NewGame(4, X)
	g.Forfeit(O)
	if !g.IsFinished() || g.Winner != O || g.Loser != X {
		t.Fatalf("unexpected forfeit state: %+v", g)
	}
}
