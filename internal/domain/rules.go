package domain

import "sync"

// LineLength is the run that loses the game, whatever the board size.
const LineLength = 3

// Line is one straight segment of LineLength cells.
type Line struct {
	Cells       [LineLength]Move
	TouchesEdge bool
}

type lineSet struct {
	all    []Line
	byCell [][]int // cell index (row*n+col) -> indexes into all
}

type lineStore struct {
	mu   sync.Mutex
	sets map[int]*lineSet
}

var lines = &lineStore{sets: make(map[int]*lineSet)}

func getLineSet(n int) *lineSet {
	lines.mu.Lock()
	defer lines.mu.Unlock()
	if set, ok := lines.sets[n]; ok {
		return set
	}
	set := buildLineSet(n)
	lines.sets[n] = set
	return set
}

func buildLineSet(n int) *lineSet {
	set := &lineSet{byCell: make([][]int, n*n)}
	directions := [][2]int{
		{0, 1},  // horizontal
		{1, 0},  // vertical
		{1, 1},  // diagonal \
		{1, -1}, // diagonal /
	}
	for row := 0; row < n; row++ {
		for col := 0; col < n; col++ {
			for _, dir := range directions {
				endRow := row + dir[0]*(LineLength-1)
				endCol := col + dir[1]*(LineLength-1)
				if endRow < 0 || endRow >= n || endCol < 0 || endCol >= n {
					continue
				}
				var line Line
				for i := 0; i < LineLength; i++ {
					r, c := row+dir[0]*i, col+dir[1]*i
					line.Cells[i] = Move{Row: r, Col: c}
					if r == 0 || c == 0 || r == n-1 || c == n-1 {
						line.TouchesEdge = true
					}
				}
				idx := len(set.all)
				set.all = append(set.all, line)
				for _, m := range line.Cells {
					set.byCell[m.Row*n+m.Col] = append(set.byCell[m.Row*n+m.Col], idx)
				}
			}
		}
	}
	return set
}

// Lines returns every three-cell segment of an n x n board. The slice is shared; do not modify it.
func Lines(n int) []Line {
	return getLineSet(n).all
}

// LinesThrough returns the segments that contain m.
func LinesThrough(n int, m Move) []Line {
	set := getLineSet(n)
	idxs := set.byCell[m.Row*n+m.Col]
	out := make([]Line, len(idxs))
	for i, idx := range idxs {
		out[i] = set.all[idx]
	}
	return out
}

// LineCounts reports how many cells of a segment hold c and how many are empty.
func LineCounts(board Board, line Line, c Cell) (owned, empty int) {
	for _, m := range line.Cells {
		switch board[m.Row][m.Col] {
		case c:
			owned++
		case Empty:
			empty++
		}
	}
	return owned, empty
}

// HasLine reports whether symbol already holds three in a row anywhere.
func HasLine(board Board, symbol Symbol) bool {
	if !symbol.Valid() {
		return false
	}
	c := symbol.Cell()
	for _, line := range Lines(board.Size()) {
		if owned, _ := LineCounts(board, line, c); owned == LineLength {
			return true
		}
	}
	return false
}

// CompletesLine reports whether placing symbol on the empty cell m would make three in a row.
func CompletesLine(board Board, m Move, symbol Symbol) bool {
	if !symbol.Valid() {
		return false
	}
	n := board.Size()
	c := symbol.Cell()
	set := getLineSet(n)
	for _, idx := range set.byCell[m.Row*n+m.Col] {
		line := set.all[idx]
		others := 0
		for _, cell := range line.Cells {
			if cell != m && board[cell.Row][cell.Col] == c {
				others++
			}
		}
		if others == LineLength-1 {
			return true
		}
	}
	return false
}

// EmptyCells lists empty coordinates in row-major order.
func EmptyCells(board Board) []Move {
	cells := make([]Move, 0, board.Size()*board.Size())
	for row := range board {
		for col := range board[row] {
			if board[row][col] == Empty {
				cells = append(cells, Move{Row: row, Col: col})
			}
		}
	}
	return cells
}

// WinningCells returns the cells of every completed line of symbol, for highlighting.
func WinningCells(board Board, symbol Symbol) []Move {
	if !symbol.Valid() {
		return nil
	}
	c := symbol.Cell()
	seen := make(map[Move]bool)
	var out []Move
	for _, line := range Lines(board.Size()) {
		if owned, _ := LineCounts(board, line, c); owned != LineLength {
			continue
		}
		for _, m := range line.Cells {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	return out
}
