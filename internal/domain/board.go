package domain

// Board is a square grid indexed [row][col].
type Board [][]Cell

func NewBoard(size int) Board {
	board := make(Board, size)
	for i := range board {
		board[i] = make([]Cell, size)
	}
	return board
}

func (b Board) Size() int {
	return len(b)
}

func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < len(b) && col >= 0 && col < len(b)
}

func (b Board) At(m Move) Cell {
	return b[m.Row][m.Col]
}

func (b Board) Set(m Move, c Cell) {
	b[m.Row][m.Col] = c
}

// Validate checks the shape the engine relies on.
func (b Board) Validate() error {
	n := len(b)
	if n < MinGridSize || n > MaxGridSize {
		return ErrInvalidBoard
	}
	for _, row := range b {
		if len(row) != n {
			return ErrInvalidBoard
		}
		for _, c := range row {
			if c > CellO {
				return ErrInvalidBoard
			}
		}
	}
	return nil
}

// this creates a deep copy of the board
func (b Board) Clone() Board {
	newBoard := make(Board, len(b))
	for i := range b {
		newBoard[i] = make([]Cell, len(b[i]))
		copy(newBoard[i], b[i])
	}
	return newBoard
}

func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for i := range b {
		if len(b[i]) != len(other[i]) {
			return false
		}
		for j := range b[i] {
			if b[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

func (b Board) IsEmpty() bool {
	for _, row := range b {
		for _, c := range row {
			if c != Empty {
				return false
			}
		}
	}
	return true
}

func (b Board) IsFull() bool {
	for _, row := range b {
		for _, c := range row {
			if c == Empty {
				return false
			}
		}
	}
	return true
}

// Center is the opening cell, (N/2, N/2) rounded down.
func (b Board) Center() Move {
	c := len(b) / 2
	return Move{Row: c, Col: c}
}

// Key serializes the board contents, one byte per cell.
func (b Board) Key() string {
	n := len(b)
	buf := make([]byte, 0, n*n)
	for _, row := range b {
		for _, c := range row {
			buf = append(buf, '0'+byte(c))
		}
	}
	return string(buf)
}

// ToInts converts the board for storage.
func (b Board) ToInts() [][]int {
	intBoard := make([][]int, len(b))
	for i := range b {
		intBoard[i] = make([]int, len(b[i]))
		for j := range b[i] {
			intBoard[i][j] = int(b[i][j])
		}
	}
	return intBoard
}

// ParseBoard reads rows written with 'x', 'o' and '.' for empty cells.
func ParseBoard(rows ...string) (Board, error) {
	board := NewBoard(len(rows))
	for r, row := range rows {
		if len(row) != len(rows) {
			return nil, ErrInvalidBoard
		}
		for c, ch := range row {
			switch ch {
			case 'x', 'X':
				board[r][c] = CellX
			case 'o', 'O':
				board[r][c] = CellO
			case '.', '_', ' ':
			default:
				return nil, ErrInvalidBoard
			}
		}
	}
	return board, nil
}

func (b Board) String() string {
	buf := make([]byte, 0, len(b)*(len(b)+1))
	for _, row := range b {
		for _, c := range row {
			switch c {
			case CellX:
				buf = append(buf, 'x')
			case CellO:
				buf = append(buf, 'o')
			default:
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}
	return string(buf)
}
