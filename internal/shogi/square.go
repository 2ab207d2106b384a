package shogi

import "fmt"

// Board geometry: a 9x9 board embedded in a padded mailbox grid so that
// directional move generation runs off the edge into wall sentinels instead
// of needing explicit bounds checks.
const (
	FileNum  = 9
	RankNum  = 9
	Stride   = 10
	Origin   = 3 * Stride
	SquareNum = Origin + Stride*(RankNum+2)
)

// Square is an index into the padded mailbox grid.
type Square int

// GetSquare maps 0-indexed file/rank coordinates (x,y in 0..8) to a mailbox
// index. x=0 is file 9 (SFEN's leftmost printed file), y=0 is rank 'a' (the
// top row, Black's promotion zone).
func GetSquare(x, y int) Square {
	return Square(Origin + Stride*y + x)
}

// File returns the 0-indexed file (0..8) of a board square.
func (sq Square) File() int {
	return (int(sq) - Origin) % Stride
}

// Rank returns the 0-indexed rank (0..8) of a board square.
func (sq Square) Rank() int {
	return (int(sq) - Origin) / Stride
}

// OnBoard returns true if the square lies within the 9x9 playing area
// (as opposed to the wall padding).
func (sq Square) OnBoard() bool {
	f, r := sq.File(), sq.Rank()
	return f >= 0 && f < FileNum && r >= 0 && r < RankNum
}

// InPromotionZone returns true if the square lies in the promotion zone for
// the given color: ranks 1..3 (y=0..2) for Black, ranks 7..9 (y=6..8) for
// White.
func (sq Square) InPromotionZone(c Color) bool {
	r := sq.Rank()
	if c == Black {
		return r <= 2
	}
	return r >= RankNum-3
}

// String renders the square in SFEN notation: file digit 1..9, rank letter
// a..i.
func (sq Square) String() string {
	if !sq.OnBoard() {
		return "*"
	}
	file := FileNum - sq.File() // SFEN files count right to left
	rank := sq.Rank()
	return fmt.Sprintf("%d%c", file, 'a'+rank)
}

// ParseSquare parses an SFEN square (e.g. "7g") into a mailbox index.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return 0, fmt.Errorf("invalid square: %q", s)
	}
	file := int(s[0] - '0')
	rank := int(s[1] - 'a')
	if file < 1 || file > FileNum || rank < 0 || rank >= RankNum {
		return 0, fmt.Errorf("invalid square: %q", s)
	}
	x := FileNum - file
	return GetSquare(x, rank), nil
}
