// Package shogi implements shogi board representation using a padded
// mailbox grid and move generation.
package shogi

// Color represents the side to move.
type Color uint8

const (
	Black Color = iota
	White
	ColorNum = 2
)

// Other returns the opposite color.
func (c Color) Other() Color {
	return c ^ 1
}

// String returns the color name.
func (c Color) String() string {
	if c == Black {
		return "Black"
	}
	return "White"
}

// Sign returns +1 for Black and -1 for White.
// Attack deltas are defined from Black's point of view and negated by this
// sign to produce White's mirrored deltas.
func (c Color) Sign() int {
	if c == Black {
		return 1
	}
	return -1
}

// PieceType is the unpromoted-or-promoted piece kind, stored in the low bits
// of a board byte. PromoteBit (8) is set for promoted minor pieces, Horse,
// and Dragon.
type PieceType uint8

const (
	Empty     PieceType = 0
	Pawn      PieceType = 1
	Lance     PieceType = 2
	Knight    PieceType = 3
	Silver    PieceType = 4
	Bishop    PieceType = 5
	Rook      PieceType = 6
	Gold      PieceType = 7
	King      PieceType = 8
	ProPawn   PieceType = 9
	ProLance  PieceType = 10
	ProKnight PieceType = 11
	ProSilver PieceType = 12
	Horse     PieceType = 13
	Dragon    PieceType = 14

	PromoteBit  PieceType = 8
	PieceMask   PieceType = 0x0F
	HandTypeNum           = 8 // Empty..Gold; Empty unused
)

// colorMask returns the color bits (Black=16, White=32) for a piece byte.
func colorMask(c Color) PieceType {
	if c == Black {
		return 16
	}
	return 32
}

// Wall is the sentinel byte marking padding squares outside the 9x9 board.
const Wall PieceType = 0xFF

// CanPromote returns true if a piece is eligible to promote: an unpromoted
// pawn through rook (Gold and King never promote; an already-promoted piece
// cannot promote again).
func (pt PieceType) CanPromote() bool {
	if pt.Promoted() {
		return false
	}
	return pt >= Pawn && pt < Gold
}

// Base strips the promotion bit, returning the unpromoted type.
// Has no effect on Gold/King (promoting them is illegal and never modeled).
func (pt PieceType) Base() PieceType {
	if pt >= ProPawn && pt <= Dragon {
		return pt &^ PromoteBit
	}
	return pt
}

// Promoted returns true if the type carries the promotion bit.
func (pt PieceType) Promoted() bool {
	return pt >= ProPawn && pt <= Dragon
}

// Promote flips the promotion bit on a promotable base type.
func (pt PieceType) Promote() PieceType {
	return pt | PromoteBit
}

// PieceScore is the material value table used by evaluation, indexed by
// PieceType (promoted types included; Empty/King score zero).
var PieceScore = [15]int{
	Empty:     0,
	Pawn:      90,
	Lance:     315,
	Knight:    405,
	Silver:    495,
	Bishop:    855,
	Rook:      990,
	Gold:      540,
	King:      0,
	ProPawn:   540,
	ProLance:  540,
	ProKnight: 540,
	ProSilver: 540,
	Horse:     945,
	Dragon:    1395,
}

// declarationPoints gives the entering-king (nyuugyoku) point weight of a
// piece type: 5 for major pieces (Bishop/Rook/Horse/Dragon), 1 otherwise,
// 0 for King.
func declarationPoints(pt PieceType) int {
	switch pt.Base() {
	case King:
		return 0
	case Bishop, Rook:
		return 5
	default:
		return 1
	}
}

// Piece is a full board byte: PieceType in the low bits, color bits set for
// occupied squares, or Wall (0xFF) for padding squares.
type Piece = PieceType

// IsEmpty returns true if the board byte denotes an empty square (not a wall,
// not occupied).
func (p Piece) IsEmpty() bool {
	return p == Empty
}

// IsWall returns true if the board byte is the sentinel wall value.
func (p Piece) IsWall() bool {
	return p == Wall
}

// Color returns the occupying color. Only valid when the square is occupied.
func (p Piece) Color() Color {
	if p&32 != 0 {
		return White
	}
	return Black
}

// Type returns the PieceType with color bits stripped.
func (p Piece) Type() PieceType {
	return p & PieceMask
}

// NewPiece builds a board byte from a type and color.
func NewPiece(pt PieceType, c Color) Piece {
	return pt | colorMask(c)
}

var pieceChars = map[PieceType]byte{
	Pawn: 'P', Lance: 'L', Knight: 'N', Silver: 'S',
	Bishop: 'B', Rook: 'R', Gold: 'G', King: 'K',
}

var charPieces = func() map[byte]PieceType {
	m := make(map[byte]PieceType, len(pieceChars))
	for pt, c := range pieceChars {
		m[c] = pt
	}
	return m
}()

// String renders an SFEN piece letter: uppercase for Black, lowercase for
// White, with a leading '+' if promoted.
func (p Piece) String() string {
	if p.IsWall() || p.IsEmpty() {
		return "."
	}
	base := p.Type().Base()
	c, ok := pieceChars[base]
	if !ok {
		return "?"
	}
	if p.Color() == White {
		c = c - 'A' + 'a'
	}
	s := ""
	if p.Type().Promoted() {
		s = "+"
	}
	return s + string(c)
}
