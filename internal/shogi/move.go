package shogi

import "fmt"

// Move packs a shogi move into 32 bits:
//
//	bits 0..7:   from square (0 denotes a drop: square 0 always lies in the
//	             wall padding, so it is never a legal origin for a board move)
//	bits 8..15:  to square
//	bits 16..19: piece type (the moved piece's type before the move,
//	             promoted or not, or the dropped piece's type)
//	bit  20:     promote flag
//	bits 21..24: captured piece type (Empty if none)
type Move uint32

// NoMove is the null move.
const NoMove Move = 0

const (
	moveFromShift     = 0
	moveToShift       = 8
	movePieceShift    = 16
	movePromoteShift  = 20
	moveCapturedShift = 21

	moveSquareMask = 0xFF
	movePieceMask  = 0xF
)

// NewBoardMove builds a move that relocates a piece already on the board.
func NewBoardMove(from, to Square, pt PieceType, promote bool, captured PieceType) Move {
	m := Move(from&moveSquareMask) |
		Move(to&moveSquareMask)<<moveToShift |
		Move(pt&movePieceMask)<<movePieceShift |
		Move(captured&movePieceMask)<<moveCapturedShift
	if promote {
		m |= 1 << movePromoteShift
	}
	return m
}

// NewDropMove builds a move that drops a hand piece onto an empty square.
func NewDropMove(to Square, pt PieceType) Move {
	return Move(to&moveSquareMask)<<moveToShift | Move(pt&movePieceMask)<<movePieceShift
}

// From returns the origin square, or 0 if this is a drop.
func (m Move) From() Square {
	return Square(m >> moveFromShift & moveSquareMask)
}

// To returns the destination square.
func (m Move) To() Square {
	return Square(m >> moveToShift & moveSquareMask)
}

// IsDrop returns true if this move drops a piece from hand.
func (m Move) IsDrop() bool {
	return m.From() == 0
}

// PieceType returns the moved (or dropped) piece's type as it stood before
// the move; an already-promoted piece reports its promoted type.
func (m Move) PieceType() PieceType {
	return PieceType(m >> movePieceShift & movePieceMask)
}

// Promote returns true if this move promotes the piece.
func (m Move) Promote() bool {
	return m>>movePromoteShift&1 != 0
}

// Captured returns the type of the captured piece, or Empty if none.
func (m Move) Captured() PieceType {
	return PieceType(m >> moveCapturedShift & movePieceMask)
}

// IsCapture returns true if this move captures a piece.
func (m Move) IsCapture() bool {
	return m.Captured() != Empty
}

// String renders the move in SFEN move-literal notation.
func (m Move) String() string {
	if m == NoMove {
		return "resign"
	}
	if m.IsDrop() {
		c, ok := pieceChars[m.PieceType()]
		if !ok {
			c = '?'
		}
		return fmt.Sprintf("%c*%s", c, m.To())
	}
	s := m.From().String() + m.To().String()
	if m.Promote() {
		s += "+"
	}
	return s
}

// MoveList is a fixed-capacity move buffer, sized generously above shogi's
// largest practical branching factor (drops inflate it well past chess).
const maxMoves = 600

type MoveList struct {
	moves [maxMoves]Move
	count int
}

func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

func (ml *MoveList) Len() int { return ml.count }

func (ml *MoveList) Get(i int) Move { return ml.moves[i] }

func (ml *MoveList) Set(i int, m Move) { ml.moves[i] = m }

func (ml *MoveList) Swap(i, j int) { ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i] }

func (ml *MoveList) Clear() { ml.count = 0 }

func (ml *MoveList) Slice() []Move { return ml.moves[:ml.count] }
