package shogi

// Attack deltas are offsets into the mailbox grid, defined from Black's
// point of view (forward = decreasing y = -Stride) and negated by
// Color.Sign() to produce White's mirrored geometry. Each table is two
// groups separated by a zero sentinel: steps (one target each) then rays
// (walked until blocked).
const (
	deltaUp    = -Stride
	deltaDown  = Stride
	deltaLeft  = -1
	deltaRight = 1
	deltaUL    = deltaUp + deltaLeft
	deltaUR    = deltaUp + deltaRight
	deltaDL    = deltaDown + deltaLeft
	deltaDR    = deltaDown + deltaRight
	deltaUUL   = 2*deltaUp + deltaLeft
	deltaUUR   = 2*deltaUp + deltaRight
)

// attackTable holds per-type deltas indexed by PieceType; 0 separates the
// step group from the ray group.
var attackTable [Dragon + 1][]int

func init() {
	attackTable[Pawn] = []int{deltaUp}
	attackTable[Lance] = []int{0, deltaUp}
	attackTable[Knight] = []int{deltaUUL, deltaUUR}
	attackTable[Silver] = []int{deltaUp, deltaUL, deltaUR, deltaDL, deltaDR}
	attackTable[Gold] = []int{deltaUp, deltaUL, deltaUR, deltaLeft, deltaRight, deltaDown}
	attackTable[King] = []int{deltaUp, deltaDown, deltaLeft, deltaRight, deltaUL, deltaUR, deltaDL, deltaDR}
	attackTable[Bishop] = []int{0, deltaUL, deltaUR, deltaDL, deltaDR}
	attackTable[Rook] = []int{0, deltaUp, deltaDown, deltaLeft, deltaRight}
	attackTable[Horse] = []int{deltaUp, deltaDown, deltaLeft, deltaRight, 0, deltaUL, deltaUR, deltaDL, deltaDR}
	attackTable[Dragon] = []int{deltaUL, deltaUR, deltaDL, deltaDR, 0, deltaUp, deltaDown, deltaLeft, deltaRight}
}

// deltasFor returns the attack deltas for a piece type. Promoted minors
// (ProPawn..ProSilver) move identically to a Gold general; Horse and Dragon
// have their own entries in attackTable.
func deltasFor(pt PieceType) []int {
	switch pt {
	case ProPawn, ProLance, ProKnight, ProSilver:
		return attackTable[Gold]
	default:
		return attackTable[pt]
	}
}

// forAttack invokes f(target) for each square attacked by a (pt, color)
// piece placed at sq, short-circuiting when f returns true. Step deltas
// each produce one target; ray deltas walk sq+k*d until the first
// non-empty square (itself produced, then the ray stops) — this includes
// wall squares, which callers must reject as illegal destinations.
func (pos *Position) forAttack(sq Square, pt PieceType, c Color, f func(Square) bool) {
	deltas := deltasFor(pt)
	sign := c.Sign()
	group := 0 // 0 = steps, 1 = rays
	for _, d := range deltas {
		if d == 0 {
			group = 1
			continue
		}
		delta := d * sign
		if group == 0 {
			target := sq + Square(delta)
			if f(target) {
				return
			}
			continue
		}
		target := sq + Square(delta)
		for {
			if f(target) {
				return
			}
			if !pos.Piece[target].IsEmpty() {
				break
			}
			target += Square(delta)
		}
	}
}
