// Package engine implements the shogi search engine: evaluation, negamax
// alpha-beta search with quiescence, transposition table, and iterative
// deepening.
package engine

import "github.com/hayashi-shogi/shogicore/internal/shogi"

// FvScale matches material (scored in centipawns) against the PP tensor's
// raw weight units before dividing back down.
const FvScale = 32

// PieceClassNum is the number of distinct on-board piece classes tracked by
// the PP tensor. Promoted minors (ProPawn..ProSilver) share Gold's class
// since they move identically and carry the same material value.
const PieceClassNum = 10

var pieceClass = [15]int{
	shogi.Pawn:      0,
	shogi.Lance:     1,
	shogi.Knight:    2,
	shogi.Silver:    3,
	shogi.Bishop:    4,
	shogi.Rook:      5,
	shogi.Gold:      6,
	shogi.King:      7,
	shogi.ProPawn:   6,
	shogi.ProLance:  6,
	shogi.ProKnight: 6,
	shogi.ProSilver: 6,
	shogi.Horse:     8,
	shogi.Dragon:    9,
}

// handTypes lists the hand-eligible piece types in a fixed order, each
// paired with the maximum number of copies a player can ever hold.
var handTypes = []struct {
	pt  shogi.PieceType
	max int
}{
	{shogi.Pawn, 18},
	{shogi.Lance, 4},
	{shogi.Knight, 4},
	{shogi.Silver, 4},
	{shogi.Gold, 4},
	{shogi.Bishop, 2},
	{shogi.Rook, 2},
}

// handBase gives each hand type's starting offset within the hand-feature
// range (38 wide: one slot per non-king piece, since a captured piece
// always returns to hand as its unpromoted type).
var handBase map[shogi.PieceType]int

func init() {
	handBase = make(map[shogi.PieceType]int, len(handTypes))
	off := 0
	for _, h := range handTypes {
		handBase[h.pt] = off
		off += h.max
	}
}

// FeatureCount is the number of piece-instance features in any legal
// position: two kings plus the 38 non-king pieces, whether on the board or
// in hand.
const FeatureCount = 40

const (
	p1 = PieceClassNum * 81
	p2 = p1 + 38
	p3 = 2 * p2
)

// PP is the two-piece-relation weight tensor, p3 x p3, row-major.
type PP struct {
	w []int16
}

// NewPP allocates a zero-initialized tensor.
func NewPP() *PP {
	return &PP{w: make([]int16, p3*p3)}
}

func (pp *PP) at(i, j int) int16 { return pp.w[i*p3+j] }

// Add accumulates delta into pp[i][j]; exported for gradient updates.
func (pp *PP) Add(i, j int, delta int16) { pp.w[i*p3+j] += delta }

// Get reads pp[i][j]; exported for gradient updates and symmetry tests.
func (pp *PP) Get(i, j int) int16 { return pp.at(i, j) }

// Set writes pp[i][j]; exported for gradient updates.
func (pp *PP) Set(i, j int, v int16) { pp.w[i*p3+j] = v }

// Raw exposes the backing slice for persistence and gradient accumulation.
func (pp *PP) Raw() []int16 { return pp.w }

// Dim is the tensor's side length (p3).
func Dim() int { return p3 }

// featureList fills pl with the exactly-40 piece-instance indices of pos.
// Panics if the position does not yield exactly FeatureCount features,
// which indicates a board/hand invariant violation rather than something
// recoverable.
func featureList(pos *shogi.Position) [FeatureCount]int {
	var pl [FeatureCount]int
	n := 0

	for sq := 0; sq < shogi.SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() {
			continue
		}
		cls := pieceClass[p.Type()]
		x, y := shogi.Square(sq).File(), shogi.Square(sq).Rank()
		idx := cls*81 + 9*y + x
		if p.Color() == shogi.White {
			idx += p2
		}
		pl[n] = idx
		n++
	}

	for _, c := range [2]shogi.Color{shogi.Black, shogi.White} {
		for _, h := range handTypes {
			cnt := pos.Hand[c][h.pt]
			base := p1 + handBase[h.pt]
			for i := 0; i < int(cnt); i++ {
				idx := base + i
				if c == shogi.White {
					idx += p2
				}
				pl[n] = idx
				n++
			}
		}
	}

	if n != FeatureCount {
		panic("engine: position does not have exactly 40 piece-instance features")
	}
	return pl
}

// FeatureList exports featureList for the learner's gradient accumulation.
func FeatureList(pos *shogi.Position) [FeatureCount]int { return featureList(pos) }

// Evaluate returns a centipawn score from the side-to-move's perspective.
func Evaluate(pos *shogi.Position, pp *PP) int {
	material := 0
	for sq := 0; sq < shogi.SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() {
			continue
		}
		if p.Color() == shogi.Black {
			material += shogi.PieceScore[p.Type()]
		} else {
			material -= shogi.PieceScore[p.Type()]
		}
	}
	for pt := shogi.Pawn; pt <= shogi.Gold; pt++ {
		material += int(pos.Hand[shogi.Black][pt]) * shogi.PieceScore[pt]
		material -= int(pos.Hand[shogi.White][pt]) * shogi.PieceScore[pt]
	}

	pl := featureList(pos)
	ppSum := 0
	for i := 1; i < FeatureCount; i++ {
		for j := 0; j < i; j++ {
			ppSum += int(pp.at(pl[i], pl[j]))
		}
	}

	score := (material*FvScale + ppSum) / FvScale
	if pos.Turn == shogi.White {
		score = -score
	}
	return score
}

// Rotate180 maps a p3-space feature index to its 180-degree-rotated
// counterpart: board squares reflect through the board center, hand
// instances keep their slot, and both cases swap the color half.
func Rotate180(idx int) int {
	color := 0
	rel := idx
	if rel >= p2 {
		color = 1
		rel -= p2
	}

	var rotRel int
	if rel < p1 {
		cls := rel / 81
		sqIdx := rel % 81
		rotRel = cls*81 + (80 - sqIdx)
	} else {
		rotRel = rel
	}

	if color == 0 {
		return rotRel + p2
	}
	return rotRel
}
