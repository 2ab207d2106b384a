package shogi

// GeneratePseudoLegalMoves enumerates board moves and drops for the side to
// move. The list may contain moves that leave the mover's own king in
// check, or king moves onto attacked squares — the search filters those out
// by re-checking after application, which keeps this generator branch-light
// and free of pin detection.
func (pos *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := &MoveList{}
	var ownPawnFile [FileNum]bool

	us := pos.Turn
	for sq := 0; sq < SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() || p.Color() != us {
			continue
		}
		if p.Type().Base() == Pawn && !p.Type().Promoted() {
			ownPawnFile[Square(sq).File()] = true
		}
		pos.generateBoardMovesFrom(Square(sq), p, ml)
	}

	pos.generateDrops(ownPawnFile, ml)
	return ml
}

// GenerateCaptures enumerates only capturing board moves, for quiescence.
func (pos *Position) GenerateCaptures() *MoveList {
	ml := &MoveList{}
	us := pos.Turn
	for sq := 0; sq < SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() || p.Color() != us {
			continue
		}
		pos.generateBoardMovesFrom(Square(sq), p, ml, true)
	}
	return ml
}

func (pos *Position) generateBoardMovesFrom(from Square, p Piece, ml *MoveList, capturesOnly ...bool) {
	us := p.Color()
	onlyCaptures := len(capturesOnly) > 0 && capturesOnly[0]
	pt := p.Type()
	canPromote := pt.CanPromote()

	pos.forAttack(from, pt, us, func(to Square) bool {
		target := pos.Piece[to]
		if target.IsWall() || (!target.IsEmpty() && target.Color() == us) {
			return false
		}
		if onlyCaptures && target.IsEmpty() {
			return false
		}

		captured := Empty
		if !target.IsEmpty() {
			captured = target.Type().Base()
		}

		inZone := from.InPromotionZone(us) || to.InPromotionZone(us)
		if canPromote && inZone {
			ml.Add(NewBoardMove(from, to, pt, true, captured))
		}
		if !wouldStrand(pt, us, to) {
			ml.Add(NewBoardMove(from, to, pt, false, captured))
		}
		return false
	})
}

// wouldStrand reports whether placing a non-promoting piece of type pt at
// square `to` would leave it with no further legal moves: a pawn or lance
// on the last rank, or a knight on the last two ranks.
func wouldStrand(pt PieceType, c Color, to Square) bool {
	base := pt.Base()
	y := to.Rank()
	last := 0
	if c == White {
		last = RankNum - 1
	}
	switch base {
	case Pawn, Lance:
		return y == last
	case Knight:
		if c == Black {
			return y <= 1
		}
		return y >= RankNum-2
	default:
		return false
	}
}

func (pos *Position) generateDrops(ownPawnFile [FileNum]bool, ml *MoveList) {
	us := pos.Turn
	hand := pos.Hand[us]

	for pt := Pawn; pt <= Gold; pt++ {
		if hand[pt] == 0 {
			continue
		}
		for y := 0; y < RankNum; y++ {
			for x := 0; x < FileNum; x++ {
				to := GetSquare(x, y)
				if !pos.Piece[to].IsEmpty() {
					continue
				}
				if pt == Pawn && ownPawnFile[x] {
					continue
				}
				if wouldStrand(pt, us, to) {
					continue
				}
				ml.Add(NewDropMove(to, pt))
			}
		}
	}
}
