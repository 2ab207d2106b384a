package shogi

// Position is one node of shogi game state: the mailbox board, both
// players' hands, side to move, cached king squares, continuous-check
// counters, Zobrist key, ply from root, and the move that reached it.
//
// Positions are meant to live in a contiguous slice (a "position stack") so
// that DoMove's result can be written into the next slot: stack[i+1] =
// stack[i].DoMove(m). This keeps undo free (just step the index back) and
// lets repetition detection walk ancestors by indexing stack[i-2k].
type Position struct {
	Piece [SquareNum]Piece
	Hand  [ColorNum][HandTypeNum]uint8

	Turn Color
	King [ColorNum]Square

	ContinuousCheck [ColorNum]int

	Key  uint64
	Ply  int

	PreviousMove Move
	Checked      bool
}

// NewEmptyPosition returns a Position whose board is entirely wall squares,
// ready for SFEN placement.
func NewEmptyPosition() Position {
	var pos Position
	for i := range pos.Piece {
		pos.Piece[i] = Wall
	}
	for y := 0; y < RankNum; y++ {
		for x := 0; x < FileNum; x++ {
			pos.Piece[GetSquare(x, y)] = Empty
		}
	}
	return pos
}

// StartPosition returns the standard shogi starting position.
func StartPosition() Position {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		panic("shogi: malformed built-in start SFEN: " + err.Error())
	}
	return pos
}

func (pos *Position) set(sq Square, p Piece) {
	pos.Piece[sq] = p
	if p.Type() == King {
		pos.King[p.Color()] = sq
	}
}

// ComputeKey recomputes the Zobrist key from scratch: XOR of the
// per-(square, piece-byte) key for every occupied square, XORed with the
// raw byte-interpretation of the side-to-move's hand row and a side-to-move
// tag. The *opponent's* hand is not part of the key (see the note on the
// Zobrist tables in zobrist.go).
func (pos *Position) ComputeKey() uint64 {
	var key uint64
	for sq := 0; sq < SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() {
			continue
		}
		key ^= p2key[sq][p&0x3F]
	}
	hand := pos.Hand[pos.Turn]
	var handBits uint64
	for i, n := range hand {
		handBits |= uint64(n) << (8 * uint(i))
	}
	key ^= handBits
	key ^= turnKey[pos.Turn]
	return key
}

// InCheck returns true if the given color's king is attacked.
func (pos *Position) InCheck(c Color) bool {
	ksq := pos.King[c]
	return pos.isAttacked(ksq, c.Other())
}

// isAttacked returns true if any piece of color `by` attacks square sq.
func (pos *Position) isAttacked(sq Square, by Color) bool {
	for from := 0; from < SquareNum; from++ {
		p := pos.Piece[from]
		if p.IsEmpty() || p.IsWall() || p.Color() != by {
			continue
		}
		hit := false
		pos.forAttack(Square(from), p.Type(), by, func(target Square) bool {
			if target == sq {
				hit = true
				return true
			}
			return false
		})
		if hit {
			return true
		}
	}
	return false
}

// Material sums the board and hand piece values for one color (used by the
// "superior repetition" check, which compares aggregate material rather
// than exact byte layout).
func (pos *Position) Material(c Color) int {
	total := 0
	for sq := 0; sq < SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() {
			continue
		}
		if p.Color() == c {
			total += PieceScore[p.Type()]
		}
	}
	for pt := Pawn; pt <= Gold; pt++ {
		total += int(pos.Hand[c][pt]) * PieceScore[pt]
	}
	return total
}

// Equal reports whether two positions are identical (board, hands, turn).
// Used to check that the Zobrist key is a faithful function of state.
func (pos *Position) Equal(other *Position) bool {
	if pos.Turn != other.Turn || pos.Piece != other.Piece {
		return false
	}
	return pos.Hand == other.Hand
}

// DoMove applies m and returns the successor position. Callers hold
// positions in a contiguous stack and write the result at stack[idx+1],
// leaving pos itself untouched — undo is just stepping the index back, and
// ancestors remain reachable by indexing backward.
func (pos Position) DoMove(m Move) Position {
	next := pos

	if m.IsDrop() {
		pt := m.PieceType()
		next.Hand[pos.Turn][pt]--
		next.set(m.To(), NewPiece(pt, pos.Turn))
	} else {
		from, to := m.From(), m.To()
		if captured := m.Captured(); captured != Empty {
			next.Hand[pos.Turn][captured.Base()]++
		}
		pt := m.PieceType()
		if m.Promote() {
			pt = pt.Promote()
		}
		next.Piece[from] = Empty
		next.set(to, NewPiece(pt, pos.Turn))
	}

	mover := pos.Turn
	next.Turn = mover.Other()
	next.Ply = pos.Ply + 1
	next.PreviousMove = m
	next.Key = next.ComputeKey()
	next.Checked = next.InCheck(next.Turn)

	if next.Checked {
		next.ContinuousCheck[mover] = pos.ContinuousCheck[mover] + 1
	} else {
		next.ContinuousCheck[mover] = 0
	}

	return next
}

// IsWin reports whether the side to move has satisfied the entering-king
// (nyuugyoku) declaration rule: king in its own promotion zone, not in
// check, at least 10 other own pieces in that zone, and a weighted point
// sum over those pieces plus the hand meeting the color's threshold.
func (pos *Position) IsWin() bool {
	c := pos.Turn
	if !pos.King[c].InPromotionZone(c) {
		return false
	}
	if pos.InCheck(c) {
		return false
	}

	count := 0
	points := 0
	for sq := 0; sq < SquareNum; sq++ {
		p := pos.Piece[sq]
		if p.IsEmpty() || p.IsWall() || p.Color() != c || p.Type() == King {
			continue
		}
		if !Square(sq).InPromotionZone(c) {
			continue
		}
		count++
		points += declarationPoints(p.Type())
	}
	for pt := Pawn; pt <= Gold; pt++ {
		points += int(pos.Hand[c][pt]) * declarationPoints(pt)
	}

	threshold := 28
	if c == White {
		threshold = 27
	}
	return count >= 10 && points >= threshold
}
