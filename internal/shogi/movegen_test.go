package shogi

import "testing"

func TestNoSelfCapture(t *testing.T) {
	// Black silver on 5e (x=4,y=4) with a Black pawn directly in front of it
	// at 5d (x=4,y=3): the silver must not generate a move onto its own pawn.
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 4)] = NewPiece(Silver, Black)
	pos.Piece[GetSquare(4, 3)] = NewPiece(Pawn, Black)
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(4, 0)] = NewPiece(King, White)

	moves := pos.GeneratePseudoLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == GetSquare(4, 4) && m.To() == GetSquare(4, 3) {
			t.Fatalf("generated a silver move onto a square occupied by its own pawn")
		}
	}
}

func TestNoDoublePawnDrop(t *testing.T) {
	// Black already has a pawn on file 5 (x=4); a second pawn in hand must
	// not be droppable anywhere on that file (nifu).
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 4)] = NewPiece(Pawn, Black)
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(4, 0)] = NewPiece(King, White)
	pos.Hand[Black][Pawn] = 1

	moves := pos.GeneratePseudoLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsDrop() && m.PieceType() == Pawn && m.To().File() == 4 {
			t.Errorf("dropped a pawn on file 4 (x), which already holds a Black pawn (nifu)")
		}
	}
}

func TestPawnCannotDropOnLastRank(t *testing.T) {
	// A pawn dropped on the last rank (y=0 for Black) could never move
	// again, so the generator must exclude it (the "stranded piece" rule).
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(4, 0)] = NewPiece(King, White)
	pos.Hand[Black][Pawn] = 1

	moves := pos.GeneratePseudoLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsDrop() && m.PieceType() == Pawn && m.To().Rank() == 0 {
			t.Errorf("dropped a pawn on rank 0 (the last rank for Black), which leaves it with no future move")
		}
	}
}

func TestKnightCannotDropOnLastTwoRanks(t *testing.T) {
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(4, 0)] = NewPiece(King, White)
	pos.Hand[Black][Knight] = 1

	moves := pos.GeneratePseudoLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.IsDrop() && m.PieceType() == Knight && m.To().Rank() <= 1 {
			t.Errorf("dropped a knight on rank %d, which leaves it with no future move", m.To().Rank())
		}
	}
}

func TestPawnMoveToLastRankMustPromote(t *testing.T) {
	// A Black pawn one step from the last rank must generate a promoting
	// move, and must NOT generate a non-promoting move onto that rank
	// (wouldStrand forbids the unpromoted landing).
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 1)] = NewPiece(Pawn, Black)
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(0, 0)] = NewPiece(King, White)

	moves := pos.GeneratePseudoLegalMoves()
	sawPromote, sawPlain := false, false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() == GetSquare(4, 1) && m.To() == GetSquare(4, 0) {
			if m.Promote() {
				sawPromote = true
			} else {
				sawPlain = true
			}
		}
	}
	if !sawPromote {
		t.Errorf("expected a promoting pawn move onto the last rank")
	}
	if sawPlain {
		t.Errorf("generated a non-promoting pawn move onto the last rank, which would strand it")
	}
}

func TestCapturesAreFlaggedButNotOnEmptySquares(t *testing.T) {
	pos := NewEmptyPosition()
	pos.Piece[GetSquare(4, 4)] = NewPiece(Rook, Black)
	pos.Piece[GetSquare(4, 2)] = NewPiece(Pawn, White)
	pos.Piece[GetSquare(4, 8)] = NewPiece(King, Black)
	pos.Piece[GetSquare(0, 0)] = NewPiece(King, White)

	moves := pos.GeneratePseudoLegalMoves()
	foundCapture := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		if m.From() != GetSquare(4, 4) {
			continue
		}
		if m.To() == GetSquare(4, 2) {
			if !m.IsCapture() || m.Captured() != Pawn {
				t.Errorf("rook capturing the white pawn was not flagged as a Pawn capture")
			}
			foundCapture = true
		} else if m.To() == GetSquare(4, 3) {
			if m.IsCapture() {
				t.Errorf("rook move onto an empty square was flagged as a capture")
			}
		}
	}
	if !foundCapture {
		t.Fatalf("expected the rook to generate a capture of the white pawn at 5c")
	}
}
