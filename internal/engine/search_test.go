package engine

import (
	"testing"

	"github.com/hayashi-shogi/shogicore/internal/shogi"
)

func newTestSearcher() *Searcher {
	return NewSearcher(NewTranspositionTable(1), NewPP())
}

// goldMateSFEN is a hand-checkmate: White king cornered at 1a, a Black
// silver on 2c defends 1b (the square a dropped gold would occupy), and the
// dropped gold itself covers both escape squares (2a, 2b). Black holds the
// mating gold in hand; White holds every other piece, so the position
// carries all 40 pieces that Evaluate's feature list requires.
const goldMateSFEN = "8k/9/7S1/9/9/9/9/9/K8 b G2r2b3g3s4n4l18p 1"

// pawnMateSFEN puts a pawn in hand instead of a gold: a Black rook on file 2
// covers both escape squares (2a, 2b) and a Black lance on file 1 defends
// 1b, to exercise the "a pawn-drop mate is illegal" rule instead of a
// genuine mate.
const pawnMateSFEN = "8k/9/9/7R1/9/8L/9/9/K8 b P 1"

func TestMateInOneByGoldDrop(t *testing.T) {
	pos, err := shogi.ParseSFEN(goldMateSFEN)
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}

	to := shogi.GetSquare(8, 1) // 1b
	drop := shogi.NewDropMove(to, shogi.Gold)
	mated := pos.DoMove(drop)

	if !mated.Checked {
		t.Fatalf("expected the gold drop to check the white king")
	}
	if hasLegalMove(&mated) {
		t.Fatalf("expected no legal reply to the gold drop (checkmate)")
	}

	s := newTestSearcher()
	s.Stack[RootIndex] = mated
	score := s.negamax(RootIndex, 0, 0, -ScoreInfinite, ScoreInfinite)

	if score != -ScoreMate {
		t.Errorf("checkmated side's score = %d, want %d", score, -ScoreMate)
	}

	// A full search from the pre-drop position must find *some* move
	// scoring a mate, whichever the generator happens to order first.
	s2 := newTestSearcher()
	s2.SetRoot(pos)
	_, rootScore := s2.Search(1)
	if rootScore < ScoreMateInMaxPly {
		t.Errorf("root search score = %d, want at least %d (a forced mate)", rootScore, ScoreMateInMaxPly)
	}
}

func hasLegalMove(pos *shogi.Position) bool {
	moves := pos.GeneratePseudoLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		child := pos.DoMove(moves.Get(i))
		if !child.InCheck(pos.Turn) {
			return true
		}
	}
	return false
}

func TestMateByPawnDropIsIllegal(t *testing.T) {
	pos, err := shogi.ParseSFEN(pawnMateSFEN)
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}

	to := shogi.GetSquare(8, 1) // 1b: the square that would mate
	drop := shogi.NewDropMove(to, shogi.Pawn)
	mated := pos.DoMove(drop)

	if !mated.Checked {
		t.Fatalf("expected the pawn drop to check the white king")
	}

	s := newTestSearcher()
	s.Stack[RootIndex] = mated
	score := s.negamax(RootIndex, 0, 0, -ScoreInfinite, ScoreInfinite)

	if score != ScoreInfinite {
		t.Errorf("mate-by-pawn-drop score = %d, want %d (the checkmated side is awarded the win)", score, ScoreInfinite)
	}
}

func TestCheckRepetitionDraw(t *testing.T) {
	// Two golds shuffle back and forth, far from both kings, never
	// checking or capturing anything: the position after 4 plies is
	// identical to the position 4 plies earlier.
	const sfen = "8k/9/9/5g3/3G5/9/9/9/K8 b - 1"
	pos, err := shogi.ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}

	s := newTestSearcher()
	idx := RootIndex
	s.Stack[idx] = pos

	moves := []shogi.Move{
		shogi.NewBoardMove(shogi.GetSquare(3, 4), shogi.GetSquare(3, 3), shogi.Gold, false, shogi.Empty),
		shogi.NewBoardMove(shogi.GetSquare(5, 3), shogi.GetSquare(5, 4), shogi.Gold, false, shogi.Empty),
		shogi.NewBoardMove(shogi.GetSquare(3, 3), shogi.GetSquare(3, 4), shogi.Gold, false, shogi.Empty),
		shogi.NewBoardMove(shogi.GetSquare(5, 4), shogi.GetSquare(5, 3), shogi.Gold, false, shogi.Empty),
	}
	for _, m := range moves {
		idx++
		s.Stack[idx] = s.Stack[idx-1].DoMove(m)
	}

	if s.Stack[idx].Key != s.Stack[idx-4].Key {
		t.Fatalf("expected the position to repeat after 4 plies")
	}

	score, ok := s.checkRepetition(idx, &s.Stack[idx])
	if !ok {
		t.Fatalf("expected checkRepetition to fire")
	}
	if score != 0 {
		t.Errorf("repetition score = %d, want 0 (equal material, no continuous check)", score)
	}
}
