package engine

import (
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/hayashi-shogi/shogicore/internal/shogi"
)

// Score domain. ScoreInfinite doubles as both the bound of the root search
// window and the perpetual-check / superior-repetition / pawn-drop-mate
// verdict value.
const (
	ScoreInfinite     = 32767
	ScoreMate         = 32600
	ScoreMateInMaxPly = ScoreMate - 64
)

// RootIndex is the fixed stack slot the game's current position occupies;
// the 16 slots below it are reserved so that repetition's backward walk
// (up to 16 plies) never indexes before the start of the stack.
const RootIndex = 16

// MaxSearchPly bounds how far a single search can extend past RootIndex,
// covering the deepest declared depth (63) plus quiescence overrun and
// check-extension slack.
const MaxSearchPly = 256

const pvWidth = MaxSearchPly + 1

type pvTable struct {
	len   [pvWidth]int
	moves [pvWidth][pvWidth]shogi.Move
}

func (t *pvTable) clear() { t.len = [pvWidth]int{} }

// Searcher runs single-threaded iterative-deepening negamax over a
// write-forward position stack. Positions before RootIndex hold the game's
// move history (written by the USI position handler); RootIndex onward is
// the current node followed by scratch space the search writes into and
// discards.
type Searcher struct {
	Stack []shogi.Position
	PP    *PP
	tt    *TranspositionTable

	RandomOrdering bool
	Learning       bool

	pv    pvTable
	nodes uint64
	stop  atomic.Bool
	rng   *rand.Rand

	deadline    time.Time
	hasDeadline bool
}

// NewSearcher builds a searcher over a fresh stack, sized for one game plus
// one search's worth of scratch positions.
func NewSearcher(tt *TranspositionTable, pp *PP) *Searcher {
	return &Searcher{
		Stack: make([]shogi.Position, RootIndex+MaxSearchPly),
		PP:    pp,
		tt:    tt,
		rng:   rand.New(rand.NewSource(1)),
	}
}

// SetRoot installs pos at RootIndex, the current game position.
func (s *Searcher) SetRoot(pos shogi.Position) {
	s.Stack[RootIndex] = pos
}

// Root returns the current game position.
func (s *Searcher) Root() *shogi.Position {
	return &s.Stack[RootIndex]
}

// Stop raises the stop flag; an in-flight search returns 0 at its next
// poll and iterative deepening discards that depth's result.
func (s *Searcher) Stop() { s.stop.Store(true) }

// ResetStop clears the stop flag ahead of a new search.
func (s *Searcher) ResetStop() { s.stop.Store(false) }

// SetDeadline arms a wall-clock cutoff; zero time disarms it.
func (s *Searcher) SetDeadline(t time.Time) {
	s.deadline = t
	s.hasDeadline = !t.IsZero()
}

// Nodes returns the node count from the most recent search.
func (s *Searcher) Nodes() uint64 { return s.nodes }

// Search runs negamax from RootIndex to the given depth and returns the
// best move and its score, reading the PV built during the search.
func (s *Searcher) Search(depth int) (shogi.Move, int32) {
	return s.SearchFrom(RootIndex, depth)
}

// SearchFrom runs negamax rooted at an arbitrary stack slot, so a caller
// walking its own position stack (the self-play learner) can search each
// ply without disturbing RootIndex. depth 0 enters quiescence immediately,
// which the learner uses to get the quiescence-settled leaf position.
func (s *Searcher) SearchFrom(idx, depth int) (shogi.Move, int32) {
	s.pv.clear()
	s.nodes = 0
	score := s.negamax(idx, 0, depth, -ScoreInfinite, ScoreInfinite)

	var best shogi.Move
	if s.pv.len[0] > 0 {
		best = s.pv.moves[0][0]
	}
	return best, score
}

// PV returns the principal variation from the most recent search.
func (s *Searcher) PV() []shogi.Move {
	n := s.pv.len[0]
	out := make([]shogi.Move, n)
	copy(out, s.pv.moves[0][:n])
	return out
}

func (s *Searcher) timeUp() bool {
	if s.stop.Load() {
		return true
	}
	if s.hasDeadline && time.Now().After(s.deadline) {
		s.stop.Store(true)
		return true
	}
	return false
}

// Stopped reports whether the stop flag is set, either by an explicit Stop
// or by the deadline having passed during the last negamax call.
func (s *Searcher) Stopped() bool { return s.stop.Load() }

// negamax is fail-soft negamax with quiescence, repetition/perpetual-check
// detection, a transposition table, and a single-ply check extension.
func (s *Searcher) negamax(idx, ply, depth int, alpha, beta int32) int32 {
	s.pv.len[ply] = ply
	s.nodes++

	pos := &s.Stack[idx]

	if ply > 0 {
		if score, ok := s.checkRepetition(idx, pos); ok {
			return score
		}
	}

	var haveTT bool
	var tte TTEntry
	if !s.Learning {
		tte, haveTT = s.tt.Probe(pos.Key)
		if haveTT && int(tte.Depth) >= depth {
			switch tte.Bound {
			case BoundExact:
				return tte.Score
			case BoundLower:
				if tte.Score >= beta {
					return tte.Score
				}
			case BoundUpper:
				if tte.Score <= alpha {
					return tte.Score
				}
			}
		}
	}

	mateFloor := int32(-ScoreMate + ply)
	if pos.IsWin() {
		return -mateFloor
	}

	qsearch := depth <= 0 && !pos.Checked
	best := mateFloor
	alpha0 := alpha

	if qsearch {
		standPat := int32(Evaluate(pos, s.PP))
		if standPat >= beta || depth <= -4 {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		if standPat > best {
			best = standPat
		}
	}

	var moves *shogi.MoveList
	if qsearch {
		moves = pos.GenerateCaptures()
	} else {
		moves = pos.GeneratePseudoLegalMoves()
	}

	if ply == 0 && s.RandomOrdering && !qsearch {
		shuffleMoves(moves, s.rng)
	}

	legalFound := false
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)

		s.Stack[idx+1] = pos.DoMove(m)
		child := &s.Stack[idx+1]
		if child.InCheck(pos.Turn) {
			continue // left own king in check
		}
		legalFound = true

		ext := 0
		if !qsearch && child.Checked {
			ext = 1
		}
		score := -s.negamax(idx+1, ply+1, depth-1+ext, -beta, -alpha)

		if s.timeUp() {
			return 0
		}

		if score > best {
			best = score
			if score > alpha {
				alpha = score
				s.pv.moves[ply][ply] = m
				for j := ply + 1; j < s.pv.len[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.len[ply] = s.pv.len[ply+1]
			}
			if score >= beta {
				break
			}
		}
	}

	if !qsearch && !legalFound && pos.Checked &&
		pos.PreviousMove.IsDrop() && pos.PreviousMove.PieceType() == shogi.Pawn {
		return ScoreInfinite
	}

	if !s.Learning {
		var bound Bound
		switch {
		case best <= alpha0:
			bound = BoundUpper
		case best >= beta:
			bound = BoundLower
		default:
			bound = BoundExact
		}
		s.tt.Store(pos.Key, best, int8(depth), bound)
	}

	return best
}

// checkRepetition walks same-side-to-move ancestors at offsets 4, 6, .., 16.
// A key match means the position has recurred; the verdict depends on which
// side has been giving continuous check, with a fallback "superior
// repetition" test comparing relative material when neither side checked
// enough to resolve it outright. Only ancestors with an equal key are
// compared: an equal key means the same board and the same hand for the
// side to move, and with the pieces in play fixed the opponent's hand is
// then the same too, so for positions reached by legal play the material
// test comes out equal and the verdict is a draw. Positions whose boards
// match but whose hands differ have different keys and are not compared.
func (s *Searcher) checkRepetition(idx int, pos *shogi.Position) (int32, bool) {
	for i := 4; i <= 16; i += 2 {
		j := idx - i
		if j < 0 {
			break
		}
		anc := &s.Stack[j]
		if anc.Key != pos.Key {
			continue
		}

		half := int32(i / 2)
		if int32(pos.ContinuousCheck[pos.Turn]) >= half {
			return -ScoreInfinite, true
		}
		if int32(pos.ContinuousCheck[pos.Turn.Other()]) >= half {
			return ScoreInfinite, true
		}

		curDiff := pos.Material(pos.Turn) - pos.Material(pos.Turn.Other())
		ancDiff := anc.Material(pos.Turn) - anc.Material(pos.Turn.Other())
		switch {
		case curDiff > ancDiff:
			return ScoreInfinite, true
		case curDiff < ancDiff:
			return -ScoreInfinite, true
		default:
			return 0, true
		}
	}
	return 0, false
}

func shuffleMoves(ml *shogi.MoveList, rng *rand.Rand) {
	n := ml.Len()
	if n < 2 {
		return
	}
	start := rng.Intn(n)
	for i := 0; i < n; i++ {
		j := (start + i) % n
		k := rng.Intn(n)
		ml.Swap(j, k)
	}
}

// RandomMove returns a uniformly shuffled-then-scanned legal move: the
// first move, walking cyclically from a random start, that neither leaves
// the mover's own king in check nor leads to a child the search scores
// ScoreInfinite for the opponent (which would mean a mate by pawn drop or
// a perpetual check completed by the mover — both treated as forbidden for
// this fallback).
func (s *Searcher) RandomMove() (shogi.Move, bool) {
	pos := s.Root()
	moves := pos.GeneratePseudoLegalMoves()
	n := moves.Len()
	if n == 0 {
		return shogi.NoMove, false
	}
	start := s.rng.Intn(n)
	for k := 0; k < n; k++ {
		m := moves.Get((start + k) % n)
		child := pos.DoMove(m)
		if child.InCheck(pos.Turn) {
			continue
		}
		s.Stack[RootIndex+1] = child
		// The child is scored from the opponent's side to move.
		if s.negamax(RootIndex+1, 1, 0, -ScoreInfinite, ScoreInfinite) == ScoreInfinite {
			continue
		}
		return m, true
	}
	return shogi.NoMove, false
}
