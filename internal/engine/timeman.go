package engine

import (
	"time"

	"github.com/hayashi-shogi/shogicore/internal/shogi"
)

// Limits carries the USI go-command clock tokens relevant to time
// management. Byoyomi and the per-color remaining time are both stored as
// durations for convenience; the wire protocol sends them as milliseconds.
type Limits struct {
	BTime, WTime time.Duration
	Byoyomi      time.Duration
	Infinite     bool
}

// MaxDepth is the iterative deepening ceiling (depth 1..63).
const MaxDepth = 63

// ComputeAllowance derives the per-move time budget: the classic
// one-thirtieth-of-remaining-plus-byoyomi heuristic, floored to whole
// seconds and never less than one second, minus the configured safety
// margin.
func ComputeAllowance(limits Limits, us shogi.Color, margin time.Duration) time.Duration {
	own := limits.BTime
	if us == shogi.White {
		own = limits.WTime
	}

	ms := own.Milliseconds()/30 + limits.Byoyomi.Milliseconds()
	ms = (ms / 1000) * 1000
	if ms < 1000 {
		ms = 1000
	}

	allowance := time.Duration(ms) * time.Millisecond
	allowance -= margin
	if allowance < 0 {
		allowance = 0
	}
	return allowance
}

// InfoFunc receives one iterative-deepening progress report per completed
// depth, mirroring the USI "info" line fields.
type InfoFunc func(depth int, score int32, nodes uint64, elapsed time.Duration, pv []shogi.Move)

// IterativeDeepening runs depth 1..MaxDepth, reporting each completed depth
// through report and stopping when the deadline or stop flag fires, a mate
// score is found, or — when saveTime is set — the remaining allowance drops
// under five times the elapsed time. A depth interrupted after depth 1 is
// discarded, keeping the prior depth's best move; an interrupted depth 1 is
// kept and reported with whatever best move its partial search recorded.
// If that leaves no move, it falls back to a random legal move.
func IterativeDeepening(s *Searcher, allowance time.Duration, saveTime bool, report InfoFunc) (shogi.Move, int32) {
	start := time.Now()
	s.ResetStop()
	s.SetDeadline(start.Add(allowance))

	var bestMove shogi.Move
	var bestScore int32

	for depth := 1; depth <= MaxDepth; depth++ {
		mv, score := s.Search(depth)
		if s.Stopped() && depth > 1 {
			break
		}

		bestMove = mv
		bestScore = score
		elapsed := time.Since(start)
		if report != nil {
			report(depth, score, s.Nodes(), elapsed, s.PV())
		}

		if abs32(score) >= ScoreMateInMaxPly {
			break
		}
		if s.Stopped() {
			break
		}
		if saveTime {
			remaining := allowance - elapsed
			if remaining < 5*elapsed {
				break
			}
		}
	}

	if bestMove == shogi.NoMove {
		if mv, ok := s.RandomMove(); ok {
			bestMove = mv
		}
	}
	return bestMove, bestScore
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
