// Package learn implements the self-play learner: parallel depth-2 games
// generate training positions, which a single AdaGrad pass folds into the
// two-piece-relation evaluation tensor once per epoch.
package learn

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/hayashi-shogi/shogicore/internal/engine"
	"github.com/hayashi-shogi/shogicore/internal/shogi"
	"github.com/hayashi-shogi/shogicore/internal/storage"
)

const (
	numWorkers        = 8
	targetDepth       = 2
	alwaysRandomPlies = 4
	randomWindowEnd   = 10
	randomProb        = 7.0 / 8.0
	maxGameLength     = 300
	adaGradEta        = 30.0
	logisticA         = 0.0016
	targetBlendP      = 0.6
	epochPlies        = 1000
	snapshotEvery     = 25
	snapshotCount     = 57
)

// StopFunc is polled before each game and between epochs; once it returns
// true, workers start no new games, the positions already collected in the
// current epoch are still applied, and the run ends.
type StopFunc func() bool

// Run drives the self-play loop until stop reports true: each epoch plays
// enough depth-2 games to collect epochPlies training positions across
// numWorkers goroutines, folds their AdaGrad gradient into pp, and every
// snapshotEvery epochs writes a numbered weight snapshot to disk.
func Run(pp *engine.PP, store *storage.Store, stop StopFunc) {
	cp, err := store.LoadCheckpoint()
	if err != nil {
		cp = &storage.Checkpoint{}
	}

	weightsDir, err := storage.GetWeightsDir()
	if err != nil {
		fmt.Printf("info string learner: %v\n", err)
		return
	}

	epoch := cp.Epoch
	adaGrad := newAdaGradState()
	for !stop() {
		gr := newGrad()
		var mu sync.Mutex
		var posCount int64
		var wg sync.WaitGroup

		for w := 0; w < numWorkers; w++ {
			wg.Add(1)
			go func(seed int64) {
				defer wg.Done()
				rng := rand.New(rand.NewSource(seed))
				for {
					mu.Lock()
					done := posCount >= epochPlies || stop()
					mu.Unlock()
					if done {
						return
					}

					records, k0, kEnd, outcome := playGame(pp, rng)
					localGrad := newGrad()
					n := accumulate(localGrad, records, k0, kEnd, outcome)

					mu.Lock()
					mergeInto(gr, localGrad)
					posCount += int64(n)
					mu.Unlock()
				}
			}(int64(epoch)*int64(numWorkers) + int64(w) + 1)
		}
		wg.Wait()

		gr.symmetrize()
		minW, maxW := adaGrad.apply(gr, pp, adaGradEta)

		epoch++
		cp.Epoch = epoch
		cp.TotalPositions += posCount
		cp.WeightMin = minW
		cp.WeightMax = maxW

		if epoch%snapshotEvery == 0 {
			path := storage.SnapshotPath(weightsDir, snapshotNumber(epoch))
			if err := storage.WriteWeights(path, pp.Raw()); err != nil {
				fmt.Printf("info string learner snapshot failed: %v\n", err)
			} else {
				cp.LastSnapshot = path
			}
		}
		if err := store.SaveCheckpoint(cp); err != nil {
			fmt.Printf("info string learner checkpoint failed: %v\n", err)
		}
		fmt.Printf("info string learner epoch %d positions %d\n", epoch, cp.TotalPositions)
	}
}

// snapshotNumber maps an epoch count onto the fixed [100, 999] numbering
// SnapshotPath expects, cycling through snapshotCount slots so averaging
// always has a bounded, recent window of snapshots to read.
func snapshotNumber(epoch int) int {
	return 100 + (epoch/snapshotEvery-1)%snapshotCount
}

func mergeInto(dst, src *grad) {
	for i := range dst.g {
		dst.g[i] += src.g[i]
	}
}

type plyRecord struct {
	qscore int32 // Black POV, from the depth-0 quiescence search
	score  int32 // Black POV, from the depth-2 search
	leaf   shogi.Position
}

// isRandomPly decides whether ply k of the opening is forced (or
// probabilistically chosen) to be a uniformly random legal move rather
// than a searched one.
func isRandomPly(k int, rng *rand.Rand) bool {
	if k < alwaysRandomPlies {
		return true
	}
	if k < randomWindowEnd {
		return rng.Float64() < randomProb
	}
	return false
}

// loseOutcome converts "the side to move has no legal reply" into a
// Black-POV result: that side has lost.
func loseOutcome(toMove shogi.Color) float64 {
	if toMove == shogi.Black {
		return 0
	}
	return 1
}

// playGame plays one self-play game from the starting position, returning
// a per-ply record of (qscore, score, quiescence leaf) for every searched
// ply, the index k0 of the last ply inside the random-opening window (the
// caller trains only on plies after k0, since random-opening plies carry
// no search signal), and the game's final outcome from Black's point of
// view (1 = Black win, 0 = White win, 0.5 = undecided at the move cap).
func playGame(pp *engine.PP, rng *rand.Rand) (records []plyRecord, k0, kEnd int, outcome float64) {
	tt := engine.NewTranspositionTable(1)
	searcher := engine.NewSearcher(tt, pp)
	// 1024 positions: the slots up to RootIndex, up to maxGameLength plies
	// of the game, and a search's scratch positions past the last one.
	searcher.Stack = make([]shogi.Position, 1024)
	searcher.Learning = true
	searcher.SetRoot(shogi.StartPosition())

	idx := engine.RootIndex
	records = make([]plyRecord, 0, maxGameLength)
	k0 = -1

	for k := 0; k < maxGameLength; k++ {
		cur := searcher.Stack[idx]

		if cur.IsWin() {
			kEnd = k
			if cur.Turn == shogi.Black {
				return records, k0, kEnd, 1
			}
			return records, k0, kEnd, 0
		}

		if isRandomPly(k, rng) {
			m, ok := randomLegalMove(&cur, rng)
			if !ok {
				kEnd = k
				return records, k0, kEnd, loseOutcome(cur.Turn)
			}
			idx++
			searcher.Stack[idx] = cur.DoMove(m)
			k0 = k
			continue
		}

		mv, score := searcher.SearchFrom(idx, targetDepth)
		if mv == shogi.NoMove {
			kEnd = k
			return records, k0, kEnd, loseOutcome(cur.Turn)
		}
		_, qscore := searcher.SearchFrom(idx, 0)
		qpv := searcher.PV()
		leaf := cur
		for _, m := range qpv {
			leaf = leaf.DoMove(m)
		}

		blackScore, blackQScore := score, qscore
		if cur.Turn == shogi.White {
			blackScore, blackQScore = -blackScore, -blackQScore
		}
		for len(records) <= k {
			records = append(records, plyRecord{})
		}
		records[k] = plyRecord{qscore: blackQScore, score: blackScore, leaf: leaf}

		if abs32(score) >= engine.ScoreMateInMaxPly {
			kEnd = k
			if blackScore >= engine.ScoreMateInMaxPly {
				return records, k0, kEnd, 1
			}
			return records, k0, kEnd, 0
		}

		idx++
		searcher.Stack[idx] = cur.DoMove(mv)
	}

	kEnd = maxGameLength - 1
	return records, k0, kEnd, 0.5
}

// randomLegalMove picks a uniformly random legal move, or reports false if
// pos has none (checkmate or, for the entering-king rule, a position
// already resolved by IsWin before this is called).
func randomLegalMove(pos *shogi.Position, rng *rand.Rand) (shogi.Move, bool) {
	moves := pos.GeneratePseudoLegalMoves()
	n := moves.Len()
	if n == 0 {
		return shogi.NoMove, false
	}
	start := rng.Intn(n)
	for i := 0; i < n; i++ {
		m := moves.Get((start + i) % n)
		child := pos.DoMove(m)
		if child.InCheck(pos.Turn) {
			continue
		}
		return m, true
	}
	return shogi.NoMove, false
}

// accumulate walks the recorded plies backward from kEnd to k0+1 (the
// plies actually searched, excluding the random-opening window), folding
// each one's gradient contribution into gr. The training target is built
// by bootstrapping backward from the game's final outcome: at each ply the
// target blends the target already carried back from later plies with
// this ply's own full-depth win probability, so a ply's target reflects
// not just its own search but everything that happened afterward. Returns
// the number of plies trained on.
func accumulate(gr *grad, records []plyRecord, k0, kEnd int, outcome float64) int {
	n := 0
	target := outcome
	for k := kEnd; k > k0; k-- {
		if k >= len(records) {
			continue
		}
		rec := records[k]
		target = targetBlendP*target + (1-targetBlendP)*sigmoid(logisticA*float64(rec.score))

		t := sigmoid(logisticA * float64(rec.qscore))
		deriv := 2 * logisticA * t * (1 - t) * (t - target)

		pl := engine.FeatureList(&rec.leaf)
		for i := 1; i < engine.FeatureCount; i++ {
			for j := 0; j < i; j++ {
				gr.add(pl[i], pl[j], deriv)
			}
		}
		n++
	}
	return n
}

func sigmoid(x float64) float64 { return 1 / (1 + math.Exp(-x)) }

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
