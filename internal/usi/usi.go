// Package usi implements the Universal Shogi Interface text protocol: a
// line-oriented command loop on stdin/stdout that drives position setup,
// search, and the self-play learner.
package usi

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hayashi-shogi/shogicore/internal/engine"
	"github.com/hayashi-shogi/shogicore/internal/learn"
	"github.com/hayashi-shogi/shogicore/internal/shogi"
	"github.com/hayashi-shogi/shogicore/internal/storage"
)

// optionOrder is the declaration order usi's option lines are emitted in.
var optionOrder = []string{"Eval", "Ordering", "TimeMargin", "SaveTime", "Mate"}

// USI holds one engine session: the position stack, the shared search
// state, and the registered options.
type USI struct {
	searcher *engine.Searcher
	tt       *engine.TranspositionTable
	pp       *engine.PP
	idx      int

	options map[string]string

	searching bool
	wg        sync.WaitGroup
	mu        sync.Mutex
	learnStop atomic.Bool
}

// New builds a session with default options and the starting position.
func New() *USI {
	tt := engine.NewTranspositionTable(64)
	pp := engine.NewPP()
	u := &USI{
		searcher: engine.NewSearcher(tt, pp),
		tt:       tt,
		pp:       pp,
		idx:      engine.RootIndex,
		options: map[string]string{
			"Eval":       "Default",
			"Ordering":   "Default",
			"TimeMargin": "100",
			"SaveTime":   "true",
			"Mate":       "Default",
		},
	}
	u.searcher.SetRoot(shogi.StartPosition())
	return u
}

// Run reads commands from stdin until "quit" or EOF.
func (u *USI) Run() {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "usi":
			u.handleUSI()
		case "setoption":
			u.handleSetOption(line)
		case "isready":
			u.handleIsReady()
		case "position":
			u.handlePosition(args)
		case "go":
			u.handleGo(args)
		case "stop":
			u.handleStop()
		case "quit":
			u.handleStop()
			u.wg.Wait()
			return
		default:
			// unrecognized tokens are silently ignored
		}
	}
}

func (u *USI) handleUSI() {
	fmt.Println("id name ShogiCore")
	fmt.Println("id author hayashi-shogi")
	for _, name := range optionOrder {
		fmt.Println(optionLine(name))
	}
	fmt.Println("usiok")
}

func optionLine(name string) string {
	switch name {
	case "Eval":
		return "option name Eval type combo default Default var Default var Random(NoSearch)"
	case "Ordering":
		return "option name Ordering type combo default Default var Default var Random"
	case "TimeMargin":
		return "option name TimeMargin type spin default 100 min 0 max 3000"
	case "SaveTime":
		return "option name SaveTime type check default true"
	case "Mate":
		return "option name Mate type combo default Default var Default var Learn var Average"
	default:
		return ""
	}
}

// handleSetOption parses "setoption name <N> value <V>", where <V> is the
// remainder of the line, spaces included, not just the next token.
func (u *USI) handleSetOption(line string) {
	fields := strings.Fields(line)
	var name, value strings.Builder
	reading := 0 // 0 = none, 1 = name, 2 = value

	for _, f := range fields[1:] {
		switch f {
		case "name":
			reading = 1
			continue
		case "value":
			reading = 2
			continue
		}
		switch reading {
		case 1:
			if name.Len() > 0 {
				name.WriteByte(' ')
			}
			name.WriteString(f)
		case 2:
			if value.Len() > 0 {
				value.WriteByte(' ')
			}
			value.WriteString(f)
		}
	}

	n := name.String()
	for _, known := range optionOrder {
		if strings.EqualFold(known, n) {
			u.options[known] = value.String()
			return
		}
	}
	// unknown option names are silently ignored
}

func (u *USI) handleIsReady() {
	shogi.InitZobrist()
	if dir, err := storage.GetWeightsDir(); err == nil {
		if w, err := storage.ReadWeights(storage.WeightsPath(dir), engine.Dim()); err == nil {
			copy(u.pp.Raw(), w)
		}
	}
	fmt.Println("readyok")
}

// handlePosition resets the position stack at RootIndex and replays the
// given move list, matching each SFEN move literal against the legal moves
// generated from the running position.
func (u *USI) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var pos shogi.Position
	moveStart := len(args)

	switch args[0] {
	case "startpos":
		pos = shogi.StartPosition()
		moveStart = 1
	case "sfen":
		end := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				end = i
				break
			}
		}
		p, err := shogi.ParseSFEN(strings.Join(args[1:end], " "))
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string invalid sfen: %v\n", err)
			return
		}
		pos = p
		moveStart = end
	default:
		return
	}
	for i, a := range args {
		if a == "moves" {
			moveStart = i + 1
			break
		}
	}

	u.idx = engine.RootIndex
	u.searcher.SetRoot(pos)

	for _, moveStr := range args[moveStart:] {
		cur := u.searcher.Stack[u.idx]
		matched, ok := matchMove(&cur, moveStr)
		if !ok {
			fmt.Fprintf(os.Stderr, "info string invalid move in position command: %s\n", moveStr)
			return
		}
		u.idx++
		u.searcher.Stack[u.idx] = cur.DoMove(matched)
	}

	// Slide the replayed game down so the current position sits at
	// RootIndex with up to RootIndex earlier positions below it, where the
	// search's repetition detection looks for them.
	k := u.idx - engine.RootIndex
	if k > engine.RootIndex {
		k = engine.RootIndex
	}
	stack := u.searcher.Stack
	clear(stack[:engine.RootIndex-k])
	copy(stack[engine.RootIndex-k:engine.RootIndex+1], stack[u.idx-k:u.idx+1])
	u.idx = engine.RootIndex
}

func matchMove(pos *shogi.Position, s string) (shogi.Move, bool) {
	candidates := pos.GeneratePseudoLegalMoves()
	for i := 0; i < candidates.Len(); i++ {
		m := candidates.Get(i)
		if m.String() != s {
			continue
		}
		child := pos.DoMove(m)
		if child.InCheck(pos.Turn) {
			continue
		}
		return m, true
	}
	return shogi.NoMove, false
}

func (u *USI) timeMargin() time.Duration {
	ms, err := strconv.Atoi(u.options["TimeMargin"])
	if err != nil {
		ms = 100
	}
	return time.Duration(ms) * time.Millisecond
}

func (u *USI) saveTime() bool {
	return strings.EqualFold(u.options["SaveTime"], "true")
}

func (u *USI) handleGo(args []string) {
	for _, a := range args {
		if a == "mate" {
			u.handleGoMate()
			return
		}
	}

	pos := u.searcher.Stack[u.idx]

	if pos.IsWin() {
		fmt.Println("bestmove win")
		return
	}
	if !hasLegalMove(&pos) {
		fmt.Println("info score mate - string resign")
		fmt.Println("bestmove resign")
		return
	}

	if u.options["Eval"] == "Random(NoSearch)" {
		u.searcher.SetRoot(pos)
		if m, ok := u.searcher.RandomMove(); ok {
			fmt.Printf("bestmove %s\n", m)
		} else {
			fmt.Println("bestmove resign")
		}
		return
	}

	infinite := false
	var limits engine.Limits
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "infinite":
			infinite = true
		case "btime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.BTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "wtime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.WTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "byoyomi":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.Byoyomi = time.Duration(ms) * time.Millisecond
				i++
			}
		}
	}

	u.searcher.RandomOrdering = strings.EqualFold(u.options["Ordering"], "Random")
	u.searcher.SetRoot(pos)

	var allowance time.Duration
	if infinite {
		fmt.Printf("info score cp %d\n", engine.Evaluate(&pos, u.pp))
		allowance = 24 * time.Hour
	} else {
		allowance = engine.ComputeAllowance(limits, pos.Turn, u.timeMargin())
	}

	u.mu.Lock()
	u.searching = true
	u.mu.Unlock()
	u.wg.Add(1)

	go func() {
		defer u.wg.Done()
		move, _ := engine.IterativeDeepening(u.searcher, allowance, u.saveTime(), func(depth int, score int32, nodes uint64, elapsed time.Duration, pv []shogi.Move) {
			u.printInfo(depth, score, nodes, elapsed, pv)
		})

		u.mu.Lock()
		u.searching = false
		u.mu.Unlock()

		if move == shogi.NoMove {
			fmt.Println("bestmove resign")
			return
		}
		fmt.Printf("bestmove %s\n", move)
	}()
}

func (u *USI) printInfo(depth int, score int32, nodes uint64, elapsed time.Duration, pv []shogi.Move) {
	var scoreStr string
	switch {
	case score >= engine.ScoreMateInMaxPly:
		scoreStr = fmt.Sprintf("mate %d", engine.ScoreMate-score)
	case score <= -engine.ScoreMateInMaxPly:
		scoreStr = fmt.Sprintf("mate -%d", engine.ScoreMate+score)
	default:
		scoreStr = fmt.Sprintf("cp %d", score)
	}

	nps := uint64(0)
	if elapsed > 0 {
		nps = uint64(float64(nodes) / elapsed.Seconds())
	}

	pvStrs := make([]string, len(pv))
	for i, m := range pv {
		pvStrs[i] = m.String()
	}

	fmt.Printf("info depth %d time %d nodes %d nps %d score %s pv %s\n",
		depth, elapsed.Milliseconds(), nodes, nps, scoreStr, strings.Join(pvStrs, " "))
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

// handleGoMate dispatches the "go mate" subcommand. Mate=Learn and
// Mate=Average both run in their own goroutine so the command loop stays
// free to read "stop" or "quit" off stdin while they work.
func (u *USI) handleGoMate() {
	switch u.options["Mate"] {
	case "Learn":
		store, err := storage.NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "info string learner checkpoint store: %v\n", err)
			return
		}
		u.learnStop.Store(false)
		u.wg.Add(1)
		go func() {
			defer u.wg.Done()
			defer store.Close()
			learn.Run(u.pp, store, u.learnStop.Load)
		}()
	case "Average":
		u.wg.Add(1)
		go func() {
			defer u.wg.Done()
			if err := learn.AverageSnapshots(); err != nil {
				fmt.Fprintf(os.Stderr, "info string averaging failed: %v\n", err)
			}
		}()
	default:
		fmt.Println("checkmate notimplemented")
	}
}

func (u *USI) handleStop() {
	u.searcher.Stop()
	u.learnStop.Store(true)
}
