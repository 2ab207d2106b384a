package shogi

import "testing"

// perft counts pseudo-legal move leaf nodes at the given depth, matching the
// search's own move generator (no legality filtering).
func perft(pos Position, depth int) int64 {
	if depth == 0 {
		return 1
	}
	moves := pos.GeneratePseudoLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}
	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		nodes += perft(pos.DoMove(moves.Get(i)), depth-1)
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	InitZobrist()
	pos := StartPosition()

	tests := []struct {
		depth    int
		expected int64
	}{
		{1, 30},
		{2, 900},
		{3, 25470},
		// {4, 719731}, // slow, enable for thorough testing
	}

	for _, tc := range tests {
		got := perft(pos, tc.depth)
		if got != tc.expected {
			t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
		}
	}
}
