package shogi

import "testing"

func TestSFENRoundTrip(t *testing.T) {
	pos, err := ParseSFEN(StartSFEN)
	if err != nil {
		t.Fatalf("ParseSFEN(start): %v", err)
	}
	if got := pos.SFEN(); got != StartSFEN {
		t.Errorf("round trip = %q, want %q", got, StartSFEN)
	}
}

func TestSFENRoundTripAfterMoves(t *testing.T) {
	pos := StartPosition()
	for _, lit := range []string{"7g7f", "3c3d", "8h2b+", "3a2b"} {
		m, err := pos.ParseMove(lit)
		if err != nil {
			t.Fatalf("ParseMove(%q): %v", lit, err)
		}
		pos = pos.DoMove(m)
	}

	again, err := ParseSFEN(pos.SFEN())
	if err != nil {
		t.Fatalf("ParseSFEN(round trip): %v", err)
	}
	if !pos.Equal(&again) {
		t.Errorf("position did not survive SFEN round trip: %s vs %s", pos.SFEN(), again.SFEN())
	}
}

func TestParseMoveDropLiteral(t *testing.T) {
	sfen := "lnsgkgsnl/1r5b1/pppppp1pp/6p2/9/9/PPPPPPPPP/1B5R1/LNSGKGSNL b P 1"
	pos, err := ParseSFEN(sfen)
	if err != nil {
		t.Fatalf("ParseSFEN: %v", err)
	}
	m, err := pos.ParseMove("P*6e")
	if err != nil {
		t.Fatalf("ParseMove(drop): %v", err)
	}
	if !m.IsDrop() || m.PieceType() != Pawn {
		t.Errorf("expected a pawn drop, got %s", m)
	}
	if m.String() != "P*6e" {
		t.Errorf("Move.String() = %q, want %q", m.String(), "P*6e")
	}
}

func TestZobristDeterminism(t *testing.T) {
	a := StartPosition()
	b := StartPosition()
	if a.Key != b.Key {
		t.Fatalf("same position produced different keys: %d vs %d", a.Key, b.Key)
	}

	m, err := a.ParseMove("7g7f")
	if err != nil {
		t.Fatalf("ParseMove: %v", err)
	}
	child := a.DoMove(m)
	if child.Key == a.Key {
		t.Errorf("key did not change after a move")
	}
	if child.Key != child.ComputeKey() {
		t.Errorf("stored key diverged from a freshly computed one")
	}
}
