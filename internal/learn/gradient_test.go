package learn

import (
	"testing"

	"github.com/hayashi-shogi/shogicore/internal/engine"
)

func TestGradSymmetrizeMergesTranspose(t *testing.T) {
	gr := newGrad()
	i, j := 5, 6 // two distinct board-square features, same color half

	gr.add(i, j, 2.0)
	gr.symmetrize()

	// Neither (i,j) nor its rotated-and-negated counterpart received a
	// transpose contribution, so the only fold is i,j with j,i: both cells
	// must end up holding the full sum.
	if got := gr.g[i*gr.dim+j]; got != 2.0 {
		t.Errorf("g[%d][%d] = %v, want 2.0", i, j, got)
	}
	if got := gr.g[j*gr.dim+i]; got != 2.0 {
		t.Errorf("g[%d][%d] (transpose) = %v, want 2.0", j, i, got)
	}
}

func TestGradSymmetrizeIsAntisymmetricUnderRotation(t *testing.T) {
	gr := newGrad()
	i, j := 5, engine.Dim()/2 // two board-square features, one per color half
	ri, rj := engine.Rotate180(i), engine.Rotate180(j)
	if ri == i && rj == j {
		t.Fatalf("test fixture (%d, %d) is a fixed point of Rotate180, pick another", i, j)
	}

	gr.add(i, j, 3.0)
	gr.symmetrize()

	got := gr.g[i*gr.dim+j]
	gotRotated := gr.g[ri*gr.dim+rj]
	if got != -gotRotated {
		t.Errorf("g[%d][%d] = %v, g[%d][%d] (rotated) = %v, want negatives of each other", i, j, got, ri, rj, gotRotated)
	}
}

func TestAdaGradApplyStep(t *testing.T) {
	gr := newGrad()
	i, j := 10, 20
	gr.add(i, j, 10.0) // symmetrize would fold this into (j, i) too; skip it here to keep the math on a single cell

	pp := engine.NewPP()
	st := newAdaGradState()
	minW, maxW := st.apply(gr, pp, adaGradEta)

	// g2[i][j] accumulates g*g = 100, so step = eta*g/sqrt(g2) = 30*10/10 = 30.
	if got := pp.Get(i, j); got != -30 {
		t.Errorf("pp[%d][%d] = %d, want -30", i, j, got)
	}
	if minW > -30 || maxW < -30 {
		t.Errorf("min/max weight (%d, %d) do not bracket the updated weight -30", minW, maxW)
	}
}

func TestAdaGradApplySkipsZeroGradient(t *testing.T) {
	gr := newGrad()
	pp := engine.NewPP()
	pp.Set(1, 1, 42)

	st := newAdaGradState()
	st.apply(gr, pp, adaGradEta)

	if got := pp.Get(1, 1); got != 42 {
		t.Errorf("pp[1][1] = %d, want unchanged 42 (no gradient accumulated)", got)
	}
}

func TestAdaGradStatePersistsAcrossApplies(t *testing.T) {
	st := newAdaGradState()
	pp := engine.NewPP()

	gr1 := newGrad()
	gr1.add(2, 3, 5.0)
	gr1.symmetrize()
	st.apply(gr1, pp, adaGradEta)

	before := pp.Get(2, 3)

	gr2 := newGrad()
	gr2.add(2, 3, 5.0)
	gr2.symmetrize()
	st.apply(gr2, pp, adaGradEta)

	after := pp.Get(2, 3)

	// The second application sees a larger accumulated g2 than the first
	// would have on its own, so its step is smaller: the weight should
	// move by less on the second call than pp.Get(2,3)-before did on the
	// first (both calls push in the same direction since gr1 and gr2 carry
	// the same-signed gradient at this cell).
	firstStep := before // pp started at 0
	secondStep := after - before
	if secondStep >= 0 || -secondStep >= -firstStep {
		t.Errorf("second AdaGrad step (%d) should be smaller in magnitude than the first (%d), reflecting a persisted second moment", secondStep, firstStep)
	}
}
