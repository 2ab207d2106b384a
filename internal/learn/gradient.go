package learn

import (
	"math"

	"github.com/hayashi-shogi/shogicore/internal/engine"
)

// grad accumulates one epoch's raw gradient sum against the PP tensor,
// indexed the same way: g[i*dim+j] against feature pair (i, j). It is
// rebuilt fresh each epoch; the AdaGrad second-moment accumulator that
// turns it into a weight update lives across epochs instead, in the
// caller's adaGradState.
type grad struct {
	dim int
	g   []float64
}

func newGrad() *grad {
	dim := engine.Dim()
	return &grad{dim: dim, g: make([]float64, dim*dim)}
}

func (gr *grad) add(i, j int, delta float64) {
	gr.g[i*gr.dim+j] += delta
}

// symmetrize folds the raw per-cell accumulation into the two symmetries
// the PP tensor is required to hold: pp[i][j] and pp[j][i] represent the
// same unordered piece pair and must agree, and the 180-degree-rotated,
// color-swapped mirror of any position is physically the same position
// from the other side, whose evaluation negates (Evaluate flips sign for
// White to move) — so pp[rotate(i)][rotate(j)] must equal -pp[i][j].
// `add` only ever wrote one of the two transpose orderings per sample, so
// this both merges the missing transpose and projects the result onto the
// antisymmetric-under-rotation subspace in one pass over a frozen
// snapshot, which keeps the transform well-defined regardless of
// iteration order.
func (gr *grad) symmetrize() {
	dim := gr.dim
	src := make([]float64, len(gr.g))
	copy(src, gr.g)

	for i := 0; i < dim; i++ {
		ri := engine.Rotate180(i)
		for j := 0; j < dim; j++ {
			rj := engine.Rotate180(j)
			same := src[i*dim+j] + src[j*dim+i]
			rotated := src[ri*dim+rj] + src[rj*dim+ri]
			gr.g[i*dim+j] = same - rotated
		}
	}
}

// adaGradState is the AdaGrad second-moment accumulator, persisted across
// epochs within a run (unlike grad, which is rebuilt every epoch).
type adaGradState struct {
	dim int
	g2  []float64
}

func newAdaGradState() *adaGradState {
	dim := engine.Dim()
	return &adaGradState{dim: dim, g2: make([]float64, dim*dim)}
}

// apply runs one AdaGrad step against pp: each cell's squared gradient
// feeds the running second moment, which scales that cell's own learning
// rate down as it accumulates evidence. Returns the resulting min/max
// weight observed, for checkpoint bookkeeping.
func (st *adaGradState) apply(gr *grad, pp *engine.PP, eta float64) (minW, maxW int16) {
	raw := pp.Raw()
	minW, maxW = raw[0], raw[0]
	for idx := range raw {
		g := gr.g[idx]
		if g == 0 {
			continue
		}
		st.g2[idx] += g * g
		step := eta * g / math.Sqrt(st.g2[idx])
		v := int32(raw[idx]) - int32(math.Round(step))
		if v > 32767 {
			v = 32767
		}
		if v < -32768 {
			v = -32768
		}
		raw[idx] = int16(v)
		if raw[idx] < minW {
			minW = raw[idx]
		}
		if raw[idx] > maxW {
			maxW = raw[idx]
		}
	}
	return minW, maxW
}
