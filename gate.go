package swapnet

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/swapnet/fermion"
	"github.com/fumin/swapnet/jordanwigner"
)

const (
	// QuarticPeriod is the period of the two body coefficients decoded from a DoubleExcitationGate.
	// Coefficients that differ by a multiple of QuarticPeriod produce the same gate unitary.
	QuarticPeriod = 2 * math.Pi
)

var (
	// tripleComposites lists, per weight, the pair of local mode pairs addressed by a ControlledHopGate.
	tripleComposites = [3][2][2]int{{{0, 1}, {0, 2}}, {{0, 1}, {1, 2}}, {{0, 2}, {1, 2}}}
	// quadComposites lists, per weight, the partition of four local modes addressed by a DoubleExcitationGate.
	quadComposites = [3][2][2]int{{{0, 3}, {1, 2}}, {{0, 2}, {1, 3}}, {{0, 1}, {2, 3}}}
)

// Gate is a parameterized gate on one to four modes.
// The concrete types are PotentialGate, HopInteractGate, ControlledHopGate and DoubleExcitationGate.
type Gate interface {
	Arity() int
	Params() Params

	// decode adds the operator of the gate to op, where local mode i is mode modes[i] of op.
	decode(op *fermion.InteractionOperator, modes [MaxArity]int)
	withGlobalShift(g float64) Gate
}

// Params is the arity independent view of a gate.
type Params struct {
	Weights     []float64
	Exponent    float64
	GlobalShift float64
}

// NewGate builds the gate of the given arity.
// len(p.Weights) must be 0, 2, 3 and 3 for arity 1, 2, 3 and 4 respectively.
func NewGate(arity int, p Params) (Gate, error) {
	numWeights := [...]int{1: 0, 2: 2, 3: 3, 4: 3}
	if arity < 1 || arity > MaxArity {
		return nil, errors.Wrapf(ErrUnsupportedArity, "%d", arity)
	}
	if len(p.Weights) != numWeights[arity] {
		return nil, errors.Wrapf(ErrUnsupportedArity, "arity %d weights %v", arity, p.Weights)
	}
	switch arity {
	case 1:
		return PotentialGate{Exponent: p.Exponent, GlobalShift: p.GlobalShift}, nil
	case 2:
		return HopInteractGate{Weights: [2]float64(p.Weights), Exponent: p.Exponent, GlobalShift: p.GlobalShift}, nil
	case 3:
		return ControlledHopGate{Weights: [3]float64(p.Weights), Exponent: p.Exponent, GlobalShift: p.GlobalShift}, nil
	default:
		return DoubleExcitationGate{Weights: [3]float64(p.Weights), Exponent: p.Exponent, GlobalShift: p.GlobalShift}, nil
	}
}

// PotentialGate is the on-site rotation exp(iπ e n_p) up to the global phase.
type PotentialGate struct {
	Exponent    float64
	GlobalShift float64
}

func (g PotentialGate) Arity() int { return 1 }

func (g PotentialGate) Params() Params {
	return Params{Weights: []float64{}, Exponent: g.Exponent, GlobalShift: g.GlobalShift}
}

func (g PotentialGate) decode(op *fermion.InteractionOperator, m [MaxArity]int) {
	p := m[0]
	op.OneBody.Set(p, p, op.OneBody.At(p, p)-math.Pi*g.Exponent)
	op.Constant += math.Pi * g.Exponent * g.GlobalShift
}

func (g PotentialGate) withGlobalShift(s float64) Gate {
	g.GlobalShift = s
	return g
}

// HopInteractGate combines the hopping term -w0 (a†0 a1 + a†1 a0) and the interaction -w1 a†0 a†1 a0 a1,
// both scaled by the exponent.
type HopInteractGate struct {
	Weights     [2]float64
	Exponent    float64
	GlobalShift float64
}

func (g HopInteractGate) Arity() int { return 2 }

func (g HopInteractGate) Params() Params {
	return Params{Weights: g.Weights[:], Exponent: g.Exponent, GlobalShift: g.GlobalShift}
}

func (g HopInteractGate) decode(op *fermion.InteractionOperator, m [MaxArity]int) {
	i, j := m[0], m[1]
	hop := -g.Weights[0] * g.Exponent
	op.OneBody.Set(i, j, op.OneBody.At(i, j)+hop)
	op.OneBody.Set(j, i, op.OneBody.At(j, i)+hop)
	op.TwoBody.AddAt(i, j, i, j, -g.Weights[1]*g.Exponent)
	op.Constant += g.GlobalShift * g.Exponent
}

func (g HopInteractGate) withGlobalShift(s float64) Gate {
	g.GlobalShift = s
	return g
}

// ControlledHopGate acts on three modes, with one weight per entry of tripleComposites.
type ControlledHopGate struct {
	Weights     [3]float64
	Exponent    float64
	GlobalShift float64
}

func (g ControlledHopGate) Arity() int { return 3 }

func (g ControlledHopGate) Params() Params {
	return Params{Weights: g.Weights[:], Exponent: g.Exponent, GlobalShift: g.GlobalShift}
}

func (g ControlledHopGate) decode(op *fermion.InteractionOperator, m [MaxArity]int) {
	for i, c := range tripleComposites {
		addComposite(op, m, c, -math.Pi*g.Weights[i]*g.Exponent/2)
	}
	op.Constant += g.GlobalShift * g.Exponent
}

func (g ControlledHopGate) withGlobalShift(s float64) Gate {
	g.GlobalShift = s
	return g
}

// DoubleExcitationGate acts on four modes, with one weight per entry of quadComposites.
type DoubleExcitationGate struct {
	Weights     [3]float64
	Exponent    float64
	GlobalShift float64
}

func (g DoubleExcitationGate) Arity() int { return 4 }

func (g DoubleExcitationGate) Params() Params {
	return Params{Weights: g.Weights[:], Exponent: g.Exponent, GlobalShift: g.GlobalShift}
}

func (g DoubleExcitationGate) decode(op *fermion.InteractionOperator, m [MaxArity]int) {
	for i, c := range quadComposites {
		addComposite(op, m, c, math.Pi*g.Weights[i]*g.Exponent/2)
	}
	op.Constant += g.GlobalShift * g.Exponent
}

func (g DoubleExcitationGate) withGlobalShift(s float64) Gate {
	g.GlobalShift = s
	return g
}

// WrapQuartic maps v into [0, QuarticPeriod).
func WrapQuartic(v float64) float64 {
	w := math.Mod(v, QuarticPeriod)
	if w < 0 {
		w += QuarticPeriod
	}
	if w == QuarticPeriod {
		return 0
	}
	return w
}

// addComposite adds v to V[C,A] and V[A,C], where C and A are the local pairs of composite.
func addComposite(op *fermion.InteractionOperator, m [MaxArity]int, composite [2][2]int, v float64) {
	p, q := m[composite[0][0]], m[composite[0][1]]
	r, s := m[composite[1][0]], m[composite[1][1]]
	op.TwoBody.AddAt(p, q, r, s, v)
	op.TwoBody.AddAt(r, s, p, q, v)
}

// canonical returns the coefficient of a†p a†q a_r a_s after moving every term on the same modes into that order.
func canonical(v *fermion.Tensor4, p, q, r, s int) float64 {
	return v.At(p, q, r, s) - v.At(q, p, r, s) - v.At(p, q, s, r) + v.At(q, p, s, r)
}

// compositeCoefficient returns the symmetrized canonical coefficient of a composite.
func compositeCoefficient(v *fermion.Tensor4, m [MaxArity]int, composite [2][2]int) float64 {
	p, q := m[composite[0][0]], m[composite[0][1]]
	r, s := m[composite[1][0]], m[composite[1][1]]
	return (canonical(v, p, q, r, s) + canonical(v, r, s, p, q)) / 2
}

// encode returns the gate carrying the terms of h that act on exactly the modes of key, or nil if there are none.
// key must be sorted. The returned gate has no global shift.
func encode(h *fermion.InteractionOperator, key ModeTuple) Gate {
	m := key.modes
	switch key.Len() {
	case 1:
		e := -h.OneBody.At(m[0], m[0]) / math.Pi
		if e == 0 {
			return nil
		}
		return PotentialGate{Exponent: e}
	case 2:
		i, j := m[0], m[1]
		t := (h.OneBody.At(i, j) + h.OneBody.At(j, i)) / 2
		u := canonical(h.TwoBody, i, j, i, j)
		if t == 0 && u == 0 {
			return nil
		}
		return HopInteractGate{Weights: [2]float64{-t, -u}, Exponent: 1}
	case 3:
		var w [3]float64
		for i, c := range tripleComposites {
			w[i] = -2 * compositeCoefficient(h.TwoBody, m, c) / math.Pi
		}
		if w == [3]float64{} {
			return nil
		}
		return ControlledHopGate{Weights: w, Exponent: 1}
	case 4:
		var w [3]float64
		for i, c := range quadComposites {
			w[i] = 2 * compositeCoefficient(h.TwoBody, m, c) / math.Pi
		}
		if w == [3]float64{} {
			return nil
		}
		return DoubleExcitationGate{Weights: w, Exponent: 1}
	default:
		panic(fmt.Sprintf("%v", key))
	}
}

// localOperator returns the operator of g on the modes 0..len(key)-1, where position i of key is mode rank(i).
func localOperator(key ModeTuple, g Gate) *fermion.InteractionOperator {
	op := fermion.NewInteractionOperator(key.Len())
	g.decode(op, key.ranks())
	return op
}

// GateUnitary returns exp(-iH), where H is the operator of g on the modes 0..Arity()-1 under the Jordan-Wigner transformation.
func GateUnitary(g Gate) (*mat.CDense, error) {
	if g == nil {
		return nil, errors.Wrap(ErrUnsupportedArity, "nil gate")
	}
	modes := make([]int, g.Arity())
	for i := range modes {
		modes[i] = i
	}
	key, err := NewModeTuple(modes...)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	u, err := expm(localOperator(key, g))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	return u, nil
}

// expm returns exp(-iH) for the real symmetric Jordan-Wigner matrix H of op.
func expm(op *fermion.InteractionOperator) (*mat.CDense, error) {
	h := jordanwigner.Operator(op)
	dim := h.Rows()
	sym := mat.NewSymDense(dim, nil)
	for yx, v := range h.NonZeros() {
		if yx[0] <= yx[1] {
			sym.SetSym(yx[0], yx[1], real(v))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, errors.Errorf("eigen decomposition failed %s", op)
	}
	values := eig.Values(nil)
	var vecs mat.Dense
	eig.VectorsTo(&vecs)

	phases := make([]complex128, dim)
	for j, lambda := range values {
		phases[j] = cmplx.Exp(complex(0, -lambda))
	}
	u := mat.NewCDense(dim, dim, nil)
	for a := range dim {
		for b := range dim {
			var v complex128
			for j, phase := range phases {
				v += complex(vecs.At(a, j)*vecs.At(b, j), 0) * phase
			}
			u.Set(a, b, v)
		}
	}
	return u, nil
}
