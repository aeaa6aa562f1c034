package swapnet

import (
	"math/cmplx"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/swapnet/fermion"
)

// CircuitUnitary returns the 2^n by 2^n unitary of applying, in schedule order, the gate of every visited tuple.
// A gate is found by the modes of its key regardless of their order, and repeated visits of a tuple are skipped.
// Tuples without a gate are the identity.
// The result is accumulated in complex64, so its entries are accurate to about 1e-5.
func CircuitUnitary(n int, schedule Schedule, gates map[ModeTuple]Gate) (*tensor.Dense, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d modes", n)
	}
	// bySet indexes gates by their sorted keys.
	bySet := make(map[ModeTuple]ModeTuple, len(gates))
	for _, key := range sortedKeys(gates) {
		if err := checkGate(n, key, gates[key]); err != nil {
			return nil, errors.Wrap(err, "")
		}
		s := key.Sorted()
		if prev, ok := bySet[s]; ok {
			return nil, errors.Wrapf(ErrDuplicateMode, "keys %v and %v name the same modes", prev, key)
		}
		bySet[s] = key
	}

	e := newEvaluator(n)
	for _, t := range schedule {
		s, err := e.visit(t)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		if s.Len() == 0 {
			continue
		}
		key, ok := bySet[s]
		if !ok {
			continue
		}
		if err := e.apply(s, localOperator(key, gates[key])); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}
	return e.acc, nil
}

// TrotterUnitary returns the product, in schedule order, of exp(-i H_t) over the visited tuples t,
// times the phase exp(-ic) of the constant of h.
// H_t collects the terms of h acting on exactly the modes of t, encoded the same way as in Trotterize.
// Like CircuitUnitary, the result is accumulated in complex64 and is accurate to about 1e-5.
func TrotterUnitary(schedule Schedule, h *fermion.InteractionOperator) (*tensor.Dense, error) {
	if err := h.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	n := h.NModes()

	e := newEvaluator(n)
	for _, t := range schedule {
		s, err := e.visit(t)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		if s.Len() == 0 {
			continue
		}
		g := encode(h, s)
		if g == nil {
			continue
		}
		if err := e.apply(s, localOperator(s, g)); err != nil {
			return nil, errors.Wrap(err, "")
		}
	}

	phase := cmplx.Exp(complex(0, -h.Constant))
	return e.acc.Mul(complex64(phase)), nil
}

// evaluator left multiplies embedded gate unitaries into an accumulator.
type evaluator struct {
	n       int
	visited map[ModeTuple]struct{}

	acc *tensor.Dense
	// buf and gate are reusable buffers.
	buf  *tensor.Dense
	gate *tensor.Dense
}

func newEvaluator(n int) *evaluator {
	e := &evaluator{n: n, visited: make(map[ModeTuple]struct{})}
	dim := 1 << n
	e.acc = tensor.Zeros(dim, dim)
	for i := range dim {
		e.acc.SetAt([]int{i, i}, 1)
	}
	e.buf = tensor.Zeros(dim, dim)
	e.gate = tensor.Zeros(dim, dim)
	return e
}

// visit returns the sorted key of t, or the zero ModeTuple if t has been visited before.
func (e *evaluator) visit(t ModeTuple) (ModeTuple, error) {
	if t.Len() == 0 {
		return ModeTuple{}, errors.Wrap(ErrUnsupportedArity, "empty event")
	}
	s := t.Sorted()
	if s.Mode(s.Len()-1) >= e.n {
		return ModeTuple{}, errors.Wrapf(ErrOutOfRangeMode, "%v %d", t, e.n)
	}
	if _, ok := e.visited[s]; ok {
		return ModeTuple{}, nil
	}
	e.visited[s] = struct{}{}
	return s, nil
}

// apply left multiplies the accumulator with exp(-i local), where local acts on the sorted modes of s.
func (e *evaluator) apply(s ModeTuple, local *fermion.InteractionOperator) error {
	u, err := expm(local)
	if err != nil {
		return errors.Wrap(err, "")
	}
	embed(e.gate, e.n, s.Modes(), u)
	tensor.Contract(e.buf, e.gate, e.acc, [][2]int{{1, 0}})
	e.acc, e.buf = e.buf, e.acc
	return nil
}

// embed sets dst to the Jordan-Wigner unitary on n modes of the local unitary u acting on the sorted modes.
// Local mode r is mode modes[r], and the parity strings of the modes in between contribute a sign.
func embed(dst *tensor.Dense, n int, modes []int, u *mat.CDense) {
	dim := 1 << n
	dst.Reset(dim, dim)
	for ijk := range dst.All() {
		dst.SetAt(ijk, 0)
	}

	k := len(modes)
	var inS int
	for _, m := range modes {
		inS |= 1 << (n - 1 - m)
	}
	for y := range dim {
		yS := restrict(y, n, modes)
		ySign := stringSign(n, modes, inS, yS, y)
		for xS := range 1 << k {
			v := u.At(xS, yS)
			if v == 0 {
				continue
			}
			x := y &^ inS
			for r, m := range modes {
				if (xS>>(k-1-r))&1 == 1 {
					x |= 1 << (n - 1 - m)
				}
			}
			sign := ySign * stringSign(n, modes, inS, xS, y)
			dst.SetAt([]int{x, y}, complex64(v*complex(sign, 0)))
		}
	}
}

// restrict returns the local basis index of the modes of x.
func restrict(x, n int, modes []int) int {
	k := len(modes)
	var xS int
	for r, m := range modes {
		if (x>>(n-1-m))&1 == 1 {
			xS |= 1 << (k - 1 - r)
		}
	}
	return xS
}

// stringSign returns (-1)^N, where N counts the occupied modes m of y outside the gate, each weighted by the
// number of occupied local modes of xS above m.
func stringSign(n int, modes []int, inS, xS, y int) float64 {
	k := len(modes)
	var parity int
	for m := range n {
		bit := 1 << (n - 1 - m)
		if inS&bit != 0 || y&bit == 0 {
			continue
		}
		for r, sm := range modes {
			if sm > m && (xS>>(k-1-r))&1 == 1 {
				parity ^= 1
			}
		}
	}
	if parity == 1 {
		return -1
	}
	return 1
}
