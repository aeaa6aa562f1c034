// Package fermion represents fermionic interaction operators
//
//	H = c + Σ h[p,q] a†p a_q + Σ V[p,q,r,s] a†p a†q a_r a_s
//
// with real coefficients.
package fermion

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrShapeMismatch = errors.New("shape mismatch")
)

// Tensor4 is a dense rank-4 tensor of dimension n along every axis.
type Tensor4 struct {
	n    int
	data []float64
}

func NewTensor4(n int) *Tensor4 {
	return &Tensor4{n: n, data: make([]float64, n*n*n*n)}
}

func (t *Tensor4) Dim() int { return t.n }

func (t *Tensor4) idx(p, q, r, s int) int {
	return ((p*t.n+q)*t.n+r)*t.n + s
}

func (t *Tensor4) At(p, q, r, s int) float64 { return t.data[t.idx(p, q, r, s)] }

func (t *Tensor4) Set(p, q, r, s int, v float64) { t.data[t.idx(p, q, r, s)] = v }

func (t *Tensor4) AddAt(p, q, r, s int, v float64) { t.data[t.idx(p, q, r, s)] += v }

// All iterates over every index of t in row major order.
func (t *Tensor4) All() func(yield func([4]int, float64) bool) {
	return func(yield func([4]int, float64) bool) {
		for i, v := range t.data {
			pqrs := [4]int{i / (t.n * t.n * t.n), i / (t.n * t.n) % t.n, i / t.n % t.n, i % t.n}
			if !yield(pqrs, v) {
				return
			}
		}
	}
}

func (t *Tensor4) Copy() *Tensor4 {
	c := &Tensor4{n: t.n, data: make([]float64, len(t.data))}
	copy(c.data, t.data)
	return c
}

type InteractionOperator struct {
	Constant float64
	OneBody  *mat.Dense
	TwoBody  *Tensor4
}

// NewInteractionOperator returns the zero operator on n modes.
func NewInteractionOperator(n int) *InteractionOperator {
	return &InteractionOperator{OneBody: zeros(n), TwoBody: NewTensor4(n)}
}

// FromSlices builds an operator from nested slices.
func FromSlices(constant float64, oneBody [][]float64, twoBody [][][][]float64) (*InteractionOperator, error) {
	n := len(oneBody)
	for i, row := range oneBody {
		if len(row) != n {
			return nil, errors.Wrapf(ErrShapeMismatch, "one body row %d has %d columns, expected %d", i, len(row), n)
		}
	}
	if len(twoBody) != n {
		return nil, errors.Wrapf(ErrShapeMismatch, "two body dimension %d, one body dimension %d", len(twoBody), n)
	}
	op := NewInteractionOperator(n)
	op.Constant = constant
	for p, a := range twoBody {
		if len(a) != n {
			return nil, errors.Wrapf(ErrShapeMismatch, "two body [%d] has length %d, expected %d", p, len(a), n)
		}
		for q, b := range a {
			if len(b) != n {
				return nil, errors.Wrapf(ErrShapeMismatch, "two body [%d,%d] has length %d, expected %d", p, q, len(b), n)
			}
			for r, c := range b {
				if len(c) != n {
					return nil, errors.Wrapf(ErrShapeMismatch, "two body [%d,%d,%d] has length %d, expected %d", p, q, r, len(c), n)
				}
				for s, v := range c {
					op.TwoBody.Set(p, q, r, s, v)
				}
			}
		}
	}
	for i, row := range oneBody {
		for j, v := range row {
			op.OneBody.Set(i, j, v)
		}
	}
	return op, nil
}

func (op *InteractionOperator) NModes() int {
	if op.OneBody == nil {
		return 0
	}
	r, _ := op.OneBody.Dims()
	return r
}

// Validate checks that the one body tensor is square and matches the two body tensor.
func (op *InteractionOperator) Validate() error {
	if op.OneBody == nil || op.TwoBody == nil {
		return errors.Wrap(ErrShapeMismatch, "missing tensor")
	}
	r, c := op.OneBody.Dims()
	if r != c {
		return errors.Wrapf(ErrShapeMismatch, "one body %dx%d", r, c)
	}
	if op.TwoBody.Dim() != r {
		return errors.Wrapf(ErrShapeMismatch, "two body dimension %d, one body dimension %d", op.TwoBody.Dim(), r)
	}
	return nil
}

func (op *InteractionOperator) Copy() *InteractionOperator {
	c := &InteractionOperator{Constant: op.Constant, OneBody: zeros(op.NModes()), TwoBody: op.TwoBody.Copy()}
	if op.NModes() > 0 {
		c.OneBody.Copy(op.OneBody)
	}
	return c
}

// NormalOrdered returns an equivalent operator in which every two body coefficient sits at
// [p,q,r,s] with p < q and r < s.
// Terms such as a†p a†p vanish and are dropped.
func (op *InteractionOperator) NormalOrdered() *InteractionOperator {
	no := op.Copy()
	n := op.NModes()
	no.TwoBody = NewTensor4(n)
	for pqrs, v := range op.TwoBody.All() {
		if v == 0 {
			continue
		}
		p, q, r, s := pqrs[0], pqrs[1], pqrs[2], pqrs[3]
		if p == q || r == s {
			continue
		}
		sign := 1.0
		if p > q {
			p, q = q, p
			sign = -sign
		}
		if r > s {
			r, s = s, r
			sign = -sign
		}
		no.TwoBody.AddAt(p, q, r, s, sign*v)
	}
	return no
}

// EqualApprox reports whether a and b have the same number of modes and coefficients within tol.
// The comparison is entrywise; compare NormalOrdered operators to test operator equality.
func EqualApprox(a, b *InteractionOperator, tol float64) bool {
	if a.NModes() != b.NModes() {
		return false
	}
	if math.Abs(a.Constant-b.Constant) > tol {
		return false
	}
	if a.NModes() == 0 {
		return true
	}
	if !mat.EqualApprox(a.OneBody, b.OneBody, tol) {
		return false
	}
	for i, v := range a.TwoBody.data {
		if math.Abs(v-b.TwoBody.data[i]) > tol {
			return false
		}
	}
	return true
}

// IsHermitian reports whether h[p,q] = h[q,p] and V[p,q,r,s] = V[s,r,q,p] within tol.
func (op *InteractionOperator) IsHermitian(tol float64) bool {
	n := op.NModes()
	for p := range n {
		for q := range n {
			if math.Abs(op.OneBody.At(p, q)-op.OneBody.At(q, p)) > tol {
				return false
			}
		}
	}
	for pqrs, v := range op.TwoBody.All() {
		p, q, r, s := pqrs[0], pqrs[1], pqrs[2], pqrs[3]
		if math.Abs(v-op.TwoBody.At(s, r, q, p)) > tol {
			return false
		}
	}
	return true
}

func (op *InteractionOperator) String() string {
	s := fmt.Sprintf("%g", op.Constant)
	n := op.NModes()
	for p := range n {
		for q := range n {
			if v := op.OneBody.At(p, q); v != 0 {
				s += fmt.Sprintf(" %+g [%d^ %d]", v, p, q)
			}
		}
	}
	for pqrs, v := range op.TwoBody.All() {
		if v != 0 {
			s += fmt.Sprintf(" %+g [%d^ %d^ %d %d]", v, pqrs[0], pqrs[1], pqrs[2], pqrs[3])
		}
	}
	return s
}

func zeros(n int) *mat.Dense {
	if n == 0 {
		return &mat.Dense{}
	}
	return mat.NewDense(n, n, nil)
}
