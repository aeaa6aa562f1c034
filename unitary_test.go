package swapnet

import (
	"fmt"
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/fumin/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/cmplxs/cscalar"
	"gonum.org/v1/gonum/mat"

	"github.com/fumin/swapnet/fermion"
)

func TestTrotterUnitaryDoubleExcitation(t *testing.T) {
	t.Parallel()
	const theta = 0.3
	h := fermion.NewInteractionOperator(4)
	h.TwoBody.Set(0, 1, 2, 3, theta)
	h.TwoBody.Set(3, 2, 1, 0, theta)

	u, err := TrotterUnitary(Schedule{MustModeTuple(0, 1, 2, 3)}, h)
	if err != nil {
		t.Fatalf("%+v", err)
	}

	// |0011> and |1100> rotate into each other, everything else is untouched.
	expected := identity(16)
	expected.Set(3, 3, complex(math.Cos(theta), 0))
	expected.Set(12, 12, complex(math.Cos(theta), 0))
	expected.Set(3, 12, complex(0, math.Sin(theta)))
	expected.Set(12, 3, complex(0, math.Sin(theta)))
	if err := equalApprox(u, expected, 1e-5); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestTrotterUnitaryPotential(t *testing.T) {
	t.Parallel()
	const v = 0.7
	h := fermion.NewInteractionOperator(2)
	h.OneBody.Set(1, 1, v)

	u, err := TrotterUnitary(Schedule{MustModeTuple(1)}, h)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected := identity(4)
	expected.Set(1, 1, cmplx.Exp(complex(0, -v)))
	expected.Set(3, 3, cmplx.Exp(complex(0, -v)))
	if err := equalApprox(u, expected, 1e-5); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestTrotterUnitaryReference(t *testing.T) {
	t.Parallel()
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d", n), func(t *testing.T) {
			t.Parallel()
			rng := rand.New(rand.NewPCG(uint64(n), 2))
			h := fermion.RandomInteractionOperator(n, rng)
			schedule := CanonicalSchedule(n)

			u, err := TrotterUnitary(schedule, h)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			expected, err := referenceUnitary(n, schedule, h)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if err := equalApprox(u, expected, 1e-4); err != nil {
				t.Fatalf("%+v", err)
			}

			// The gates of Trotterize evaluate to the same circuit.
			gates, err := Trotterize(h)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			c, err := CircuitUnitary(n, schedule, gates)
			if err != nil {
				t.Fatalf("%+v", err)
			}
			if err := equalApprox(c, expected, 1e-4); err != nil {
				t.Fatalf("%+v", err)
			}
		})
	}
}

func TestCircuitUnitaryUnsortedKey(t *testing.T) {
	t.Parallel()
	g := ControlledHopGate{Weights: [3]float64{0.4, -0.3, 0.8}, Exponent: 0.6, GlobalShift: 0.2}
	schedule := Schedule{MustModeTuple(0, 2, 3)}

	u, err := CircuitUnitary(4, schedule, map[ModeTuple]Gate{MustModeTuple(3, 0, 2): g})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	op, err := Untrotterize(4, map[ModeTuple]Gate{MustModeTuple(3, 0, 2): g})
	if err != nil {
		t.Fatalf("%+v", err)
	}
	expected, err := expm(op)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if err := equalApprox(u, expected, 1e-5); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestGateUnitaryQuarticPeriod(t *testing.T) {
	t.Parallel()
	// A weight of 4 shifts the decoded coefficients by one period.
	g := DoubleExcitationGate{Weights: [3]float64{0.3, -0.8, 1.1}, Exponent: 1}
	shifted := g
	shifted.Weights[1] += 4 * QuarticPeriod / (2 * math.Pi)
	shifted.Weights[2] -= 4 * QuarticPeriod / (2 * math.Pi)

	u, err := GateUnitary(g)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	v, err := GateUnitary(shifted)
	if err != nil {
		t.Fatalf("%+v", err)
	}
	if !mat.CEqualApprox(u, v, 1e-9) {
		t.Fatalf("%v, expected %v", v, u)
	}
}

func TestGateUnitaryUnitary(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(11, 12))
	for _, g := range randomGates(MaxArity, rng) {
		u, err := GateUnitary(g)
		if err != nil {
			t.Fatalf("%+v", err)
		}
		dim, _ := u.Dims()
		uu := mat.NewCDense(dim, dim, nil)
		cblas128.Gemm(blas.ConjTrans, blas.NoTrans, 1, u.RawCMatrix(), u.RawCMatrix(), 0, uu.RawCMatrix())
		if !mat.CEqualApprox(uu, identity(dim), 1e-9) {
			t.Fatalf("%#v %v", g, uu)
		}
	}
}

func TestCircuitUnitaryErrors(t *testing.T) {
	t.Parallel()
	g := HopInteractGate{Exponent: 1}
	tests := []struct {
		name     string
		n        int
		schedule Schedule
		gates    map[ModeTuple]Gate
		err      error
	}{
		{name: "negative", n: -1, err: ErrShapeMismatch},
		{
			name:  "duplicate",
			n:     3,
			gates: map[ModeTuple]Gate{MustModeTuple(0, 1): g, MustModeTuple(1, 0): g},
			err:   ErrDuplicateMode,
		},
		{
			name:     "event out of range",
			n:        2,
			schedule: Schedule{MustModeTuple(1, 2)},
			err:      ErrOutOfRangeMode,
		},
		{
			name:  "gate out of range",
			n:     2,
			gates: map[ModeTuple]Gate{MustModeTuple(1, 2): g},
			err:   ErrOutOfRangeMode,
		},
		{
			name:     "empty event",
			n:        2,
			schedule: Schedule{{}},
			err:      ErrUnsupportedArity,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if _, err := CircuitUnitary(test.n, test.schedule, test.gates); errors.Cause(err) != test.err {
				t.Fatalf("%+v, expected %v", err, test.err)
			}
		})
	}
}

// referenceUnitary multiplies the exponentials of the terms of every visited tuple, each built directly on all n modes.
func referenceUnitary(n int, schedule Schedule, h *fermion.InteractionOperator) (*mat.CDense, error) {
	dim := 1 << n
	u := identity(dim)
	buf := mat.NewCDense(dim, dim, nil)
	visited := make(map[ModeTuple]struct{})
	for _, e := range schedule {
		key := e.Sorted()
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}
		g := encode(h, key)
		if g == nil {
			continue
		}
		op, err := Untrotterize(n, map[ModeTuple]Gate{key: g})
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		gu, err := expm(op)
		if err != nil {
			return nil, errors.Wrap(err, "")
		}
		cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, gu.RawCMatrix(), u.RawCMatrix(), 0, buf.RawCMatrix())
		u, buf = buf, u
	}

	phase := cmplx.Exp(complex(0, -h.Constant))
	for i := range dim {
		for j := range dim {
			u.Set(i, j, phase*u.At(i, j))
		}
	}
	return u, nil
}

func identity(dim int) *mat.CDense {
	m := mat.NewCDense(dim, dim, nil)
	for i := range dim {
		m.Set(i, i, 1)
	}
	return m
}

func equalApprox(a *tensor.Dense, b *mat.CDense, tol float64) error {
	r, c := b.Dims()
	if shape := a.Shape(); len(shape) != 2 || shape[0] != r || shape[1] != c {
		return errors.Errorf("%v, expected %dx%d", shape, r, c)
	}
	for i := range r {
		for j := range c {
			av := complex128(a.At(i, j))
			if !cscalar.EqualWithinAbs(av, b.At(i, j), tol) {
				return errors.Errorf("%d %d %v, expected %v", i, j, av, b.At(i, j))
			}
		}
	}
	return nil
}
