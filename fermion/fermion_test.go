package fermion

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

func TestFromSlices(t *testing.T) {
	t.Parallel()
	zeros2 := [][][][]float64{
		{{{0, 0}, {0, 0}}, {{0, 0}, {0, 0}}},
		{{{0, 0}, {0, 0}}, {{0, 0}, {0, 0}}},
	}
	tests := []struct {
		oneBody [][]float64
		twoBody [][][][]float64
		err     error
	}{
		{
			oneBody: [][]float64{{1, 2}, {2, 3}},
			twoBody: zeros2,
		},
		{
			oneBody: [][]float64{{1, 2}, {2}},
			twoBody: zeros2,
			err:     ErrShapeMismatch,
		},
		{
			oneBody: [][]float64{{1}},
			twoBody: zeros2,
			err:     ErrShapeMismatch,
		},
		{
			oneBody: [][]float64{{1, 2}, {2, 3}},
			twoBody: [][][][]float64{
				{{{0, 0}, {0, 0}}, {{0, 0}, {0, 0}}},
				{{{0, 0}, {0, 0}}, {{0, 0}, {0}}},
			},
			err: ErrShapeMismatch,
		},
	}
	for _, test := range tests {
		t.Run(fmt.Sprintf("%v", test.oneBody), func(t *testing.T) {
			t.Parallel()
			op, err := FromSlices(0.5, test.oneBody, test.twoBody)
			if errors.Cause(err) != test.err {
				t.Fatalf("%+v, expected %v", err, test.err)
			}
			if err != nil {
				return
			}
			if err := op.Validate(); err != nil {
				t.Fatalf("%+v", err)
			}
			if op.Constant != 0.5 || op.OneBody.At(1, 1) != 3 {
				t.Fatalf("%s", op)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()
	op := NewInteractionOperator(3)
	op.TwoBody = NewTensor4(2)
	if err := op.Validate(); errors.Cause(err) != ErrShapeMismatch {
		t.Fatalf("%+v", err)
	}

	op = NewInteractionOperator(3)
	op.OneBody = mat.NewDense(3, 2, nil)
	if err := op.Validate(); errors.Cause(err) != ErrShapeMismatch {
		t.Fatalf("%+v", err)
	}

	if err := NewInteractionOperator(0).Validate(); err != nil {
		t.Fatalf("%+v", err)
	}
}

func TestNormalOrdered(t *testing.T) {
	t.Parallel()
	op := NewInteractionOperator(3)
	op.OneBody.Set(0, 2, 1.5)
	op.TwoBody.Set(0, 1, 0, 1, 1)
	op.TwoBody.Set(1, 0, 0, 1, 2)
	op.TwoBody.Set(1, 0, 1, 0, 4)
	op.TwoBody.Set(2, 1, 0, 2, 8)
	op.TwoBody.Set(1, 1, 0, 2, 16)

	no := op.NormalOrdered()
	expected := NewInteractionOperator(3)
	expected.OneBody.Set(0, 2, 1.5)
	expected.TwoBody.Set(0, 1, 0, 1, 1-2+4)
	expected.TwoBody.Set(1, 2, 0, 2, -8)
	if !EqualApprox(no, expected, 1e-12) {
		t.Fatalf("%s, expected %s", no, expected)
	}
	// The input is left untouched.
	if op.TwoBody.At(1, 0, 1, 0) != 4 {
		t.Fatalf("%s", op)
	}
}

func TestRandomInteractionOperator(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(1, 2))
	for n := range 7 {
		op := RandomInteractionOperator(n, rng)
		if err := op.Validate(); err != nil {
			t.Fatalf("%+v", err)
		}
		if !op.IsHermitian(1e-12) {
			t.Fatalf("%s", op)
		}
		for pqrs, v := range op.TwoBody.All() {
			p, q, r, s := pqrs[0], pqrs[1], pqrs[2], pqrs[3]
			partners := [][4]int{{r, s, p, q}, {s, r, q, p}, {q, p, s, r}}
			for _, o := range partners {
				if w := op.TwoBody.At(o[0], o[1], o[2], o[3]); v != w {
					t.Fatalf("%v %v %v %v", pqrs, o, v, w)
				}
			}
		}
	}
}

func TestRandomTerm(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewPCG(3, 4))
	for k := 1; k <= 4; k++ {
		for range 5 {
			op := RandomTerm(k, rng)
			if op.NModes() != k {
				t.Fatalf("%d, expected %d", op.NModes(), k)
			}
			if !op.IsHermitian(1e-12) {
				t.Fatalf("%s", op)
			}
			// Every nonzero coefficient touches all k modes.
			for pqrs, v := range op.TwoBody.All() {
				if v == 0 {
					continue
				}
				support := make(map[int]bool)
				for _, m := range pqrs {
					support[m] = true
				}
				if len(support) != k {
					t.Fatalf("%v %f", pqrs, v)
				}
			}
		}
	}
}
