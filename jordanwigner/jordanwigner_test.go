package jordanwigner

import (
	"fmt"
	"testing"

	"github.com/fumin/swapnet/fermion"
	"github.com/fumin/swapnet/sparse"
)

func TestNumber(t *testing.T) {
	t.Parallel()
	for n := 1; n <= 4; n++ {
		for p := range n {
			t.Run(fmt.Sprintf("%d %d", n, p), func(t *testing.T) {
				t.Parallel()
				m := Number(n, p)
				expected := sparse.Zeros(1<<n, 1<<n)
				for x := range 1 << n {
					if (x>>(n-1-p))&1 == 1 {
						expected.Add(1, unit(1<<n, x))
					}
				}
				if !m.Equal(expected) {
					t.Fatalf("%s, expected %s", m, expected)
				}
			})
		}
	}
}

func TestAnticommutation(t *testing.T) {
	t.Parallel()
	n := 3
	ab, ba := sparse.Zeros(0, 0), sparse.Zeros(0, 0)
	for p := range n {
		for q := range n {
			ab.MatMul(Annihilation(n, p), Creation(n, q))
			ba.MatMul(Creation(n, q), Annihilation(n, p))
			ab.Add(1, ba)
			expected := sparse.Zeros(1<<n, 1<<n)
			if p == q {
				expected = sparse.Identity(1 << n)
			}
			if !ab.Equal(expected) {
				t.Fatalf("%d %d %s, expected %s", p, q, ab, expected)
			}

			ab.MatMul(Annihilation(n, p), Annihilation(n, q))
			ba.MatMul(Annihilation(n, q), Annihilation(n, p))
			ab.Add(1, ba)
			if ab.NumNonZero() != 0 {
				t.Fatalf("%d %d %s", p, q, ab)
			}
		}
	}
}

func TestOperator(t *testing.T) {
	t.Parallel()
	tests := []struct {
		op       func() *fermion.InteractionOperator
		expected *sparse.COO
	}{
		{
			op: func() *fermion.InteractionOperator {
				op := fermion.NewInteractionOperator(2)
				op.Constant = 0.5
				op.OneBody.Set(0, 1, 2)
				op.OneBody.Set(1, 0, 2)
				return op
			},
			expected: sparse.M([][]complex128{
				{0.5, 0, 0, 0},
				{0, 0.5, 2, 0},
				{0, 2, 0.5, 0},
				{0, 0, 0, 0.5},
			}),
		},
		// On-site terms are number operators, mode 1 is the least significant bit.
		{
			op: func() *fermion.InteractionOperator {
				op := fermion.NewInteractionOperator(2)
				op.OneBody.Set(1, 1, 3)
				op.OneBody.Set(0, 0, -1)
				return op
			},
			expected: sparse.M([][]complex128{
				{0, 0, 0, 0},
				{0, 3, 0, 0},
				{0, 0, -1, 0},
				{0, 0, 0, 2},
			}),
		},
		// a†0 a†1 a1 a0 is n0 n1.
		{
			op: func() *fermion.InteractionOperator {
				op := fermion.NewInteractionOperator(2)
				op.OneBody.Set(1, 1, -1)
				op.TwoBody.Set(0, 1, 1, 0, 3)
				return op
			},
			expected: sparse.M([][]complex128{
				{0, 0, 0, 0},
				{0, -1, 0, 0},
				{0, 0, 0, 0},
				{0, 0, 0, 2},
			}),
		},
		{
			op: func() *fermion.InteractionOperator {
				op := fermion.NewInteractionOperator(0)
				op.Constant = -1.5
				return op
			},
			expected: sparse.M([][]complex128{{-1.5}}),
		},
	}
	for i, test := range tests {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			t.Parallel()
			m := Operator(test.op())
			if !m.EqualApprox(test.expected, 1e-12) {
				t.Fatalf("%s, expected %s", m, test.expected)
			}
		})
	}
}

func TestOperatorHermitian(t *testing.T) {
	t.Parallel()
	op := fermion.NewInteractionOperator(3)
	op.TwoBody.Set(0, 1, 2, 0, 0.7)
	op.TwoBody.Set(0, 2, 1, 0, 0.7)
	m := Operator(op)
	for yx, v := range m.NonZeros() {
		if w := m.At(yx[1], yx[0]); w != complex(real(v), -imag(v)) {
			t.Fatalf("%v %v %v", yx, v, w)
		}
	}
	if m.NumNonZero() == 0 {
		t.Fatalf("%s", m)
	}
}

func unit(dim, x int) *sparse.COO {
	m := sparse.Zeros(dim, dim)
	d := make([][]complex128, dim)
	for i := range d {
		d[i] = make([]complex128, dim)
	}
	d[x][x] = 1
	m.Add(1, sparse.M(d))
	return m
}
