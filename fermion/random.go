package fermion

import (
	"fmt"
	"math/rand/v2"
)

var (
	// tripleComposites and quadComposites pair up the modes 0..k-1 of a k-mode term.
	tripleComposites = [3][2][2]int{{{0, 1}, {0, 2}}, {{0, 1}, {1, 2}}, {{0, 2}, {1, 2}}}
	quadComposites   = [3][2][2]int{{{0, 3}, {1, 2}}, {{0, 2}, {1, 3}}, {{0, 1}, {2, 3}}}
)

// RandomInteractionOperator returns a random real Hermitian operator on n modes whose two
// body tensor also satisfies V[p,q,r,s] = V[r,s,p,q].
func RandomInteractionOperator(n int, rng *rand.Rand) *InteractionOperator {
	op := NewInteractionOperator(n)
	op.Constant = rng.NormFloat64()
	for p := range n {
		for q := p; q < n; q++ {
			v := rng.NormFloat64()
			op.OneBody.Set(p, q, v)
			op.OneBody.Set(q, p, v)
		}
	}

	raw := NewTensor4(n)
	for i := range raw.data {
		raw.data[i] = rng.NormFloat64()
	}
	// Every index of an orbit gets the same sum so the symmetries hold exactly.
	done := make([]bool, len(raw.data))
	for pqrs := range op.TwoBody.All() {
		p, q, r, s := pqrs[0], pqrs[1], pqrs[2], pqrs[3]
		if done[raw.idx(p, q, r, s)] {
			continue
		}
		orbit := [4][4]int{{p, q, r, s}, {s, r, q, p}, {r, s, p, q}, {q, p, s, r}}
		var v float64
		for _, o := range orbit {
			v += raw.At(o[0], o[1], o[2], o[3])
		}
		for _, o := range orbit {
			op.TwoBody.Set(o[0], o[1], o[2], o[3], v/4)
			done[raw.idx(o[0], o[1], o[2], o[3])] = true
		}
	}
	return op
}

// RandomTerm returns a random Hermitian operator whose terms each act on all of the modes 0..k-1.
func RandomTerm(k int, rng *rand.Rand) *InteractionOperator {
	op := NewInteractionOperator(k)
	switch k {
	case 1:
		op.OneBody.Set(0, 0, rng.NormFloat64())
	case 2:
		t := rng.NormFloat64()
		op.OneBody.Set(0, 1, t)
		op.OneBody.Set(1, 0, t)
		// n0 n1 written as a†0 a†1 a1 a0.
		op.TwoBody.Set(0, 1, 1, 0, rng.NormFloat64())
	case 3:
		addComposites(op, tripleComposites, rng)
	case 4:
		addComposites(op, quadComposites, rng)
	default:
		panic(fmt.Sprintf("%d", k))
	}
	return op
}

func addComposites(op *InteractionOperator, composites [3][2][2]int, rng *rand.Rand) {
	for _, c := range composites {
		p, q, r, s := c[0][0], c[0][1], c[1][0], c[1][1]
		v := rng.NormFloat64()
		op.TwoBody.AddAt(p, q, r, s, v)
		// Hermitian conjugate.
		op.TwoBody.AddAt(s, r, q, p, v)
	}
}
