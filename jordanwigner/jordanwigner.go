// Package jordanwigner maps fermionic operators onto qubit matrices.
// Mode p is the p-th Kronecker factor, so mode 0 is the most significant bit of a basis index.
package jordanwigner

import (
	"fmt"

	"github.com/fumin/swapnet/fermion"
	"github.com/fumin/swapnet/sparse"
)

var (
	identity = sparse.Identity(2)
	pauliZ   = sparse.M(sparse.PauliZ)
	lower    = sparse.M(sparse.Lower)
	raise    = sparse.M(sparse.Raise)
)

// Annihilation returns a_p on n modes.
func Annihilation(n, p int) *sparse.COO {
	return ladder(n, p, lower)
}

// Creation returns a†p on n modes.
func Creation(n, p int) *sparse.COO {
	return ladder(n, p, raise)
}

func ladder(n, p int, op *sparse.COO) *sparse.COO {
	if p < 0 || p >= n {
		panic(fmt.Sprintf("mode %d out of %d", p, n))
	}
	system := sparse.Zeros(0, 0)
	system.Scalar(1)
	for m := 0; m < n; m++ {
		switch {
		case m < p:
			system.Kron(pauliZ)
		case m == p:
			system.Kron(op)
		default:
			system.Kron(identity)
		}
	}
	return system
}

// Number returns a†p a_p on n modes.
func Number(n, p int) *sparse.COO {
	m := sparse.Zeros(0, 0)
	m.MatMul(Creation(n, p), Annihilation(n, p))
	return m
}

// Operator returns the 2^n by 2^n matrix of op.
func Operator(op *fermion.InteractionOperator) *sparse.COO {
	n := op.NModes()
	hamiltonian := sparse.Zeros(1<<n, 1<<n)
	hamiltonian.Add(complex(op.Constant, 0), sparse.Identity(1<<n))

	creation := make([]*sparse.COO, n)
	annihilation := make([]*sparse.COO, n)
	for p := range n {
		creation[p] = Creation(n, p)
		annihilation[p] = Annihilation(n, p)
	}

	// buf and term are reusable product buffers.
	buf, term := sparse.Zeros(0, 0), sparse.Zeros(0, 0)
	for p := range n {
		for q := range n {
			v := op.OneBody.At(p, q)
			switch {
			case v == 0:
				continue
			case p == q:
				hamiltonian.Add(complex(v, 0), Number(n, p))
				continue
			}
			term.MatMul(creation[p], annihilation[q])
			hamiltonian.Add(complex(v, 0), term)
		}
	}
	for pqrs, v := range op.TwoBody.All() {
		if v == 0 {
			continue
		}
		p, q, r, s := pqrs[0], pqrs[1], pqrs[2], pqrs[3]
		term.MatMul(annihilation[r], annihilation[s])
		buf.MatMul(creation[q], term)
		term.MatMul(creation[p], buf)
		hamiltonian.Add(complex(v, 0), term)
	}
	return hamiltonian
}
