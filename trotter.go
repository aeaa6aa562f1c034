// Package swapnet converts fermionic interaction operators to and from the gates of a swap network.
//
// Trotterize walks an acquaintance schedule and, for every tuple of one to four modes it visits, encodes the
// terms of the operator acting on exactly those modes into a single gate.
// Untrotterize decodes an arbitrary gate assignment back into an operator, and TrotterUnitary evaluates the
// circuit unitary of a schedule.
package swapnet

import (
	"math"

	"github.com/pkg/errors"

	"github.com/fumin/swapnet/fermion"
)

// Trotterize returns the gates of one Trotter step of h under the CanonicalSchedule.
func Trotterize(h *fermion.InteractionOperator) (map[ModeTuple]Gate, error) {
	return TrotterizeWith(h, CompleteSweep{})
}

// TrotterizeWith returns the gates of one Trotter step of h, walking the on-site events followed by the
// schedule of strategy, completed with the tuples it misses.
// Only the first visit of a tuple produces a gate, and tuples without terms produce none.
// The constant of h is carried by the global shift of a single gate.
func TrotterizeWith(h *fermion.InteractionOperator, strategy Strategy) (map[ModeTuple]Gate, error) {
	if err := h.Validate(); err != nil {
		return nil, errors.Wrap(err, "")
	}
	n := h.NModes()

	gates := make(map[ModeTuple]Gate)
	// emitted records the keys of gates in the order they are produced.
	emitted := make([]ModeTuple, 0)
	visited := make(map[ModeTuple]struct{})
	for _, t := range scheduleWith(n, strategy) {
		key := t.Sorted()
		if key.Len() == 0 {
			return nil, errors.Wrapf(ErrUnsupportedArity, "%v", t)
		}
		if key.Mode(key.Len()-1) >= n {
			return nil, errors.Wrapf(ErrOutOfRangeMode, "%v %d", t, n)
		}
		if _, ok := visited[key]; ok {
			continue
		}
		visited[key] = struct{}{}

		g := encode(h, key)
		if g == nil {
			continue
		}
		gates[key] = g
		emitted = append(emitted, key)
	}

	if err := carryConstant(gates, emitted, h.Constant, n); err != nil {
		return nil, errors.Wrap(err, "")
	}
	return gates, nil
}

// carryConstant sets the global shift of one gate so that it decodes to constant.
// The first gate of arity two or more is preferred, then the first potential gate.
func carryConstant(gates map[ModeTuple]Gate, order []ModeTuple, constant float64, n int) error {
	if constant == 0 {
		return nil
	}
	for _, key := range order {
		if g := gates[key]; g.Arity() >= 2 {
			gates[key] = g.withGlobalShift(constant / g.Params().Exponent)
			return nil
		}
	}
	if len(order) > 0 {
		g := gates[order[0]]
		gates[order[0]] = g.withGlobalShift(constant / (math.Pi * g.Params().Exponent))
		return nil
	}
	if n < 2 {
		return errors.Wrapf(ErrUnencodable, "constant %g on %d modes", constant, n)
	}
	gates[MustModeTuple(0, 1)] = HopInteractGate{Exponent: 1, GlobalShift: constant}
	return nil
}

// Untrotterize returns the operator on n modes generated by gates.
// Position i of a key addresses mode key.Mode(i), and the contributions of all gates are summed.
func Untrotterize(n int, gates map[ModeTuple]Gate) (*fermion.InteractionOperator, error) {
	if n < 0 {
		return nil, errors.Wrapf(ErrShapeMismatch, "%d modes", n)
	}
	op := fermion.NewInteractionOperator(n)
	for _, key := range sortedKeys(gates) {
		g := gates[key]
		if err := checkGate(n, key, g); err != nil {
			return nil, errors.Wrap(err, "")
		}
		g.decode(op, key.modes)
	}
	return op, nil
}

func checkGate(n int, key ModeTuple, g Gate) error {
	if key.Len() == 0 {
		return errors.Wrap(ErrUnsupportedArity, "empty key")
	}
	if g == nil {
		return errors.Wrapf(ErrUnsupportedArity, "nil gate at %v", key)
	}
	if g.Arity() != key.Len() {
		return errors.Wrapf(ErrUnsupportedArity, "gate of arity %d at %v", g.Arity(), key)
	}
	for _, m := range key.modes[:key.Len()] {
		if m >= n {
			return errors.Wrapf(ErrOutOfRangeMode, "%v %d", key, n)
		}
	}
	return nil
}
