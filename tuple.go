package swapnet

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// MaxArity is the largest number of modes a gate acts on.
	MaxArity = 4
)

// ModeTuple is an ordered sequence of one to four distinct modes.
// ModeTuples are comparable and are used as map keys.
type ModeTuple struct {
	n     int
	modes [MaxArity]int
}

func NewModeTuple(modes ...int) (ModeTuple, error) {
	if len(modes) < 1 || len(modes) > MaxArity {
		return ModeTuple{}, errors.Wrapf(ErrUnsupportedArity, "%v", modes)
	}
	t := ModeTuple{n: len(modes)}
	for i, m := range modes {
		if m < 0 {
			return ModeTuple{}, errors.Wrapf(ErrOutOfRangeMode, "%v", modes)
		}
		if slices.Contains(modes[:i], m) {
			return ModeTuple{}, errors.Wrapf(ErrDuplicateMode, "%v", modes)
		}
		t.modes[i] = m
	}
	return t, nil
}

func MustModeTuple(modes ...int) ModeTuple {
	t, err := NewModeTuple(modes...)
	if err != nil {
		panic(fmt.Sprintf("%+v", err))
	}
	return t
}

func (t ModeTuple) Len() int { return t.n }

func (t ModeTuple) Mode(i int) int { return t.modes[i] }

func (t ModeTuple) Modes() []int {
	return slices.Clone(t.modes[:t.n])
}

// Sorted returns the canonical key of t, its modes in ascending order.
func (t ModeTuple) Sorted() ModeTuple {
	slices.Sort(t.modes[:t.n])
	return t
}

func (t ModeTuple) String() string {
	ss := make([]string, 0, t.n)
	for _, m := range t.modes[:t.n] {
		ss = append(ss, strconv.Itoa(m))
	}
	return "(" + strings.Join(ss, ",") + ")"
}

// ParseModeTuple parses the output of String.
func ParseModeTuple(s string) (ModeTuple, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	modes := make([]int, 0, MaxArity)
	for _, f := range strings.Split(s, ",") {
		m, err := strconv.Atoi(f)
		if err != nil {
			return ModeTuple{}, errors.Wrap(err, fmt.Sprintf("%#v", s))
		}
		modes = append(modes, m)
	}
	return NewModeTuple(modes...)
}

// ranks maps every position of t to the rank of its mode among the modes of t.
func (t ModeTuple) ranks() [MaxArity]int {
	var r [MaxArity]int
	for i, m := range t.modes[:t.n] {
		for _, o := range t.modes[:t.n] {
			if o < m {
				r[i]++
			}
		}
	}
	return r
}

// compareTuples orders tuples by length and then lexicographically.
func compareTuples(a, b ModeTuple) int {
	if c := cmp.Compare(a.n, b.n); c != 0 {
		return c
	}
	for i := range a.n {
		if c := cmp.Compare(a.modes[i], b.modes[i]); c != 0 {
			return c
		}
	}
	return 0
}

// sortedKeys returns the keys of gates in a deterministic order.
func sortedKeys(gates map[ModeTuple]Gate) []ModeTuple {
	keys := make([]ModeTuple, 0, len(gates))
	for k := range gates {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareTuples)
	return keys
}
