package swapnet

import (
	"slices"

	"gonum.org/v1/gonum/stat/combin"
)

// Schedule is an ordered sequence of acquaintance events.
// Each event names the modes that are momentarily adjacent.
type Schedule []ModeTuple

// Strategy produces the acquaintance schedule of a line of modes.
type Strategy interface {
	Schedule(nModes int) Schedule
}

// BubbleSweep is the odd-even transposition swap network.
// Layer l swaps the positions (i, i+1) with i = l mod 2, so after nModes layers the line is reversed and
// every pair of modes has been adjacent exactly once.
// With an odd number of modes the position without a partner idles for the layer.
type BubbleSweep struct{}

func (BubbleSweep) Schedule(n int) Schedule {
	s := make(Schedule, 0)
	if n < 2 {
		return s
	}
	sweep(identityLine(n), func(_ []int, t ModeTuple) { s = append(s, t) })
	return s
}

// sweep runs the odd-even transposition network on line, which maps positions to modes.
// Before the swaps of a layer, emit receives the windows of two to four positions around every swapped pair.
func sweep(line []int, emit func([]int, ModeTuple)) {
	n := len(line)
	for l := 0; l < n; l++ {
		for i := l % 2; i+1 < n; i += 2 {
			if i-1 >= 0 {
				emit(line, sortedTuple(line[i-1:i+2]))
			}
			emit(line, sortedTuple(line[i:i+2]))
			if i+2 < n {
				emit(line, sortedTuple(line[i:i+3]))
			}
			if i+3 < n {
				emit(line, sortedTuple(line[i:i+4]))
			}
		}
		for i := l % 2; i+1 < n; i += 2 {
			line[i], line[i+1] = line[i+1], line[i]
		}
	}
}

// CompleteSweep is BubbleSweep followed by gathering moves on the reversed line.
// For every triple and quadruple the sweep missed, in lexicographic order, neighbouring positions are swapped
// until its modes sit next to each other.
// Every event is a window of consecutive positions at the time it is emitted.
// For up to five modes it equals BubbleSweep.
type CompleteSweep struct{}

func (CompleteSweep) Schedule(n int) Schedule {
	s := make(Schedule, 0)
	completeSweep(n, func(_ []int, t ModeTuple) { s = append(s, t) })
	return s
}

func completeSweep(n int, emit func([]int, ModeTuple)) {
	if n < 2 {
		return
	}
	visited := make(map[ModeTuple]struct{})
	visit := func(line []int, t ModeTuple) {
		visited[t] = struct{}{}
		emit(line, t)
	}

	line := identityLine(n)
	sweep(line, visit)
	for k := 3; k <= MaxArity && k <= n; k++ {
		for _, modes := range combin.Combinations(n, k) {
			if _, ok := visited[MustModeTuple(modes...)]; ok {
				continue
			}
			gather(line, modes, visited, visit)
		}
	}
}

// gather swaps neighbours until modes occupy the consecutive positions starting at the leftmost of them.
// After every swap, the unvisited windows of three and four positions covering the swapped pair are visited.
func gather(line, modes []int, visited map[ModeTuple]struct{}, visit func([]int, ModeTuple)) {
	ps := make([]int, 0, len(modes))
	for p, m := range line {
		if slices.Contains(modes, m) {
			ps = append(ps, p)
		}
	}

	for j := 1; j < len(ps); j++ {
		for p := ps[j]; p > ps[0]+j; p-- {
			line[p-1], line[p] = line[p], line[p-1]
			for k := 3; k <= MaxArity; k++ {
				for i := max(p-k+1, 0); i <= p-1 && i+k <= len(line); i++ {
					t := sortedTuple(line[i : i+k])
					if _, ok := visited[t]; !ok {
						visit(line, t)
					}
				}
			}
		}
	}

	t := sortedTuple(line[ps[0] : ps[0]+len(ps)])
	if _, ok := visited[t]; !ok {
		visit(line, t)
	}
}

func identityLine(n int) []int {
	line := make([]int, n)
	for i := range line {
		line[i] = i
	}
	return line
}

// Complete appends to s every tuple of two to four modes that s does not visit, in lexicographic order per arity.
// The appended events are not adjacent in any line, so a strategy that needs them is not a complete swap network.
func Complete(s Schedule, n int) Schedule {
	visited := make(map[ModeTuple]struct{}, len(s))
	for _, t := range s {
		visited[t.Sorted()] = struct{}{}
	}
	c := append(make(Schedule, 0, len(s)), s...)
	for k := 2; k <= MaxArity && k <= n; k++ {
		for _, modes := range combin.Combinations(n, k) {
			t := MustModeTuple(modes...)
			if _, ok := visited[t]; ok {
				continue
			}
			c = append(c, t)
		}
	}
	return c
}

// OnSite returns the single mode events of n modes.
func OnSite(n int) Schedule {
	s := make(Schedule, 0, n)
	for p := range n {
		s = append(s, MustModeTuple(p))
	}
	return s
}

// CanonicalSchedule is the schedule walked by Trotterize.
func CanonicalSchedule(n int) Schedule {
	return scheduleWith(n, CompleteSweep{})
}

func scheduleWith(n int, strategy Strategy) Schedule {
	return append(OnSite(n), Complete(strategy.Schedule(n), n)...)
}

func sortedTuple(modes []int) ModeTuple {
	return MustModeTuple(modes...).Sorted()
}
