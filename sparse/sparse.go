// Package sparse implements coordinate format complex matrices.
package sparse

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"math/cmplx"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	FnameShape = "shape.csv"
	FnameCOO   = "coo.csv"
)

var (
	PauliZ = [][]complex128{
		{1, 0},
		{0, -1},
	}
	// Lower annihilates an occupied mode, |0><1|.
	Lower = [][]complex128{
		{0, 1},
		{0, 0},
	}
	// Raise occupies an empty mode, |1><0|.
	Raise = [][]complex128{
		{0, 0},
		{1, 0},
	}
)

type vRowCol struct {
	v   complex128
	row int
	col int
}

// COO is a sparse matrix whose nonzero entries are kept in row major order.
type COO struct {
	rows int
	cols int
	data []vRowCol
}

func M(dense [][]complex128) *COO {
	m := &COO{rows: len(dense), data: make([]vRowCol, 0)}
	if m.rows > 0 {
		m.cols = len(dense[0])
	}
	for i, row := range dense {
		for j, v := range row {
			if v == 0 {
				continue
			}
			m.data = append(m.data, vRowCol{v: v, row: i, col: j})
		}
	}
	return m
}

func Zeros(rows, cols int) *COO {
	m := &COO{data: make([]vRowCol, 0)}
	m.Zeros(rows, cols)
	return m
}

func Identity(rows int) *COO {
	m := Zeros(rows, rows)
	for i := 0; i < rows; i++ {
		m.data = append(m.data, vRowCol{v: 1, row: i, col: i})
	}
	return m
}

func (m *COO) Rows() int { return m.rows }
func (m *COO) Cols() int { return m.cols }

// NumNonZero returns the number of stored entries.
func (m *COO) NumNonZero() int { return len(m.data) }

func (m *COO) Zeros(rows, cols int) {
	m.rows, m.cols = rows, cols
	m.data = m.data[:0]
}

func (m *COO) Scalar(v complex128) {
	m.rows, m.cols = 1, 1
	m.data = m.data[:0]
	if v != 0 {
		m.data = append(m.data, vRowCol{v: v, row: 0, col: 0})
	}
}

func (m *COO) At(i, j int) complex128 {
	k, ok := slices.BinarySearchFunc(m.data, vRowCol{row: i, col: j}, rowMajor)
	if !ok {
		return 0
	}
	return m.data[k].v
}

// NonZeros iterates over the stored entries in row major order.
func (m *COO) NonZeros() func(yield func([2]int, complex128) bool) {
	return func(yield func([2]int, complex128) bool) {
		for _, v := range m.data {
			if !yield([2]int{v.row, v.col}, v.v) {
				return
			}
		}
	}
}

func (a *COO) Equal(b *COO) bool {
	if a.rows != b.rows {
		return false
	}
	if a.cols != b.cols {
		return false
	}
	if len(a.data) != len(b.data) {
		return false
	}
	for i, av := range a.data {
		bv := b.data[i]
		if av != bv {
			return false
		}
	}
	return true
}

// EqualApprox reports whether a and b have the same shape and all entries within tol.
func (a *COO) EqualApprox(b *COO, tol float64) bool {
	if a.rows != b.rows || a.cols != b.cols {
		return false
	}
	diff := a.Copy()
	diff.Add(-1, b)
	for _, v := range diff.data {
		if cmplx.Abs(v.v) > tol {
			return false
		}
	}
	return true
}

func (m *COO) Copy() *COO {
	c := &COO{rows: m.rows, cols: m.cols, data: make([]vRowCol, len(m.data))}
	copy(c.data, m.data)
	return c
}

// Add sets a to a + c*b.
func (a *COO) Add(c complex128, b *COO) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	bm := make(map[[2]int]complex128, len(b.data))
	for _, v := range b.data {
		bm[[2]int{v.row, v.col}] = v.v
	}

	for i, av := range a.data {
		byx := [2]int{av.row, av.col}
		bv, ok := bm[byx]
		if !ok {
			continue
		}
		delete(bm, byx)
		a.data[i].v = av.v + c*bv
	}

	a.data = slices.DeleteFunc(a.data, func(v vRowCol) bool {
		return v.v == 0
	})
	for yx, bv := range bm {
		if c*bv == 0 {
			continue
		}
		a.data = append(a.data, vRowCol{v: c * bv, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(a.data, rowMajor)
}

func (a *COO) Kron(b *COO) {
	rows := a.rows * b.rows
	cols := a.cols * b.cols

	prev := a.data
	a.data = make([]vRowCol, 0, len(prev)*len(b.data))
	for _, av := range prev {
		for _, bv := range b.data {
			ky := av.row*b.rows + bv.row
			kx := av.col*b.cols + bv.col
			a.data = append(a.data, vRowCol{v: av.v * bv.v, row: ky, col: kx})
		}
	}
	a.rows, a.cols = rows, cols

	a.data = slices.DeleteFunc(a.data, func(v vRowCol) bool {
		return v.v == 0
	})
	slices.SortFunc(a.data, rowMajor)
}

// MatMul sets m to the matrix product a @ b.
// m must not be a or b.
func (m *COO) MatMul(a, b *COO) {
	if a.cols != b.rows {
		panic(fmt.Sprintf("wrong dimensions %dx%d %dx%d", a.rows, a.cols, b.rows, b.cols))
	}

	// bRows indexes the entries of b by row.
	bRows := make(map[int][]vRowCol)
	for _, v := range b.data {
		bRows[v.row] = append(bRows[v.row], v)
	}

	sum := make(map[[2]int]complex128)
	for _, av := range a.data {
		for _, bv := range bRows[av.col] {
			sum[[2]int{av.row, bv.col}] += av.v * bv.v
		}
	}

	m.rows, m.cols = a.rows, b.cols
	m.data = m.data[:0]
	for yx, v := range sum {
		if v == 0 {
			continue
		}
		m.data = append(m.data, vRowCol{v: v, row: yx[0], col: yx[1]})
	}
	slices.SortFunc(m.data, rowMajor)
}

func (m *COO) Dense() [][]complex128 {
	dense := make([][]complex128, m.rows)
	for i := range dense {
		dense[i] = make([]complex128, m.cols)
	}

	for _, v := range m.data {
		dense[v.row][v.col] = v.v
	}

	return dense
}

// WriteCOO writes the shape of m to FnameShape and its entries, one "value,row,col" record each, to FnameCOO.
func (m *COO) WriteCOO(dir string) error {
	shape := []byte(strconv.Itoa(m.rows) + "," + strconv.Itoa(m.cols))
	if err := os.WriteFile(filepath.Join(dir, FnameShape), shape, 0644); err != nil {
		return errors.Wrap(err, "")
	}

	f, err := os.Create(filepath.Join(dir, FnameCOO))
	if err != nil {
		return errors.Wrap(err, "")
	}
	w := csv.NewWriter(f)
	for _, e := range m.data {
		record := []string{FormatNumpy(e.v), strconv.Itoa(e.row), strconv.Itoa(e.col)}
		if err = w.Write(record); err != nil {
			err = errors.Wrap(err, fmt.Sprintf("%#v", record))
			break
		}
	}
	w.Flush()
	if err1 := w.Error(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	if err1 := f.Close(); err1 != nil && err == nil {
		err = errors.Wrap(err1, "")
	}
	return err
}

// ReadCOO reads a matrix written by WriteCOO.
func ReadCOO(dir string) (*COO, error) {
	shape, err := readRecords(filepath.Join(dir, FnameShape))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	if len(shape) != 1 || len(shape[0]) != 2 {
		return nil, errors.Errorf("shape %#v", shape)
	}
	m := Zeros(0, 0)
	if m.rows, m.cols, err = parseIndex(shape[0]); err != nil {
		return nil, errors.Wrap(err, "")
	}

	records, err := readRecords(filepath.Join(dir, FnameCOO))
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	for i, record := range records {
		if len(record) != 3 {
			return nil, errors.Errorf("%d %#v", i, record)
		}
		v, err := strconv.ParseComplex(strings.ReplaceAll(record[0], "j", "i"), 128)
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d %#v", i, record))
		}
		row, col, err := parseIndex(record[1:])
		if err != nil {
			return nil, errors.Wrap(err, fmt.Sprintf("%d", i))
		}
		m.data = append(m.data, vRowCol{v: v, row: row, col: col})
	}
	slices.SortFunc(m.data, rowMajor)
	return m, nil
}

func readRecords(fpath string) ([][]string, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, errors.Wrap(err, "")
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, fpath)
	}
	return records, nil
}

func parseIndex(record []string) (int, int, error) {
	i, err := strconv.Atoi(record[0])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", record))
	}
	j, err := strconv.Atoi(record[1])
	if err != nil {
		return -1, -1, errors.Wrap(err, fmt.Sprintf("%#v", record))
	}
	return i, j, nil
}

// String formats m as a dense tab separated table.
func (m *COO) String() string {
	lines := make([]string, 0, m.rows)
	for _, row := range m.Dense() {
		cs := make([]string, 0, len(row))
		for _, v := range row {
			cs = append(cs, FormatNumpy(v))
		}
		lines = append(lines, strings.Join(cs, "\t"))
	}
	return strings.Join(lines, "\n")
}

func rowMajor(a, b vRowCol) int {
	if c := cmp.Compare(a.row, b.row); c != 0 {
		return c
	}
	return cmp.Compare(a.col, b.col)
}

// FormatNumpy formats v the way numpy parses complex numbers, with a j suffix.
func FormatNumpy(v complex128) string {
	switch {
	case imag(v) == 0:
		return strconv.FormatFloat(real(v), 'g', -1, 64)
	default:
		s := strconv.FormatComplex(v, 'g', -1, 128)
		s = strings.ReplaceAll(s, "i", "j")
		return s
	}
}
