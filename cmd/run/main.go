package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/fumin/swapnet"
	"github.com/fumin/swapnet/fermion"
	"github.com/fumin/swapnet/jordanwigner"
	"github.com/fumin/swapnet/sparse"
	"github.com/fumin/swapnet/store"
)

const (
	fnameGates       = "gates.db"
	fnameHamiltonian = "hamiltonian"
	fnameReport      = "report.json"

	// maxMatrixModes bounds the size of the Jordan-Wigner matrices written to disk.
	maxMatrixModes = 10
)

var (
	runDir = flag.String("d", filepath.Join("runs", "swapnet"), "run directory")
	nModes = flag.Int("n", 4, "number of modes")
	seed   = flag.Uint64("seed", 0, "random seed")
)

type Report struct {
	NModes       int
	Seed         uint64
	NumGates     map[int]int
	MaxDeviation float64
	// MatrixDeviation is the largest entry of the difference of the Jordan-Wigner matrices, if they were written.
	MatrixDeviation float64
}

// roundTrip reads the gates back from the store and compares the operator they generate with h.
func roundTrip(ctx context.Context, s *store.Store, h *fermion.InteractionOperator) (*fermion.InteractionOperator, float64, error) {
	n, gates, err := s.Get(ctx)
	if err != nil {
		return nil, math.NaN(), errors.Wrap(err, "")
	}
	op, err := swapnet.Untrotterize(n, gates)
	if err != nil {
		return nil, math.NaN(), errors.Wrap(err, "")
	}

	got, expected := op.NormalOrdered(), h.NormalOrdered()
	dev := math.Abs(got.Constant - expected.Constant)
	for p := range n {
		for q := range n {
			dev = max(dev, math.Abs(got.OneBody.At(p, q)-expected.OneBody.At(p, q)))
		}
	}
	for pqrs, v := range got.TwoBody.All() {
		dev = max(dev, math.Abs(v-expected.TwoBody.At(pqrs[0], pqrs[1], pqrs[2], pqrs[3])))
	}
	return op, dev, nil
}

func matrixDeviation(dir string, op *fermion.InteractionOperator) (float64, error) {
	h, err := sparse.ReadCOO(dir)
	if err != nil {
		return math.NaN(), errors.Wrap(err, "")
	}
	diff := jordanwigner.Operator(op)
	diff.Add(-1, h)
	var dev float64
	for _, v := range diff.NonZeros() {
		dev = max(dev, math.Hypot(real(v), imag(v)))
	}
	return dev, nil
}

func printGates(gates map[swapnet.ModeTuple]swapnet.Gate) {
	keys := make([]swapnet.ModeTuple, 0, len(gates))
	for k := range gates {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b swapnet.ModeTuple) int { return strings.Compare(a.String(), b.String()) })

	fmt.Printf("modes,arity,weights,exponent,shift\n")
	for _, k := range keys {
		g := gates[k]
		p := g.Params()
		ws := make([]string, 0, len(p.Weights))
		for _, w := range p.Weights {
			ws = append(ws, fmt.Sprintf("%g", w))
		}
		fmt.Printf("%q,%d,%q,%g,%g\n", k.String(), g.Arity(), strings.Join(ws, " "), p.Exponent, p.GlobalShift)
	}
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds | log.Llongfile | log.LstdFlags)

	if err := mainWithErr(); err != nil {
		log.Fatalf("%+v", err)
	}
}

func mainWithErr() error {
	dir := filepath.Join(*runDir, fmt.Sprintf("%d", *nModes), fmt.Sprintf("%d", *seed))
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return errors.Wrap(err, "")
	}

	rng := rand.New(rand.NewPCG(*seed, uint64(*nModes)))
	h := fermion.RandomInteractionOperator(*nModes, rng)
	gates, err := swapnet.Trotterize(h)
	if err != nil {
		return errors.Wrap(err, "")
	}
	report := Report{NModes: *nModes, Seed: *seed, NumGates: make(map[int]int)}
	for _, g := range gates {
		report.NumGates[g.Arity()]++
	}
	log.Printf("%d modes %d gates", *nModes, len(gates))

	s, err := store.Open(filepath.Join(dir, fnameGates))
	if err != nil {
		return errors.Wrap(err, "")
	}
	defer s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := s.Put(ctx, *nModes, gates); err != nil {
		return errors.Wrap(err, "")
	}

	op, dev, err := roundTrip(ctx, s, h)
	if err != nil {
		return errors.Wrap(err, "")
	}
	report.MaxDeviation = dev
	log.Printf("max deviation %g", dev)

	if *nModes <= maxMatrixModes {
		hdir := filepath.Join(dir, fnameHamiltonian)
		if err := os.MkdirAll(hdir, os.ModePerm); err != nil {
			return errors.Wrap(err, "")
		}
		if err := jordanwigner.Operator(h).WriteCOO(hdir); err != nil {
			return errors.Wrap(err, "")
		}
		report.MatrixDeviation, err = matrixDeviation(hdir, op)
		if err != nil {
			return errors.Wrap(err, "")
		}
		log.Printf("matrix deviation %g", report.MatrixDeviation)
	}

	b, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "")
	}
	if err := os.WriteFile(filepath.Join(dir, fnameReport), b, 0644); err != nil {
		return errors.Wrap(err, "")
	}

	printGates(gates)
	return nil
}
