package hmm

import (
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
	gm "github.com/akualab/hmmsel/model/gaussian"
)

// Two well separated 2D states.
func makeSourceHMM(t *testing.T) *Model {

	g0 := gm.NewModel(2, gm.Mean([]float64{0, 0}), gm.StdDev([]float64{1, 1}))
	g1 := gm.NewModel(2, gm.Mean([]float64{10, 10}), gm.StdDev([]float64{1, 1}))
	hmm, e := NewModel([]float64{0.5, 0.5}, [][]float64{{0.8, 0.2}, {0.3, 0.7}},
		[]*gm.Model{g0, g1}, Name("source"))
	hmmsel.CheckError(t, e)
	return hmm
}

func generate(t *testing.T, hmm *Model, seed int64, numSeqs, length int) model.Flat {

	gen := NewGenerator(hmm, seed)
	seqs := make([]model.Sequence, numSeqs)
	for i := range seqs {
		s, _, err := gen.Next(length)
		hmmsel.CheckError(t, err)
		seqs[i] = s
	}
	return model.Flatten(seqs)
}

func TestFitRecoversModel(t *testing.T) {

	if testing.Short() {
		t.Skip("skipping training test in short mode.")
	}

	src := makeSourceHMM(t)
	data := generate(t, src, 33, 20, 30)

	t0 := time.Now()
	fitted, err := NewTrainer().Fit(data, 2, 14)
	hmmsel.CheckError(t, err)
	t.Logf("Fit time: %v", time.Now().Sub(t0))

	m := fitted.(*Model)
	t.Logf("iterations: %d, converged: %v, ll: %f", m.Iterations, m.Converged, m.LogLikelihood)
	if m.NumStates() != 2 || m.Dim() != 2 {
		t.Fatalf("wrong topology: %d states, dim %d", m.NumStates(), m.Dim())
	}

	means := []float64{m.States[0].Mean[0], m.States[1].Mean[0]}
	sort.Float64s(means)
	hmmsel.CompareSliceFloat(t, []float64{0, 10}, means, "state means", 0.2)

	// The fitted model must explain the training data at least as well as
	// the source model, up to a small slack.
	llFit, err := m.LogProb(data)
	hmmsel.CheckError(t, err)
	llSrc, err := src.LogProb(data)
	hmmsel.CheckError(t, err)
	t.Logf("fitted ll: %f, source ll: %f", llFit, llSrc)
	if llFit < llSrc-1 {
		t.Errorf("fitted log-likelihood %f is lower than source %f", llFit, llSrc)
	}
}

func TestFitDeterministic(t *testing.T) {

	data := generate(t, makeSourceHMM(t), 7, 5, 12)
	tr := NewTrainer(MaxIter(50))

	m1, err := tr.Fit(data, 3, 14)
	hmmsel.CheckError(t, err)
	m2, err := tr.Fit(data, 3, 14)
	hmmsel.CheckError(t, err)

	p1, err := m1.LogProb(data)
	hmmsel.CheckError(t, err)
	p2, err := m2.LogProb(data)
	hmmsel.CheckError(t, err)
	if p1 != p2 {
		t.Fatalf("same seed gave different models: %v != %v", p1, p2)
	}
}

func TestFitInsufficientData(t *testing.T) {

	tr := NewTrainer()

	// Fewer frames than states.
	data := model.Flat{X: [][]float64{{1, 1}, {2, 2}}, Lengths: []int{2}}
	if _, err := tr.Fit(data, 3, 14); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	// Enough frames but not enough distinct values.
	data = model.Flat{X: [][]float64{{1, 1}, {1, 1}, {1, 1}}, Lengths: []int{3}}
	if _, err := tr.Fit(data, 2, 14); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}

	// A single state always fits.
	m, err := tr.Fit(data, 1, 14)
	hmmsel.CheckError(t, err)
	p, err := m.LogProb(data)
	hmmsel.CheckError(t, err)
	if math.IsInf(p, 0) || math.IsNaN(p) {
		t.Fatalf("expected finite log prob, got %v", p)
	}

	if _, err := tr.Fit(model.Flat{}, 1, 14); !errors.Is(err, model.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestFitRequireConvergence(t *testing.T) {

	data := generate(t, makeSourceHMM(t), 3, 5, 20)
	_, err := NewTrainer(MaxIter(1), Tolerance(0), RequireConvergence(true)).Fit(data, 2, 14)
	if !errors.Is(err, ErrNoConvergence) {
		t.Fatalf("expected ErrNoConvergence, got %v", err)
	}
	m, err := NewTrainer(MaxIter(1), Tolerance(0)).Fit(data, 2, 14)
	hmmsel.CheckError(t, err)
	if m.(*Model).Converged {
		t.Fatalf("model should not be marked as converged")
	}
}
