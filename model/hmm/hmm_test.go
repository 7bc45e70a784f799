package hmm

import (
	"errors"
	"math"
	"testing"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
	gm "github.com/akualab/hmmsel/model/gaussian"
)

/*
   The test model has two 1D Gaussian states N(1,1) and N(4,2^2) with

   π = [0.8 0.2]
   A = | 0.9 0.1 |
       | 0.3 0.7 |

   For short sequences we can enumerate every state path and compare the
   total probability with the forward algorithm.
*/

func makeHMM(t *testing.T) *Model {

	g1 := gm.NewModel(1, gm.Name("g1"), gm.Mean([]float64{1}), gm.StdDev([]float64{1}))
	g2 := gm.NewModel(1, gm.Name("g2"), gm.Mean([]float64{4}), gm.StdDev([]float64{2}))

	initialStateProbs := []float64{0.8, 0.2}
	transProbs := [][]float64{{0.9, 0.1}, {0.3, 0.7}}

	hmm, e := NewModel(initialStateProbs, transProbs, []*gm.Model{g1, g2}, Name("testhmm"))
	hmmsel.CheckError(t, e)
	return hmm
}

// Sums P(O,q) over all state paths q.
func bruteForce(m *Model, obs [][]float64) float64 {

	N := m.NStates
	T := len(obs)
	paths := 1
	for t := 0; t < T; t++ {
		paths *= N
	}
	var total float64
	for p := 0; p < paths; p++ {
		q := make([]int, T)
		x := p
		for t := 0; t < T; t++ {
			q[t] = x % N
			x /= N
		}
		lp := m.LogInit[q[0]] + m.States[q[0]].LogProb(obs[0])
		for t := 1; t < T; t++ {
			lp += m.LogTrans[q[t-1]][q[t]] + m.States[q[t]].LogProb(obs[t])
		}
		total += math.Exp(lp)
	}
	return math.Log(total)
}

func TestLogProbBruteForce(t *testing.T) {

	hmm := makeHMM(t)
	obs := [][]float64{{0.1}, {1.1}, {5.5}, {7.8}, {1.3}}

	expected := bruteForce(hmm, obs)
	actual, err := hmm.LogProb(model.Flat{X: obs, Lengths: []int{len(obs)}})
	hmmsel.CheckError(t, err)
	t.Logf("logProb: %f, brute force: %f", actual, expected)
	hmmsel.CompareFloats(t, expected, actual, "forward log prob", 1e-9)
}

func TestBetaConsistent(t *testing.T) {

	// log P(O) = log sum_i exp[π(i) + b(0,i) + β(0,i)]
	hmm := makeHMM(t)
	obs := [][]float64{{0.1}, {0.3}, {1.1}, {1.2}, {0.7}, {5.5}, {7.8}, {10}, {5.2}, {1.1}}
	b := hmm.logEmissions(obs)
	_, logProb := hmm.alpha(b)
	β := hmm.beta(b)

	var p float64
	for i := 0; i < hmm.NStates; i++ {
		p += math.Exp(hmm.LogInit[i] + b[0][i] + β[0][i])
	}
	hmmsel.CompareFloats(t, logProb, math.Log(p), "beta log prob", 1e-9)
}

func TestLogProbSegments(t *testing.T) {

	hmm := makeHMM(t)
	s1 := model.Sequence{{0.1}, {1.1}, {5.5}}
	s2 := model.Sequence{{7.8}, {1.3}}

	p1, err := hmm.LogProb(model.Flatten([]model.Sequence{s1}))
	hmmsel.CheckError(t, err)
	p2, err := hmm.LogProb(model.Flatten([]model.Sequence{s2}))
	hmmsel.CheckError(t, err)
	p12, err := hmm.LogProb(model.Flatten([]model.Sequence{s1, s2}))
	hmmsel.CheckError(t, err)

	// Segments are independent, not one long sequence.
	hmmsel.CompareFloats(t, p1+p2, p12, "segment log prob", 1e-9)
}

func TestLogProbDimMismatch(t *testing.T) {

	hmm := makeHMM(t)
	_, err := hmm.LogProb(model.Flat{X: [][]float64{{1, 2}}, Lengths: []int{1}})
	if !errors.Is(err, ErrDimMismatch) {
		t.Fatalf("expected ErrDimMismatch, got %v", err)
	}
	_, err = hmm.LogProb(model.Flat{X: [][]float64{{1}}, Lengths: []int{2}})
	if !errors.Is(err, model.ErrLengths) {
		t.Fatalf("expected ErrLengths, got %v", err)
	}
}

func TestNewModelErrors(t *testing.T) {

	g := gm.NewModel(1)
	if _, err := NewModel([]float64{0.5, 0.4}, [][]float64{{1, 0}, {0, 1}}, []*gm.Model{g, g}); err == nil {
		t.Errorf("expected error for initial probabilities that don't add up to one")
	}
	if _, err := NewModel([]float64{1}, [][]float64{{1}}, []*gm.Model{g, g}); err == nil {
		t.Errorf("expected error for mismatched num states")
	}
}
