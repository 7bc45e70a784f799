package selector

import (
	"math"

	"github.com/akualab/hmmsel/model"
)

// BIC selects the model with the lowest Bayesian information criterion
//
//	BIC = -2 * logL + p * ln(N)
//
// where logL is the log-likelihood of the whole-word data under the model
// trained on it, N is the number of frames and p is the number of free
// parameters (see FreeParams).
type BIC struct {
	*Base
}

// FreeParams returns the number of free parameters of a fully connected
// HMM with n states and diagonal Gaussian outputs of dimension d:
// n*n + 2*d*n - 1.
func FreeParams(n, d int) int {
	return n*n + 2*d*n - 1
}

// Select runs one trial per state count and keeps the lowest BIC.
func (s BIC) Select() model.Modeler {

	logN := math.Log(float64(s.flat.NumFrames()))
	d := s.flat.Dim()
	var trials []trial
	for n := s.minStates; n <= s.maxStates; n++ {
		trials = append(trials, s.trial(n, d, logN))
	}
	return s.choose("bic", trials, lower)
}

func (s BIC) trial(n, d int, logN float64) trial {

	m, err := s.fit(s.flat, n)
	if err != nil {
		return trial{n: n, err: err}
	}
	logL, err := score(m, s.flat)
	if err != nil {
		return trial{n: n, err: err}
	}
	bic := -2*logL + float64(FreeParams(n, d))*logN
	return trial{n: n, score: bic, model: m}
}
