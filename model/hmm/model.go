// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hmm provides a fully connected hidden Markov model with diagonal
Gaussian output distributions and a Baum-Welch trainer that fits it to
multiple variable-length sequences.

Model implements model.Modeler and Trainer implements model.Fitter.
*/
package hmm

import (
	"fmt"
	"math"

	"github.com/akualab/hmmsel/floatx"
	"github.com/akualab/hmmsel/model"
	"github.com/akualab/hmmsel/model/gaussian"
	"github.com/golang/glog"
)

type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrInsufficientData = Error("hmm: insufficient data for number of states")
	ErrNumerical        = Error("hmm: non-finite likelihood")
	ErrNoConvergence    = Error("hmm: training did not converge")
	ErrDimMismatch      = Error("hmm: observation dimension mismatch")
)

const smallNumber = 0.000001

// Model is a hidden Markov model.
type Model struct {

	// Model name.
	ModelName string `json:"name"`

	// Number of hidden states. States are labeled {0,1,...,N-1}.
	NStates int `json:"num_states"`

	// Initial state distribution in the log domain.
	// π(i) = log P[q(0) = i]; 0<=i<N
	LogInit []float64 `json:"log_init"`

	// State-transition probability matrix in the log domain.
	// a(i,j) = log P[q(t+1) = j | q(t) = i]; 0 <= i,j <= N-1
	LogTrans [][]float64 `json:"log_trans"`

	// Output distributions, one per state.
	// b(j,t) = log P[o(t) | q(t) = j]
	States []*gaussian.Model `json:"states"`

	// Training summary.
	LogLikelihood float64 `json:"log_likelihood"`
	Iterations    int     `json:"iterations"`
	Converged     bool    `json:"converged"`
}

// Option type is used to pass options to NewModel().
type Option func(*Model)

// NewModel creates an HMM from probabilities (not logs). Rows of transProbs
// and initProbs must add up to one.
func NewModel(initProbs []float64, transProbs [][]float64, states []*gaussian.Model, options ...Option) (*Model, error) {

	n := len(initProbs)
	switch {
	case n == 0:
		return nil, fmt.Errorf("hmm: no states")
	case len(transProbs) != n:
		return nil, fmt.Errorf("num states mismatch: transProbs has [%d] rows and initProbs has [%d]", len(transProbs), n)
	case len(states) != n:
		return nil, fmt.Errorf("num states mismatch: [%d] output distributions for [%d] states", len(states), n)
	}
	dim := states[0].Dim()
	for i, s := range states {
		if s.Dim() != dim {
			return nil, fmt.Errorf("state %d has dim [%d], expected [%d]", i, s.Dim(), dim)
		}
	}

	m := &Model{
		ModelName: fmt.Sprintf("hmm%d", n),
		NStates:   n,
		LogInit:   make([]float64, n),
		LogTrans:  floatx.MakeFloat2D(n, n),
		States:    states,
	}
	for _, option := range options {
		option(m)
	}

	if err := checkDist(initProbs); err != nil {
		return nil, fmt.Errorf("initial probabilities: %w", err)
	}
	floatx.Apply(floatx.Log, initProbs, m.LogInit)
	for i, row := range transProbs {
		if len(row) != n {
			return nil, fmt.Errorf("transProbs row %d has [%d] values, expected [%d]", i, len(row), n)
		}
		if err := checkDist(row); err != nil {
			return nil, fmt.Errorf("transition probabilities row %d: %w", i, err)
		}
		floatx.Apply(floatx.Log, row, m.LogTrans[i])
	}

	glog.V(4).Infof("new hmm [%s], num states = %d, dim = %d", m.ModelName, n, dim)
	return m, nil
}

func checkDist(p []float64) error {
	var sum float64
	for _, v := range p {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("invalid probability %v", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > smallNumber {
		return fmt.Errorf("probabilities add up to %v", sum)
	}
	return nil
}

// Name returns the name of the model.
func (m *Model) Name() string { return m.ModelName }

// NumStates returns the number of hidden states.
func (m *Model) NumStates() int { return m.NStates }

// Dim is the dimensionality of the observation vector.
func (m *Model) Dim() int { return m.States[0].Dim() }


// LogProb returns the total log-likelihood of the segments in obs.
func (m *Model) LogProb(obs model.Flat) (float64, error) {

	if err := obs.Validate(); err != nil {
		return 0, err
	}
	if obs.Dim() != m.Dim() {
		return 0, fmt.Errorf("%w: model [%s] has dim [%d], observations have [%d]",
			ErrDimMismatch, m.ModelName, m.Dim(), obs.Dim())
	}

	var total float64
	for _, seg := range obs.Segments() {
		_, ll := m.alpha(m.logEmissions(seg))
		total += ll
	}
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, fmt.Errorf("%w: model [%s] log-likelihood is %v", ErrNumerical, m.ModelName, total)
	}
	return total, nil
}

// Name is an option to set the model name.
func Name(name string) Option {
	return func(m *Model) { m.ModelName = name }
}
