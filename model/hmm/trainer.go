// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akualab/hmmsel/floatx"
	"github.com/akualab/hmmsel/model"
	"github.com/akualab/hmmsel/model/gaussian"
	"github.com/golang/glog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultMaxIter   = 1000
	defaultTolerance = 0.01
	kmeansIter       = 10
)

// Trainer estimates Gaussian HMMs using the Baum-Welch algorithm.
// It implements the model.Fitter interface and is safe for concurrent use.
type Trainer struct {
	maxIter            int
	tolerance          float64
	minVariance        float64
	requireConvergence bool
}

// TrainerOption type is used to pass options to NewTrainer().
type TrainerOption func(*Trainer)

// NewTrainer creates a new trainer.
func NewTrainer(options ...TrainerOption) *Trainer {

	tr := &Trainer{
		maxIter:     defaultMaxIter,
		tolerance:   defaultTolerance,
		minVariance: gaussian.DefaultMinVariance,
	}
	for _, option := range options {
		option(tr)
	}
	return tr
}

// Fit estimates a model with numStates states from the segments in obs.
// The seed makes the initialization reproducible.
func (tr *Trainer) Fit(obs model.Flat, numStates int, seed int64) (model.Modeler, error) {

	if err := obs.Validate(); err != nil {
		return nil, fmt.Errorf("hmm: invalid observations: %w", err)
	}
	if numStates < 1 {
		return nil, fmt.Errorf("hmm: invalid number of states [%d]", numStates)
	}
	if obs.NumFrames() < numStates {
		return nil, fmt.Errorf("%w: %d frames, %d states", ErrInsufficientData, obs.NumFrames(), numStates)
	}

	r := rand.New(rand.NewSource(seed))
	m, err := tr.initModel(obs, numStates, r)
	if err != nil {
		return nil, err
	}

	segs := obs.Segments()
	prev := math.Inf(-1)
	for iter := 0; iter < tr.maxIter; iter++ {
		ll, err := tr.iterate(m, segs)
		if err != nil {
			return nil, err
		}
		m.Iterations = iter + 1
		m.LogLikelihood = ll
		glog.V(4).Infof("hmm [%s] iter: %4d, log-likelihood: %f", m.ModelName, iter, ll)
		if ll-prev < tr.tolerance {
			m.Converged = true
			break
		}
		prev = ll
	}

	if !m.Converged {
		glog.V(3).Infof("hmm [%s] did not converge after %d iterations", m.ModelName, m.Iterations)
		if tr.requireConvergence {
			return nil, fmt.Errorf("%w: %d iterations", ErrNoConvergence, m.Iterations)
		}
	}
	return m, nil
}

// One Baum-Welch iteration. Returns the log-likelihood of the data under
// the parameters before the update.
func (tr *Trainer) iterate(m *Model, segs [][][]float64) (float64, error) {

	N := m.NStates
	sumInit := make([]float64, N)
	sumXi := floatx.MakeFloat2D(N, N)
	gamma := make([]float64, N)
	for _, g := range m.States {
		g.Clear()
	}

	var total float64
	for _, seg := range segs {
		b := m.logEmissions(seg)
		α, logProb := m.alpha(b)
		if math.IsNaN(logProb) || math.IsInf(logProb, 0) {
			return 0, fmt.Errorf("%w: model [%s] during training", ErrNumerical, m.ModelName)
		}
		β := m.beta(b)
		total += logProb

		T := len(seg)
		for t := 0; t < T; t++ {

			// γ(t,i) = α(t,i) + β(t,i) - log P(O/Φ)
			for i := 0; i < N; i++ {
				gamma[i] = math.Exp(α[t][i] + β[t][i] - logProb)
				m.States[i].Update(seg[t], gamma[i])
			}
			if t == 0 {
				floats.Add(sumInit, gamma)
			}
			if t == T-1 {
				continue
			}

			// ζ(t,i,j) = α(t,i) + a(i,j) + b(t+1,j) + β(t+1,j) - log P(O/Φ)
			for i := 0; i < N; i++ {
				for j := 0; j < N; j++ {
					sumXi[i][j] += math.Exp(α[t][i] + m.LogTrans[i][j] + b[t+1][j] + β[t+1][j] - logProb)
				}
			}
		}
	}

	// Reestimate.
	if err := floatx.LogNormalize(sumInit, m.LogInit); err != nil {
		return 0, fmt.Errorf("%w: initial probabilities: %v", ErrNumerical, err)
	}
	for i, row := range sumXi {
		// A state that is only visited in the last frame keeps its transitions.
		if floats.Sum(row) < smallNumber {
			continue
		}
		if err := floatx.LogNormalize(row, m.LogTrans[i]); err != nil {
			return 0, fmt.Errorf("%w: transition probabilities: %v", ErrNumerical, err)
		}
	}
	for _, g := range m.States {
		if err := g.Estimate(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNumerical, err)
		}
	}
	return total, nil
}

// Initializes means using k-means over the frames, variances using the
// variance of the data, and uniform start and transition probabilities.
func (tr *Trainer) initModel(obs model.Flat, n int, r *rand.Rand) (*Model, error) {

	centers, err := kmeans(obs.X, n, r)
	if err != nil {
		return nil, err
	}

	dim := obs.Dim()
	sd := make([]float64, dim)
	col := make([]float64, obs.NumFrames())
	for k := 0; k < dim; k++ {
		for t, x := range obs.X {
			col[t] = x[k]
		}
		_, v := stat.PopMeanVariance(col, nil)
		sd[k] = math.Sqrt(v + tr.minVariance)
	}

	states := make([]*gaussian.Model, n)
	for i := range states {
		states[i] = gaussian.NewModel(dim,
			gaussian.Name(fmt.Sprintf("hmm%d-%d", n, i)),
			gaussian.Mean(centers[i]),
			gaussian.StdDev(append([]float64(nil), sd...)),
			gaussian.MinVariance(tr.minVariance))
	}

	probs := make([]float64, n)
	floatx.Apply(floatx.SetValueFunc(1/float64(n)), probs, nil)
	trans := make([][]float64, n)
	for i := range trans {
		trans[i] = probs
	}
	return NewModel(probs, trans, states)
}

// Picks n distinct frames at random as initial centers and runs a few
// iterations of Lloyd's algorithm. Fails if there are fewer than n
// distinct frames.
func kmeans(x [][]float64, n int, r *rand.Rand) ([][]float64, error) {

	centers := make([][]float64, 0, n)
	for _, idx := range r.Perm(len(x)) {
		dup := false
		for _, c := range centers {
			if floats.Equal(c, x[idx]) {
				dup = true
				break
			}
		}
		if !dup {
			centers = append(centers, append([]float64(nil), x[idx]...))
		}
		if len(centers) == n {
			break
		}
	}
	if len(centers) < n {
		return nil, fmt.Errorf("%w: %d distinct frames, %d states", ErrInsufficientData, len(centers), n)
	}

	dim := len(x[0])
	assign := make([]int, len(x))
	sums := floatx.MakeFloat2D(n, dim)
	counts := make([]int, n)
	for iter := 0; iter < kmeansIter; iter++ {
		changed := false
		for t, xt := range x {
			best, bestDist := 0, math.Inf(1)
			for k, c := range centers {
				if d := floats.Distance(xt, c, 2); d < bestDist {
					best, bestDist = k, d
				}
			}
			if iter == 0 || assign[t] != best {
				changed = true
			}
			assign[t] = best
		}
		if !changed {
			break
		}
		floatx.Clear2D(sums)
		for k := range counts {
			counts[k] = 0
		}
		for t, xt := range x {
			floats.Add(sums[assign[t]], xt)
			counts[assign[t]]++
		}
		for k := range centers {
			// Empty clusters keep their center.
			if counts[k] > 0 {
				floats.ScaleTo(centers[k], 1/float64(counts[k]), sums[k])
			}
		}
	}
	return centers, nil
}

// MaxIter sets the maximum number of Baum-Welch iterations. Default is 1000.
func MaxIter(n int) TrainerOption {
	return func(tr *Trainer) { tr.maxIter = n }
}

// Tolerance sets the minimum log-likelihood gain per iteration. Training
// stops when the gain is lower. Default is 0.01.
func Tolerance(tol float64) TrainerOption {
	return func(tr *Trainer) { tr.tolerance = tol }
}

// MinVariance sets the variance floor of the output distributions.
func MinVariance(v float64) TrainerOption {
	return func(tr *Trainer) { tr.minVariance = v }
}

// RequireConvergence makes Fit fail when training stops at MaxIter before
// converging.
func RequireConvergence(flag bool) TrainerOption {
	return func(tr *Trainer) { tr.requireConvergence = flag }
}
