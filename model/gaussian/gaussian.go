// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gaussian implements a multivariate Gaussian density with diagonal
// covariance that can be estimated from weighted samples.
package gaussian

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akualab/hmmsel/floatx"
	"gonum.org/v1/gonum/floats"
)

const (
	// DefaultMinVariance is the default variance floor.
	DefaultMinVariance = 0.001
	minNumSamples      = 1e-10
)

// Model is a multivariate Gaussian distribution with diagonal covariance.
type Model struct {
	ModelName   string    `json:"name,omitempty"`
	ModelDim    int       `json:"dim"`
	NSamples    float64   `json:"nsamples"`
	Sumx        []float64 `json:"sumx,omitempty"`
	Sumxsq      []float64 `json:"sumx_sq,omitempty"`
	Mean        []float64 `json:"mean"`
	StdDev      []float64 `json:"sd"`
	minVariance float64
	variance    []float64
	varianceInv []float64
	tmpArray    []float64
	const1      float64 // -(N/2)log(2PI) Depends only on ModelDim.
	const2      float64 // const1 - sum(log sigma_i) Also depends on variance.
}

// Option type is used to pass options to NewModel().
type Option func(*Model)

// NewModel creates a new Gaussian model. Mean defaults to zero and the
// standard deviation to one.
func NewModel(dim int, options ...Option) *Model {

	g := &Model{
		ModelName:   "Gaussian",
		ModelDim:    dim,
		minVariance: DefaultMinVariance,
	}
	for _, option := range options {
		option(g)
	}

	if g.Mean == nil {
		g.Mean = make([]float64, dim)
	}
	if g.StdDev == nil {
		g.StdDev = make([]float64, dim)
		floatx.Apply(floatx.SetValueFunc(1), g.StdDev, nil)
	}
	if len(g.Mean) != dim || len(g.StdDev) != dim {
		panic(fmt.Sprintf("gaussian: mean [%d] and sd [%d] must have dim [%d]", len(g.Mean), len(g.StdDev), dim))
	}
	g.Sumx = make([]float64, dim)
	g.Sumxsq = make([]float64, dim)
	g.variance = make([]float64, dim)
	g.varianceInv = make([]float64, dim)
	g.tmpArray = make([]float64, dim)
	g.const1 = -float64(dim) * math.Log(2.0*math.Pi) / 2.0

	floatx.Apply(floatx.Sq, g.StdDev, g.variance)
	g.setVariance(g.variance)
	return g
}

// LogProb returns the log density of x.
func (g *Model) LogProb(x []float64) float64 {

	var v float64
	for i, xi := range x {
		s := g.Mean[i] - xi
		v += s * s * g.varianceInv[i]
	}
	return g.const2 - v/2.0
}

// Update accumulates sufficient statistics for sample x with weight w.
func (g *Model) Update(x []float64, w float64) {

	floats.AddScaled(g.Sumx, w, x)
	floatx.Apply(floatx.Sq, x, g.tmpArray)
	floats.AddScaled(g.Sumxsq, w, g.tmpArray)
	g.NSamples += w
}

// Estimate computes mean and variance from the sufficient statistics.
// When the accumulated weight is negligible the parameters are unchanged.
func (g *Model) Estimate() error {

	if g.NSamples < minNumSamples {
		return nil
	}
	if math.IsNaN(g.NSamples) || math.IsInf(g.NSamples, 0) {
		return fmt.Errorf("gaussian [%s]: invalid sample count %v", g.ModelName, g.NSamples)
	}

	// mean = sumx/n
	floatx.Apply(floatx.ScaleFunc(1.0/g.NSamples), g.Sumx, g.Mean)

	// sigma_sq = sumxsq/n - mean^2
	floatx.Apply(floatx.ScaleFunc(1.0/g.NSamples), g.Sumxsq, g.variance)
	floatx.Apply(floatx.Sq, g.Mean, g.tmpArray)
	floats.Sub(g.variance, g.tmpArray)
	g.setVariance(g.variance)

	for _, v := range g.Mean {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("gaussian [%s]: non-finite mean", g.ModelName)
		}
	}
	return nil
}

// Clear resets the sufficient statistics.
func (g *Model) Clear() {
	floatx.Clear(g.Sumx)
	floatx.Clear(g.Sumxsq)
	g.NSamples = 0
}

// Sample returns a random vector drawn from the distribution.
func (g *Model) Sample(r *rand.Rand) []float64 {
	v := make([]float64, g.ModelDim)
	for i := range v {
		v[i] = r.NormFloat64()*g.StdDev[i] + g.Mean[i]
	}
	return v
}

// Variance returns a copy of the variance vector.
func (g *Model) Variance() []float64 {
	return append([]float64(nil), g.variance...)
}

func (g *Model) setVariance(variance []float64) {
	floatx.Apply(floatx.FloorFunc(g.minVariance), variance, g.variance)
	floatx.Apply(floatx.Inv, g.variance, g.varianceInv)
	floatx.Apply(floatx.Sqrt, g.variance, g.StdDev)

	floatx.Apply(floatx.Log, g.variance, g.tmpArray)
	g.const2 = g.const1 - floats.Sum(g.tmpArray)/2.0
}

// Name returns the model name.
func (g *Model) Name() string { return g.ModelName }

// Dim returns the dimension of the observation vector.
func (g *Model) Dim() int { return g.ModelDim }

// Name is an option to set the model name.
func Name(name string) Option {
	return func(g *Model) { g.ModelName = name }
}

// Mean is an option to set the mean vector.
func Mean(mean []float64) Option {
	return func(g *Model) { g.Mean = mean }
}

// StdDev is an option to set the standard deviation vector.
func StdDev(sd []float64) Option {
	return func(g *Model) { g.StdDev = sd }
}

// MinVariance is an option to set the variance floor.
func MinVariance(v float64) Option {
	return func(g *Model) { g.minVariance = v }
}
