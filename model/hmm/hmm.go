// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"github.com/akualab/hmmsel/floatx"
	"gonum.org/v1/gonum/floats"
)

// Everything here works in the log domain.
//
// α β γ ζ

// Compute output log probabilities. Indices are: b(time, state)
func (m *Model) logEmissions(observations [][]float64) [][]float64 {

	T := len(observations)
	N := m.NStates
	b := floatx.MakeFloat2D(T, N)
	for j, g := range m.States {
		for t, o := range observations {
			b[t][j] = g.LogProb(o)
		}
	}
	return b
}

// Compute alphas. Indices are: α(time, state)
//
// 1. Initialization: α(0,i) = π(i) + b(0,i); 0<=i<N
// 2. Induction:      α(t+1,j) = log sum_{i=0}^{N-1} exp[α(t,i)+a(i,j)] + b(t+1,j); 0<=t<T-1; 0<=j<N
// 3. Termination:    log P(O/Φ) = log sum_{i=0}^{N-1} exp[α(T-1,i)]
func (m *Model) alpha(b [][]float64) (α [][]float64, logProb float64) {

	N := m.NStates
	T := len(b)
	α = floatx.MakeFloat2D(T, N)
	tmp := make([]float64, N)

	for i := 0; i < N; i++ {
		α[0][i] = m.LogInit[i] + b[0][i]
	}
	for t := 0; t < T-1; t++ {
		for j := 0; j < N; j++ {
			for i := 0; i < N; i++ {
				tmp[i] = α[t][i] + m.LogTrans[i][j]
			}
			α[t+1][j] = floats.LogSumExp(tmp) + b[t+1][j]
		}
	}
	logProb = floats.LogSumExp(α[T-1])
	return
}

// Compute betas. Indices are: β(time, state)
//
// 1. Initialization: β(T-1,i) = 0;  0<=i<N
// 2. Induction:      β(t,i) = log sum_{j=0}^{N-1} exp[a(i,j) + b(t+1,j) + β(t+1,j)]; t=T-2,...,0
func (m *Model) beta(b [][]float64) (β [][]float64) {

	N := m.NStates
	T := len(b)
	β = floatx.MakeFloat2D(T, N)
	tmp := make([]float64, N)

	for t := T - 2; t >= 0; t-- {
		for i := 0; i < N; i++ {
			for j := 0; j < N; j++ {
				tmp[j] = m.LogTrans[i][j] + b[t+1][j] + β[t+1][j]
			}
			β[t][i] = floats.LogSumExp(tmp)
		}
	}
	return
}
