// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hmm

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akualab/hmmsel/model"
)

// Generator generates random observations using an hmm model.
// Not safe to use with multiple goroutines.
type Generator struct {
	hmm *Model
	r   *rand.Rand
}

// NewGenerator returns an hmm data generator.
func NewGenerator(hmm *Model, seed int64) *Generator {
	return &Generator{
		hmm: hmm,
		r:   rand.New(rand.NewSource(seed)),
	}
}

// Next returns a random sequence of the given length and its state path.
func (gen *Generator) Next(length int) (model.Sequence, []int, error) {

	if length < 1 {
		return nil, nil, fmt.Errorf("hmm: invalid sequence length [%d]", length)
	}
	seq := make(model.Sequence, length)
	states := make([]int, length)
	s, err := randIntFromLogDist(gen.hmm.LogInit, gen.r)
	if err != nil {
		return nil, nil, err
	}
	for t := 0; t < length; t++ {
		if t > 0 {
			s, err = randIntFromLogDist(gen.hmm.LogTrans[s], gen.r)
			if err != nil {
				return nil, nil, err
			}
		}
		states[t] = s
		seq[t] = gen.hmm.States[s].Sample(gen.r)
	}
	return seq, states, nil
}

// Generates a random number given a discrete prob distribution in the
// log domain.
func randIntFromLogDist(dist []float64, r *rand.Rand) (int, error) {
	N := len(dist)
	if N == 0 {
		return -1, fmt.Errorf("Error prob distribution has len 0")
	}
	ran := r.Float64()
	cum := 0.0
	for i := 0; i < N; i++ {
		cum = cum + math.Exp(dist[i])
		if ran < cum {
			return i, nil
		}
	}
	if math.Abs(cum-1) > 0.001 {
		return -1, fmt.Errorf("Distribution doesn't sum to 1")
	}
	return N - 1, nil
}
