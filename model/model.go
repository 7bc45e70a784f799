// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package model defines the interfaces shared by the sequence models and the
// data types used to feed them.
package model

import "fmt"

const (
	// DefaultSeed provided for model implementation.
	DefaultSeed = 33
)

type Error string

func (err Error) Error() string { return string(err) }

const (
	ErrIndexOutOfRange = Error("model: sequence index out of range")
	ErrEmpty           = Error("model: no observations")
	ErrLengths         = Error("model: sum of lengths does not match number of frames")
	ErrUnfitted        = Error("model: model was not fitted")
)

// A Modeler type is a fitted sequence model.
type Modeler interface {

	// The model name.
	Name() string

	// Dimensionality of the observation vector.
	Dim() int

	// Number of hidden states.
	NumStates() int

	Scorer
}

// Scorer computes log probabilities of flattened sequences.
type Scorer interface {
	// LogProb returns the total log-likelihood of the segments in obs.
	LogProb(obs Flat) (float64, error)
}

// A Fitter estimates a model with a fixed number of states from data.
// Fit must be safe to call concurrently with different inputs.
type Fitter interface {
	Fit(obs Flat, numStates int, seed int64) (Modeler, error)
}

// Unfitted stands in for a model that could not be estimated. It keeps the
// requested topology so callers can report it; LogProb always fails.
type Unfitted struct {
	ModelName string
	States    int
	NDim      int
	Err       error
}

func (u Unfitted) Name() string   { return u.ModelName }
func (u Unfitted) Dim() int       { return u.NDim }
func (u Unfitted) NumStates() int { return u.States }

// LogProb returns an error wrapping ErrUnfitted.
func (u Unfitted) LogProb(obs Flat) (float64, error) {
	if u.Err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrUnfitted, u.ModelName, u.Err)
	}
	return 0, fmt.Errorf("%w: %s", ErrUnfitted, u.ModelName)
}
