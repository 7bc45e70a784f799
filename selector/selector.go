// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package selector chooses the number of hidden states of a word model.

A selector fits candidate models over a range of state counts and keeps the
best one under its criterion:

	Constant  always uses the fallback state count
	BIC       minimum -2*logL + p*ln(N)
	DIC       maximum logL(own) - mean(logL(other words))
	CV        maximum mean held-out logL over k folds

Fit and score failures never escape Select. A failed candidate is left out
and, when no candidate survives, the model is fitted at the fallback state
count. If even that fit fails Select returns a model.Unfitted.

All selectors share a read-only Base. Working data is built per call so
selectors for different words can run concurrently, see TrainAll.
*/
package selector

import (
	"fmt"
	"math"

	"github.com/akualab/hmmsel/model"
	"github.com/golang/glog"
)

const (
	defaultMinStates = 2
	defaultMaxStates = 10
	defaultConstant  = 3
	defaultFolds     = 3
)

// Selector returns the selected model for a single word. Select never
// returns nil.
type Selector interface {
	Select() model.Modeler
}

// Func adapts a function to the Selector interface.
type Func func() model.Modeler

// Select calls f.
func (f Func) Select() model.Modeler { return f() }

// Base holds the data and search bounds shared by all selectors. It is not
// modified by Select.
type Base struct {
	word   string
	seqs   []model.Sequence
	flat   model.Flat
	flats  map[string]model.Flat
	fitter model.Fitter

	minStates int
	maxStates int
	constant  int
	seed      int64
	folds     int
}

// Option type is used to pass options to NewBase().
type Option func(*Base)

// NewBase creates the shared selector state for word. The flats map holds
// the whole-word data of every word and is only read. If word is missing
// from flats its sequences are flattened.
func NewBase(word string, ws model.WordSequences, flats map[string]model.Flat, fitter model.Fitter, options ...Option) *Base {

	b := &Base{
		word:      word,
		seqs:      ws[word],
		flats:     flats,
		fitter:    fitter,
		minStates: defaultMinStates,
		maxStates: defaultMaxStates,
		constant:  defaultConstant,
		seed:      model.DefaultSeed,
		folds:     defaultFolds,
	}
	for _, option := range options {
		option(b)
	}

	if flat, ok := flats[word]; ok {
		b.flat = flat
	} else {
		b.flat = model.Flatten(b.seqs)
	}
	return b
}

// Word returns the word being modeled.
func (b *Base) Word() string { return b.word }

// The outcome of fitting and scoring one candidate state count.
type trial struct {
	n     int
	score float64
	model model.Modeler
	err   error
}

func (t trial) ok() bool { return t.err == nil }

// Returns the first successful trial that no later trial beats. better(x,
// y) reports whether score x is strictly better than score y, so ties go to
// the earliest trial.
func best(trials []trial, better func(x, y float64) bool) (trial, bool) {

	var winner trial
	found := false
	for _, t := range trials {
		if !t.ok() {
			continue
		}
		if !found || better(t.score, winner.score) {
			winner = t
			found = true
		}
	}
	return winner, found
}

func lower(a, b float64) bool  { return a < b }
func higher(a, b float64) bool { return a > b }

// Fits a model. A panic in the fitter is a fit failure.
func (b *Base) fit(obs model.Flat, n int) (m model.Modeler, err error) {

	defer func() {
		if r := recover(); r != nil {
			m, err = nil, fmt.Errorf("fit panicked: %v", r)
		}
	}()
	m, err = b.fitter.Fit(obs, n, b.seed)
	if err == nil && m == nil {
		err = fmt.Errorf("fitter returned no model")
	}
	return
}

// Scores obs. A panic or a non-finite result is a score failure.
func score(m model.Modeler, obs model.Flat) (ll float64, err error) {

	defer func() {
		if r := recover(); r != nil {
			ll, err = 0, fmt.Errorf("score panicked: %v", r)
		}
	}()
	ll, err = m.LogProb(obs)
	if err == nil && (math.IsNaN(ll) || math.IsInf(ll, 0)) {
		err = fmt.Errorf("log-likelihood is %v", ll)
	}
	return
}

// Fits the whole-word data at the constant state count. Returns an
// Unfitted model if the fit fails.
func (b *Base) constantModel() model.Modeler {

	m, err := b.fit(b.flat, b.constant)
	if err != nil {
		glog.Warningf("word [%s]: constant model with %d states failed: %v", b.word, b.constant, err)
		return model.Unfitted{
			ModelName: b.word,
			States:    b.constant,
			NDim:      b.flat.Dim(),
			Err:       err,
		}
	}
	return m
}

// Picks the winner or falls back to the constant model.
func (b *Base) choose(kind string, trials []trial, better func(x, y float64) bool) model.Modeler {

	for _, t := range trials {
		if t.ok() {
			glog.V(2).Infof("%s word [%s] states: %d, score: %f", kind, b.word, t.n, t.score)
		} else {
			glog.V(2).Infof("%s word [%s] states: %d, failed: %v", kind, b.word, t.n, t.err)
		}
	}
	winner, found := best(trials, better)
	if !found {
		glog.Warningf("%s word [%s]: no candidate in [%d,%d] succeeded, using %d states",
			kind, b.word, b.minStates, b.maxStates, b.constant)
		return b.constantModel()
	}
	glog.V(1).Infof("%s word [%s] selected %d states, score: %f", kind, b.word, winner.n, winner.score)
	return winner.model
}

// New returns the selector of the given kind. Kinds are "constant", "bic",
// "dic" and "cv".
func New(kind string, base *Base) (Selector, error) {

	switch kind {
	case "constant":
		return Constant{base}, nil
	case "bic":
		return BIC{base}, nil
	case "dic":
		return DIC{base}, nil
	case "cv":
		return CV{base}, nil
	}
	return nil, fmt.Errorf("unknown selector kind [%s]", kind)
}

// MinStates is an option to set the smallest candidate state count.
func MinStates(n int) Option {
	return func(b *Base) { b.minStates = n }
}

// MaxStates is an option to set the largest candidate state count.
func MaxStates(n int) Option {
	return func(b *Base) { b.maxStates = n }
}

// ConstantStates is an option to set the fallback state count.
func ConstantStates(n int) Option {
	return func(b *Base) { b.constant = n }
}

// Seed is an option to set the seed passed to the fitter.
func Seed(seed int64) Option {
	return func(b *Base) { b.seed = seed }
}

// Folds is an option to set the number of cross-validation folds.
func Folds(k int) Option {
	return func(b *Base) { b.folds = k }
}
