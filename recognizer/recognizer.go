// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package recognizer scores unknown sequences against a set of word models
// and picks the most likely word for each.
package recognizer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// NoGuess is the guess for an item that no model could score.
const NoGuess = ""

// Item is an unknown sequence to be recognized. Ref is the known word, if
// any, used to report results.
type Item struct {
	ID  string
	Ref string
	Obs model.Flat
}

// ItemsFromSeqs creates one item per sequence, in order.
func ItemsFromSeqs(seqs []model.Seq) []Item {
	items := make([]Item, len(seqs))
	for i, s := range seqs {
		items[i] = Item{
			ID:  s.ID,
			Ref: s.Word(),
			Obs: model.Flatten([]model.Sequence{s.Vectors}),
		}
	}
	return items
}

// Recognize scores every item against every model in models.Words() order.
// For each item it returns the log-likelihood of each word and the word
// with the highest log-likelihood. A model that fails to score an item gets
// -Inf. Ties go to the word that comes first. If no model scores the item
// the guess is NoGuess. Outputs are aligned with tests.
func Recognize(models *model.Set, tests []Item) (probs []map[string]float64, guesses []string) {

	t0 := time.Now()
	words := models.Words()
	probs = make([]map[string]float64, len(tests))
	guesses = make([]string, len(tests))
	for i, item := range tests {
		probs[i], guesses[i] = recognize(models, words, item)
	}
	glog.V(1).Infof("recognized %d items with %d models in %v", len(tests), len(words), time.Now().Sub(t0))
	return
}

// RecognizeParallel is like Recognize but scores up to workers items
// concurrently. Returns an error only if ctx is canceled.
func RecognizeParallel(ctx context.Context, models *model.Set, tests []Item, workers int) ([]map[string]float64, []string, error) {

	if workers < 1 {
		workers = 1
	}
	t0 := time.Now()
	words := models.Words()
	probs := make([]map[string]float64, len(tests))
	guesses := make([]string, len(tests))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range tests {
		i, item := i, item
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			probs[i], guesses[i] = recognize(models, words, item)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	glog.V(1).Infof("recognized %d items with %d models and %d workers in %v",
		len(tests), len(words), workers, time.Now().Sub(t0))
	return probs, guesses, nil
}

func recognize(models *model.Set, words []string, item Item) (map[string]float64, string) {

	scores := make(map[string]float64, len(words))
	guess := NoGuess
	best := math.Inf(-1)
	for _, w := range words {
		m, _ := models.Get(w)
		ll, err := logProb(m, item.Obs)
		if err != nil {
			glog.V(2).Infof("item [%s] word [%s] failed: %v", item.ID, w, err)
			ll = math.Inf(-1)
		}
		scores[w] = ll
		if ll > best {
			best = ll
			guess = w
		}
	}
	glog.V(3).Infof("item [%s] ref: %s, hyp: %s, score: %f", item.ID, item.Ref, guess, best)
	return scores, guess
}

func logProb(m model.Modeler, obs model.Flat) (ll float64, err error) {

	if m == nil {
		return 0, fmt.Errorf("no model")
	}
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

// Results packs recognition outputs for writing with hmmsel.WriteResults.
func Results(tests []Item, probs []map[string]float64, guesses []string) []hmmsel.Result {

	results := make([]hmmsel.Result, len(tests))
	for i, item := range tests {
		results[i] = hmmsel.Result{
			BatchID: item.ID,
			Ref:     []string{item.Ref},
			Hyp:     []string{guesses[i]},
			Scores:  probs[i],
		}
	}
	return results
}
