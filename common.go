// Copyright (c) 2014 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package hmmsel selects the number of hidden states of per-word hidden
Markov models and recognizes unseen sequences using the selected models.

The model selection strategies live in package selector, the Gaussian HMM
fitter in package model/hmm and the recognizer in package recognizer. This
package holds the shared configuration and result types.
*/
package hmmsel

import (
	"encoding/json"
	"io"
	"math"

	"github.com/golang/glog"
)

// Result is the recognition output for a single test item.
type Result struct {
	BatchID string             `json:"batchid"`
	Ref     []string           `json:"ref"`
	Hyp     []string           `json:"hyp"`
	Scores  map[string]float64 `json:"scores,omitempty"`
}

// Fatal logs the error and exits if err is not nil.
func Fatal(err error) {
	if err != nil {
		glog.Fatal(err)
	}
}

// WriteResults writes results as a stream of JSON objects separated by
// newlines. JSON has no infinity so -Inf scores are written as
// -math.MaxFloat64.
func WriteResults(w io.Writer, results []Result) error {

	enc := json.NewEncoder(w)
	for _, r := range results {
		if len(r.Scores) > 0 {
			scores := make(map[string]float64, len(r.Scores))
			for k, v := range r.Scores {
				if math.IsInf(v, -1) || math.IsNaN(v) {
					v = -math.MaxFloat64
				}
				scores[k] = v
			}
			r.Scores = scores
		}
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// ReadResults reads a stream of results written by WriteResults.
func ReadResults(r io.Reader) ([]Result, error) {

	var results []Result
	dec := json.NewDecoder(r)
	for {
		var v Result
		err := dec.Decode(&v)
		if err == io.EOF {
			return results, nil
		}
		if err != nil {
			return nil, err
		}
		results = append(results, v)
	}
}
