package selector

import (
	"fmt"

	"github.com/akualab/hmmsel/model"
	"gonum.org/v1/gonum/stat"
)

// CV selects the model with the highest mean held-out log-likelihood using
// k-fold cross-validation over the word's sequences. Words with two or
// fewer sequences are not split: the model is trained on all the data and
// scored on it.
//
// The model returned for the winning state count is trained on all the
// word's sequences. If that fit fails the next best state count is used.
type CV struct {
	*Base
}

// Select runs one trial per state count and keeps the highest score.
func (s CV) Select() model.Modeler {

	var folds []Fold
	if len(s.seqs) > 2 {
		k := s.folds
		if k > len(s.seqs) {
			k = len(s.seqs)
		}
		if k < 2 {
			k = 2
		}
		folds = KFold(len(s.seqs), k)
	}

	var trials []trial
	for n := s.minStates; n <= s.maxStates; n++ {
		if folds == nil {
			trials = append(trials, s.selfTrial(n))
		} else {
			trials = append(trials, s.foldTrial(n, folds))
		}
	}

	s.refit(trials)
	return s.choose("cv", trials, higher)
}

// Refits the best fold trial on the whole word. A failed refit drops that
// trial and the next best is tried.
func (s CV) refit(trials []trial) {

	for {
		winner, found := best(trials, higher)
		if !found || winner.model != nil {
			return
		}
		m, err := s.fit(s.flat, winner.n)
		for i := range trials {
			if trials[i].n != winner.n {
				continue
			}
			if err != nil {
				trials[i].err = fmt.Errorf("refit with %d states: %w", winner.n, err)
			} else {
				trials[i].model = m
			}
		}
		if err == nil {
			return
		}
	}
}

// Single fit on the whole word, scored on its own training data.
func (s CV) selfTrial(n int) trial {

	m, err := s.fit(s.flat, n)
	if err != nil {
		return trial{n: n, err: err}
	}
	ll, err := score(m, s.flat)
	if err != nil {
		return trial{n: n, err: err}
	}
	return trial{n: n, score: ll, model: m}
}

// Mean held-out log-likelihood. Fold models are discarded.
func (s CV) foldTrial(n int, folds []Fold) trial {

	lls := make([]float64, len(folds))
	for i, f := range folds {
		train := model.Combine(f.Train, s.seqs)
		m, err := s.fit(train, n)
		if err != nil {
			return trial{n: n, err: fmt.Errorf("fold %d: %w", i, err)}
		}
		test := model.Combine(f.Test, s.seqs)
		ll, err := score(m, test)
		if err != nil {
			return trial{n: n, err: fmt.Errorf("fold %d: %w", i, err)}
		}
		lls[i] = ll
	}
	return trial{n: n, score: stat.Mean(lls, nil)}
}
