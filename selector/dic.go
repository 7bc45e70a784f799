package selector

import (
	"fmt"
	"sort"

	"github.com/akualab/hmmsel/model"
	"gonum.org/v1/gonum/stat"
)

// DIC selects the model with the highest discriminative information
// criterion
//
//	DIC = logL(own data) - mean(logL(data of every other word))
//
// A candidate that fails to score any other word is left out.
type DIC struct {
	*Base
}

// Select runs one trial per state count and keeps the highest DIC.
func (s DIC) Select() model.Modeler {

	others := s.others()
	var trials []trial
	for n := s.minStates; n <= s.maxStates; n++ {
		trials = append(trials, s.trial(n, others))
	}
	return s.choose("dic", trials, higher)
}

// Other words in sorted order so the sum is reproducible.
func (s DIC) others() []string {
	words := make([]string, 0, len(s.flats))
	for w := range s.flats {
		if w != s.word {
			words = append(words, w)
		}
	}
	sort.Strings(words)
	return words
}

func (s DIC) trial(n int, others []string) trial {

	m, err := s.fit(s.flat, n)
	if err != nil {
		return trial{n: n, err: err}
	}
	own, err := score(m, s.flat)
	if err != nil {
		return trial{n: n, err: err}
	}

	// With no other words the penalty is zero.
	if len(others) == 0 {
		return trial{n: n, score: own, model: m}
	}
	lls := make([]float64, len(others))
	for i, w := range others {
		ll, err := score(m, s.flats[w])
		if err != nil {
			return trial{n: n, err: fmt.Errorf("scoring word [%s]: %w", w, err)}
		}
		lls[i] = ll
	}
	return trial{n: n, score: own - stat.Mean(lls, nil), model: m}
}
