package selector

import (
	"context"
	"testing"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
)

func TestTrainAll(t *testing.T) {

	ws := model.WordSequences{
		"DOG": markedSeqs(1, 4),
		"CAT": markedSeqs(2, 5),
		"EMU": markedSeqs(3, 6),
		"ANT": markedSeqs(4, 3),
	}
	flats := model.FlattenAll(ws)
	f := &fakeFitter{}
	words := []string{"DOG", "CAT", "EMU", "ANT"}

	set, err := TrainAll(context.Background(), words, func(w string) Selector {
		n := len(ws[w][0])
		return Constant{NewBase(w, ws, flats, f, ConstantStates(n))}
	}, 3)
	hmmsel.CheckError(t, err)

	hmmsel.CompareSliceString(t, words, set.Words(), "words")
	for _, w := range words {
		m, ok := set.Get(w)
		if !ok {
			t.Fatalf("missing model for %s", w)
		}
		if m.NumStates() != len(ws[w][0]) {
			t.Fatalf("word %s has a model with %d states", w, m.NumStates())
		}
	}
}

func TestTrainAllCanceled(t *testing.T) {

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TrainAll(ctx, []string{"A", "B"}, func(w string) Selector {
		return Func(func() model.Modeler { return model.Unfitted{ModelName: w} })
	}, 1)
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestTrainAllNilModel(t *testing.T) {

	_, err := TrainAll(context.Background(), []string{"A", "B"}, func(w string) Selector {
		return Func(func() model.Modeler {
			if w == "B" {
				return nil
			}
			return model.Unfitted{ModelName: w}
		})
	}, 2)
	if err == nil {
		t.Fatalf("expected error for nil model")
	}
}
