package selector

import (
	"testing"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
)

func TestKFold(t *testing.T) {

	folds := KFold(5, 3)
	hmmsel.CompareSliceInt(t, []int{0, 1}, folds[0].Test, "fold 0 test")
	hmmsel.CompareSliceInt(t, []int{2, 3}, folds[1].Test, "fold 1 test")
	hmmsel.CompareSliceInt(t, []int{4}, folds[2].Test, "fold 2 test")
	hmmsel.CompareSliceInt(t, []int{0, 1, 4}, folds[1].Train, "fold 1 train")

	for n := 2; n <= 12; n++ {
		for k := 2; k <= n && k <= 6; k++ {
			folds := KFold(n, k)
			if len(folds) != k {
				t.Fatalf("n=%d k=%d: got %d folds", n, k, len(folds))
			}
			seen := make([]int, n)
			for _, f := range folds {
				if len(f.Test)+len(f.Train) != n {
					t.Fatalf("n=%d k=%d: fold doesn't cover all indices: %v", n, k, f)
				}
				inTest := make(map[int]bool)
				for _, i := range f.Test {
					seen[i]++
					inTest[i] = true
				}
				prev := -1
				for _, i := range f.Train {
					if inTest[i] {
						t.Fatalf("n=%d k=%d: index %d in train and test", n, k, i)
					}
					if i <= prev {
						t.Fatalf("n=%d k=%d: train indices not ascending: %v", n, k, f.Train)
					}
					prev = i
				}
			}
			for i, c := range seen {
				if c != 1 {
					t.Fatalf("n=%d k=%d: index %d held out %d times", n, k, i, c)
				}
			}
		}
	}
}

func TestKFoldPanics(t *testing.T) {

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic")
		}
	}()
	KFold(2, 3)
}

// Words with one or two sequences are fit once per state count on all the
// data, whatever the number of folds.
func TestCVSelfScore(t *testing.T) {

	for _, lengths := range [][]int{{6}, {6, 4}} {
		for _, k := range []int{2, 3, 5} {
			ws := model.WordSequences{"A": markedSeqs(1, lengths...)}
			frames := 0
			for _, n := range lengths {
				frames += n
			}
			f := &fakeFitter{
				table: map[int]map[float64]float64{
					2: {1: -5},
					3: {1: -3},
					4: {1: -4},
				},
			}
			m := CV{NewBase("A", ws, model.FlattenAll(ws), f, MinStates(2), MaxStates(4), Folds(k))}.Select()

			if m.NumStates() != 3 {
				t.Fatalf("%d seqs, %d folds: expected 3 states, got %d", len(lengths), k, m.NumStates())
			}
			if len(f.calls) != 3 {
				t.Fatalf("%d seqs, %d folds: expected 3 fits, got %v", len(lengths), k, f.calls)
			}
			for _, c := range f.calls {
				if c.seqs != len(lengths) || c.frames != frames {
					t.Fatalf("%d seqs, %d folds: fit on partial data: %v", len(lengths), k, c)
				}
			}
		}
	}
}

func TestCVFolds(t *testing.T) {

	ws := model.WordSequences{"A": markedSeqs(1, 3, 4, 5, 6, 7)}
	f := &fakeFitter{
		table: map[int]map[float64]float64{
			2: {1: -10},
			3: {1: -5},
		},
	}
	m := CV{NewBase("A", ws, model.FlattenAll(ws), f, MinStates(2), MaxStates(3), Folds(3))}.Select()

	if m.NumStates() != 3 {
		t.Fatalf("expected 3 states, got %d", m.NumStates())
	}
	// 3 folds for each of 2 state counts plus the refit.
	if len(f.calls) != 7 {
		t.Fatalf("expected 7 fits, got %d: %v", len(f.calls), f.calls)
	}
	// Test blocks hold 2, 2 and 1 sequences.
	wantSeqs := []int{3, 3, 4, 3, 3, 4, 5}
	for i, c := range f.calls {
		if c.seqs != wantSeqs[i] {
			t.Fatalf("fit %d: expected %d training sequences, got %d", i, wantSeqs[i], c.seqs)
		}
	}
	if fm := m.(*fakeModel); fm.trainedOn.NumSeqs() != 5 || fm.trainedOn.NumFrames() != 25 {
		t.Fatalf("selected model was not refit on all the data")
	}
}

func TestCVFoldFailure(t *testing.T) {

	ws := model.WordSequences{"A": markedSeqs(1, 3, 4, 5, 6, 7)}
	f := &fakeFitter{
		table: map[int]map[float64]float64{
			2: {1: -10},
			3: {1: -5},
		},
		// The last fold trains on 4 sequences.
		fit: func(obs model.Flat, n int) error {
			if n == 3 && obs.NumSeqs() == 4 {
				return errFake
			}
			return nil
		},
	}
	m := CV{NewBase("A", ws, model.FlattenAll(ws), f, MinStates(2), MaxStates(3))}.Select()
	if m.NumStates() != 2 {
		t.Fatalf("expected 2 states, got %d", m.NumStates())
	}
}

func TestCVRefitFailure(t *testing.T) {

	ws := model.WordSequences{"A": markedSeqs(1, 3, 4, 5, 6, 7)}
	f := &fakeFitter{
		table: map[int]map[float64]float64{
			2: {1: -10},
			3: {1: -5},
		},
		fit: func(obs model.Flat, n int) error {
			if n != 1 && obs.NumSeqs() == 5 {
				return errFake
			}
			return nil
		},
	}
	m := CV{NewBase("A", ws, model.FlattenAll(ws), f, MinStates(2), MaxStates(3), ConstantStates(1))}.Select()
	if m.NumStates() != 1 {
		t.Fatalf("expected fallback to 1 state, got %d", m.NumStates())
	}
}

func TestCVRefitNextBest(t *testing.T) {

	ws := model.WordSequences{"A": markedSeqs(1, 3, 4, 5, 6, 7)}
	f := &fakeFitter{
		table: map[int]map[float64]float64{
			2: {1: -10},
			3: {1: -5},
		},
		// Every fold passes; only the whole-word fit with 3 states fails.
		fit: func(obs model.Flat, n int) error {
			if n == 3 && obs.NumSeqs() == 5 {
				return errFake
			}
			return nil
		},
	}
	m := CV{NewBase("A", ws, model.FlattenAll(ws), f, MinStates(2), MaxStates(3), ConstantStates(7))}.Select()
	if m.NumStates() != 2 {
		t.Fatalf("expected 2 states, got %d", m.NumStates())
	}
	fm, ok := m.(*fakeModel)
	if !ok || fm.trainedOn.NumSeqs() != 5 {
		t.Fatalf("expected a model refit on all the data, got %T", m)
	}
	// 6 fold fits, the failed refit with 3 states and the refit with 2.
	if len(f.calls) != 8 {
		t.Fatalf("expected 8 fits, got %d: %v", len(f.calls), f.calls)
	}
}
