package selector

import (
	"context"
	"fmt"
	"time"

	"github.com/akualab/hmmsel/model"
	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"
)

// TrainAll runs the selector returned by newSelector for each word using up
// to workers goroutines and returns the selected models in word order.
// Canceling ctx stops starting new words; running selections complete. A
// selector that returns a nil model is an error.
func TrainAll(ctx context.Context, words []string, newSelector func(word string) Selector, workers int) (*model.Set, error) {

	if workers < 1 {
		workers = 1
	}
	t0 := time.Now()
	models := make([]model.Modeler, len(words))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, w := range words {
		i, w := i, w
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m := newSelector(w).Select()
			if m == nil {
				return fmt.Errorf("word [%s]: selector returned no model", w)
			}
			models[i] = m
			glog.V(1).Infof("word [%s] done, %d states", w, models[i].NumStates())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Words skipped after cancellation have no model.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	set := model.NewSet()
	for i, w := range words {
		set.Add(w, models[i])
	}
	glog.Infof("selected %d word models in %v", set.Len(), time.Now().Sub(t0))
	return set, nil
}
