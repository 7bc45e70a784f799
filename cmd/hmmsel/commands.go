package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/akualab/hmmsel"
	"github.com/akualab/hmmsel/model"
	"github.com/akualab/hmmsel/model/gaussian"
	"github.com/akualab/hmmsel/model/hmm"
	"github.com/akualab/hmmsel/recognizer"
	"github.com/akualab/hmmsel/selector"
	"github.com/alecthomas/kingpin/v2"
	"github.com/golang/glog"
	"github.com/schollz/progressbar/v2"
)

// Flags shared by the select and recognize commands. Zero values mean the
// config value is used.
type selectParams struct {
	trainFile string
	selector  string
	minStates int
	maxStates int
	constant  int
	folds     int
	workers   int
	seed      int64
	seedSet   bool
}

func addSelectFlags(cmd *kingpin.CmdClause) *selectParams {
	f := new(selectParams)
	cmd.Flag("train", "Training data file.").Short('t').StringVar(&f.trainFile)
	cmd.Flag("selector", "Model selection strategy.").Short('s').EnumVar(&f.selector, hmmsel.SelectorKinds...)
	cmd.Flag("min-states", "Smallest number of states.").IntVar(&f.minStates)
	cmd.Flag("max-states", "Largest number of states.").IntVar(&f.maxStates)
	cmd.Flag("constant-states", "Number of states when selection fails.").IntVar(&f.constant)
	cmd.Flag("folds", "Number of cross-validation folds.").IntVar(&f.folds)
	cmd.Flag("workers", "Number of words trained concurrently.").Short('w').IntVar(&f.workers)
	cmd.Flag("seed", "Seed for model initialization.").IsSetByUser(&f.seedSet).Int64Var(&f.seed)
	return f
}

// Reads the config file, if any, and applies the command flags. Command
// flags overwrite config file params.
func loadConfig(f *selectParams) *hmmsel.Config {

	cfg := hmmsel.DefaultConfig()
	if len(*configFile) > 0 {
		var e error
		cfg, e = hmmsel.ReadConfig(*configFile)
		hmmsel.Fatal(e)
	}
	if len(f.trainFile) > 0 {
		cfg.TrainFile = f.trainFile
	}
	if len(f.selector) > 0 {
		cfg.Selector = f.selector
	}
	if f.minStates > 0 {
		cfg.MinStates = f.minStates
	}
	if f.maxStates > 0 {
		cfg.MaxStates = f.maxStates
	}
	if f.constant > 0 {
		cfg.Constant = f.constant
	}
	if f.folds > 0 {
		cfg.Folds = f.folds
	}
	if f.workers > 0 {
		cfg.Workers = f.workers
	}
	if f.seedSet {
		cfg.Seed = f.seed
	}
	hmmsel.Fatal(cfg.Validate())
	if len(cfg.TrainFile) == 0 {
		hmmsel.Fatal(fmt.Errorf("missing training data file, use --train or train_file in config"))
	}
	glog.Infof("config: %+v", *cfg)
	return cfg
}

func readSeqsFile(fn string) []model.Seq {
	r, e := os.Open(fn)
	hmmsel.Fatal(e)
	defer r.Close()
	seqs, e := model.ReadSeqs(r)
	hmmsel.Fatal(e)
	glog.Infof("read %d sequences from %s", len(seqs), fn)
	return seqs
}

func selectModels(ctx context.Context, cfg *hmmsel.Config) *model.Set {

	ws, words := model.GroupByWord(readSeqsFile(cfg.TrainFile))
	flats := model.FlattenAll(ws)
	fitter := hmm.NewTrainer(
		hmm.MaxIter(cfg.HMM.MaxIter),
		hmm.Tolerance(cfg.HMM.Tolerance),
		hmm.MinVariance(cfg.HMM.MinVariance))
	glog.Infof("selecting %s models for %d words", cfg.Selector, len(words))

	var bar *progressbar.ProgressBar
	if !*quiet {
		bar = progressbar.NewOptions(len(words), progressbar.OptionSetWriter(os.Stderr))
	}
	newSelector := func(w string) selector.Selector {
		base := selector.NewBase(w, ws, flats, fitter,
			selector.MinStates(cfg.MinStates),
			selector.MaxStates(cfg.MaxStates),
			selector.ConstantStates(cfg.Constant),
			selector.Seed(cfg.Seed),
			selector.Folds(cfg.Folds))
		s, e := selector.New(cfg.Selector, base)
		hmmsel.Fatal(e)
		return selector.Func(func() model.Modeler {
			m := s.Select()
			if bar != nil {
				bar.Add(1)
			}
			return m
		})
	}
	models, e := selector.TrainAll(ctx, words, newSelector, cfg.Workers)
	hmmsel.Fatal(e)
	if bar != nil {
		fmt.Fprintln(os.Stderr)
	}
	return models
}

func doSelect(ctx context.Context, cfg *hmmsel.Config) {

	models := selectModels(ctx, cfg)
	for _, w := range models.Words() {
		m, _ := models.Get(w)
		status := ""
		if _, ok := m.(model.Unfitted); ok {
			status = "\tunfitted"
		}
		fmt.Printf("%s\t%d%s\n", w, m.NumStates(), status)
	}
}

func doRecognize(ctx context.Context, cfg *hmmsel.Config) {

	if len(cfg.TestFile) == 0 {
		hmmsel.Fatal(fmt.Errorf("missing test data file, use --test or test_file in config"))
	}
	models := selectModels(ctx, cfg)
	items := recognizer.ItemsFromSeqs(readSeqsFile(cfg.TestFile))
	probs, guesses, e := recognizer.RecognizeParallel(ctx, models, items, cfg.Workers)
	hmmsel.Fatal(e)

	var w io.Writer = os.Stdout
	if len(cfg.ResultsFile) > 0 {
		f, e := os.Create(cfg.ResultsFile)
		hmmsel.Fatal(e)
		defer f.Close()
		w = f
	} else {
		glog.Infof("no results file specified, writing to stdout")
	}
	hmmsel.Fatal(hmmsel.WriteResults(w, recognizer.Results(items, probs, guesses)))

	refs := make([]string, len(items))
	for i, item := range items {
		refs[i] = item.Ref
	}
	acc, numErrors, e := recognizer.Accuracy(guesses, refs)
	hmmsel.Fatal(e)
	glog.Infof("accuracy: %.4f, errors: %d, items: %d", acc, numErrors, len(items))
	fmt.Fprintf(os.Stderr, "AVG: acc: %.2f%% (%d errors in %d items)\n", 100*acc, numErrors, len(items))
}

// Generates data for random words. Each word has its own HMM with random
// means and between one and --states states.
func doRand() {

	if *randWords < 1 || *randSeqs < 1 || *randLength < 1 || *randDim < 1 || *randStates < 1 {
		hmmsel.Fatal(fmt.Errorf("rand: words, seqs, length, dim and states must be positive"))
	}
	r := rand.New(rand.NewSource(*randSeed))
	var train, test []model.Seq
	for i := 0; i < *randWords; i++ {
		word := fmt.Sprintf("w%03d", i)
		src := randomHMM(word, 1+r.Intn(*randStates), *randDim, r)
		glog.V(1).Infof("word [%s] generated with %d states", word, src.NumStates())
		gen := hmm.NewGenerator(src, r.Int63())
		train = append(train, generateSeqs(gen, word, "train", *randSeqs, r)...)
		test = append(test, generateSeqs(gen, word, "test", *randTestSeqs, r)...)
	}

	writeSeqsFile(*randOut, train)
	if len(*randTestOut) > 0 {
		writeSeqsFile(*randTestOut, test)
	}
}

func randomHMM(word string, n, dim int, r *rand.Rand) *hmm.Model {

	states := make([]*gaussian.Model, n)
	for i := range states {
		mean := make([]float64, dim)
		sd := make([]float64, dim)
		for k := range mean {
			mean[k] = 20*r.Float64() - 10
			sd[k] = 0.5 + r.Float64()
		}
		states[i] = gaussian.NewModel(dim, gaussian.Name(fmt.Sprintf("%s-%d", word, i)),
			gaussian.Mean(mean), gaussian.StdDev(sd))
	}

	// Left-to-right bias with a self loop.
	initProbs := make([]float64, n)
	initProbs[0] = 1
	trans := make([][]float64, n)
	for i := range trans {
		trans[i] = make([]float64, n)
		if i == n-1 {
			trans[i][i] = 1
			continue
		}
		trans[i][i] = 0.7
		trans[i][i+1] = 0.3
	}
	m, e := hmm.NewModel(initProbs, trans, states, hmm.Name(word))
	hmmsel.Fatal(e)
	return m
}

func generateSeqs(gen *hmm.Generator, word, prefix string, num int, r *rand.Rand) []model.Seq {

	seqs := make([]model.Seq, 0, num)
	for j := 0; j < num; j++ {
		length := *randLength/2 + r.Intn(*randLength+1)
		if length < 1 {
			length = 1
		}
		vectors, _, e := gen.Next(length)
		hmmsel.Fatal(e)
		seqs = append(seqs, model.Seq{
			Vectors: vectors,
			Labels:  []string{word},
			ID:      fmt.Sprintf("%s-%s-%d", prefix, word, j),
		})
	}
	return seqs
}

func writeSeqsFile(fn string, seqs []model.Seq) {
	f, e := os.Create(fn)
	hmmsel.Fatal(e)
	defer f.Close()
	hmmsel.Fatal(model.WriteSeqs(f, seqs))
	glog.Infof("wrote %d sequences to %s", len(seqs), fn)
}
