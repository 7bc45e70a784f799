// Copyright (c) 2015 AKUALAB INC., All rights reserved.
//
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	osuser "os/user"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/akualab/hmmsel"
	"github.com/alecthomas/kingpin/v2"
	"github.com/golang/glog"
)

const (
	appName    = "hmmsel"
	appVersion = "0.1"
	timeLayout = time.RFC3339
)

var (
	props  *Properties
	logDir *string
)

var (
	app         = kingpin.New(appName, "Selects the number of HMM states per word and recognizes unknown sequences.")
	logToStderr = app.Flag("log-stderr", "Logs are written to standard error instead of files.").Default("true").Bool()
	vLevel      = app.Flag("log-level", "Enable V-leveled logging at the specified level.").Default("0").Short('v').String()
	configFile  = app.Flag("config", "YAML config file.").Short('c').String()
	quiet       = app.Flag("quiet", "Don't show progress.").Short('q').Bool()

	randCmd      = app.Command("rand", "Generate random word sequences using random HMMs.")
	randSeed     = randCmd.Flag("seed", "Seed for random number generator.").Default("0").Int64()
	randWords    = randCmd.Flag("words", "Number of words.").Default("5").Int()
	randSeqs     = randCmd.Flag("seqs", "Training sequences per word.").Default("10").Int()
	randTestSeqs = randCmd.Flag("test-seqs", "Test sequences per word.").Default("2").Int()
	randLength   = randCmd.Flag("length", "Mean sequence length.").Default("20").Int()
	randDim      = randCmd.Flag("dim", "Frame dimension.").Default("2").Int()
	randStates   = randCmd.Flag("states", "Maximum number of states of the generating HMMs.").Default("4").Int()
	randOut      = randCmd.Flag("out", "Training data output file.").Short('o').Required().String()
	randTestOut  = randCmd.Flag("test-out", "Test data output file.").String()

	selectCmd   = app.Command("select", "Select one model per word and print the number of states.")
	selectFlags = addSelectFlags(selectCmd)

	recognizeCmd   = app.Command("recognize", "Select models and recognize the test sequences.")
	recognizeFlags = addSelectFlags(recognizeCmd)
	testFile       = recognizeCmd.Flag("test", "Test data file.").String()
	resultsFile    = recognizeCmd.Flag("results", "Results file, default is stdout.").Short('r').String()
)

// Properties of hmmsel.
type Properties struct {
	Workspace string `toml:"workspace_dir"`
	LogDir    string `toml:"log_dir"`
}

func init() {
	currDir, e1 := os.Getwd()
	hmmsel.Fatal(e1)
	propPath := currDir
	u, e2 := osuser.Current()
	if e2 == nil {
		propPath = filepath.Join(u.HomeDir, ".config", appName)
	}
	propPath = filepath.Join(propPath, "properties.toml")
	propEnvVar := os.Getenv("HMMSEL_PROPERTIES")
	if len(propEnvVar) > 0 {
		propPath = propEnvVar
	}

	// Read toml properties file from propPath.
	props = new(Properties)
	if _, e3 := toml.DecodeFile(propPath, props); e3 != nil && !errors.Is(e3, os.ErrNotExist) {
		hmmsel.Fatal(e3)
	}
	defaultLogDir := filepath.Join(currDir, "log")
	if len(props.LogDir) > 0 {
		defaultLogDir = props.LogDir
	}
	logDir = app.Flag("log", "Log output dir.").Default(defaultLogDir).String()
}

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	app.Version(appVersion)
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	initGlog()
	defer glog.Flush()
	printAppValues()
	checkDir(props.Workspace)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {

	case randCmd.FullCommand():
		glog.V(3).Info("start rand command")
		doRand()

	case selectCmd.FullCommand():
		glog.V(3).Info("start select command")
		doSelect(ctx, loadConfig(selectFlags))

	case recognizeCmd.FullCommand():
		glog.V(3).Info("start recognize command")
		cfg := loadConfig(recognizeFlags)
		if len(*testFile) > 0 {
			cfg.TestFile = *testFile
		}
		if len(*resultsFile) > 0 {
			cfg.ResultsFile = *resultsFile
		}
		doRecognize(ctx, cfg)

	default:
		app.Usage(os.Args[1:])
	}
}

// Creates dir if it doesn't exist.
func checkDir(path string) {

	if len(path) == 0 {
		return
	}
	e := os.MkdirAll(path, 0755)
	if e != nil {
		glog.Fatal(e)
	}
}

func initGlog() {

	checkDir(*logDir)
	if *logToStderr {
		flag.Set("alsologtostderr", "true")
	}
	flag.Set("v", *vLevel)
	flag.Set("log_dir", *logDir)
}

func printAppValues() {
	glog.Info("app properties: ", *props)
	glog.Info("app version: ", appVersion)
	glog.Info("app start time: ", time.Now().Format(timeLayout))
	glog.Info("app log to std err: ", *logToStderr)
	glog.Info("app log level: ", *vLevel)
	glog.Info("app log dir: ", *logDir)
}
