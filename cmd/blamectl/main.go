/*
blamectl runs the backward-responsibility engine against a transition
system and a counterexample over it, and prints a ranked table of
per-player responsibility values. It is a thin driver: parsing,
wiring, and presentation live here; every algorithmic piece lives in
the library packages it imports.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"time"

	"blame/config"
	"blame/game"
	"blame/groups"
	"blame/log"
	"blame/model"
	"blame/progress"
	"blame/record"
	"blame/responsibility"
	"blame/sampler"
	"blame/server/dashboard"
	"blame/solver"
	"blame/weights"
)

var (
	dbg         *bool
	nworkers    *int
	nworkersSet bool
	configPath  *string
	tsPath      *string
	cxPath      *string
	serve       *bool
	addr        *string
	badLabel    *string
	recordPath  *string
)

func init() {
	dbg = flag.Bool("debug", false, "dump the built game and player grouping before solving")
	nworkers = flag.Int("nworkers", runtime.NumCPU(), "number of solver/sampler worker goroutines (overrides the config file's threads setting)")
	configPath = flag.String("config", "./config.yaml", "path to the run config YAML")
	tsPath = flag.String("ts", "", "path to the transition system JSON file")
	cxPath = flag.String("cx", "", "path to the counterexample JSON file")
	serve = flag.Bool("serve", false, "serve a live-progress dashboard while solving")
	addr = flag.String("addr", ":8080", "dashboard listen address")
	badLabel = flag.String("bad-label", "bad", "label identifying the violating states, recorded for reproducibility")
	recordPath = flag.String("record", "", "path to write a reproducibility record for a stochastic run (skipped if empty)")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "nworkers" {
			nworkersSet = true
		}
	})
}

// workerCount resolves solver/sampler concurrency: an explicit
// -nworkers flag always wins, otherwise the config file's threads
// setting does.
func workerCount(cfg *config.RunConfig) int {
	if !nworkersSet && cfg.Threads > 0 {
		return cfg.Threads
	}
	return *nworkers
}

func runApp() error {
	if *dbg {
		log.SetDebug()
	}
	if *tsPath == "" || *cxPath == "" {
		return fmt.Errorf("blamectl: -ts and -cx are required")
	}

	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		return fmt.Errorf("blamectl: loading config: %w", err)
	}

	ts, err := model.LoadTransitionSystem(*tsPath)
	if err != nil {
		return fmt.Errorf("blamectl: loading transition system: %w", err)
	}
	cx, err := model.LoadCounterexample(*cxPath)
	if err != nil {
		return fmt.Errorf("blamectl: loading counterexample: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx, cancel2, err := cfg.WithDeadline(ctx)
	if err != nil {
		return fmt.Errorf("blamectl: %w", err)
	}
	defer cancel2()

	var dash *dashboard.Server
	if *serve {
		dash, err = dashboard.NewServer(ctx, *addr)
		if err != nil {
			return fmt.Errorf("blamectl: starting dashboard: %w", err)
		}
		go func() {
			if err := dash.Serve(); err != nil {
				log.L().Errorw("dashboard exited", "err", err)
			}
		}()
	}

	wt, err := weights.ParseType(cfg.WeightType)
	if err != nil {
		return fmt.Errorf("blamectl: %w", err)
	}

	results, names, err := run(ctx, ts, cx, cfg, wt, dash, workerCount(cfg))
	if err != nil {
		return err
	}

	printRanked(results, names, wt)
	return nil
}

// run builds the game and player grouping per cfg, then dispatches to
// the exact, optimistic, or stochastic engine.
func run(ctx context.Context, ts *model.TransitionSystem, cx model.Counterexample, cfg *config.RunConfig, wt weights.Type, dash *dashboard.Server, workers int) ([]*responsibility.Result, []string, error) {
	optimistic := cfg.ResponsibilityVersion == "Optimistic"

	var g *game.Game
	var err error
	if optimistic {
		g, err = game.BuildOptimistic(ts, cx)
	} else {
		g, err = game.Build(ts, cx)
	}
	if err != nil {
		return nil, nil, err
	}

	sg, err := buildGroups(g, cfg.GroupingMode, optimistic)
	if err != nil {
		return nil, nil, err
	}

	if *dbg {
		game.Dump(g)
	}

	names := groups.Names(sg, ts)
	if dash != nil {
		dash.Attach(sg.Len())
	}

	var results []*responsibility.Result
	switch {
	case optimistic && cfg.Engine.Kind == "Stochastic":
		return nil, nil, fmt.Errorf("blamectl: the randomised sampler only supports pessimistic responsibility; optimistic responsibility gains nothing from sampling over the exact closed form")
	case optimistic:
		results = responsibility.ComputeOptimisticClosedForm(g, sg)
		responsibility.ApplyWeights(results, wt)
		if dash != nil {
			dash.PublishResults("done", results, names)
		}
	case cfg.Engine.Kind == "Stochastic":
		results, err = runStochastic(ctx, g, sg, cfg, wt, dash, names, workers)
	default:
		results, err = runExact(ctx, g, sg, cfg, wt, dash, names, workers)
	}
	if err != nil {
		return nil, nil, err
	}

	if wt == weights.Shapley {
		responsibility.WarnIfShapleyDoesNotSumToOne(results)
	}

	return results, names, nil
}

func buildGroups(g *game.Game, mode string, optimistic bool) (groups.StateGroups, error) {
	switch mode {
	case "GroupedByLabel":
		return groups.NewGrouped(g)
	default:
		if optimistic {
			return groups.NewOnPathStates(g)
		}
		return groups.NewSignificantStates(g)
	}
}

func runExact(ctx context.Context, g *game.Game, sg groups.StateGroups, cfg *config.RunConfig, wt weights.Type, dash *dashboard.Server, names []string, workers int) ([]*responsibility.Result, error) {
	s := solver.New(sg)

	solveReporter := progress.NewReporter("solving coalitions", float64(sg.Len()+1))
	watchCtx, stopWatch := context.WithCancel(ctx)
	if dash != nil {
		dash.WatchProgress(watchCtx, solveReporter, names)
	}
	err := s.Prepare(ctx, g, workers, solveReporter)
	stopWatch()
	if err != nil {
		return nil, err
	}
	s.WarnIfUnsound()

	countReporter := progress.NewReporter("computing responsibility", float64(uint64(1)<<uint(sg.Len())))
	watchCtx, stopWatch = context.WithCancel(ctx)
	if dash != nil {
		dash.WatchProgress(watchCtx, countReporter, names)
	}
	results, err := responsibility.ComputeExactPessimistic(ctx, s, sg, workers, countReporter)
	stopWatch()
	if err != nil {
		return nil, err
	}
	responsibility.ApplyWeights(results, wt)
	if dash != nil {
		dash.PublishResults("done", results, names)
	}
	return results, nil
}

func runStochastic(ctx context.Context, g *game.Game, sg groups.StateGroups, cfg *config.RunConfig, wt weights.Type, dash *dashboard.Server, names []string, workers int) ([]*responsibility.Result, error) {
	seed := time.Now().UnixNano()
	if cfg.Seed != nil {
		seed = *cfg.Seed
	}

	seeds := sampler.DeriveSeeds(seed, workers)
	budgets := sampler.SplitSampleBudget(cfg.Engine.Samples, workers)
	const samplesPerWinning = 8

	reporter := progress.NewReporter("sampling", float64(cfg.Engine.Samples))
	watchCtx, stopWatch := context.WithCancel(ctx)
	if dash != nil {
		dash.WatchProgress(watchCtx, reporter, names)
	}

	type workerResult struct {
		counters *sampler.Counters
		err      error
	}
	resultsCh := make(chan workerResult, workers)
	start := time.Now()
	for i := 0; i < workers; i++ {
		i := i
		go func() {
			rng := rand.New(rand.NewSource(seeds[i]))
			counters, err := sampler.RunWorker(ctx, g, sg, sampler.Budget{Samples: budgets[i]}, samplesPerWinning, rng, reporter)
			resultsCh <- workerResult{counters, err}
		}()
	}

	merged := sampler.NewCounters(sg.Len())
	for i := 0; i < workers; i++ {
		wr := <-resultsCh
		if wr.err != nil {
			stopWatch()
			return nil, wr.err
		}
		merged.Merge(wr.counters)
	}
	stopWatch()
	elapsed := time.Since(start)

	results := sampler.Estimate(merged, wt, samplesPerWinning)
	if dash != nil {
		dash.PublishResults("done", results, names)
	}

	if *recordPath != "" {
		if err := writeRecord(seed, elapsed, merged, cfg); err != nil {
			log.L().Warnw("blamectl: writing reproducibility record", "path", *recordPath, "err", err)
		}
	}

	return results, nil
}

// writeRecord emits the single-benchmark reproducibility record for
// this run: the seed plus the sample count reached by the time the
// run finished, in the same line format a benchmarking session would
// emit for many runs at many durations.
func writeRecord(seed int64, elapsed time.Duration, merged *sampler.Counters, cfg *config.RunConfig) error {
	f, err := os.Create(*recordPath)
	if err != nil {
		return err
	}
	defer f.Close()

	rec := &record.Record{
		SampleCount: 1,
		Grouped:     cfg.GroupingMode == "GroupedByLabel",
		Durations:   []time.Duration{elapsed},
		Benchmarks: []record.Benchmark{{
			File:          *tsPath,
			BadLabel:      *badLabel,
			DisplayString: *cxPath,
			Seed:          uint64(seed),
			SampleCounts:  []int{int(merged.TotalSamples)},
		}},
	}
	return record.Write(f, rec)
}

func printRanked(results []*responsibility.Result, names []string, wt weights.Type) {
	type row struct {
		name  string
		value float64
	}
	rows := make([]row, len(results))
	for i, r := range results {
		f, _ := r.TotalValue.Float64()
		rows[i] = row{names[i], f}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].value > rows[j].value })

	fmt.Printf("responsibility (%s):\n", wt)
	for _, r := range rows {
		fmt.Printf("  %-24s %.6f\n", r.name, r.value)
	}
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
