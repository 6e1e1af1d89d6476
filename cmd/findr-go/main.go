package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"

	"github.com/findr-go/findr/pkg/findr"
	"github.com/findr-go/findr/pkg/findr/array"
	"github.com/findr-go/findr/pkg/findr/dataset"
	"github.com/findr-go/findr/pkg/findr/dl"
	"github.com/findr-go/findr/pkg/findr/logging"
)

type options struct {
	lib      string
	loglv    int
	seed     int64
	threads  int
	data     string
	op       string
	nodiag   bool
	alleles  int
	memlimit int64
	out      string
	shape    dataset.Shape
	maxEdges int
	verbose  bool
	version  bool

	opener dl.Opener
}

func envInt(name string, def int) int {
	if v, err := strconv.Atoi(os.Getenv(name)); err == nil {
		return v
	}
	return def
}

func envString(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("findr-go", flag.ContinueOnError)
	fs.StringVar(&o.lib, "lib", envString("FINDR_LIBRARY", ""), "path to the native library, tried before the search paths ($FINDR_LIBRARY)")
	fs.IntVar(&o.loglv, "loglv", envInt("FINDR_LOGLV", 0), "native log level 0-12, 0 for the library default ($FINDR_LOGLV)")
	fs.Int64Var(&o.seed, "seed", int64(envInt("FINDR_SEED", 0)), "native random seed, 0 for time-based ($FINDR_SEED)")
	fs.IntVar(&o.threads, "threads", envInt("FINDR_THREADS", 0), "native thread limit, 0 for automatic ($FINDR_THREADS)")
	fs.StringVar(&o.data, "data", "", "dataset directory holding dg.dat, dt.dat and dt2.dat")
	fs.StringVar(&o.op, "op", "rank-a", "operation: rank, rank-a, gassist, gassist-a, gassist-tot, greedy")
	fs.BoolVar(&o.nodiag, "nodiag", false, "skip self comparisons; dt2 must start with the rows of dt")
	fs.IntVar(&o.alleles, "alleles", 0, "alleles per genotype, 0 to derive from the data")
	fs.Int64Var(&o.memlimit, "memlimit", 0, "native memory limit in bytes for rank and gassist, 0 for default")
	fs.StringVar(&o.out, "out", "", "directory for result files; empty prints a summary only")
	fs.IntVar(&o.shape.Genes, "genes", dataset.Geuvadis.Genes, "rows of dg.dat and dt.dat")
	fs.IntVar(&o.shape.Targets, "targets", dataset.Geuvadis.Targets, "rows of dt2.dat")
	fs.IntVar(&o.shape.Samples, "samples", dataset.Geuvadis.Samples, "columns of every dataset file")
	fs.IntVar(&o.maxEdges, "max-edges", 0, "edge limit for greedy, 0 for unlimited")
	fs.BoolVar(&o.verbose, "v", false, "log search and call details")
	fs.BoolVar(&o.version, "version", false, "print versions and exit")
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if o.version {
		fmt.Printf("findr-go %s (native %s %s)\n", findr.WrapperVersion(), findr.Upstream, findr.ExpectedLibraryVersion())
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		if errors.Is(err, findr.ErrLibraryNotFound) || errors.Is(err, findr.ErrUnsupportedPlatform) {
			logger.Error("native library unavailable", "error", err)
			os.Exit(3)
		}
		logger.Error("findr-go failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, o options, logger *slog.Logger) error {
	if o.data == "" {
		return fmt.Errorf("%w: -data is required", findr.ErrConfig)
	}

	lib, err := findr.Open(ctx, findr.Config{
		LibraryPath: o.lib,
		LogLevel:    o.loglv,
		Seed:        o.seed,
		Threads:     o.threads,
		Opener:      o.opener,
		Logger:      logging.New(logger),
	})
	if err != nil {
		return err
	}
	logger.Info("native library ready", "path", lib.Path(), "version", lib.LibraryVersion())

	set, err := dataset.LoadSet(ctx, o.data, o.shape)
	if err != nil {
		return err
	}
	defer set.Close()

	opts := findr.Options{NoDiag: o.nodiag, Alleles: o.alleles, MemoryLimit: o.memlimit}
	outputs, status, err := dispatch(ctx, lib, set, o, opts)
	if err != nil {
		var se *findr.StatusError
		if !errors.As(err, &se) || outputs == nil {
			return err
		}
		logger.Warn("operation reported failure; writing partial results", "status", se.Code)
	}
	logger.Info("operation finished", "op", o.op, "status", status)

	if o.out == "" {
		for name, a := range outputs {
			fmt.Printf("%s\t%v\n", name, a.Shape())
		}
		return err
	}
	if mkErr := os.MkdirAll(o.out, 0o755); mkErr != nil {
		return mkErr
	}
	for name, a := range outputs {
		if wErr := writeOutput(filepath.Join(o.out, name+".dat"), a); wErr != nil {
			return wErr
		}
	}
	return err
}

func dispatch(ctx context.Context, lib *findr.Library, set *dataset.Set, o options, opts findr.Options) (map[string]array.Array, int64, error) {
	dt, dt2 := set.Source.Data, set.Target.Data
	needGenotypes := func() (*array.Dense[uint8], error) {
		if set.Genotypes == nil {
			return nil, fmt.Errorf("%w: %s needs %s", findr.ErrConfig, o.op, dataset.GenotypeFile)
		}
		return set.Genotypes.Data, nil
	}

	switch o.op {
	case "rank", "rank-a":
		rank := lib.RankA
		if o.op == "rank" {
			rank = lib.Rank
		}
		r, err := rank(ctx, dt, dt2, opts)
		if r == nil {
			return nil, 0, err
		}
		return map[string]array.Array{"p": r.P}, r.Status, err

	case "gassist-a", "gassist-tot":
		dg, err := needGenotypes()
		if err != nil {
			return nil, 0, err
		}
		gassist := lib.GassistA
		if o.op == "gassist-tot" {
			gassist = lib.GassistTot
		}
		r, err := gassist(ctx, dg, dt, dt2, opts)
		if r == nil {
			return nil, 0, err
		}
		return map[string]array.Array{"p1": r.P1, "p2b": r.P2b, "p2c": r.P2c, "p3": r.P3}, r.Status, err

	case "gassist":
		dg, err := needGenotypes()
		if err != nil {
			return nil, 0, err
		}
		r, err := lib.Gassist(ctx, dg, dt, dt2, opts)
		if r == nil {
			return nil, 0, err
		}
		return map[string]array.Array{"p1": r.P1, "p2": r.P2, "p3": r.P3, "p4": r.P4, "p5": r.P5}, r.Status, err

	case "greedy":
		prior, err := greedyPrior(ctx, lib, dt, dt2, opts)
		if err != nil {
			return nil, 0, err
		}
		r, err := lib.OneGreedy(ctx, prior, findr.GreedyLimits{MaxEdges: o.maxEdges})
		if r == nil {
			return nil, 0, err
		}
		return map[string]array.Array{"net": r.Net.Matrix()}, r.Status, err
	}
	return nil, 0, fmt.Errorf("%w: unknown operation %q", findr.ErrConfig, o.op)
}

// greedyPrior scores the edges among the source genes with RankA over the
// leading square block of dt2, which must hold the same genes as dt.
func greedyPrior(ctx context.Context, lib *findr.Library, dt, dt2 *array.Dense[float32], opts findr.Options) (*array.Dense[float32], error) {
	head, err := dt2.Slice(0, 0, dt.Dim(0))
	if err != nil {
		return nil, err
	}
	opts.NoDiag = true
	r, err := lib.RankA(ctx, dt, head, opts)
	if err != nil {
		return nil, err
	}
	return r.P, nil
}

func writeOutput(path string, a array.Array) error {
	switch v := a.(type) {
	case *array.Dense[float32]:
		return dataset.Save(path, v)
	case *array.Dense[uint8]:
		return dataset.Save(path, v)
	}
	return fmt.Errorf("%w: cannot write %T", findr.ErrDtype, a)
}
