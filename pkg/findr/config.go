package findr

import (
	"fmt"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/internal/loader"
	"github.com/findr-go/findr/pkg/findr/dl"
	"github.com/findr-go/findr/pkg/findr/logging"
)

// MaxLogLevel is the most verbose native log level accepted by Config.
const MaxLogLevel = loader.MaxLogLevel

// Config selects and initializes the native library. The zero value searches
// the default locations and leaves every native setting at its default.
type Config struct {
	// LibraryPath is tried before the search paths. Leave it empty to rely
	// on the search list alone.
	LibraryPath string

	// SearchPaths replaces DefaultSearchPaths when non-empty.
	SearchPaths []string

	// LogLevel is the native library's verbosity, 0 to MaxLogLevel. Zero
	// keeps the native default.
	LogLevel int

	// Seed initializes the native random generator. Zero seeds from the
	// current time.
	Seed int64

	// Threads bounds native parallelism. Zero lets the library decide.
	Threads int

	// Opener loads shared objects. Nil uses the platform loader.
	Opener dl.Opener

	// Logger receives search and call diagnostics. Nil uses slog.Default().
	Logger logging.Logger
}

func (c Config) toLoader() loader.Options {
	o := loader.Options{
		Path:     c.LibraryPath,
		LogLevel: c.LogLevel,
		Seed:     c.Seed,
		Threads:  c.Threads,
		Opener:   c.Opener,
		Logger:   c.Logger,
	}
	if len(c.SearchPaths) > 0 {
		o.SearchPaths = c.SearchPaths
	}
	return o
}

// DefaultSearchPaths returns the locations searched when Config.SearchPaths
// is empty.
func DefaultSearchPaths() []string { return loader.DefaultSearchPaths() }

// Options tunes one pairwise operation.
type Options struct {
	// NoDiag skips the comparison of gene i with target i. Set it when the
	// first rows of the target matrix are the source matrix itself.
	NoDiag bool

	// Alleles is the number of alleles per genotype. Genotype values must
	// lie in [0, Alleles]. Zero derives the count from the data.
	Alleles int

	// MemoryLimit is forwarded to operations that accept one, in bytes.
	// Zero keeps the native default.
	MemoryLimit int64
}

func (o Options) validate() error {
	if o.Alleles < 0 {
		return fmt.Errorf("%w: negative allele count %d", errdefs.ErrConfig, o.Alleles)
	}
	if o.MemoryLimit < 0 {
		return fmt.Errorf("%w: negative memory limit %d", errdefs.ErrConfig, o.MemoryLimit)
	}
	return nil
}

// GreedyLimits bounds the network built by OneGreedy. Zero means unlimited.
type GreedyLimits struct {
	MaxEdges int
	MaxIn    int
	MaxOut   int
}

func (g GreedyLimits) words() ([3]uintptr, error) {
	var out [3]uintptr
	for i, v := range [3]int{g.MaxEdges, g.MaxIn, g.MaxOut} {
		switch {
		case v < 0:
			return out, fmt.Errorf("%w: greedy limit %d must be positive", errdefs.ErrConfig, v)
		case v == 0:
			out[i] = ^uintptr(0)
		default:
			out[i] = uintptr(v)
		}
	}
	return out, nil
}
