// Package loader locates the native findr library, checks that it is the
// build this binding expects, and initializes it once.
package loader

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/internal/conv"
	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/dl"
	"github.com/findr-go/findr/pkg/findr/logging"
)

const (
	// PackageName is the name the native library must report.
	PackageName = "findr"

	// MaxLogLevel is the most verbose native log level.
	MaxLogLevel = 12
)

// ExpectedVersion is the native version this binding was written against.
// Only major and minor must match.
var ExpectedVersion = bindings.Version{Major: 0, Minor: 1, Patch: 0}

// Options configures one Load.
type Options struct {
	// Path is tried before every other candidate when set.
	Path string
	// SearchPaths replaces DefaultSearchPaths when non-nil.
	SearchPaths []string

	LogLevel int
	Seed     int64
	Threads  int

	Opener dl.Opener
	Logger logging.Logger
}

// Validate checks the parameters forwarded to lib_init.
func (o Options) Validate() error {
	if o.LogLevel < 0 || o.LogLevel > MaxLogLevel {
		return fmt.Errorf("%w: log level %d outside [0,%d]", errdefs.ErrConfig, o.LogLevel, MaxLogLevel)
	}
	if o.Seed < 0 {
		return fmt.Errorf("%w: negative random seed %d", errdefs.ErrConfig, o.Seed)
	}
	if o.Threads < 0 {
		return fmt.Errorf("%w: negative thread count %d", errdefs.ErrConfig, o.Threads)
	}
	return nil
}

func libraryFile(goos string) string {
	switch goos {
	case "darwin":
		return "libfindr.dylib"
	case "windows":
		return "findr.dll"
	default:
		return "libfindr.so"
	}
}

// DefaultSearchPaths returns the candidate files tried when no override
// matches, most specific first.
func DefaultSearchPaths() []string { return searchPaths(runtime.GOOS, runtime.GOARCH) }

var multiarch = map[string]string{
	"amd64":   "x86_64-linux-gnu",
	"arm64":   "aarch64-linux-gnu",
	"386":     "i386-linux-gnu",
	"ppc64le": "powerpc64le-linux-gnu",
	"s390x":   "s390x-linux-gnu",
}

func searchPaths(goos, goarch string) []string {
	dirs := []string{"/usr/local/lib", "/usr/lib", "/usr/lib64", "/lib"}
	switch goos {
	case "darwin":
		dirs = append([]string{"/opt/homebrew/lib"}, dirs...)
	case "linux":
		if triple, ok := multiarch[goarch]; ok {
			dirs = append([]string{filepath.Join("/usr/lib", triple)}, dirs...)
		}
	}
	file := libraryFile(goos)
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Join(d, file)
	}
	return out
}

// Candidates returns the ordered list Load will try.
func (o Options) Candidates() []string {
	base := o.SearchPaths
	if base == nil {
		base = DefaultSearchPaths()
	}
	if o.Path == "" {
		return append([]string(nil), base...)
	}
	return append([]string{o.Path}, base...)
}

// Attempt records why one candidate was not used.
type Attempt struct {
	Path    string
	Name    string
	Version string
	Err     error
}

// NotFoundError reports that every candidate was exhausted.
type NotFoundError struct {
	Package  string
	Version  bindings.Version
	Attempts []Attempt
}

func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: no usable %s %d.%d.x among %d candidates", errdefs.ErrLibraryNotFound, e.Package, e.Version.Major, e.Version.Minor, len(e.Attempts))
	for _, a := range e.Attempts {
		fmt.Fprintf(&b, "\n  %s: %v", a.Path, a.Err)
	}
	return b.String()
}

func (e *NotFoundError) Unwrap() error { return errdefs.ErrLibraryNotFound }

var (
	errNameMismatch    = errors.New("package name mismatch")
	errVersionMismatch = errors.New("version mismatch")
)

// Load searches the candidates in order and returns the first library whose
// name and major.minor version match, after calling its lib_init.
func Load(ctx context.Context, opts Options) (*bindings.Library, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opener := opts.Opener
	if opener == nil {
		opener = dl.System()
	}
	log := opts.Logger
	if log == nil {
		log = logging.New(nil)
	}

	nf := &NotFoundError{Package: PackageName, Version: ExpectedVersion}
	for _, path := range opts.Candidates() {
		img, err := opener.Open(path)
		if err != nil {
			log.Debug(ctx, "skipped native library candidate", logging.Path(path), "error", err)
			nf.Attempts = append(nf.Attempts, Attempt{Path: path, Err: err})
			continue
		}

		name, ver, display, err := identify(img)
		if err == nil {
			err = checkIdentity(name, ver)
		}
		if err != nil {
			log.Warn(ctx, "rejected native library", logging.Path(path),
				"name", name, "version", display, "want", fmt.Sprintf("%s %s", PackageName, ExpectedVersion), "error", err)
			nf.Attempts = append(nf.Attempts, Attempt{Path: path, Name: name, Version: display, Err: err})
			release(ctx, log, img)
			continue
		}
		if ver.Patch != ExpectedVersion.Patch {
			log.Info(ctx, "native library patch version differs", logging.Path(path),
				"version", ver.String(), "want", ExpectedVersion.String())
		}

		if err := initialize(img, opts); err != nil {
			release(ctx, log, img)
			return nil, err
		}
		log.Info(ctx, "loaded native library", logging.Path(path), "name", name, "version", ver.String())
		return bindings.NewLibrary(img, name, ver), nil
	}
	return nil, nf
}

// release closes an image that will not be used.
func release(ctx context.Context, log logging.Logger, img dl.Image) {
	if err := img.Close(); err != nil {
		log.Warn(ctx, "closing native library failed", logging.Path(img.Path()), "error", err)
	}
}

func checkIdentity(name string, v bindings.Version) error {
	if name != PackageName {
		return fmt.Errorf("%w: got %q, want %q", errNameMismatch, name, PackageName)
	}
	if v.Major != ExpectedVersion.Major || v.Minor != ExpectedVersion.Minor {
		return fmt.Errorf("%w: got %s, want %d.%d.x", errVersionMismatch, v, ExpectedVersion.Major, ExpectedVersion.Minor)
	}
	return nil
}

// identify reads the self-reported name and version. The integer accessors
// are preferred; builds without them are identified by parsing lib_version.
func identify(img dl.Image) (name string, v bindings.Version, display string, err error) {
	if name, err = callString(img, "lib_name"); err != nil {
		return "", v, "", err
	}
	if display, err = callString(img, "lib_version"); err != nil {
		return name, v, "", err
	}
	parts := [3]*int{&v.Major, &v.Minor, &v.Patch}
	for i, sym := range []string{"lib_version_major", "lib_version_minor", "lib_version_patch"} {
		n, err := callInt(img, sym)
		if errors.Is(err, errdefs.ErrSymbol) {
			v, err = ParseVersion(display)
			return name, v, display, err
		}
		if err != nil {
			return name, v, display, err
		}
		*parts[i] = n
	}
	return name, v, display, nil
}

func callString(img dl.Image, sym string) (string, error) {
	b, err := bindings.BindImage(img, sym, bindings.CharP)
	if err != nil {
		return "", err
	}
	r, err := b.Invoke()
	if err != nil {
		return "", err
	}
	return r.(string), nil
}

func callInt(img dl.Image, sym string) (int, error) {
	b, err := bindings.BindImage(img, sym, bindings.Int)
	if err != nil {
		return 0, err
	}
	r, err := b.Invoke()
	if err != nil {
		return 0, err
	}
	return int(r.(int32)), nil
}

func initialize(img dl.Image, opts Options) error {
	b, err := bindings.BindImage(img, "lib_init", bindings.Void, bindings.Byte, bindings.SizeT, bindings.SizeT)
	if err != nil {
		return err
	}
	lv, err := conv.IntToUint8(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: log level: %w", errdefs.ErrConfig, err)
	}
	seed, err := conv.Int64ToUintptr(opts.Seed)
	if err != nil {
		return fmt.Errorf("%w: seed: %w", errdefs.ErrConfig, err)
	}
	threads, err := conv.IntToUintptr(opts.Threads)
	if err != nil {
		return fmt.Errorf("%w: threads: %w", errdefs.ErrConfig, err)
	}
	_, err = b.Invoke(lv, seed, threads)
	return err
}

// ParseVersion parses a "major.minor.patch" display string.
func ParseVersion(s string) (bindings.Version, error) {
	var v bindings.Version
	fields := strings.Split(strings.TrimSpace(s), ".")
	if len(fields) != 3 {
		return v, fmt.Errorf("%w: cannot parse %q", errVersionMismatch, s)
	}
	parts := [3]*int{&v.Major, &v.Minor, &v.Patch}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil || n < 0 {
			return bindings.Version{}, fmt.Errorf("%w: cannot parse %q", errVersionMismatch, s)
		}
		*parts[i] = n
	}
	return v, nil
}
