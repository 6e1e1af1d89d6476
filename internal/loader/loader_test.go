package loader

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/logging"
	"github.com/findr-go/findr/pkg/findr/mocklib"
)

type record struct {
	level string
	msg   string
}

type recorder struct {
	mu      sync.Mutex
	records []record
}

func (r *recorder) add(level, msg string) {
	r.mu.Lock()
	r.records = append(r.records, record{level, msg})
	r.mu.Unlock()
}

func (r *recorder) Debug(_ context.Context, msg string, _ ...any) { r.add("debug", msg) }
func (r *recorder) Info(_ context.Context, msg string, _ ...any)  { r.add("info", msg) }
func (r *recorder) Warn(_ context.Context, msg string, _ ...any)  { r.add("warn", msg) }
func (r *recorder) Error(_ context.Context, msg string, _ ...any) { r.add("error", msg) }
func (r *recorder) With(...any) logging.Logger                    { return r }

func (r *recorder) count(level string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.level == level {
			n++
		}
	}
	return n
}

func TestSearchPaths(t *testing.T) {
	linux := searchPaths("linux", "amd64")
	require.Equal(t, []string{
		"/usr/lib/x86_64-linux-gnu/libfindr.so",
		"/usr/local/lib/libfindr.so",
		"/usr/lib/libfindr.so",
		"/usr/lib64/libfindr.so",
		"/lib/libfindr.so",
	}, linux)

	darwin := searchPaths("darwin", "arm64")
	require.Equal(t, "/opt/homebrew/lib/libfindr.dylib", darwin[0])
	require.Len(t, darwin, 5)

	require.Equal(t, "/usr/local/lib/libfindr.so", searchPaths("freebsd", "amd64")[0])
}

func TestCandidatesOverrideFirst(t *testing.T) {
	o := Options{Path: "/opt/findr/libfindr.so", SearchPaths: []string{"/a", "/b"}}
	require.Equal(t, []string{"/opt/findr/libfindr.so", "/a", "/b"}, o.Candidates())

	o.Path = ""
	c := o.Candidates()
	c[0] = "changed"
	require.Equal(t, "/a", o.SearchPaths[0])
}

func TestLoadSkipsMismatchesAndAcceptsFirstMatch(t *testing.T) {
	first := mocklib.New("findr", 1, 1, 0)
	second := mocklib.New("findr", 0, 2, 0)
	third := mocklib.New("findr", 0, 1, 0)
	opener := mocklib.NewOpener().
		Add("/p1/libfindr.so", first).
		Add("/p2/libfindr.so", second).
		Add("/p3/libfindr.so", third)
	rec := &recorder{}

	lib, err := Load(context.Background(), Options{
		SearchPaths: []string{"/missing/libfindr.so", "/p1/libfindr.so", "/p2/libfindr.so", "/p3/libfindr.so"},
		LogLevel:    6,
		Seed:        42,
		Threads:     4,
		Opener:      opener,
		Logger:      rec,
	})
	require.NoError(t, err)
	require.Equal(t, "/p3/libfindr.so", lib.Path())
	require.Equal(t, bindings.Version{Major: 0, Minor: 1, Patch: 0}, lib.Version())
	require.Equal(t, "findr", lib.Name())

	assert.Equal(t, 2, rec.count("warn"))
	assert.Equal(t, 1, rec.count("debug"))
	assert.Empty(t, first.Inits())
	assert.Empty(t, second.Inits())
	require.Equal(t, []mocklib.Init{{LogLevel: 6, Seed: 42, Threads: 4}}, third.Inits())
	assert.Equal(t, []string{"/p1/libfindr.so", "/p2/libfindr.so"}, opener.Closed())
}

func TestLoadAcceptsPatchMismatch(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 7)
	rec := &recorder{}
	lib, err := Load(context.Background(), Options{
		SearchPaths: []string{"/lib/libfindr.so"},
		Opener:      mocklib.NewOpener().Add("/lib/libfindr.so", mock),
		Logger:      rec,
	})
	require.NoError(t, err)
	require.Equal(t, 7, lib.Version().Patch)
	require.Equal(t, 2, rec.count("info"))
	require.Zero(t, rec.count("warn"))
	require.Len(t, mock.Inits(), 1)
}

func TestLoadNothingFound(t *testing.T) {
	wrongName := mocklib.New("notfindr", 0, 1, 0)
	old := mocklib.New("findr", 0, 0, 9)
	_, err := Load(context.Background(), Options{
		Path:        "/override/libfindr.so",
		SearchPaths: []string{"/a/libfindr.so", "/b/libfindr.so"},
		Opener:      mocklib.NewOpener().Add("/a/libfindr.so", wrongName).Add("/b/libfindr.so", old),
		Logger:      logging.Discard(),
	})
	require.ErrorIs(t, err, errdefs.ErrLibraryNotFound)

	var nf *NotFoundError
	require.True(t, errors.As(err, &nf))
	require.Len(t, nf.Attempts, 3)
	require.Equal(t, "/override/libfindr.so", nf.Attempts[0].Path)
	require.Equal(t, "notfindr", nf.Attempts[1].Name)
	require.ErrorIs(t, nf.Attempts[1].Err, errNameMismatch)
	require.Equal(t, "0.0.9", nf.Attempts[2].Version)
	require.ErrorIs(t, nf.Attempts[2].Err, errVersionMismatch)
	require.Contains(t, err.Error(), "/b/libfindr.so")

	require.Empty(t, wrongName.Inits())
	require.Empty(t, old.Inits())
}

func TestLoadFallsBackToDisplayVersion(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 3)
	mock.Remove("lib_version_major").Remove("lib_version_minor").Remove("lib_version_patch")
	lib, err := Load(context.Background(), Options{
		SearchPaths: []string{"/lib/libfindr.so"},
		Opener:      mocklib.NewOpener().Add("/lib/libfindr.so", mock),
		Logger:      logging.Discard(),
	})
	require.NoError(t, err)
	require.Equal(t, bindings.Version{Major: 0, Minor: 1, Patch: 3}, lib.Version())
}

func TestLoadRejectsImageWithoutDiscoverySymbols(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 0).Remove("lib_name")
	_, err := Load(context.Background(), Options{
		SearchPaths: []string{"/lib/libfindr.so"},
		Opener:      mocklib.NewOpener().Add("/lib/libfindr.so", mock),
		Logger:      logging.Discard(),
	})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.ErrorIs(t, nf.Attempts[0].Err, errdefs.ErrSymbol)
}

func TestLoadClosesImageWhenInitIsMissing(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 0).Remove("lib_init")
	opener := mocklib.NewOpener().Add("/lib/libfindr.so", mock)
	_, err := Load(context.Background(), Options{
		SearchPaths: []string{"/lib/libfindr.so"},
		Opener:      opener,
		Logger:      logging.Discard(),
	})
	require.ErrorIs(t, err, errdefs.ErrSymbol)
	require.Equal(t, []string{"/lib/libfindr.so"}, opener.Closed())
}

func TestLoadValidatesOptions(t *testing.T) {
	opener := mocklib.NewOpener()
	for _, o := range []Options{
		{LogLevel: -1},
		{LogLevel: MaxLogLevel + 1},
		{Seed: -1},
		{Threads: -2},
	} {
		o.Opener = opener
		_, err := Load(context.Background(), o)
		require.ErrorIs(t, err, errdefs.ErrConfig)
	}
	require.Empty(t, opener.Opened())
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion(" 1.22.3\n")
	require.NoError(t, err)
	require.Equal(t, bindings.Version{Major: 1, Minor: 22, Patch: 3}, v)

	for _, bad := range []string{"", "1.2", "1.2.x", "1.-2.3", "1.2.3.4"} {
		_, err := ParseVersion(bad)
		require.Error(t, err, bad)
	}
}
