package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/findr-go/findr/pkg/findr"
	"github.com/findr-go/findr/pkg/findr/array"
	"github.com/findr-go/findr/pkg/findr/dataset"
	"github.com/findr-go/findr/pkg/findr/mocklib"
)

func TestParseFlagsEnvironment(t *testing.T) {
	t.Setenv("FINDR_LIBRARY", "/opt/findr/libfindr.so")
	t.Setenv("FINDR_THREADS", "6")
	t.Setenv("FINDR_LOGLV", "not a number")

	o, err := parseFlags([]string{"-seed", "9", "-op", "greedy"})
	require.NoError(t, err)
	require.Equal(t, "/opt/findr/libfindr.so", o.lib)
	require.Equal(t, 6, o.threads)
	require.Equal(t, 0, o.loglv)
	require.Equal(t, int64(9), o.seed)
	require.Equal(t, "greedy", o.op)
	require.Equal(t, dataset.Geuvadis, o.shape)

	o, err = parseFlags([]string{"-lib", "/flag/libfindr.so", "-genes", "2"})
	require.NoError(t, err)
	require.Equal(t, "/flag/libfindr.so", o.lib)
	require.Equal(t, 2, o.shape.Genes)
}

func writeSet(t *testing.T, shape dataset.Shape) string {
	t.Helper()
	dir := t.TempDir()
	dg := array.New[uint8](shape.Genes, shape.Samples)
	dg.Set(1, 0, 0)
	dt := array.New[float32](shape.Genes, shape.Samples)
	dt2 := array.New[float32](shape.Targets, shape.Samples)
	require.NoError(t, dataset.Save(filepath.Join(dir, dataset.GenotypeFile), dg))
	require.NoError(t, dataset.Save(filepath.Join(dir, dataset.SourceFile), dt))
	require.NoError(t, dataset.Save(filepath.Join(dir, dataset.TargetFile+".zst"), dt2))
	return dir
}

func mockOptions(t *testing.T, mock *mocklib.Library, op string) options {
	shape := dataset.Shape{Genes: 2, Targets: 3, Samples: 4}
	return options{
		lib:    "/mock/libfindr.so",
		data:   writeSet(t, shape),
		op:     op,
		shape:  shape,
		out:    t.TempDir(),
		opener: mocklib.NewOpener().Add("/mock/libfindr.so", mock),
	}
}

func TestRunWritesResults(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 0)
	mock.Register("pijs_gassist_a", mocklib.Const(0.5, 0, []int{3}, []int{4, 5, 6}))
	o := mockOptions(t, mock, "gassist-a")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, run(context.Background(), o, logger))
	for _, name := range []string{"p2b", "p2c", "p3"} {
		m, err := dataset.Load[float32](filepath.Join(o.out, name+".dat"), 2, 3)
		require.NoError(t, err)
		require.Equal(t, float32(0.5), m.Data.At(1, 2))
		require.NoError(t, m.Close())
	}
	require.Equal(t, 1, mock.Calls("pijs_gassist_a"))
}

func TestRunGreedyUsesRankPrior(t *testing.T) {
	mock := mocklib.New("findr", 0, 1, 0)
	mock.Register("pij_rank_a", mocklib.Const(0.9, 0, nil, []int{2}))
	mock.Register("netr_one_greedy", func(args []uintptr) uintptr {
		mocklib.ByteMatrix(args[1]).Set(0, 1, 1)
		return 0
	})
	o := mockOptions(t, mock, "greedy")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	require.NoError(t, run(context.Background(), o, logger))
	m, err := dataset.Load[uint8](filepath.Join(o.out, "net.dat"), 2, 2)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, []uint8{0, 1, 0, 0}, m.Data.Values())
}

func TestRunErrors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mock := mocklib.New("findr", 0, 1, 0)

	o := mockOptions(t, mock, "bogus")
	require.ErrorIs(t, run(context.Background(), o, logger), findr.ErrConfig)

	o.data = ""
	require.ErrorIs(t, run(context.Background(), o, logger), findr.ErrConfig)

	o = mockOptions(t, mocklib.New("findr", 2, 0, 0), "rank-a")
	require.ErrorIs(t, run(context.Background(), o, logger), findr.ErrLibraryNotFound)

	mock.Register("pij_rank_a", func([]uintptr) uintptr { return 1 })
	o = mockOptions(t, mock, "rank-a")
	require.ErrorIs(t, run(context.Background(), o, logger), findr.ErrNativeFailure)
	_, err := dataset.Load[float32](filepath.Join(o.out, "p.dat"), 2, 3)
	require.NoError(t, err)
}
