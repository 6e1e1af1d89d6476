package dataset

import (
	"context"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/array"
)

func sample(rows, cols int) *array.Dense[float32] {
	a := array.New[float32](rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			a.Set(float32(i)-float32(j)/4, i, j)
		}
	}
	return a
}

func TestCodecFor(t *testing.T) {
	cases := map[string]Codec{
		"dt.dat":        Raw,
		"dt.dat.zst":    Zstd,
		"dt.dat.ZSTD":   Zstd,
		"dt.dat.lz4":    LZ4,
		"/a.b/dt2":      Raw,
		"archive.tar.x": Raw,
	}
	for path, want := range cases {
		if got := CodecFor(path); got != want {
			t.Fatalf("CodecFor(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestRoundTripEveryCodec(t *testing.T) {
	dir := t.TempDir()
	want := sample(7, 5)
	for _, name := range []string{"dt.dat", "dt.dat.zst", "dt.dat.lz4"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, want))

		m, err := Load[float32](path, 7, 5)
		require.NoError(t, err, name)
		require.Equal(t, want.Values(), m.Data.Values(), name)
		require.False(t, m.Data.Writable(), name)
		if CodecFor(path) != Raw {
			require.False(t, m.Mapped(), name)
		}
		require.NoError(t, m.Close())
	}
}

func TestRawFileLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dt.dat")
	raw := make([]byte, 0, 16)
	for _, v := range []float32{1, -2, 0.5, 8} {
		raw = binary.LittleEndian.AppendUint32(raw, math.Float32bits(v))
	}
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	m, err := Load[float32](path, 2, 2)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, float32(0.5), m.Data.At(1, 0))
	if runtime.GOOS != "windows" && runtime.GOOS != "plan9" && runtime.GOOS != "js" {
		require.True(t, m.Mapped())
	}
}

func TestSaveStridedView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub.dat")
	base := sample(6, 4)
	sub, err := base.Slice(1, 1, 3)
	require.NoError(t, err)
	require.NoError(t, Save(path, sub))

	m, err := Load[float32](path, 6, 2)
	require.NoError(t, err)
	defer m.Close()
	require.Equal(t, sub.Values(), m.Data.Values())
}

func TestLoadSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"g.dat", "g.dat.zst", "g.dat.lz4"} {
		path := filepath.Join(dir, name)
		g := array.New[uint8](3, 4)
		require.NoError(t, Save(path, g))

		_, err := Load[uint8](path, 3, 5)
		require.ErrorIs(t, err, errdefs.ErrShape, name)
		_, err = Load[uint8](path, 2, 4)
		require.ErrorIs(t, err, errdefs.ErrShape, name)
	}

	_, err := Load[uint8](filepath.Join(dir, "g.dat"), -1, 4)
	require.ErrorIs(t, err, errdefs.ErrConfig)
	_, err = Load[uint8](filepath.Join(dir, "missing.dat"), 1, 1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadSet(t *testing.T) {
	dir := t.TempDir()
	shape := Shape{Genes: 3, Targets: 5, Samples: 4}

	dg := array.New[uint8](3, 4)
	dg.Set(2, 1, 3)
	require.NoError(t, Save(filepath.Join(dir, GenotypeFile), dg))
	require.NoError(t, Save(filepath.Join(dir, SourceFile+".zst"), sample(3, 4)))
	require.NoError(t, Save(filepath.Join(dir, TargetFile+".lz4"), sample(5, 4)))

	s, err := LoadSet(context.Background(), dir, shape)
	require.NoError(t, err)
	defer s.Close()
	require.Equal(t, uint8(2), s.Genotypes.Data.At(1, 3))
	require.Equal(t, []int{3, 4}, s.Source.Data.Shape())
	require.Equal(t, sample(5, 4).Values(), s.Target.Data.Values())
}

func TestLoadSetWithoutGenotypes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, SourceFile), sample(2, 3)))
	require.NoError(t, Save(filepath.Join(dir, TargetFile), sample(4, 3)))

	s, err := LoadSet(context.Background(), dir, Shape{Genes: 2, Targets: 4, Samples: 3})
	require.NoError(t, err)
	require.Nil(t, s.Genotypes)
	require.NoError(t, s.Close())
}

func TestLoadSetFailure(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Save(filepath.Join(dir, SourceFile), sample(2, 3)))

	_, err := LoadSet(context.Background(), dir, Shape{Genes: 2, Targets: 4, Samples: 3})
	require.ErrorIs(t, err, os.ErrNotExist)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, Save(filepath.Join(dir, TargetFile), sample(4, 3)))
	_, err = LoadSet(ctx, dir, Shape{Genes: 2, Targets: 4, Samples: 3})
	require.ErrorIs(t, err, context.Canceled)
}
