package dataset

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/array"
)

// Codec is the on-disk encoding of a dataset file.
type Codec uint8

const (
	// Raw is a plain little-endian element dump.
	Raw Codec = iota
	// Zstd is a zstd stream of a raw dump.
	Zstd
	// LZ4 is an LZ4 frame of a raw dump.
	LZ4
)

func (c Codec) String() string {
	switch c {
	case Raw:
		return "raw"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Codec(%d)", uint8(c))
	}
}

// CodecFor picks the codec from the file extension: ".zst" and ".lz4" are
// compressed, everything else is raw.
func CodecFor(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return Zstd
	case ".lz4":
		return LZ4
	default:
		return Raw
	}
}

var littleEndian = func() bool {
	x := uint16(1)
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// Matrix is a loaded dataset. Data is read-only; for raw files on unix it
// aliases a shared memory mapping of the file, which Close releases.
type Matrix[T array.Element] struct {
	Data *array.Dense[T]

	unmap func() error
}

// Mapped reports whether Data aliases a file mapping.
func (m *Matrix[T]) Mapped() bool { return m.unmap != nil }

// Close releases the file mapping. Data must not be used afterwards.
func (m *Matrix[T]) Close() error {
	if m == nil || m.unmap == nil {
		return nil
	}
	err := m.unmap()
	m.unmap = nil
	return err
}

// Load reads a rows×cols matrix of T from path.
func Load[T array.Element](path string, rows, cols int) (*Matrix[T], error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dataset shape %dx%d", errdefs.ErrConfig, rows, cols)
	}
	n := rows * cols
	if CodecFor(path) == Raw {
		return loadRaw[T](path, rows, cols)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, closeReader, err := decoder(CodecFor(path), f)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	defer closeReader()

	buf := make([]T, n)
	if err := binary.Read(r, binary.LittleEndian, buf); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %s holds fewer than %d elements", errdefs.ErrShape, path, n)
		}
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	var extra [1]byte
	if k, _ := r.Read(extra[:]); k > 0 {
		return nil, fmt.Errorf("%w: %s holds more than %d elements", errdefs.ErrShape, path, n)
	}
	return finish(buf, rows, cols, nil)
}

func loadRaw[T array.Element](path string, rows, cols int) (*Matrix[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	var zero T
	size := int(unsafe.Sizeof(zero))
	n := rows * cols
	if st.Size() != int64(n*size) {
		return nil, fmt.Errorf("%w: %s is %d bytes, want %d for %dx%d %s", errdefs.ErrShape, path, st.Size(), n*size, rows, cols, array.DtypeOf[T]())
	}
	if n == 0 {
		return finish(make([]T, 0), rows, cols, nil)
	}

	if littleEndian || size == 1 {
		mapped, unmap, err := mapFile(f, n*size)
		if err == nil {
			data := unsafe.Slice((*T)(unsafe.Pointer(&mapped[0])), n)
			return finish(data, rows, cols, func() error { return unmap(mapped) })
		}
		if !errors.Is(err, errNoMmap) {
			return nil, fmt.Errorf("dataset: map %s: %w", path, err)
		}
	}

	buf := make([]T, n)
	if err := binary.Read(bufio.NewReader(f), binary.LittleEndian, buf); err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", path, err)
	}
	return finish(buf, rows, cols, nil)
}

func finish[T array.Element](data []T, rows, cols int, unmap func() error) (*Matrix[T], error) {
	a, err := array.FromSlice(data, rows, cols)
	if err != nil {
		if unmap != nil {
			_ = unmap()
		}
		return nil, err
	}
	return &Matrix[T]{Data: a.ReadOnly(), unmap: unmap}, nil
}

func decoder(c Codec, r io.Reader) (io.Reader, func(), error) {
	switch c {
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return bufio.NewReader(r), func() {}, nil
	}
}

// Save writes a as a raw little-endian dump in row-major order, compressed
// according to the extension of path.
func Save[T array.Element](path string, a *array.Dense[T]) (err error) {
	if a == nil {
		return fmt.Errorf("%w: nil array", errdefs.ErrShape)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	bw := bufio.NewWriter(f)
	var w io.WriteCloser
	switch CodecFor(path) {
	case Zstd:
		enc, err := zstd.NewWriter(bw, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		w = enc
	case LZ4:
		w = lz4.NewWriter(bw)
	default:
		w = nopCloser{bw}
	}

	if err := binary.Write(w, binary.LittleEndian, a.Values()); err != nil {
		return fmt.Errorf("dataset: write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("dataset: finish %s: %w", path, err)
	}
	return bw.Flush()
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
