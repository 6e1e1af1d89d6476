package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// File names of a dataset directory.
const (
	GenotypeFile = "dg.dat"
	SourceFile   = "dt.dat"
	TargetFile   = "dt2.dat"
)

// Shape gives the dimensions of a dataset directory: Genes rows of genotype
// and source expression, Targets rows of target expression, all over the
// same Samples.
type Shape struct {
	Genes   int
	Targets int
	Samples int
}

// Geuvadis is the shape of the Geuvadis subset distributed with findr.
var Geuvadis = Shape{Genes: 10, Targets: 3000, Samples: 360}

// Set is a loaded dataset directory. Genotypes is nil when the directory has
// no genotype file.
type Set struct {
	Genotypes *Matrix[uint8]
	Source    *Matrix[float32]
	Target    *Matrix[float32]
}

// Close releases every mapping held by the set.
func (s *Set) Close() error {
	if s == nil {
		return nil
	}
	return errors.Join(s.Genotypes.Close(), s.Source.Close(), s.Target.Close())
}

// LoadSet loads the files of dir concurrently. Each file may carry a ".zst"
// or ".lz4" suffix; the first existing variant is used.
func LoadSet(ctx context.Context, dir string, shape Shape) (*Set, error) {
	s := &Set{}
	g, gctx := errgroup.WithContext(ctx)
	load := func(fn func() error) {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn()
		})
	}

	if p, ok := find(dir, GenotypeFile); ok {
		load(func() (err error) {
			s.Genotypes, err = Load[uint8](p, shape.Genes, shape.Samples)
			return err
		})
	}
	load(func() (err error) {
		p, _ := find(dir, SourceFile)
		s.Source, err = Load[float32](p, shape.Genes, shape.Samples)
		return err
	})
	load(func() (err error) {
		p, _ := find(dir, TargetFile)
		s.Target, err = Load[float32](p, shape.Targets, shape.Samples)
		return err
	})

	err := g.Wait()
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// find returns the first existing variant of name in dir, or the raw path.
func find(dir, name string) (string, bool) {
	for _, ext := range []string{"", ".zst", ".lz4"} {
		p := filepath.Join(dir, name+ext)
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return filepath.Join(dir, name), false
}
