package findr

import (
	"fmt"

	"github.com/findr-go/findr/internal/conv"
	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/pkg/findr/array"
)

func matrix[T array.Element](name string, a *array.Dense[T]) error {
	if a == nil {
		return fmt.Errorf("%w: %s is nil", errdefs.ErrShape, name)
	}
	if a.Ndim() != 2 {
		return fmt.Errorf("%w: %s has %d dimensions, want 2", errdefs.ErrShape, name, a.Ndim())
	}
	return nil
}

func sameSamples(name string, a *array.Dense[float32], ns int) error {
	if a.Dim(1) != ns {
		return fmt.Errorf("%w: %s has %d samples, want %d", errdefs.ErrShape, name, a.Dim(1), ns)
	}
	return nil
}

func shapeMismatch(name string, got, want []int) error {
	return fmt.Errorf("%w: %s has shape %v, want %v", errdefs.ErrShape, name, got, want)
}

func noNaN(names []string, arrays ...*array.Dense[float32]) error {
	for i, a := range arrays {
		if array.HasNaN(a) {
			return fmt.Errorf("%w: NaN found in %s", errdefs.ErrData, names[i])
		}
	}
	return nil
}

// alleleCount returns the genotype cardinality passed to the native side:
// one more than the largest permitted genotype value.
func alleleCount(dg *array.Dense[uint8], alleles int) (uintptr, error) {
	hi, _ := array.Max(dg)
	nv := int(hi) + 1
	if alleles > 0 {
		if int(hi) > alleles {
			return 0, fmt.Errorf("%w: genotype value %d exceeds allele count %d", errdefs.ErrData, hi, alleles)
		}
		nv = alleles + 1
	}
	if nv < 2 {
		return 0, fmt.Errorf("%w: invalid genotype values, need at least 2 distinct levels", errdefs.ErrData)
	}
	return conv.IntToUintptr(nv)
}

func memoryLimit(opts Options) (uintptr, error) {
	w, err := conv.Int64ToUintptr(opts.MemoryLimit)
	if err != nil {
		return 0, fmt.Errorf("%w: memory limit: %w", errdefs.ErrConfig, err)
	}
	return w, nil
}
