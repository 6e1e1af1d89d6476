// Package conv provides checked integer conversions used at the native
// boundary, where a silent wrap would corrupt a size or index argument.
package conv

import (
	"errors"
	"fmt"
	"math"
)

// ErrOverflow reports a value that does not fit the target type.
var ErrOverflow = errors.New("integer overflow")

// IntToUintptr converts a non-negative int to uintptr.
func IntToUintptr(v int) (uintptr, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uintptr (negative)", ErrOverflow, v)
	}
	return uintptr(v), nil
}

// IntToUint8 converts int to uint8 safely.
func IntToUint8(v int) (uint8, error) {
	if v < 0 || v > math.MaxUint8 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uint8", ErrOverflow, v)
	}
	return uint8(v), nil
}

// Int64ToUintptr converts a non-negative int64 to uintptr.
func Int64ToUintptr(v int64) (uintptr, error) {
	if v < 0 {
		return 0, fmt.Errorf("%w: %d cannot be converted to uintptr (negative)", ErrOverflow, v)
	}
	if uint64(v) > uint64(^uintptr(0)) {
		return 0, fmt.Errorf("%w: %d cannot be converted to uintptr (too large)", ErrOverflow, v)
	}
	return uintptr(v), nil
}
