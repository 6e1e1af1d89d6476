// Package errdefs holds the sentinel errors shared by every layer of the
// binding. Public callers see the same values re-exported from pkg/findr, so
// errors.Is works regardless of which layer produced the error.
package errdefs

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig reports invalid loader or operation parameters.
	ErrConfig = errors.New("findr: invalid configuration")

	// ErrShape reports a dimensionality or cross-array shape mismatch.
	ErrShape = errors.New("findr: wrong input shape")

	// ErrDtype reports an element representation mismatch.
	ErrDtype = errors.New("findr: wrong input dtype")

	// ErrReadOnly reports a read-only array passed where the native side
	// needs to write.
	ErrReadOnly = fmt.Errorf("%w: array is read-only", ErrDtype)

	// ErrData reports invalid values, such as NaN, in an input array.
	ErrData = errors.New("findr: invalid input data")

	// ErrLibraryNotFound reports that no candidate library was accepted.
	ErrLibraryNotFound = errors.New("findr: library not found")

	// ErrSymbol reports a symbol missing from an accepted library.
	ErrSymbol = errors.New("findr: symbol not found")

	// ErrNotInitialized reports an operation on a missing library handle.
	ErrNotInitialized = errors.New("findr: not initialized")

	// ErrNativeFailure reports a non-success status from a native call.
	ErrNativeFailure = errors.New("findr: native call failed")

	// ErrNotSupported reports a conversion that is deliberately unimplemented.
	ErrNotSupported = errors.New("findr: not supported")

	// ErrUnsupportedPlatform reports that no dynamic loader exists for this GOOS.
	ErrUnsupportedPlatform = errors.New("findr: dynamic loading unsupported on this platform")
)
