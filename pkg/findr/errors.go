package findr

import (
	"fmt"

	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/internal/loader"
)

// Errors returned by the binding. Match them with errors.Is; every error this
// package returns wraps exactly one of them.
var (
	ErrConfig              = errdefs.ErrConfig
	ErrShape               = errdefs.ErrShape
	ErrDtype               = errdefs.ErrDtype
	ErrReadOnly            = errdefs.ErrReadOnly
	ErrData                = errdefs.ErrData
	ErrLibraryNotFound     = errdefs.ErrLibraryNotFound
	ErrSymbol              = errdefs.ErrSymbol
	ErrNotInitialized      = errdefs.ErrNotInitialized
	ErrNativeFailure       = errdefs.ErrNativeFailure
	ErrNotSupported        = errdefs.ErrNotSupported
	ErrUnsupportedPlatform = errdefs.ErrUnsupportedPlatform
)

// NotFoundError is returned by Open when no candidate library was accepted.
// Attempts lists every path tried and why it was passed over.
type NotFoundError = loader.NotFoundError

// Attempt is one entry of NotFoundError.Attempts.
type Attempt = loader.Attempt

// StatusError reports a non-zero status from a native operation. The
// operation's result is returned alongside it with whatever the native side
// wrote before failing.
type StatusError struct {
	Symbol string
	Code   int64
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s returned status %d", errdefs.ErrNativeFailure, e.Symbol, e.Code)
}

func (e *StatusError) Unwrap() error { return errdefs.ErrNativeFailure }

func statusErr(symbol string, code int64) error {
	if code == 0 {
		return nil
	}
	return &StatusError{Symbol: symbol, Code: code}
}
