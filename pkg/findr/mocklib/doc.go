// Package mocklib provides an in-process fake of the native findr library
// for tests and examples.
//
// A Library is a table of Go functions keyed by symbol name. Each function
// receives the argument words the binder produced, so view arguments point at
// the real native descriptors and can be decoded with FloatMatrix,
// ByteMatrix and FloatVector. Writes through those descriptors land in the
// caller's host arrays exactly as they would from native code.
//
//	lib := mocklib.New("findr", 0, 1, 0)
//	lib.Register("pij_rank_a", mocklib.Const(0.5, 0, nil, []int{2}))
//
//	opener := mocklib.NewOpener().Add("/opt/findr/libfindr.so", lib)
//	handle, err := findr.Open(ctx, findr.Config{
//	    LibraryPath: "/opt/findr/libfindr.so",
//	    Opener:      opener,
//	})
//
// Call counters (Calls, Called) and recorded lib_init arguments (Inits) let
// tests assert whether, and how, the native boundary was crossed.
//
// Limitations: Functions run on the calling goroutine with no isolation, and
// a fake that writes outside a descriptor's bounds panics instead of
// corrupting memory.
package mocklib
