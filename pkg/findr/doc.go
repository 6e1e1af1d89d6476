// Package findr calls the findr native library for gene regulatory network
// inference directly from Go, without cgo and without copying input data.
//
// Open locates a shared object whose reported package name and major.minor
// version match this binding, initializes it once, and returns a Library.
// Every operation on a Library follows the same pattern: inputs are checked
// for shape and NaN before anything crosses the boundary, outputs are
// allocated here and filled in place by the native code, and a non-zero
// native status is returned as a *StatusError together with the result.
//
//	lib, err := findr.Open(ctx, findr.Config{Threads: 4})
//	if err != nil {
//	    return err
//	}
//	res, err := lib.RankA(ctx, dt, dt2, findr.Options{NoDiag: true})
//
// Inputs are array.Dense values. Row-major arrays, row slices and column
// ranges of them are passed as-is. An array whose adjacent columns are not
// adjacent in memory, such as a transpose, is rejected with ErrShape and
// never copied behind the caller's back; pass a.Clone() to get a row-major
// copy.
package findr
