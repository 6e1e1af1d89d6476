// Package internalcheck holds static policy tests over the findr-go module.
//
// The tests load the module's packages with golang.org/x/tools/go/packages
// and fail when a rule about the native boundary is broken, for example
// when unsafe pointer code or the dynamic loader leaks outside the few
// packages that are allowed to touch them.
//
// # Internal Use Only
//
// This package has no exported API. Applications should use pkg/findr and
// its subpackages instead.
package internalcheck
