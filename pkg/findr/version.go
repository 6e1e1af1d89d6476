package findr

import "github.com/findr-go/findr/internal/loader"

var (
	Version  = "v0.0.0-in-progress"
	Upstream = "findr"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// ExpectedLibraryVersion is the native version this binding negotiates for.
// Any patch level of the same major.minor is accepted.
func ExpectedLibraryVersion() string {
	return loader.ExpectedVersion.String()
}

// LibraryVersion returns the version reported by the loaded native library,
// or the empty string for a nil handle.
func (l *Library) LibraryVersion() string {
	if l == nil {
		return ""
	}
	return l.lib.Version().String()
}
