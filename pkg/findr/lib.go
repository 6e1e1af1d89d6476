package findr

import (
	"context"
	"sync"

	"github.com/findr-go/findr/internal/bindings"
	"github.com/findr-go/findr/internal/errdefs"
	"github.com/findr-go/findr/internal/loader"
	"github.com/findr-go/findr/pkg/findr/logging"
)

// Library is an opened, version-checked and initialized native library.
// Operations on one Library may be called from several goroutines; native
// calls are issued one at a time.
type Library struct {
	lib *bindings.Library
	log logging.Logger

	mu    sync.Mutex
	bound map[string]*bindings.Binding
}

// Open searches for the native library, negotiates its version and runs its
// one-time initialization with the settings in cfg.
func Open(ctx context.Context, cfg Config) (*Library, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.New(nil)
	}
	opts := cfg.toLoader()
	opts.Logger = log

	lib, err := loader.Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Library{
		lib:   lib,
		log:   log.With("library", lib.Path()),
		bound: make(map[string]*bindings.Binding),
	}, nil
}

// Path reports the file the library was loaded from.
func (l *Library) Path() string {
	if l == nil {
		return ""
	}
	return l.lib.Path()
}

// Name reports the package name the library returned.
func (l *Library) Name() string {
	if l == nil {
		return ""
	}
	return l.lib.Name()
}

func (l *Library) ready() error {
	if l == nil || l.lib == nil {
		return errdefs.ErrNotInitialized
	}
	return nil
}

// signature is the fixed ABI of one operation symbol.
type signature struct {
	symbol string
	ret    bindings.Tag
	args   []bindings.Tag
}

func (l *Library) bind(sig signature) (*bindings.Binding, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.bound[sig.symbol]; ok {
		return b, nil
	}
	b, err := l.lib.Bind(sig.symbol, sig.ret, sig.args...)
	if err != nil {
		return nil, err
	}
	l.bound[sig.symbol] = b
	return b, nil
}

// call binds sig and invokes it, returning the native status widened to
// int64. Size-typed statuses keep their bit pattern.
func (l *Library) call(ctx context.Context, sig signature, args ...any) (int64, error) {
	b, err := l.bind(sig)
	if err != nil {
		return 0, err
	}
	r, err := b.Invoke(args...)
	if err != nil {
		return 0, err
	}
	var status int64
	switch v := r.(type) {
	case int32:
		status = int64(v)
	case int8:
		status = int64(v)
	case uint64:
		status = int64(v)
	}
	l.log.Debug(ctx, "native call", "symbol", sig.symbol, "status", status)
	return status, nil
}
