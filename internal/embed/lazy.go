package embed

import (
	"context"
	"errors"
	"sync"
)

var ErrClosed = errors.New("embedding provider closed")

// Lazy constructs a Provider on first use and shares it afterwards. A
// construction error is returned to every later caller.
type Lazy struct {
	build func(context.Context) (Provider, error)

	once sync.Once
	p    Provider
	err  error
}

func NewLazy(build func(context.Context) (Provider, error)) *Lazy {
	return &Lazy{build: build}
}

// Get returns the shared provider, building it on the first call.
func (l *Lazy) Get(ctx context.Context) (Provider, error) {
	l.once.Do(func() {
		l.p, l.err = l.build(ctx)
	})
	return l.p, l.err
}

// Close closes the provider if it was ever built. A Get that has not
// happened yet will return ErrClosed.
func (l *Lazy) Close() error {
	l.once.Do(func() { l.err = ErrClosed })
	if l.p == nil {
		return nil
	}
	return l.p.Close()
}
