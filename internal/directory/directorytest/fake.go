// Package directorytest provides an in-memory directory.Conn for tests.
package directorytest

import (
	"context"
	"sync"

	"github.com/go-ports/whois/internal/config"
	"github.com/go-ports/whois/internal/directory"
)

// Fake answers searches from a filter-keyed table and records every call.
type Fake struct {
	mu       sync.Mutex
	results  map[string][]directory.Entry
	errs     map[string]error
	filters  []string
	unbinds  int
	BlockCtx bool // when set, Search waits for ctx to be done
}

// New returns an empty Fake; every search yields no entries until Add is called.
func New() *Fake {
	return &Fake{
		results: make(map[string][]directory.Entry),
		errs:    make(map[string]error),
	}
}

// Add registers the entries returned for filter.
func (f *Fake) Add(filter string, entries ...directory.Entry) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results[filter] = append(f.results[filter], entries...)
	return f
}

// Fail makes searches for filter return err.
func (f *Fake) Fail(filter string, err error) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[filter] = err
	return f
}

// Search implements directory.Searcher.
func (f *Fake) Search(ctx context.Context, filter string) ([]directory.Entry, error) {
	f.mu.Lock()
	f.filters = append(f.filters, filter)
	block := f.BlockCtx
	err := f.errs[filter]
	entries := f.results[filter]
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, directory.ErrTimeout
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Unbind implements directory.Conn.
func (f *Fake) Unbind() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unbinds++
	return nil
}

// Filters returns every filter searched so far.
func (f *Fake) Filters() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.filters))
	copy(out, f.filters)
	return out
}

// Unbinds returns how many times Unbind was called.
func (f *Fake) Unbinds() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unbinds
}

// Dialer returns a DialFunc that always hands out f.
func (f *Fake) Dialer() directory.DialFunc {
	return func(context.Context, config.DirectoryConfig) (directory.Conn, error) {
		return f, nil
	}
}

// FailingDialer returns a DialFunc that always fails with err.
func FailingDialer(err error) directory.DialFunc {
	return func(context.Context, config.DirectoryConfig) (directory.Conn, error) {
		return nil, err
	}
}
