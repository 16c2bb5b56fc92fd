// Package assets loads optional scene assets in the background. Each asset is requested once;
// a failure is reported and logged, never retried, and never stops the render loop.
package assets

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

var ErrAssetLoad = errors.New("asset load failed")

// LoadError describes one failed asset. errors.Is matches both ErrAssetLoad and the cause.
type LoadError struct {
	Kind string
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Kind, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error { return []error{ErrAssetLoad, e.Err} }

type completion struct {
	kind    string
	path    string
	finish  func() error
	release func()
}

// Loader runs decode steps on goroutines and hands their results back on the render thread.
type Loader struct {
	log    zerolog.Logger
	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	requested map[string]bool
	done      []completion
	pending   int
	errs      []error
	wg        sync.WaitGroup
}

func NewLoader(log zerolog.Logger) *Loader {
	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{log: log, ctx: ctx, cancel: cancel, requested: map[string]bool{}}
}

// Context is canceled by Close. Decode steps that block on I/O should honour it.
func (l *Loader) Context() context.Context { return l.ctx }

// Enqueue starts decode(path) on a goroutine. When Poll later sees the result, finish runs on the
// polling goroutine, so GPU uploads belong there. Requests for an already requested kind and
// path are ignored and return false.
func Enqueue[T any](l *Loader, kind, path string, decode func(path string) (T, error), finish func(T) error) bool {
	return EnqueueRelease(l, kind, path, decode, finish, nil)
}

// EnqueueRelease is Enqueue with a release func for decoded values that Close discards before
// any Poll finishes them. release may be nil.
func EnqueueRelease[T any](l *Loader, kind, path string, decode func(path string) (T, error), finish func(T) error, release func(T)) bool {
	key := kind + "\x00" + path
	l.mu.Lock()
	if l.requested[key] {
		l.mu.Unlock()
		return false
	}
	l.requested[key] = true
	l.pending++
	l.mu.Unlock()

	l.log.Info().Str("kind", kind).Str("path", path).Msg("loading asset")
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		v, err := decode(path)
		c := completion{kind: kind, path: path, finish: func() error {
			if err != nil {
				return err
			}
			return finish(v)
		}}
		if err == nil && release != nil {
			c.release = func() { release(v) }
		}
		l.mu.Lock()
		l.done = append(l.done, c)
		l.mu.Unlock()
	}()
	return true
}

// Poll finishes every completed load and returns how many completed since the last call.
func (l *Loader) Poll() int {
	l.mu.Lock()
	done := l.done
	l.done = nil
	l.pending -= len(done)
	l.mu.Unlock()

	for _, c := range done {
		if err := c.finish(); err != nil {
			lerr := &LoadError{Kind: c.kind, Path: c.path, Err: err}
			l.log.Warn().Err(err).Str("kind", c.kind).Str("path", c.path).Msg("asset load failed")
			l.mu.Lock()
			l.errs = append(l.errs, lerr)
			l.mu.Unlock()
			continue
		}
		l.log.Info().Str("kind", c.kind).Str("path", c.path).Msg("asset loaded")
	}
	return len(done)
}

// Pending is the number of requested loads not yet finished by Poll.
func (l *Loader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Errors returns the failures seen so far.
func (l *Loader) Errors() []error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]error(nil), l.errs...)
}

// Wait blocks until every decode step has returned. Results still need a Poll.
func (l *Loader) Wait() { l.wg.Wait() }

// Close cancels Context and waits for outstanding decode steps. Results not yet polled are
// dropped, each passed to its release func.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
	l.mu.Lock()
	dropped := l.done
	l.pending -= len(dropped)
	l.done = nil
	l.mu.Unlock()
	for _, c := range dropped {
		if c.release != nil {
			c.release()
		}
	}
}
