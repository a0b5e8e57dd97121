// Package shoot runs views through an ordered chain of middleware before
// rendering them.
//
// A Pipeline is built once per application. Rendering happens inside the
// callback passed to WithRequest, which bounds the window in which Process
// may be called:
//
//	p := shoot.New(shoot.Logging(logger))
//	err := p.WithRequest(ctx, r, func(ctx context.Context) error {
//	    return p.Process(ctx, view)
//	})
package shoot

import (
	"context"
	"net/http"
	"slices"
	"sync/atomic"
)

// Pipeline holds the middleware and the chain compiled from it.
// Middleware is executed in the order given: the first middleware is the
// outermost wrapper, entered first and left last.
//
// A Pipeline holds no per-request state and is safe for concurrent use.
type Pipeline struct {
	middleware []Middleware

	// chain[i] enters middleware i; chain[len(middleware)] renders the view.
	chain []Next
}

// New creates a pipeline from the given middleware. An empty list yields a
// pipeline that only renders.
func New(middleware ...Middleware) *Pipeline {
	p := &Pipeline{middleware: slices.Clone(middleware)}
	p.chain = p.chainMiddleware()
	return p
}

// chainMiddleware folds the middleware from last to first so that every
// stage's next is the stage after it.
func (p *Pipeline) chainMiddleware() []Next {
	chain := make([]Next, len(p.middleware)+1)
	chain[len(p.middleware)] = renderView

	for i := len(p.middleware) - 1; i >= 0; i-- {
		mw, next := p.middleware[i], chain[i+1]
		chain[i] = func(ctx context.Context, view View) (View, error) {
			// The request is looked up per call, never captured at construction.
			r, ok := p.request(ctx)
			if !ok {
				return view, ErrMissingRequest
			}
			if view == nil {
				return view, ErrNilView
			}
			return mw.Process(ctx, view, r, next)
		}
	}

	return chain
}

// Middleware returns a copy of the pipeline's middleware in execution order.
func (p *Pipeline) Middleware() []Middleware {
	return slices.Clone(p.middleware)
}

// scope is the request window opened by one WithRequest call.
type scope struct {
	request *http.Request
	active  atomic.Bool
}

// scopeKey is keyed by pipeline so scopes of different pipelines never mix.
type scopeKey struct {
	p *Pipeline
}

// WithRequest sets r as the current request while executing fn. Views should
// be processed within fn using the context it receives. The scope is closed on
// every exit path of fn, including errors and panics.
func (p *Pipeline) WithRequest(ctx context.Context, r *http.Request, fn func(ctx context.Context) error) error {
	_, err := Scoped(ctx, p, r, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Scoped is WithRequest for callbacks that produce a value. It returns exactly
// what fn returns.
func Scoped[T any](ctx context.Context, p *Pipeline, r *http.Request, fn func(ctx context.Context) (T, error)) (T, error) {
	s := &scope{request: r}
	s.active.Store(true)
	defer s.active.Store(false)

	return fn(context.WithValue(ctx, scopeKey{p}, s))
}

// Process runs view through the middleware chain and renders it. It must be
// called with a context derived from a WithRequest callback; otherwise it
// returns ErrMissingRequest. Errors from middleware or rendering are returned
// as is.
func (p *Pipeline) Process(ctx context.Context, view View) error {
	if _, ok := p.request(ctx); !ok {
		return ErrMissingRequest
	}
	if view == nil {
		return ErrNilView
	}

	_, err := p.chain[0](ctx, view)
	return err
}

// request returns the request of the active scope in ctx, if any.
func (p *Pipeline) request(ctx context.Context) (*http.Request, bool) {
	s, ok := ctx.Value(scopeKey{p}).(*scope)
	if !ok || !s.active.Load() || s.request == nil {
		return nil, false
	}
	return s.request, true
}

// RequestFromContext returns the request set by p's WithRequest, as long as the
// callback that received ctx is still running.
func (p *Pipeline) RequestFromContext(ctx context.Context) (*http.Request, bool) {
	return p.request(ctx)
}
