package shoot

import (
	"context"
	"net/http"
)

// Next continues the chain with the given view and returns the processed view.
// It may be called more than once; every call re-enters the remaining chain.
type Next func(ctx context.Context, view View) (View, error)

// Middleware intercepts a view on its way to being rendered.
// Middleware can observe the view, transform it, wrap the rest of the chain,
// or short-circuit by returning without calling next.
//
// Implementations must not retain the view or the request beyond the call.
type Middleware interface {
	Process(ctx context.Context, view View, r *http.Request, next Next) (View, error)
}

// MiddlewareFunc adapts an ordinary function to the Middleware interface.
//
// Example:
//
//	timing := shoot.MiddlewareFunc(func(ctx context.Context, v shoot.View, r *http.Request, next shoot.Next) (shoot.View, error) {
//	    start := time.Now()
//	    defer func() { log.Println(v.Name(), time.Since(start)) }()
//	    return next(ctx, v)
//	})
type MiddlewareFunc func(ctx context.Context, view View, r *http.Request, next Next) (View, error)

// Process calls f(ctx, view, r, next).
func (f MiddlewareFunc) Process(ctx context.Context, view View, r *http.Request, next Next) (View, error) {
	return f(ctx, view, r, next)
}

// renderView is the innermost stage of every chain.
func renderView(ctx context.Context, view View) (View, error) {
	if view == nil {
		return view, ErrNilView
	}
	if err := view.Render(ctx); err != nil {
		return view, err
	}
	return view, nil
}
