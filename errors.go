package shoot

import "errors"

var (
	// ErrMissingRequest is returned by Process when it is called outside the
	// callback passed to WithRequest.
	ErrMissingRequest = errors.New("cannot process a view without a request set; call Process from the callback passed to WithRequest")

	// ErrNilView is returned when a nil view enters any stage of the chain.
	ErrNilView = errors.New("cannot process a nil view")

	// ErrNilTemplate is returned by TemplateView.Render when the view has no template.
	ErrNilTemplate = errors.New("template view has no template")

	// ErrNotRendered is returned when writing a view that has not been rendered yet.
	ErrNotRendered = errors.New("view has not been rendered")

	// ErrUnauthorized is returned by RequireAuth when the request carries no valid token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnknownMiddleware is returned by FromConfig for middleware names it does not know.
	ErrUnknownMiddleware = errors.New("unknown middleware")
)
