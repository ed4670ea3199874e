// Package middleware provides the HTTP middleware stack applied to modules:
// request ids, access logging, panic recovery, and CORS.
package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// System manages an ordered stack of HTTP middleware. The first middleware
// added is the outermost.
type System interface {
	Use(mw Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	mws []Middleware
}

// New creates a System seeded with mws in order.
func New(mws ...Middleware) System {
	return &stack{mws: slices.Clone(mws)}
}

func (s *stack) Use(mw Middleware) {
	s.mws = append(s.mws, mw)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	for _, mw := range slices.Backward(s.mws) {
		handler = mw(handler)
	}
	return handler
}
