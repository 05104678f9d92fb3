// Package dihttp opens one di.Scope per HTTP request.
//
// The scope is stored in the request context, so handlers resolve scoped
// services with Resolve and get the same instance for the whole request. The
// scope is closed after the handler returns, which disposes what it built and
// the targets of lazy proxies that were actually used.
package dihttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sghaida/lazyproxy/di"
)

// ErrNoScope is returned when a request did not pass through the middleware.
var ErrNoScope = errors.New("dihttp: no scope in request context")

// Middleware returns net/http middleware, usable with chi's Use.
func Middleware(p *di.Provider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := p.NewScope()
			defer closeScope(p, s, r)
			next.ServeHTTP(w, r.WithContext(di.NewContext(r.Context(), s)))
		})
	}
}

// Gin returns the gin equivalent of Middleware.
func Gin(p *di.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := p.NewScope()
		defer closeScope(p, s, c.Request)
		c.Request = c.Request.WithContext(di.NewContext(c.Request.Context(), s))
		c.Next()
	}
}

func closeScope(p *di.Provider, s *di.Scope, r *http.Request) {
	if err := s.Close(); err != nil {
		p.Logger().Error("dihttp: close request scope", "scope", s.ID().String(),
			"method", r.Method, "path", r.URL.Path, "err", err)
	}
}

// Scope returns the request scope.
func Scope(r *http.Request) (*di.Scope, bool) {
	return di.FromContext(r.Context())
}

// Resolve resolves T from the request scope.
func Resolve[T any](r *http.Request) (T, error) {
	s, ok := Scope(r)
	if !ok {
		var zero T
		return zero, ErrNoScope
	}
	return di.Resolve[T](s)
}
