package server

import (
	"net/http"
	"strings"
)

// RouterGroup represents a group of routes with a common prefix and middleware
type RouterGroup struct {
	prefix     string
	middleware []Middleware
	router     Router
}

func (rg *RouterGroup) Use(middleware ...Middleware) {
	rg.middleware = append(rg.middleware, middleware...)
}

// Handle registers handler under the group prefix. Patterns may carry a method,
// as in "GET /health".
func (rg *RouterGroup) Handle(pattern string, handler http.Handler) {
	wrappedHandler := handler
	for i := len(rg.middleware) - 1; i >= 0; i-- {
		wrappedHandler = rg.middleware[i](wrappedHandler)
	}
	rg.router.Handle(joinPattern(rg.prefix, pattern), wrappedHandler)
}

func (rg *RouterGroup) HandleFunc(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
	rg.Handle(pattern, http.HandlerFunc(handlerFunc))
}

func (rg *RouterGroup) Group(prefix string) *RouterGroup {
	return &RouterGroup{
		prefix:     rg.prefix + prefix,
		middleware: append([]Middleware{}, rg.middleware...),
		router:     rg.router,
	}
}

func joinPattern(prefix, pattern string) string {
	method, path, found := strings.Cut(pattern, " ")
	if !found {
		return prefix + pattern
	}
	return method + " " + prefix + path
}
