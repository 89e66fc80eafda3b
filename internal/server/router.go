package server

import "net/http"

type Router interface {
	// Handle registers a new route with the given pattern and handler on the router mux
	Handle(pattern string, handler http.Handler)
	// HandleFunc registers a new route with the given pattern and handler function on the router mux
	HandleFunc(pattern string, handler func(http.ResponseWriter, *http.Request))
	// ServeHTTP dispatches the request through the router middleware to the mux
	ServeHTTP(w http.ResponseWriter, r *http.Request)
	// Use adds middleware applied to every request served by the router
	Use(middleware ...Middleware)
	// Group creates a group with the given prefix under the router's root prefix
	Group(prefix string) *RouterGroup
}

// DefaultRouter
type DefaultRouter struct {
	// mux is the default http.ServeMux
	mux *http.ServeMux
	// middleware wraps every request, outermost first
	middleware []Middleware
	// rootGroup is the root RouterGroup
	rootGroup *RouterGroup
}

// NewDefaultRouter creates a new DefaultRouter with the given prefix
func NewDefaultRouter(prefix string) *DefaultRouter {
	dr := &DefaultRouter{mux: http.NewServeMux()}
	dr.rootGroup = &RouterGroup{prefix: prefix, router: dr}
	return dr
}

func (dr *DefaultRouter) Handle(pattern string, handler http.Handler) {
	dr.mux.Handle(pattern, handler)
}

func (dr *DefaultRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var h http.Handler = dr.mux
	for i := len(dr.middleware) - 1; i >= 0; i-- {
		h = dr.middleware[i](h)
	}
	h.ServeHTTP(w, req)
}

func (dr *DefaultRouter) HandleFunc(pattern string, handlerFunc func(http.ResponseWriter, *http.Request)) {
	dr.Handle(pattern, http.HandlerFunc(handlerFunc))
}

func (dr *DefaultRouter) Use(middleware ...Middleware) {
	dr.middleware = append(dr.middleware, middleware...)
}

// Group creates a new RouterGroup under the rootGroup with the given prefix
func (dr *DefaultRouter) Group(prefix string) *RouterGroup {
	return dr.rootGroup.Group(prefix)
}
