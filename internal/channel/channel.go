package channel

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MethodHandler answers one method of a channel.
// Returning ErrNotImplemented yields the not-implemented signal; returning a *Error
// yields that structured error; any other error is reported as ErrorCodeUnhandled.
type MethodHandler func(ctx context.Context, call MethodCall) (any, error)

// Channel dispatches named method calls to registered handlers.
type Channel struct {
	name     string
	mu       sync.RWMutex
	handlers map[string]MethodHandler
}

// New creates an empty channel with the given name.
func New(name string) *Channel {
	return &Channel{
		name:     name,
		handlers: make(map[string]MethodHandler),
	}
}

func (c *Channel) Name() string {
	return c.name
}

// Handle registers handler for method, replacing any previous one.
// A nil handler removes the method.
func (c *Channel) Handle(method string, handler MethodHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if handler == nil {
		delete(c.handlers, method)
		return
	}
	c.handlers[method] = handler
}

// Methods returns the registered method names in sorted order.
func (c *Channel) Methods() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	methods := make([]string, 0, len(c.handlers))
	for m := range c.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Invoke runs the handler for call.Method. It never panics and never returns an error:
// every outcome is expressed in the Response.
func (c *Channel) Invoke(ctx context.Context, call MethodCall) (resp Response) {
	c.mu.RLock()
	handler, ok := c.handlers[call.Method]
	c.mu.RUnlock()

	if !ok {
		return NotImplemented()
	}

	defer func() {
		if r := recover(); r != nil {
			resp = Failure(NewError(ErrorCodeUnhandled, fmt.Sprintf("panic in %s.%s: %v", c.name, call.Method, r), nil))
		}
	}()

	result, err := handler(ctx, call)
	if err != nil {
		return toResponse(err)
	}
	return Success(result)
}
