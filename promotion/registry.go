package promotion

import (
	"context"
	"encoding/json"
	"sync"
)

// Handler implements a custom promotion rule. Params arrive exactly as
// stored in the rule config; the engine validates only that a handler
// identifier was configured and passes the rest through opaquely.
type Handler interface {
	Select(ctx context.Context, input SelectionInput, params json.RawMessage) ([]int, error)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, input SelectionInput, params json.RawMessage) ([]int, error)

func (f HandlerFunc) Select(ctx context.Context, input SelectionInput, params json.RawMessage) ([]int, error) {
	return f(ctx, input, params)
}

// Registry resolves custom rule handler identifiers to implementations.
// Safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(name string, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}
