package core

import "sync"

// serviceRegistry is shared by an AppContext and every context derived from
// it, so a service registered by one module is visible to all.
type serviceRegistry struct {
	mu       sync.RWMutex
	services map[string]any
}

func newServiceRegistry() *serviceRegistry {
	return &serviceRegistry{services: make(map[string]any)}
}

// RegisterService makes svc discoverable under name, replacing any previous
// registration.
func (ctx *AppContext) RegisterService(name string, svc any) {
	ctx.services.mu.Lock()
	defer ctx.services.mu.Unlock()
	ctx.services.services[name] = svc
}

// Service returns the service registered under name.
func (ctx *AppContext) Service(name string) (any, bool) {
	ctx.services.mu.RLock()
	defer ctx.services.mu.RUnlock()
	svc, ok := ctx.services.services[name]
	return svc, ok
}

// ServiceAs returns the service registered under name if it has type T.
func ServiceAs[T any](ctx *AppContext, name string) (T, bool) {
	var zero T
	svc, ok := ctx.Service(name)
	if !ok {
		return zero, false
	}
	t, ok := svc.(T)
	if !ok {
		return zero, false
	}
	return t, true
}
