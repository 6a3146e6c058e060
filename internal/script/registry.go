package script

// Handler runs content for a trigger. C is the caller's context type.
type Handler[C any] func(ctx C)

type scope int

const (
	scopeType scope = iota
	scopeCategory
	scopeGlobal
)

type key struct {
	trigger Trigger
	scope   scope
	id      int
}

// Registry resolves trigger lookups. Lookups for type ids fall back to the
// category and then to a global handler. A miss is not an error.
//
// Registration happens at startup or on reload; lookups happen on the tick
// goroutine. The two never overlap, so there is no locking.
type Registry[C any] struct {
	handlers map[key]Handler[C]
	named    map[string]Handler[C]
}

func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		handlers: make(map[key]Handler[C]),
		named:    make(map[string]Handler[C]),
	}
}

// Register binds a handler to one content type.
func (r *Registry[C]) Register(t Trigger, typeID int, h Handler[C]) {
	r.handlers[key{t, scopeType, typeID}] = h
}

// RegisterCategory binds a handler to every type in a category.
func (r *Registry[C]) RegisterCategory(t Trigger, category int, h Handler[C]) {
	r.handlers[key{t, scopeCategory, category}] = h
}

// RegisterGlobal binds the fallback for a trigger.
func (r *Registry[C]) RegisterGlobal(t Trigger, h Handler[C]) {
	r.handlers[key{t, scopeGlobal, -1}] = h
}

func (r *Registry[C]) RegisterByName(name string, h Handler[C]) {
	r.named[name] = h
}

// Get finds the handler for typeID, then category (when not -1), then the
// global one.
func (r *Registry[C]) Get(t Trigger, typeID, category int) (Handler[C], bool) {
	if h, ok := r.handlers[key{t, scopeType, typeID}]; ok {
		return h, true
	}
	if category != -1 {
		if h, ok := r.handlers[key{t, scopeCategory, category}]; ok {
			return h, true
		}
	}
	h, ok := r.handlers[key{t, scopeGlobal, -1}]
	return h, ok
}

// GetSpecific finds only a handler registered for exactly typeID.
func (r *Registry[C]) GetSpecific(t Trigger, typeID int) (Handler[C], bool) {
	h, ok := r.handlers[key{t, scopeType, typeID}]
	return h, ok
}

func (r *Registry[C]) GetByName(name string) (Handler[C], bool) {
	h, ok := r.named[name]
	return h, ok
}

// Run looks up and calls the handler. It reports whether one existed.
func (r *Registry[C]) Run(t Trigger, typeID, category int, ctx C) bool {
	h, ok := r.Get(t, typeID, category)
	if !ok {
		return false
	}
	h(ctx)
	return true
}

func (r *Registry[C]) Len() int { return len(r.handlers) + len(r.named) }

func (r *Registry[C]) Clear() {
	clear(r.handlers)
	clear(r.named)
}
