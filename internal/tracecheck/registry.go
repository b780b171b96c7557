package tracecheck

// Check type names.
const (
	TypeCommandPresence = "command-presence"
	TypeFileCreation    = "file-creation"
	TypeEventSequence   = "event-sequence"
	TypeLoopDetection   = "loop-detection"
	TypeEfficiency      = "efficiency"
)

// Registry maps check-type names to their handlers. It is populated
// once at construction and read-only afterwards, so concurrent lookup
// from parallel test cases needs no locking. Callers own their
// registry instance; there is no package-level singleton to reset
// between tests.
type Registry struct {
	handlers map[string]Handler
}

// NewRegistry creates a registry with all built-in handlers
// registered. New check types are added by extending this list.
func NewRegistry() *Registry {
	r := &Registry{handlers: make(map[string]Handler)}
	r.Register(TypeCommandPresence, CommandPresenceHandler{})
	r.Register(TypeFileCreation, FileCreationHandler{})
	r.Register(TypeEventSequence, EventSequenceHandler{})
	r.Register(TypeLoopDetection, LoopDetectionHandler{})
	r.Register(TypeEfficiency, EfficiencyHandler{})
	return r
}

// Register adds a handler for a check type.
func (r *Registry) Register(checkType string, handler Handler) {
	r.handlers[checkType] = handler
}

// Get returns the handler for a check type.
func (r *Registry) Get(checkType string) (Handler, bool) {
	h, ok := r.handlers[checkType]
	return h, ok
}

// Types returns the registered check type names.
func (r *Registry) Types() []string {
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	return types
}
