package command

// Executor runs a decoded command's arguments and returns the value to send
// back as the workspace/executeCommand result (often nil).
type Executor func(args []any) (any, error)

// Registry maps a full reserved command identifier to its executor. A
// handler looks up by core.Command.ID; an identifier with no registered
// executor is not a server command the caller should run.
type Registry struct {
	executors map[string]Executor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{executors: make(map[string]Executor)}
}

// Register installs fn as the executor for suffix.
func (r *Registry) Register(suffix Suffix, fn Executor) {
	r.executors[ID(suffix)] = fn
}

// Lookup returns the executor registered for identifier, if any.
func (r *Registry) Lookup(identifier string) (Executor, bool) {
	fn, ok := r.executors[identifier]
	return fn, ok
}
