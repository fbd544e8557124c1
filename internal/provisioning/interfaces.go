package provisioning

// Logger is the printf-style logging surface shared with the topology and
// directory packages.
type Logger interface {
	Printf(format string, v ...any)
}

// Phase defines the interface for a bootstrap phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the logic of this phase.
	Provision(ctx *Context) error
}
