package memutils

// Validatable is implemented by types whose internal invariants can be
// checked on demand. DebugValidate consumes it in debug builds.
type Validatable interface {
	Validate() error
}
