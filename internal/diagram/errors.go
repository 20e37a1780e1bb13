package diagram

import "errors"

// Sentinel errors for diagram rendering.
var (
	// ErrEmptyDiagram indicates a diagram block with no source after trimming.
	ErrEmptyDiagram = errors.New("empty diagram")

	// ErrEngine indicates the diagram engine rejected a diagram.
	ErrEngine = errors.New("diagram engine error")

	// ErrEngineUnavailable indicates the engine could not be started.
	ErrEngineUnavailable = errors.New("diagram engine unavailable")

	// ErrEngineDisabled indicates diagram rendering is turned off.
	ErrEngineDisabled = errors.New("diagram rendering disabled")
)

// EngineError carries the human-readable message of an engine failure.
// It matches ErrEngine with errors.Is.
type EngineError struct {
	Message string
}

func (e *EngineError) Error() string {
	return ErrEngine.Error() + ": " + e.Message
}

// Is reports whether target is ErrEngine.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}
