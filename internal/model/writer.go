package model

// Writer defines a generic interface for persisting analysis artifacts to an
// external store. Implementations are expected to know how to handle the
// payload types they receive.
type Writer interface {
	// Write persists a payload under the given run identifier.
	Write(payload interface{}, runID string) error

	// Close releases any resources held by the writer.
	Close() error
}
