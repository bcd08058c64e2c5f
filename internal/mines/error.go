package mines

import "fmt"

var (
	ErrInvalidConfiguration = fmt.Errorf("invalid game configuration")
	ErrOutOfRange           = fmt.Errorf("cell position out of range")
)

// ConfigurationError reports game parameters that cannot produce a board.
// Parameters are never clamped; the caller must not build an engine.
type ConfigurationError struct {
	Params GameParams
	Reason string
}

// [ConfigurationError] implements [error]
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"%s (rows = %d, cols = %d, hazards = %d): %s",
		ErrInvalidConfiguration, e.Params.Rows, e.Params.Cols,
		e.Params.HazardCount, e.Reason,
	)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfiguration
}

type OutOfRangeError struct {
	Row, Col int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("%s: (%d, %d)", ErrOutOfRange, e.Row, e.Col)
}

func (e *OutOfRangeError) Unwrap() error {
	return ErrOutOfRange
}
