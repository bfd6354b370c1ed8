package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input errors
	ErrMissingInput    = fmt.Errorf("input file not found")
	ErrEmptyCatalog    = fmt.Errorf("catalog has no songs")
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")

	// Resolution errors
	ErrSessionOpen        = fmt.Errorf("failed to open resolver session")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrNotFound           = fmt.Errorf("video not found")
	ErrTimeout            = fmt.Errorf("operation timed out")

	// Persistence errors
	ErrPersistence    = fmt.Errorf("persistence failed")
	ErrRecordNotFound = fmt.Errorf("record not found")
)
