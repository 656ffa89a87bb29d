package services

import "errors"

// Standard service errors. Validation errors are recoverable: the caller
// re-prompts rather than treating them as fatal.
var (
	// Label taxonomy validation
	ErrLabelNameEmpty     = errors.New("label name cannot be empty")
	ErrLabelNameTooShort  = errors.New("label name must be at least 2 characters")
	ErrLabelNameTooLong   = errors.New("label name must be at most 20 characters")
	ErrLabelNameDuplicate = errors.New("a label with this name already exists")
	ErrLabelIsSystem      = errors.New("system labels cannot be modified")

	// Data errors
	ErrLabelNotFound = errors.New("label not found")
	ErrInvalidInput  = errors.New("invalid input provided")

	// Compose errors
	ErrNoRecipients = errors.New("message has no recipients")
	ErrEngineClosed = errors.New("engine has been torn down")
)

// IsValidationError reports whether an error is a recoverable label
// validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrLabelNameEmpty) ||
		errors.Is(err, ErrLabelNameTooShort) ||
		errors.Is(err, ErrLabelNameTooLong) ||
		errors.Is(err, ErrLabelNameDuplicate) ||
		errors.Is(err, ErrLabelIsSystem)
}
