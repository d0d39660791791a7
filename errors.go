package eyamladd

import "errors"

var (
	// ErrInvalidInputShape is returned when the clear-text input is not a mapping.
	ErrInvalidInputShape = errors.New("input must be a mapping at the top level")
	// ErrInvalidJSON is returned when the clear-text input is not valid JSON.
	ErrInvalidJSON = errors.New("invalid json input")
	// ErrEncryptionFailed is returned when a cipher backend cannot encrypt a value.
	ErrEncryptionFailed = errors.New("encryption failed")
	// ErrInputSourceMissing is returned when no clear-text input source resolves.
	ErrInputSourceMissing = errors.New("no input data source")
	// ErrTargetUnreadable is returned when the target document exists but
	// cannot be read or parsed.
	ErrTargetUnreadable = errors.New("target document unreadable")
	// ErrKindConflict is returned by Merge when a container would be merged
	// into an existing value of another kind.
	ErrKindConflict = errors.New("cannot merge values of different kinds")
)
