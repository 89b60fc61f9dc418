package classifier

import "errors"

var (
	// ErrModelUnavailable means the model artifact is missing, corrupt or
	// incompatible. Terminal until the process is restarted.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrUndecodable means the uploaded bytes are not a recognized image
	// encoding, or are truncated.
	ErrUndecodable = errors.New("undecodable image")

	// ErrInvalidDimensions means the decoded image has zero width or height.
	ErrInvalidDimensions = errors.New("image has invalid dimensions")

	// ErrBatchTooLarge means a batch request exceeded the configured maximum
	// and was rejected before any inference ran.
	ErrBatchTooLarge = errors.New("batch too large")

	// ErrBadOutputShape means the model returned a probability vector whose
	// length does not match the class catalog.
	ErrBadOutputShape = errors.New("unexpected model output shape")
)
