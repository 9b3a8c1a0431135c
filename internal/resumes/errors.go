package resumes

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrPersistence     = errors.New("failed to store resume")
	ErrNotFound        = errors.New("not found")
	ErrOwnerRequired   = errors.New("owner id required")
)
