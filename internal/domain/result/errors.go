package result

import "errors"

var (
	// ErrInvalidParticipant indicates a participant id that cannot name a file.
	ErrInvalidParticipant = errors.New("invalid participant id")
	// ErrInvalidInput indicates a row without an image name.
	ErrInvalidInput = errors.New("invalid result input")
)
