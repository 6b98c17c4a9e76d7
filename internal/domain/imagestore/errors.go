package imagestore

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingDirectory indicates a required category folder does not exist.
	ErrMissingDirectory = errors.New("image folder not found")
	// ErrImageNotFound indicates the identifier has no backing file.
	ErrImageNotFound = errors.New("image not found")
	// ErrInvalidName indicates an upload name or category that cannot be stored.
	ErrInvalidName = errors.New("invalid image name")
)

// MissingDirectoryError names the folder that was absent.
type MissingDirectoryError struct {
	Dir string
}

func (e *MissingDirectoryError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissingDirectory, e.Dir)
}

func (e *MissingDirectoryError) Is(target error) bool {
	return target == ErrMissingDirectory
}
