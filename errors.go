package areafs

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDefaultArea is returned by Forge when no area was given and no
	// process-wide default has been set with [SetDefaultArea]
	ErrNoDefaultArea = errors.New("no default area set")

	// ErrDeleted is returned by every delegating operation on a handle whose
	// file was removed through [File.Delete]
	ErrDeleted = errors.New("file handle refers to a deleted file")

	// ErrReadOnlyArea is returned by areas that do not support mutation
	ErrReadOnlyArea = errors.New("area is read-only")

	// ErrNotFound is wrapped by areas when the backing object does not exist
	ErrNotFound = errors.New("file not found")
)

// InvalidAreaError is returned at construction when the supplied area is
// not usable as an [Area]
type InvalidAreaError struct {
	Got string // dynamic type of the rejected value
}

func (e *InvalidAreaError) Error() string {
	return fmt.Sprintf("forge: area must implement areafs.Area, %s given", e.Got)
}
