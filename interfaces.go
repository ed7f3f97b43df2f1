// Package areafs contains the file handle and the storage area contract it delegates to
package areafs

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Area performs the actual I/O for file handles. Implementations are shared
// between any number of handles and own all cross-call consistency; a handle
// never locks or retries on an area's behalf.
//
// Mutating methods report failure through a non-nil error and must leave the
// stored object untouched when they do.
type Area interface {
	// Opens the file and returns a Reader for incremental consumption
	Open(ctx context.Context, path string) (io.ReadCloser, error)

	// Reads the whole file into memory
	ReadFile(ctx context.Context, path string) ([]byte, error)

	Rename(ctx context.Context, oldPath, newPath string) error
	Copy(ctx context.Context, oldPath, newPath string) error

	// Update replaces the contents of dir/base. The calling handle is passed
	// so an implementation can refresh anything it tracks about it.
	Update(ctx context.Context, dir, base string, content []byte, f *File) error

	Delete(ctx context.Context, path string) error

	URL(ctx context.Context, path string) (string, error)

	// Returns the permission bits as an octal string, i.e. "0644"
	Permissions(ctx context.Context, path string) (string, error)

	Time(ctx context.Context, path string, kind TimeKind) (time.Time, error)
	Size(ctx context.Context, path string) (int64, error)

	// ResolvePath validates a raw path and returns its normalized form
	// within the area's namespace
	ResolvePath(raw string) (string, error)
}

// TimeKind selects which timestamp [Area.Time] returns
type TimeKind int

const (
	TimeModified TimeKind = iota // default
	TimeCreated
)

func (k TimeKind) String() string {
	switch k {
	case TimeModified:
		return "modified"
	case TimeCreated:
		return "created"
	default:
		return "unknown"
	}
}

// ParseTimeKind maps "modified" / "created" to a TimeKind. An empty string
// yields [TimeModified].
func ParseTimeKind(s string) (TimeKind, error) {
	switch s {
	case "", "modified", "mtime":
		return TimeModified, nil
	case "created", "ctime":
		return TimeCreated, nil
	default:
		return TimeModified, fmt.Errorf("unknown time kind %q", s)
	}
}
