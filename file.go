package areafs

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/brettbedarf/areafs/internal/util"
)

// traversal removes anything that would let a new name leave its directory
var traversal = strings.NewReplacer("..", "", "/", "", `\`, "")

// sanitizeName applies traversal until nothing is left to strip, since a
// single pass can join fragments like "..././" back into "..".
func sanitizeName(name string) string {
	for {
		next := traversal.Replace(name)
		if next == name {
			return name
		}
		name = next
	}
}

// File is a handle to one logical file within an [Area]. Every operation is
// delegated to the area; the handle only keeps its own path in step with
// successful renames and moves.
//
// NOTE: File is **not** thread-safe. Share it between goroutines only with
// external synchronization.
type File struct {
	path     string // Logical path within area; changed only by successful Rename/Move
	area     Area   // Shared, never owned
	readonly bool   // Carried for callers; not enforced by any operation
	deleted  bool   // Set once Delete succeeds
}

// fillUnset applies override values only to fields that are still empty
func (f *File) fillUnset(o *Override) {
	if o == nil {
		return
	}
	if f.path == "" && o.Path != nil {
		f.path = *o.Path
	}
	if f.area == nil && o.Area != nil {
		f.area = o.Area
	}
	if !f.readonly && o.Readonly != nil {
		f.readonly = *o.Readonly
	}
}

// Path returns the file's current logical path
func (f *File) Path() string {
	return f.path
}

// Area returns the area the handle delegates to
func (f *File) Area() Area {
	return f.area
}

func (f *File) Readonly() bool {
	return f.readonly
}

// Deleted reports whether the file was removed through this handle
func (f *File) Deleted() bool {
	return f.deleted
}

func (f *File) live() error {
	if f.deleted {
		return fmt.Errorf("%s: %w", f.path, ErrDeleted)
	}
	return nil
}

// Open returns a stream over the file's contents. Caller must close it.
func (f *File) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	return f.area.Open(ctx, f.path)
}

// ReadAll returns the whole content of the file. No size limit is applied
// here; that is up to the area.
func (f *File) ReadAll(ctx context.Context) ([]byte, error) {
	if err := f.live(); err != nil {
		return nil, err
	}
	return f.area.ReadFile(ctx, f.path)
}

// Rename renames the file within its current directory, keeping its extension.
// Path separators and ".." are stripped from newName.
func (f *File) Rename(ctx context.Context, newName string) error {
	return f.rename(ctx, newName, path.Ext(f.path))
}

// RenameExt renames the file within its current directory and replaces its
// extension. Leading dots on newExt are ignored and an empty newExt drops the
// extension entirely.
func (f *File) RenameExt(ctx context.Context, newName, newExt string) error {
	return f.rename(ctx, newName, newExt)
}

func (f *File) rename(ctx context.Context, newName, ext string) error {
	logger := util.GetLogger("File.Rename")

	if err := f.live(); err != nil {
		return err
	}

	name := sanitizeName(newName)
	if ext = strings.TrimLeft(ext, "."); ext != "" {
		ext = "." + ext
	}
	if name == "" || name+ext == "." || name+ext == ".." {
		return fmt.Errorf("rename %s: invalid name %q", f.path, newName)
	}

	dir := path.Dir(f.path)
	newPath := path.Join(dir, name+ext)
	if path.Dir(newPath) != dir {
		return fmt.Errorf("rename %s: name %q leaves the directory", f.path, newName)
	}
	if err := f.area.Rename(ctx, f.path, newPath); err != nil {
		logger.Debug().Err(err).Str("path", f.path).Str("newPath", newPath).Msg("Area rejected rename")
		return fmt.Errorf("rename %s to %s: %w", f.path, newPath, err)
	}
	logger.Debug().Str("path", f.path).Str("newPath", newPath).Msg("Renamed file")
	f.path = newPath
	return nil
}

// Move moves the file into dir, which the area must be able to resolve
func (f *File) Move(ctx context.Context, dir string) error {
	logger := util.GetLogger("File.Move")

	if err := f.live(); err != nil {
		return err
	}
	newPath, err := f.targetIn(dir)
	if err != nil {
		return err
	}

	if err := f.area.Rename(ctx, f.path, newPath); err != nil {
		logger.Debug().Err(err).Str("path", f.path).Str("newPath", newPath).Msg("Area rejected move")
		return fmt.Errorf("move %s to %s: %w", f.path, newPath, err)
	}
	logger.Debug().Str("path", f.path).Str("newPath", newPath).Msg("Moved file")
	f.path = newPath
	return nil
}

// Copy copies the file into dir. The handle keeps pointing at the original
// and no handle is created for the copy.
func (f *File) Copy(ctx context.Context, dir string) error {
	logger := util.GetLogger("File.Copy")

	if err := f.live(); err != nil {
		return err
	}
	newPath, err := f.targetIn(dir)
	if err != nil {
		return err
	}

	if err := f.area.Copy(ctx, f.path, newPath); err != nil {
		logger.Debug().Err(err).Str("path", f.path).Str("newPath", newPath).Msg("Area rejected copy")
		return fmt.Errorf("copy %s to %s: %w", f.path, newPath, err)
	}
	logger.Debug().Str("path", f.path).Str("newPath", newPath).Msg("Copied file")
	return nil
}

// targetIn resolves dir through the area and appends the current base name
func (f *File) targetIn(dir string) (string, error) {
	resolved, err := f.area.ResolvePath(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	return strings.TrimRight(resolved, `\/`) + "/" + path.Base(f.path), nil
}

// Update replaces the file's contents
func (f *File) Update(ctx context.Context, content []byte) error {
	logger := util.GetLogger("File.Update")

	if err := f.live(); err != nil {
		return err
	}
	dir, base := path.Split(f.path)
	dir = path.Clean(dir)

	if err := f.area.Update(ctx, dir, base, content, f); err != nil {
		logger.Debug().Err(err).Str("path", f.path).Msg("Area rejected update")
		return fmt.Errorf("update %s: %w", f.path, err)
	}
	logger.Debug().Str("path", f.path).Int("bytes", len(content)).Msg("Updated file")
	return nil
}

// Delete removes the file. Once it succeeds every delegating method on the
// handle returns [ErrDeleted]; the accessors keep working.
func (f *File) Delete(ctx context.Context) error {
	logger := util.GetLogger("File.Delete")

	if err := f.live(); err != nil {
		return err
	}
	if err := f.area.Delete(ctx, f.path); err != nil {
		logger.Debug().Err(err).Str("path", f.path).Msg("Area rejected delete")
		return fmt.Errorf("delete %s: %w", f.path, err)
	}
	logger.Debug().Str("path", f.path).Msg("Deleted file")
	f.deleted = true
	return nil
}

func (f *File) URL(ctx context.Context) (string, error) {
	if err := f.live(); err != nil {
		return "", err
	}
	return f.area.URL(ctx, f.path)
}

func (f *File) Permissions(ctx context.Context) (string, error) {
	if err := f.live(); err != nil {
		return "", err
	}
	return f.area.Permissions(ctx, f.path)
}

// Time returns the file's modified or created timestamp. The zero
// [TimeKind] is [TimeModified].
func (f *File) Time(ctx context.Context, kind TimeKind) (time.Time, error) {
	if err := f.live(); err != nil {
		return time.Time{}, err
	}
	return f.area.Time(ctx, f.path, kind)
}

func (f *File) Size(ctx context.Context) (int64, error) {
	if err := f.live(); err != nil {
		return 0, err
	}
	return f.area.Size(ctx, f.path)
}
