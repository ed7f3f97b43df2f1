package areas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"time"

	"github.com/brettbedarf/areafs"
	"github.com/brettbedarf/areafs/internal/util"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	billyutil "github.com/go-git/go-billy/v5/util"
	"github.com/google/uuid"
)

// BillySource contains the config fields for local and memory areas
type BillySource struct {
	Type    string `json:"type"`
	Root    string `json:"root,omitempty"`     // local only; defaults to "."
	BaseURL string `json:"base_url,omitempty"` // Optional public URL the area is served under
}

func RegisterBilly() {
	factory := func(raw []byte) (areafs.Area, error) {
		var src BillySource
		if err := json.Unmarshal(raw, &src); err != nil {
			return nil, err
		}
		switch src.Type {
		case MemoryAreaType:
			return NewMemoryArea(src.BaseURL), nil
		default:
			root := src.Root
			if root == "" {
				root = "."
			}
			return NewLocalArea(root, src.BaseURL), nil
		}
	}
	Register(LocalAreaType, factory)
	Register(MemoryAreaType, factory)
}

// BillyArea implements [areafs.Area] over any go-billy filesystem.
// Paths are always treated as absolute within the filesystem root so a path
// can never climb out of it.
type BillyArea struct {
	fs      billy.Filesystem
	baseURL string
}

func NewBillyArea(fsys billy.Filesystem, baseURL string) *BillyArea {
	return &BillyArea{fs: fsys, baseURL: baseURL}
}

// NewLocalArea creates an area on the OS filesystem chrooted at root
func NewLocalArea(root, baseURL string) *BillyArea {
	return NewBillyArea(osfs.New(root), baseURL)
}

// NewMemoryArea creates an empty in-memory area
func NewMemoryArea(baseURL string) *BillyArea {
	return NewBillyArea(memfs.New(), baseURL)
}

// Raw returns the underlying go-billy filesystem
func (b *BillyArea) Raw() billy.Filesystem {
	return b.fs
}

func cleanPath(p string) string {
	return path.Clean("/" + strings.ReplaceAll(p, `\`, "/"))
}

// ensureDir creates dir and any missing parents; the root always exists
func (b *BillyArea) ensureDir(dir string) error {
	if dir == "/" {
		return nil
	}
	return b.fs.MkdirAll(dir, 0o755)
}

// wrapErr tags not-exist errors with [areafs.ErrNotFound]
func wrapErr(op, p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s %q: %w: %w", op, p, areafs.ErrNotFound, err)
	}
	return fmt.Errorf("%s %q: %w", op, p, err)
}

func (b *BillyArea) Open(ctx context.Context, p string) (io.ReadCloser, error) {
	f, err := b.fs.Open(cleanPath(p))
	if err != nil {
		return nil, wrapErr("open", p, err)
	}
	return f, nil
}

func (b *BillyArea) ReadFile(ctx context.Context, p string) ([]byte, error) {
	data, err := billyutil.ReadFile(b.fs, cleanPath(p))
	if err != nil {
		return nil, wrapErr("readfile", p, err)
	}
	return data, nil
}

// Rename moves oldPath to newPath, creating newPath's directory if needed
func (b *BillyArea) Rename(ctx context.Context, oldPath, newPath string) error {
	from, to := cleanPath(oldPath), cleanPath(newPath)
	if _, err := b.fs.Stat(from); err != nil {
		return wrapErr("rename", oldPath, err)
	}
	created := b.missingAncestor(path.Dir(to))
	if err := b.ensureDir(path.Dir(to)); err != nil {
		return wrapErr("rename", newPath, err)
	}
	if err := b.fs.Rename(from, to); err != nil {
		if created != "" {
			if rmErr := billyutil.RemoveAll(b.fs, created); rmErr != nil {
				logger := util.GetLogger("BillyArea.Rename")
				logger.Debug().Err(rmErr).Str("dir", created).
					Msg("Failed to remove directory created for rename")
			}
		}
		return wrapErr("rename", oldPath, err)
	}
	return nil
}

// missingAncestor returns the topmost directory on dir's path that does not
// exist yet, or "" if dir already exists
func (b *BillyArea) missingAncestor(dir string) string {
	top := ""
	for dir != "/" {
		if _, err := b.fs.Stat(dir); err == nil {
			break
		}
		top = dir
		dir = path.Dir(dir)
	}
	return top
}

// Copy duplicates oldPath at newPath, overwriting any existing file there.
// Copying a file onto itself is a no-op.
func (b *BillyArea) Copy(ctx context.Context, oldPath, newPath string) (err error) {
	from, to := cleanPath(oldPath), cleanPath(newPath)
	if from == to {
		// Create would truncate the source before it is read
		if _, err := b.fs.Stat(from); err != nil {
			return wrapErr("copy", oldPath, err)
		}
		return nil
	}
	src, err := b.fs.Open(from)
	if err != nil {
		return wrapErr("copy", oldPath, err)
	}
	defer src.Close()

	if err := b.ensureDir(path.Dir(to)); err != nil {
		return wrapErr("copy", newPath, err)
	}
	dst, err := b.fs.Create(to)
	if err != nil {
		return wrapErr("copy", newPath, err)
	}
	defer func() {
		if cerr := dst.Close(); err == nil && cerr != nil {
			err = wrapErr("copy", newPath, cerr)
		}
	}()

	if _, err := io.Copy(dst, src); err != nil {
		return wrapErr("copy", newPath, err)
	}
	return nil
}

// Update writes content to a temp file next to the target and renames it
// over the target, creating the file and its directory if they don't exist
func (b *BillyArea) Update(ctx context.Context, dir, base string, content []byte, f *areafs.File) error {
	logger := util.GetLogger("BillyArea.Update")

	dir = cleanPath(dir)
	target := path.Join(dir, base)
	if err := b.ensureDir(dir); err != nil {
		return wrapErr("update", target, err)
	}

	tmp := path.Join(dir, "."+base+"."+uuid.NewString()+".tmp")
	if err := billyutil.WriteFile(b.fs, tmp, content, 0o644); err != nil {
		return wrapErr("update", target, err)
	}
	if err := b.fs.Rename(tmp, target); err != nil {
		if rmErr := b.fs.Remove(tmp); rmErr != nil {
			logger.Debug().Err(rmErr).Str("tmp", tmp).Msg("Failed to remove temp file")
		}
		return wrapErr("update", target, err)
	}
	if f != nil {
		logger.Trace().Str("handle", f.Path()).Str("path", target).Msg("Updated through handle")
	}
	return nil
}

func (b *BillyArea) Delete(ctx context.Context, p string) error {
	if err := b.fs.Remove(cleanPath(p)); err != nil {
		return wrapErr("delete", p, err)
	}
	return nil
}

// URL joins the configured base URL with the path
func (b *BillyArea) URL(ctx context.Context, p string) (string, error) {
	if b.baseURL == "" {
		return "", fmt.Errorf("url %q: no base_url configured", p)
	}
	return url.JoinPath(b.baseURL, cleanPath(p))
}

func (b *BillyArea) stat(op, p string) (os.FileInfo, error) {
	info, err := b.fs.Stat(cleanPath(p))
	if err != nil {
		return nil, wrapErr(op, p, err)
	}
	return info, nil
}

func (b *BillyArea) Permissions(ctx context.Context, p string) (string, error) {
	info, err := b.stat("permissions", p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%04o", info.Mode().Perm()), nil
}

// Time returns the modification time for both kinds; go-billy does not
// expose creation times.
func (b *BillyArea) Time(ctx context.Context, p string, kind areafs.TimeKind) (time.Time, error) {
	info, err := b.stat("time", p)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

func (b *BillyArea) Size(ctx context.Context, p string) (int64, error) {
	info, err := b.stat("size", p)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ResolvePath cleans raw into an absolute path within the area root.
// Existence is not checked.
func (b *BillyArea) ResolvePath(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", fmt.Errorf("resolve: empty path")
	}
	return cleanPath(raw), nil
}

var _ areafs.Area = (*BillyArea)(nil)
