// Package backup archives a previously generated catalog before it is
// overwritten, either into a local directory or into a MinIO bucket.
package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alnah/go-catalog2pdf/internal/fileutil"
)

// ErrArchive wraps any failure to archive an existing output.
var ErrArchive = errors.New("backup failed")

// Archiver moves an existing output out of the way.
// Archive returns the archived location, or "" when there was nothing to archive.
type Archiver interface {
	Archive(ctx context.Context, path string) (string, error)
}

// DirArchiver renames outputs into a directory as <name>-<timestamp><ext>.
type DirArchiver struct {
	dir string
	now func() time.Time
}

// NewDirArchiver creates a DirArchiver. dir is created on first use.
func NewDirArchiver(dir string) *DirArchiver {
	return &DirArchiver{dir: dir, now: time.Now}
}

// Archive moves path into the backup directory.
func (a *DirArchiver) Archive(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !fileutil.FileExists(path) {
		return "", nil
	}
	if err := os.MkdirAll(a.dir, 0o750); err != nil {
		return "", fmt.Errorf("%w: creating %s: %v", ErrArchive, a.dir, err)
	}

	dest := filepath.Join(a.dir, fileutil.TimestampedName(path, a.now()))
	if err := moveFile(path, dest); err != nil {
		return "", fmt.Errorf("%w: %v", ErrArchive, err)
	}
	return dest, nil
}

// moveFile renames src to dst, copying when they are on different devices.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, syscall.EXDEV) {
		return err
	}

	in, err := os.Open(src) // #nosec G304 -- output path is operator-provided
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

// Compile-time interface checks.
var (
	_ Archiver = (*DirArchiver)(nil)
	_ Archiver = (*MinIOArchiver)(nil)
)
