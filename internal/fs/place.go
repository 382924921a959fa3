package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/eykd/svcrpt/internal/domain"
)

// OSPlacer copies or moves documents into <Base>/<category>/<name>.
type OSPlacer struct {
	Base string
	Move bool
}

// Place puts doc into the folder for category. An existing file of the same
// name is never overwritten; the new copy gets a _duplicate suffix.
func (p *OSPlacer) Place(ctx context.Context, doc domain.Document, category domain.Category) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir := filepath.Join(p.Base, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	dest, err := FreePath(filepath.Join(dir, doc.Name))
	if err != nil {
		return "", err
	}
	if p.Move {
		err = MoveFile(doc.Path, dest)
	} else {
		err = CopyFile(doc.Path, dest)
	}
	if err != nil {
		return "", err
	}
	return dest, nil
}

// FreePath returns path, or the first of path_duplicate, path_duplicate2,
// ... (suffix before the extension) that does not exist yet.
func FreePath(path string) (string, error) {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	candidate := path
	for n := 1; ; n++ {
		_, err := os.Lstat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("checking %s: %w", candidate, err)
		}
		if n == 1 {
			candidate = base + "_duplicate" + ext
		} else {
			candidate = fmt.Sprintf("%s_duplicate%d%s", base, n, ext)
		}
	}
}

// CopyFile copies src to dst, keeping the permission bits and modification time.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}

// MoveFile renames src to dst, falling back to copy and remove across devices.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}

// OSWriter writes artifacts under Root, creating directories as needed.
type OSWriter struct {
	Root string
}

// WriteFile writes content to name under Root.
func (w *OSWriter) WriteFile(_ context.Context, name, content string) error {
	path := filepath.Join(w.Root, name)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

// FindConfig walks up from dir looking for a file called name and returns
// its path.
func FindConfig(dir, name string) (string, error) {
	for {
		candidate := filepath.Join(dir, name)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			return candidate, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no %s found", name)
		}
		dir = parent
	}
}

// ReplaceFile atomically rewrites the existing file at path, keeping its mode.
func ReplaceFile(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".svcrpt-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), info.Mode().Perm()); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
