// Package fs provides the filesystem adapters behind the sorter and stack
// services: discovery, decoding, placement and artifact writing.
package fs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eykd/svcrpt/internal/domain"
)

// Discoverer finds report files under Root.
type Discoverer struct {
	Root      string
	Recursive bool
	// Extensions lists enabled extensions, with leading dot. Matching
	// ignores case.
	Extensions []string
	// IgnoredDirs matches a directory by name at any depth, or by its path
	// relative to Root.
	IgnoredDirs []string
}

// Discover walks Root and returns matching documents sorted by relative path.
func (d *Discoverer) Discover(ctx context.Context) (domain.Listing, error) {
	var listing domain.Listing

	info, err := os.Stat(d.Root)
	if err != nil {
		return listing, fmt.Errorf("reading source directory %s: %w", d.Root, err)
	}
	if !info.IsDir() {
		return listing, fmt.Errorf("source %s is not a directory", d.Root)
	}

	err = filepath.WalkDir(d.Root, func(path string, e fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			return err
		}
		if e.IsDir() {
			if rel != "." && !d.Recursive {
				return fs.SkipDir
			}
			return nil
		}
		if !d.enabled(e.Name()) {
			return nil
		}
		if d.ignored(filepath.Dir(rel)) {
			listing.Skipped++
			return nil
		}
		listing.Documents = append(listing.Documents, domain.Document{
			Path:    path,
			RelPath: rel,
			Name:    e.Name(),
			Dir:     filepath.Dir(rel),
		})
		return nil
	})
	if err != nil {
		return domain.Listing{}, fmt.Errorf("walking %s: %w", d.Root, err)
	}

	sort.Slice(listing.Documents, func(i, j int) bool {
		return listing.Documents[i].RelPath < listing.Documents[j].RelPath
	})
	return listing, nil
}

func (d *Discoverer) enabled(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range d.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// ignored reports whether relDir is, or sits inside, an ignored directory.
func (d *Discoverer) ignored(relDir string) bool {
	if relDir == "." || len(d.IgnoredDirs) == 0 {
		return false
	}
	parts := strings.Split(filepath.ToSlash(relDir), "/")
	for _, ig := range d.IgnoredDirs {
		ig = strings.Trim(filepath.ToSlash(ig), "/")
		if ig == "" {
			continue
		}
		if strings.Contains(ig, "/") {
			slashed := filepath.ToSlash(relDir)
			if slashed == ig || strings.HasPrefix(slashed, ig+"/") {
				return true
			}
			continue
		}
		for _, p := range parts {
			if p == ig {
				return true
			}
		}
	}
	return false
}
