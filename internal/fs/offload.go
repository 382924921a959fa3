package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// OffloadResult reports what an Offloader did.
type OffloadResult struct {
	Moved   []string
	Missing []string
	Failed  map[string]error
	// Remaining counts report files still in the input folder.
	Remaining int
}

// Offloader moves reports that were sorted as unstructured out of the input
// folder. A file is offloaded when a file of the same name sits in
// Unstructured.
type Offloader struct {
	Input        string
	Unstructured string
	Offload      string
	Extension    string
}

// Run performs the moves. Per-file failures are collected, not returned.
func (o *Offloader) Run(ctx context.Context) (OffloadResult, error) {
	res := OffloadResult{Failed: map[string]error{}}
	for _, dir := range []string{o.Unstructured, o.Input} {
		if _, err := os.Stat(dir); err != nil {
			return res, fmt.Errorf("offload: %w", err)
		}
	}
	if err := os.MkdirAll(o.Offload, 0o755); err != nil {
		return res, fmt.Errorf("offload: creating %s: %w", o.Offload, err)
	}

	names, err := o.list(o.Unstructured)
	if err != nil {
		return res, err
	}
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		src := filepath.Join(o.Input, name)
		if _, err := os.Stat(src); errors.Is(err, os.ErrNotExist) {
			res.Missing = append(res.Missing, name)
			continue
		}
		dest, err := FreePath(filepath.Join(o.Offload, name))
		if err == nil {
			err = MoveFile(src, dest)
		}
		if err != nil {
			res.Failed[name] = err
			continue
		}
		res.Moved = append(res.Moved, dest)
	}

	left, err := o.list(o.Input)
	if err != nil {
		return res, err
	}
	res.Remaining = len(left)
	return res, nil
}

func (o *Offloader) list(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("offload: reading %s: %w", dir, err)
	}
	ext := o.Extension
	if ext == "" {
		ext = ".md"
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ext) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}
