// Package manifest parses the files that group reports into named stacks.
package manifest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoStacks is returned when a manifest defines no stack.
var ErrNoStacks = errors.New("no stacks defined")

// Stack is one named group of report file names, in manifest order.
type Stack struct {
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// Parse reads a manifest. Files ending in .yaml or .yml are parsed as YAML;
// anything else uses the Markdown heading format.
func Parse(name, content string) ([]Stack, error) {
	var (
		stacks []Stack
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		stacks, err = parseYAML(content)
	default:
		stacks, err = parseMarkdown(content)
	}
	if err != nil {
		return nil, err
	}
	if len(stacks) == 0 {
		return nil, ErrNoStacks
	}
	return stacks, nil
}

// parseMarkdown reads "### Name" headings, each followed by "- file" items.
// Blank lines, HTML comment lines and items before the first heading are
// ignored. A repeated heading continues the earlier stack.
func parseMarkdown(content string) ([]Stack, error) {
	var stacks []Stack
	index := map[string]int{}
	cur := -1

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "<!--"):
		case strings.HasPrefix(line, "###"):
			name := strings.TrimSpace(strings.TrimLeft(line, "# "))
			if name == "" {
				cur = -1
				continue
			}
			i, ok := index[name]
			if !ok {
				i = len(stacks)
				index[name] = i
				stacks = append(stacks, Stack{Name: name})
			}
			cur = i
		case cur >= 0 && strings.HasPrefix(line, "-"):
			if file := strings.TrimSpace(strings.TrimLeft(line, "- ")); file != "" {
				stacks[cur].Files = append(stacks[cur].Files, file)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	return stacks, nil
}

type yamlManifest struct {
	Stacks []Stack `yaml:"stacks"`
}

func parseYAML(content string) ([]Stack, error) {
	var m yamlManifest
	if err := yaml.Unmarshal([]byte(content), &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, s := range m.Stacks {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("parsing manifest: stack %d has no name", i+1)
		}
	}
	return m.Stacks, nil
}

// ParseTitles reads folder,title rows mapping folder stacks to readable
// names. A first row of folder,title is treated as a header. Rows with an
// empty folder or title are skipped.
func ParseTitles(r io.Reader) (map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	titles := map[string]string{}
	first := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading titles: %w", err)
		}
		if first {
			first = false
			if len(rec) >= 2 && strings.EqualFold(strings.TrimSpace(rec[0]), "folder") {
				continue
			}
		}
		if len(rec) < 2 {
			continue
		}
		folder := filepath.ToSlash(strings.TrimSpace(rec[0]))
		title := strings.TrimSpace(rec[1])
		if folder == "" || title == "" {
			continue
		}
		titles[folder] = title
	}
	return titles, nil
}
