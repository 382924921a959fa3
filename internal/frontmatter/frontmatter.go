// Package frontmatter reads and writes the YAML blocks that open Markdown
// documents.
package frontmatter

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrUnclosed is returned when an opening delimiter has no closing one.
var ErrUnclosed = errors.New("unclosed frontmatter")

// Split separates a document into frontmatter and body. Frontmatter is
// delimited by --- on its own line; LF and CRLF line endings are accepted.
func Split(input string) (string, string, error) {
	var rest string
	switch {
	case strings.HasPrefix(input, "---\n"):
		rest = input[4:]
	case strings.HasPrefix(input, "---\r\n"):
		rest = input[5:]
	default:
		return "", input, nil
	}

	pos := 0
	for pos < len(rest) {
		line := rest[pos:]
		next := len(rest)
		if nl := strings.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
			next = pos + nl + 1
		}
		if strings.TrimSuffix(line, "\r") == "---" {
			return rest[:pos], rest[next:], nil
		}
		pos = next
	}
	return "", "", ErrUnclosed
}

// Strip returns the body of a document without its frontmatter. A document
// whose frontmatter never closes is returned unchanged.
func Strip(input string) string {
	_, body, err := Split(input)
	if err != nil {
		return input
	}
	return body
}

// Serialize combines frontmatter and body into a complete document.
func Serialize(fm string, body string) string {
	if fm != "" && !strings.HasSuffix(fm, "\n") {
		fm += "\n"
	}
	return "---\n" + fm + "---\n" + body
}

// StackHeader is the metadata written at the top of a stack file.
type StackHeader struct {
	Stack       string    `yaml:"stack"`
	ID          string    `yaml:"id"`
	Generated   time.Time `yaml:"generated"`
	Reports     int       `yaml:"reports"`
	Words       int       `yaml:"words"`
	Tokens      int       `yaml:"tokens"`
	TokensExact bool      `yaml:"tokens_exact"`
	Sources     []string  `yaml:"sources,omitempty"`
}

// Encode marshals v as a YAML frontmatter block.
func Encode(v any) (string, error) {
	data, err := yaml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	return string(data), nil
}

// Decode parses the frontmatter of input into v. It reports false when the
// document has none.
func Decode(input string, v any) (bool, error) {
	fm, _, err := Split(input)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(fm) == "" {
		return false, nil
	}
	if err := yaml.Unmarshal([]byte(fm), v); err != nil {
		return false, fmt.Errorf("decoding frontmatter: %w", err)
	}
	return true, nil
}
