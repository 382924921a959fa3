package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding is returned for files that are not valid UTF-8 and
// carry no UTF-16 byte order mark.
var ErrInvalidEncoding = errors.New("file is not valid UTF-8")

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// OSLoader reads report files from disk.
type OSLoader struct{}

// Load reads path and returns its text with any byte order mark removed.
func (OSLoader) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return Decode(data)
}

// Decode converts raw file bytes to text. UTF-8 and BOM-marked UTF-16 are
// accepted.
func Decode(data []byte) (string, error) {
	utf16 := bytes.HasPrefix(data, bomUTF16LE) || bytes.HasPrefix(data, bomUTF16BE)
	if !utf16 && !utf8.Valid(data) {
		return "", ErrInvalidEncoding
	}
	out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
	if err != nil {
		return "", fmt.Errorf("decoding: %w", err)
	}
	return string(out), nil
}
