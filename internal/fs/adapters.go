package fs

import (
	"github.com/eykd/svcrpt/internal/frontmatter"
	"github.com/eykd/svcrpt/internal/slug"
	"github.com/eykd/svcrpt/internal/stack"
	"github.com/eykd/svcrpt/internal/tokens"
)

// SlugAdapter implements stack.Namer using the slug package.
type SlugAdapter struct{}

// Filename converts a stack name to a file name stem.
func (SlugAdapter) Filename(name string) string { return slug.Filename(name) }

// Slug converts a stack name to an identifier.
func (SlugAdapter) Slug(name string) string { return slug.Slug(name) }

// FMAdapter implements stack.Frontmatter using the frontmatter package.
type FMAdapter struct{}

// Strip removes a report's frontmatter.
func (FMAdapter) Strip(doc string) string { return frontmatter.Strip(doc) }

// Render prefixes body with the YAML header of a stack.
func (FMAdapter) Render(h stack.Header, body string) (string, error) {
	fm, err := frontmatter.Encode(frontmatter.StackHeader{
		Stack:       h.Name,
		ID:          h.ID,
		Generated:   h.Generated,
		Reports:     len(h.Reports),
		Words:       h.Count.Words,
		Tokens:      h.Count.Tokens,
		TokensExact: h.Count.Exact,
		Sources:     h.Reports,
	})
	if err != nil {
		return "", err
	}
	return frontmatter.Serialize(fm, body), nil
}

// TokenAdapter implements stack.Counter over a tokens.Counter.
type TokenAdapter struct {
	Counter tokens.Counter
}

// Count measures text.
func (a TokenAdapter) Count(text string) stack.Count {
	c := a.Counter.Count(text)
	return stack.Count{Tokens: c.Tokens, Words: c.Words, Exact: c.Exact}
}

// Summary renders the console line for one stack.
func (TokenAdapter) Summary(name string, files int, c stack.Count) string {
	return tokens.FormatSummary(name, files, tokens.Count{Tokens: c.Tokens, Words: c.Words, Exact: c.Exact})
}
