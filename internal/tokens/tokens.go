// Package tokens counts the language-model tokens in stacked reports.
package tokens

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/eykd/svcrpt/internal/domain"
)

// tokensPerWord is the rough token cost of one word when no encoder exists.
const tokensPerWord = 1.33

// Count is the size of a piece of text.
type Count struct {
	Tokens int  `json:"tokens"`
	Words  int  `json:"words"`
	Exact  bool `json:"exact"`
}

// Counter measures text.
type Counter interface {
	Count(text string) Count
}

// Estimator approximates tokens from the word count.
type Estimator struct{}

// Count returns an estimate.
func (Estimator) Count(text string) Count {
	return Estimate(text)
}

// Estimate returns words × 1.33, truncated, flagged as inexact.
func Estimate(text string) Count {
	words := domain.WordCount(text)
	return Count{Tokens: int(float64(words) * tokensPerWord), Words: words}
}

// Tiktoken counts tokens with a BPE encoder.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

var loaderOnce sync.Once

// NewTiktoken returns an exact counter for model. The BPE ranks are read from
// data embedded in the binary, so no network access happens.
func NewTiktoken(model string) (*Tiktoken, error) {
	loaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, fmt.Errorf("loading encoding for %q: %w", model, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count encodes text and reports the exact token count.
func (t *Tiktoken) Count(text string) Count {
	return Count{
		Tokens: len(t.enc.Encode(text, nil, nil)),
		Words:  domain.WordCount(text),
		Exact:  true,
	}
}

// NewCounter returns a Tiktoken counter for model, or an Estimator when the
// model is unknown. The error, if any, explains the fallback.
func NewCounter(model string) (Counter, error) {
	t, err := NewTiktoken(model)
	if err != nil {
		return Estimator{}, err
	}
	return t, nil
}

var printer = message.NewPrinter(language.English)

// FormatSummary renders the one-line console summary of a stack, e.g.
// "Stack: North [3 files, 1,204 words, 1,611 tokens]".
func FormatSummary(name string, files int, c Count) string {
	if c.Exact {
		return printer.Sprintf("Stack: %s [%d files, %d words, %d tokens]", name, files, c.Words, c.Tokens)
	}
	return printer.Sprintf("Stack: %s [%d files, %d words, est. ~%d tokens]", name, files, c.Words, c.Tokens)
}
