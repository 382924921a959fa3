package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Count
	}{
		{"empty", "", Count{}},
		{"three words", "one two three", Count{Tokens: 3, Words: 3}},
		{"truncates", "a b c d e f g h i j", Count{Tokens: 13, Words: 10}},
		{"hundred words", repeat("w ", 100), Count{Tokens: 133, Words: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Estimate(tt.text))
			assert.Equal(t, tt.want, Estimator{}.Count(tt.text))
		})
	}
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

func TestTiktoken_Count(t *testing.T) {
	c, err := NewTiktoken("gpt-4")
	require.NoError(t, err)

	got := c.Count("hello world")

	assert.True(t, got.Exact)
	assert.Equal(t, 2, got.Words)
	assert.Equal(t, 2, got.Tokens)
}

func TestNewCounter_UnknownModelFallsBack(t *testing.T) {
	c, err := NewCounter("no-such-model")

	assert.Error(t, err)
	require.NotNil(t, c)
	assert.False(t, c.Count("one two").Exact)
}

func TestNewCounter_KnownModel(t *testing.T) {
	c, err := NewCounter("gpt-4")

	require.NoError(t, err)
	assert.True(t, c.Count("one two").Exact)
}

func TestFormatSummary(t *testing.T) {
	tests := []struct {
		name  string
		stack string
		files int
		count Count
		want  string
	}{
		{
			name:  "exact",
			stack: "North Lobby",
			files: 3,
			count: Count{Tokens: 1611, Words: 1204, Exact: true},
			want:  "Stack: North Lobby [3 files, 1,204 words, 1,611 tokens]",
		},
		{
			name:  "estimate",
			stack: "South",
			files: 12,
			count: Count{Tokens: 1330000, Words: 1000000},
			want:  "Stack: South [12 files, 1,000,000 words, est. ~1,330,000 tokens]",
		},
		{
			name:  "small numbers",
			stack: "x",
			files: 1,
			count: Count{Tokens: 5, Words: 4, Exact: true},
			want:  "Stack: x [1 files, 4 words, 5 tokens]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSummary(tt.stack, tt.files, tt.count))
		})
	}
}
