package domain

import (
	"sort"
	"strings"
)

// WordCount returns the number of whitespace-separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// WordStats summarizes the word counts of one report category.
type WordStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    int     `json:"min"`
	Max    int     `json:"max"`
	Total  int     `json:"total"`
}

// Summarize computes WordStats for counts. Empty input yields zero stats.
func Summarize(counts []int) WordStats {
	if len(counts) == 0 {
		return WordStats{}
	}
	sorted := append([]int(nil), counts...)
	sort.Ints(sorted)

	st := WordStats{Count: len(sorted), Min: sorted[0], Max: sorted[len(sorted)-1]}
	for _, c := range sorted {
		st.Total += c
	}
	st.Mean = float64(st.Total) / float64(st.Count)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		st.Median = float64(sorted[mid])
	} else {
		st.Median = float64(sorted[mid-1]+sorted[mid]) / 2
	}
	return st
}

// CodeCount is one row of an error frequency table.
type CodeCount struct {
	Code  string   `json:"code"`
	Count int      `json:"count"`
	Files []string `json:"files"`
}

// Tally counts how often each rendered code occurs across files, keeping the
// files each code was seen in. Rows are ordered by count, most frequent
// first, with ties broken by code.
func Tally(fileCodes map[string][]Code) []CodeCount {
	byCode := make(map[string]*CodeCount)
	names := make([]string, 0, len(fileCodes))
	for name := range fileCodes {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, c := range fileCodes[name] {
			key := c.String()
			row, ok := byCode[key]
			if !ok {
				row = &CodeCount{Code: key}
				byCode[key] = row
			}
			row.Count++
			row.Files = append(row.Files, name)
		}
	}

	out := make([]CodeCount, 0, len(byCode))
	for _, row := range byCode {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Code < out[j].Code
	})
	return out
}
