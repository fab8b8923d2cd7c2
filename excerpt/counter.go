package excerpt

import (
	"strings"
	"unicode/utf8"
)

// Counter measures the size of text.
type Counter interface {
	// Count returns the size of text in the counter's unit.
	Count(text string) int

	// FitsInLimit returns true if text is no larger than limit.
	FitsInLimit(text string, limit int) bool
}

// WordCounter counts whitespace-separated words.
type WordCounter struct{}

// Count returns the number of words in text.
func (WordCounter) Count(text string) int {
	return len(strings.Fields(text))
}

// FitsInLimit returns true if text has at most limit words.
func (c WordCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// RuneCounter counts Unicode code points.
type RuneCounter struct{}

// Count returns the number of runes in text.
func (RuneCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// FitsInLimit returns true if text has at most limit runes.
func (c RuneCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// CountWords counts the words of text.
func CountWords(text string) int {
	return WordCounter{}.Count(text)
}
