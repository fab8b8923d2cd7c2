package excerpt

import (
	"strings"
	"unicode"
)

// Ellipsis marks text cut by a Truncator.
const Ellipsis = "..."

// Truncator keeps the start of a text within a size limit measured by its
// Counter. Cuts fall on word boundaries unless the first word alone is
// over the limit, and never split a character.
type Truncator struct {
	Counter Counter

	// Marker is appended after a cut. It does not count against the limit.
	Marker string
}

// Words returns a truncator that limits text to a number of words.
func Words() Truncator {
	return Truncator{Counter: WordCounter{}, Marker: Ellipsis}
}

// Runes returns a truncator that limits text to a number of characters.
func Runes() Truncator {
	return Truncator{Counter: RuneCounter{}, Marker: Ellipsis}
}

// Truncate returns text cut to limit and whether a cut was made. A limit
// of zero or less cuts everything, leaving an empty string.
func (t Truncator) Truncate(text string, limit int) (string, bool) {
	if t.Counter.FitsInLimit(text, limit) {
		return text, false
	}
	if limit <= 0 {
		return "", true
	}

	runes := []rune(text)
	head := strings.TrimRightFunc(string(runes[:t.cut(runes, limit)]), unicode.IsSpace)
	return head + t.Marker, true
}

// cut returns the length of the longest prefix of runes within limit,
// moved back to the last word boundary when it ends inside a word.
func (t Truncator) cut(runes []rune, limit int) int {
	// Largest n with runes[:n] in limit; sizes only grow with n.
	n := searchLast(len(runes), func(n int) bool {
		return t.Counter.FitsInLimit(string(runes[:n]), limit)
	})
	if n == 0 || n == len(runes) || unicode.IsSpace(runes[n]) || unicode.IsSpace(runes[n-1]) {
		return n
	}
	for i := n - 1; i > 0; i-- {
		if unicode.IsSpace(runes[i]) {
			return i
		}
	}
	return n
}

// searchLast returns the largest n in [0, size] for which ok holds, given
// that ok(0) holds and ok is monotonically non-increasing.
func searchLast(size int, ok func(int) bool) int {
	lo, hi := 0, size
	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if ok(mid) {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}
