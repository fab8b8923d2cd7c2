package excerpt

import (
	"math"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/randalmurphal/blogkit/blocks"
)

// DefaultSnippetWords is the snippet length used for listing cards.
const DefaultSnippetWords = 30

// WordsPerMinute is the reading speed ReadingTime assumes.
const WordsPerMinute = 200

// PlainText strips block tags, malformed ones included, and markup from
// content and collapses runs of whitespace to single spaces. Character
// references are decoded. Text inside script and style elements is dropped.
func PlainText(content string) string {
	var text strings.Builder
	for _, seg := range blocks.ParseLenient(content).Segments() {
		if seg.Kind == blocks.SegmentText {
			text.WriteString(seg.Text)
		}
		text.WriteByte(' ')
	}

	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(text.String()))
	skip := 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, or a reader error; either way keep what was collected.
			return strings.Join(strings.Fields(sb.String()), " ")

		case html.TextToken:
			if skip == 0 {
				sb.Write(z.Text())
			}

		case html.StartTagToken:
			name, _ := z.TagName()
			if isRawText(name) {
				skip++
			}
			sb.WriteByte(' ')

		case html.EndTagToken:
			name, _ := z.TagName()
			if isRawText(name) && skip > 0 {
				skip--
			}
			sb.WriteByte(' ')

		case html.SelfClosingTagToken:
			sb.WriteByte(' ')
		}
	}
}

func isRawText(tag []byte) bool {
	s := string(tag)
	return s == "script" || s == "style"
}

// Snippet returns the first maxWords words of the plain text of content,
// followed by "..." when anything was cut.
func Snippet(content string, maxWords int) string {
	text := PlainText(content)
	out, _ := Words().Truncate(text, maxWords)
	return out
}

// ReadingTime estimates how long content takes to read, rounded up to
// whole minutes. Non-empty content takes at least one minute.
func ReadingTime(content string) time.Duration {
	words := CountWords(PlainText(content))
	if words == 0 {
		return 0
	}
	minutes := math.Ceil(float64(words) / WordsPerMinute)
	return time.Duration(minutes) * time.Minute
}
