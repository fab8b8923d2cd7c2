package blog

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace   = regexp.MustCompile(`\s+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// Slug derives a URL path segment from a title: lowercased, diacritics
// folded to their base letters, anything but letters, digits, spaces and
// hyphens removed, whitespace runs turned into a hyphen, and hyphen runs
// collapsed. Leading and trailing hyphens are trimmed.
//
//	Slug("Héllo, World!") == "hello-world"
//
// The result may be empty for titles with no usable characters.
func Slug(title string) string {
	s := strings.ToLower(foldDiacritics(title))
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugSpace.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func foldDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
