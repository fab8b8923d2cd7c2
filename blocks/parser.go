package blocks

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Reserved attribute keys.
const (
	// KeyName is the mandatory attribute naming the block variant.
	KeyName = "name"

	// KeyProducts holds a comma-separated SKU list.
	KeyProducts = "products"

	// KeyImage is the optional image URL shown by most widgets.
	KeyImage = "image"
)

const (
	placeholderPrefix = "__BLOCK_PLACEHOLDER_"
	placeholderSuffix = "__"
)

// space is the whitespace allowed between tag parts. Beyond ASCII it takes
// NBSP and the other Unicode space separators, so pasted rich text parses.
const space = `[\t\n\v\f\r\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

// lineBreak lists the characters a quoted value cannot span.
const lineBreak = `\r\n\x{2028}\x{2029}`

var (
	// tagPattern matches a whole {{block ...}} occurrence.
	// The attribute run stops at the first '}', so tags cannot nest.
	tagPattern = regexp.MustCompile(`\{\{block` + space + `+([^}]+)\}\}`)

	// attrPattern matches key="value" or key='value'.
	// A value runs up to the matching quote and does not cross a line break.
	attrPattern = regexp.MustCompile(`(\w+)` + space + `*=` + space + `*` +
		`(?:"([^"` + lineBreak + `]*)"|'([^'` + lineBreak + `]*)')`)

	// PlaceholderPattern matches placeholder tokens in Result.Text.
	PlaceholderPattern = regexp.MustCompile(placeholderPrefix + `\d+` + placeholderSuffix)

	placeholderExact = regexp.MustCompile(`^` + placeholderPrefix + `(\d+)` + placeholderSuffix + `$`)
)

// Attr is a single attribute of a block tag.
type Attr struct {
	Key string

	// Value is the raw attribute value. For list-valued keys it is the
	// unsplit string as written in the tag.
	Value string

	// List is non-nil only for list-valued keys (products).
	List []string
}

// IsList reports whether the attribute holds a list value.
func (a Attr) IsList() bool {
	return a.List != nil
}

// Tag is one parsed {{block ...}} occurrence.
type Tag struct {
	// Name is the block variant, e.g. "Top Picks". Never empty.
	Name string

	// Attrs holds every attribute except name, in declaration order.
	// A duplicated key keeps the position of its first declaration and
	// the value of its last.
	Attrs []Attr

	// Raw is the full matched tag text.
	Raw string

	// Offset is the byte offset of Raw in the parsed content.
	Offset int
}

// Get returns the attribute with the given key.
func (t Tag) Get(key string) (Attr, bool) {
	for _, a := range t.Attrs {
		if a.Key == key {
			return a, true
		}
	}
	return Attr{}, false
}

// Value returns the string value of an attribute, or "" if absent.
func (t Tag) Value(key string) string {
	a, _ := t.Get(key)
	return a.Value
}

// Image returns the image attribute, or "" if absent.
func (t Tag) Image() string {
	return t.Value(KeyImage)
}

// Products returns the SKU list, or nil if the tag has no products attribute.
func (t Tag) Products() []string {
	a, ok := t.Get(KeyProducts)
	if !ok {
		return nil
	}
	return a.List
}

// Map flattens the tag into a map, including the name. List values are
// stored as []string, everything else as string.
func (t Tag) Map() map[string]any {
	m := make(map[string]any, len(t.Attrs)+1)
	m[KeyName] = t.Name
	for _, a := range t.Attrs {
		if a.IsList() {
			m[a.Key] = a.List
		} else {
			m[a.Key] = a.Value
		}
	}
	return m
}

// Result is the outcome of parsing one content string.
type Result struct {
	// Text is the content with each recognised tag replaced by
	// Placeholder(i), where i indexes Blocks.
	Text string

	// Blocks holds the parsed tags in source order.
	Blocks []Tag

	// Errors lists the tags skipped by ParseLenient. Always empty after Parse.
	Errors []*MalformedBlockError
}

// Placeholder returns the token substituted for the i-th block.
func Placeholder(i int) string {
	return placeholderPrefix + strconv.Itoa(i) + placeholderSuffix
}

// Parse replaces every block tag in content with a placeholder and returns
// the tags in source order.
//
// A tag without a name attribute aborts the whole parse with a
// *MalformedBlockError and no partial result.
func Parse(content string) (*Result, error) {
	return scan(content, true)
}

// ParseLenient is like Parse but never fails. Malformed tags are left in the
// text verbatim, recorded in Result.Errors, and take no block index.
func ParseLenient(content string) *Result {
	res, _ := scan(content, false)
	return res
}

// scan runs the outer tag pattern once over content and substitutes each
// match as it is visited. All state is local to the call.
func scan(content string, strict bool) (*Result, error) {
	matches := tagPattern.FindAllStringSubmatchIndex(content, -1)
	res := &Result{Blocks: make([]Tag, 0, len(matches))}
	if len(matches) == 0 {
		res.Text = content
		return res, nil
	}

	var sb strings.Builder
	sb.Grow(len(content))
	last := 0

	for _, m := range matches {
		raw := content[m[0]:m[1]]
		sb.WriteString(content[last:m[0]])
		last = m[1]

		tag, ok := parseTag(content[m[2]:m[3]])
		if !ok {
			merr := &MalformedBlockError{Offset: m[0], Raw: raw}
			if strict {
				return nil, merr
			}
			merr.TextOffset = sb.Len()
			res.Errors = append(res.Errors, merr)
			sb.WriteString(raw)
			continue
		}

		tag.Raw = raw
		tag.Offset = m[0]
		res.Blocks = append(res.Blocks, tag)
		sb.WriteString(Placeholder(len(res.Blocks) - 1))
	}
	sb.WriteString(content[last:])

	res.Text = sb.String()
	return res, nil
}

// parseTag extracts the attributes of one tag. It reports false when the
// name attribute is missing or empty.
func parseTag(attrs string) (Tag, bool) {
	var (
		tag     Tag
		hasName bool
		index   = make(map[string]int)
	)

	for _, m := range attrPattern.FindAllStringSubmatchIndex(attrs, -1) {
		key := attrs[m[2]:m[3]]
		var value string
		if m[4] >= 0 {
			value = attrs[m[4]:m[5]]
		} else {
			value = attrs[m[6]:m[7]]
		}

		if key == KeyName {
			tag.Name = value
			hasName = true
			continue
		}

		attr := Attr{Key: key, Value: value}
		if key == KeyProducts {
			attr.List = splitList(value)
		}

		if i, seen := index[key]; seen {
			tag.Attrs[i] = attr
			continue
		}
		index[key] = len(tag.Attrs)
		tag.Attrs = append(tag.Attrs, attr)
	}

	if !hasName || tag.Name == "" {
		return Tag{}, false
	}
	return tag, true
}

// splitList splits on commas and trims each piece. Empty pieces are kept so
// the result mirrors the written list position for position.
func splitList(value string) []string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimFunc(parts[i], isSpace)
	}
	return parts
}

// isSpace reports whether r is matched by the space class.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\u2028', '\u2029', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Zs, r)
}
