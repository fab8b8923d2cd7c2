package blocks

import "strconv"

// SegmentKind distinguishes raw markup from block references.
type SegmentKind int

const (
	// SegmentText is raw markup to be rendered verbatim.
	SegmentText SegmentKind = iota

	// SegmentBlock references Result.Blocks[Index].
	SegmentBlock

	// SegmentMalformed is a tag skipped by ParseLenient. Text holds the raw
	// tag and Index references Result.Errors.
	SegmentMalformed
)

// String returns the kind name.
func (k SegmentKind) String() string {
	switch k {
	case SegmentText:
		return "text"
	case SegmentBlock:
		return "block"
	case SegmentMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Segment is one renderable piece of parsed content.
type Segment struct {
	Kind SegmentKind

	// Text is set for SegmentText and SegmentMalformed.
	Text string

	// Index is set for SegmentBlock and SegmentMalformed.
	Index int
}

// Split splits text around placeholder tokens, keeping each token as its
// own element. Empty fragments are preserved, so the result always has an
// odd length with tokens at the odd positions.
func Split(text string) []string {
	locs := PlaceholderPattern.FindAllStringIndex(text, -1)
	parts := make([]string, 0, 2*len(locs)+1)
	last := 0
	for _, loc := range locs {
		parts = append(parts, text[last:loc[0]], text[loc[0]:loc[1]])
		last = loc[1]
	}
	return append(parts, text[last:])
}

// PlaceholderIndex returns the block index encoded in a placeholder token.
// It reports false if s is not exactly one placeholder.
func PlaceholderIndex(s string) (int, bool) {
	m := placeholderExact.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	i, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return i, true
}

// Segments splits r.Text into text and block segments in source order.
// Tags skipped by ParseLenient come out as SegmentMalformed instead of
// text. Empty text fragments are omitted. A placeholder whose index has no
// block is dropped silently.
func (r *Result) Segments() []Segment {
	parts := Split(r.Text)
	segs := make([]Segment, 0, len(parts)+len(r.Errors))
	pos, next := 0, 0
	for _, part := range parts {
		start := pos
		pos += len(part)
		if i, ok := PlaceholderIndex(part); ok {
			if i < len(r.Blocks) {
				segs = append(segs, Segment{Kind: SegmentBlock, Index: i})
			}
			continue
		}
		segs = r.appendText(segs, part, start, &next)
	}
	return segs
}

// appendText appends the text fragment found at byte start of r.Text,
// cutting out the malformed tags it contains. next is the first error not
// yet placed.
func (r *Result) appendText(segs []Segment, text string, start int, next *int) []Segment {
	last := 0
	for ; *next < len(r.Errors); *next++ {
		e := r.Errors[*next]
		off := e.TextOffset - start
		if off < last {
			// Split apart by placeholder text inside the tag; left as text.
			continue
		}
		if off+len(e.Raw) > len(text) {
			break
		}
		if off > last {
			segs = append(segs, Segment{Kind: SegmentText, Text: text[last:off]})
		}
		segs = append(segs, Segment{Kind: SegmentMalformed, Text: e.Raw, Index: *next})
		last = off + len(e.Raw)
	}
	if last < len(text) {
		segs = append(segs, Segment{Kind: SegmentText, Text: text[last:]})
	}
	return segs
}

// Block returns the tag a block segment refers to.
func (r *Result) Block(seg Segment) (Tag, bool) {
	if seg.Kind != SegmentBlock || seg.Index < 0 || seg.Index >= len(r.Blocks) {
		return Tag{}, false
	}
	return r.Blocks[seg.Index], true
}

// Segments is a convenience function combining Parse and Result.Segments.
func Segments(content string) ([]Segment, []Tag, error) {
	res, err := Parse(content)
	if err != nil {
		return nil, nil, err
	}
	return res.Segments(), res.Blocks, nil
}
