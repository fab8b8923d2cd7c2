// Package blocks parses the inline block markup embedded in post content.
//
// A block tag instructs the renderer to substitute a rich widget at that
// position in the post body:
//
//	<p>Our favourites this week:</p>
//	{{block name="Top Picks" image="/promo.jpg" products="SKU1, SKU2,SKU3"}}
//
// Attributes are whitespace-separated key="value" or key='value' pairs. The
// name attribute is mandatory. The products attribute is split on commas and
// each piece is trimmed, every other attribute is kept as a plain string.
//
// Core types:
//   - Tag: one parsed block tag with its ordered attributes
//   - Result: the content with each tag replaced by a placeholder, plus the tags
//   - Segment: a text fragment or a block reference, produced from a Result
//
// Example usage:
//
//	res, err := blocks.Parse(post.Content)
//	if err != nil {
//	    return err // *MalformedBlockError
//	}
//	for _, seg := range res.Segments() {
//	    switch seg.Kind {
//	    case blocks.SegmentText:
//	        out.WriteString(seg.Text)
//	    case blocks.SegmentBlock:
//	        tag, _ := res.Block(seg)
//	        renderWidget(out, tag)
//	    }
//	}
//
// # Placeholders
//
// Result.Text keeps the __BLOCK_PLACEHOLDER_<n>__ format so that stored
// content and external tooling relying on it keep working. Callers that only
// render should prefer Result.Segments, which never exposes placeholder text.
//
// # Limitations
//
// Tags do not nest: the outer scan stops at the first "}}", so an attribute
// value containing "}}" truncates the tag. Attribute values that literally
// contain placeholder text are not escaped and will be misread by Split.
package blocks
