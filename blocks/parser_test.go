package blocks

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Parse Tests
// =============================================================================

func TestParse_NoTags(t *testing.T) {
	tests := []string{
		"",
		"<p>plain</p>",
		"{{title}} is not a block",
		"{{blockname=\"A\"}}",
		"{{block}}",
	}

	for _, content := range tests {
		t.Run(content, func(t *testing.T) {
			res, err := Parse(content)
			require.NoError(t, err)
			assert.Equal(t, content, res.Text)
			assert.NotNil(t, res.Blocks)
			assert.Empty(t, res.Blocks)
			assert.Empty(t, res.Errors)
		})
	}
}

func TestParse_WireSyntax(t *testing.T) {
	content := `{{block name="Top Picks" image="/promo.jpg" products="SKU1, SKU2,SKU3"}}`

	res, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "__BLOCK_PLACEHOLDER_0__", res.Text)
	require.Len(t, res.Blocks, 1)

	tag := res.Blocks[0]
	assert.Equal(t, "Top Picks", tag.Name)
	assert.Equal(t, "/promo.jpg", tag.Image())
	assert.Equal(t, []string{"SKU1", "SKU2", "SKU3"}, tag.Products())
	assert.Equal(t, content, tag.Raw)
	assert.Equal(t, 0, tag.Offset)

	require.Len(t, tag.Attrs, 2)
	assert.Equal(t, "image", tag.Attrs[0].Key)
	assert.Equal(t, "products", tag.Attrs[1].Key)
	assert.Equal(t, "SKU1, SKU2,SKU3", tag.Attrs[1].Value)
	assert.True(t, tag.Attrs[1].IsList())
	assert.False(t, tag.Attrs[0].IsList())
}

func TestParse_EndToEnd(t *testing.T) {
	content := "<p>intro</p>{{block name='Image Showcase' image='/a.png'}}<p>outro</p>"

	res, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "<p>intro</p>__BLOCK_PLACEHOLDER_0__<p>outro</p>", res.Text)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "Image Showcase", res.Blocks[0].Name)
	assert.Equal(t, []Attr{{Key: "image", Value: "/a.png"}}, res.Blocks[0].Attrs)
	assert.Equal(t, 12, res.Blocks[0].Offset)

	segs := res.Segments()
	require.Len(t, segs, 3)
	assert.Equal(t, Segment{Kind: SegmentText, Text: "<p>intro</p>"}, segs[0])
	assert.Equal(t, Segment{Kind: SegmentBlock, Index: 0}, segs[1])
	assert.Equal(t, Segment{Kind: SegmentText, Text: "<p>outro</p>"}, segs[2])
}

func TestParse_ProductsSplitting(t *testing.T) {
	tests := []struct {
		name     string
		products string
		want     []string
	}{
		{name: "spaces around commas", products: "A, B ,C", want: []string{"A", "B", "C"}},
		{name: "no spaces", products: "A,B,C", want: []string{"A", "B", "C"}},
		{name: "leading and trailing space", products: "  A  ,   B  ", want: []string{"A", "B"}},
		{name: "single sku", products: "SKU123", want: []string{"SKU123"}},
		{name: "empty value", products: "", want: []string{""}},
		{name: "trailing comma", products: "A,", want: []string{"A", ""}},
		{name: "nbsp around skus", products: "\u00a0A,\u00a0B\ufeff", want: []string{"A", "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(`{{block name="P" products="` + tt.products + `"}}`)
			require.NoError(t, err)
			require.Len(t, res.Blocks, 1)
			assert.Equal(t, tt.want, res.Blocks[0].Products())
		})
	}
}

func TestParse_QuoteStyles(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "double quotes", content: `{{block name="A B"}}`, want: "A B"},
		{name: "single quotes", content: `{{block name='A B'}}`, want: "A B"},
		{name: "double inside single", content: `{{block name='Say "hi"'}}`, want: `Say "hi"`},
		{name: "single inside double", content: `{{block name="It's"}}`, want: "It's"},
		{name: "spaces around equals", content: `{{block name = "Spaced"}}`, want: "Spaced"},
		{name: "newline after block keyword", content: "{{block\n  name=\"Multi\"}}", want: "Multi"},
		{name: "nbsp after block keyword", content: "{{block\u00a0name=\"A\"}}", want: "A"},
		{name: "vertical tab after block keyword", content: "{{block\vname=\"A\"}}", want: "A"},
		{name: "nbsp around equals", content: "{{block name\u00a0=\u00a0\"A\"}}", want: "A"},
		{name: "vertical tab around equals", content: "{{block name\v=\v\"A\"}}", want: "A"},
		{name: "unicode spaces", content: "{{block\u2003name\u3000=\ufeff\"A\"\u2028}}", want: "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.content)
			require.NoError(t, err)
			require.Len(t, res.Blocks, 1)
			assert.Equal(t, tt.want, res.Blocks[0].Name)
		})
	}
}

func TestParse_DuplicateKeys(t *testing.T) {
	res, err := Parse(`{{block name="A" name="B"}}`)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "B", res.Blocks[0].Name)

	res, err = Parse(`{{block name="X" image="/1.png" caption="c" image="/2.png"}}`)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, []Attr{
		{Key: "image", Value: "/2.png"},
		{Key: "caption", Value: "c"},
	}, res.Blocks[0].Attrs)
}

func TestParse_TwoTagsInOrder(t *testing.T) {
	content := `a{{block name="Image Showcase" image="/very/long/path/to/an/image.png"}}b{{block name="X"}}c`

	res, err := Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "a__BLOCK_PLACEHOLDER_0__b__BLOCK_PLACEHOLDER_1__c", res.Text)
	require.Len(t, res.Blocks, 2)
	assert.Equal(t, "Image Showcase", res.Blocks[0].Name)
	assert.Equal(t, "X", res.Blocks[1].Name)
	assert.Less(t, res.Blocks[0].Offset, res.Blocks[1].Offset)
}

func TestParse_MissingName(t *testing.T) {
	tests := []struct {
		name    string
		content string
		offset  int
	}{
		{name: "no name", content: `{{block image="x.jpg"}}`, offset: 0},
		{name: "empty name", content: `<p>a</p>{{block name=""}}`, offset: 8},
		{name: "unquoted name", content: `{{block name=Top}}`, offset: 0},
		{name: "second tag malformed", content: `{{block name="ok"}} {{block products="A"}}`, offset: 20},
		{name: "truncated by braces in value", content: `{{block name="a}}b"}}`, offset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Parse(tt.content)
			require.Error(t, err)
			assert.Nil(t, res)

			var merr *MalformedBlockError
			require.True(t, errors.As(err, &merr))
			assert.Equal(t, tt.offset, merr.Offset)
			assert.True(t, strings.HasPrefix(merr.Raw, "{{block"))
			assert.True(t, errors.Is(err, ErrMalformedBlock))
			assert.True(t, IsMalformed(err))
			assert.Contains(t, err.Error(), "block must have a name property")
		})
	}
}

func TestParse_PlaceholderProperties(t *testing.T) {
	inputs := []string{
		`{{block name="A"}}`,
		`x{{block name="A"}}y{{block name='B' image='/b.png'}}z{{block name="C" products="1,2"}}`,
		"<h1>t</h1>\n{{block name=\"A\"}}\n{{block name=\"B\"}}{{block name=\"C\"}}\n",
	}

	for _, content := range inputs {
		res, err := Parse(content)
		require.NoError(t, err)

		tokens := PlaceholderPattern.FindAllString(res.Text, -1)
		require.Len(t, tokens, len(res.Blocks))
		for want, tok := range tokens {
			got, ok := PlaceholderIndex(tok)
			require.True(t, ok)
			assert.Equal(t, want, got, "placeholders must appear in increasing order")
		}
		assert.NotContains(t, res.Text, "{{block")
	}
}

func TestParse_Concurrent(t *testing.T) {
	content := `a{{block name="A"}}b{{block name="B"}}`
	done := make(chan *Result, 8)
	for i := 0; i < cap(done); i++ {
		go func() {
			res, err := Parse(content)
			if err != nil {
				done <- nil
				return
			}
			done <- res
		}()
	}
	for i := 0; i < cap(done); i++ {
		res := <-done
		require.NotNil(t, res)
		assert.Equal(t, "a__BLOCK_PLACEHOLDER_0__b__BLOCK_PLACEHOLDER_1__", res.Text)
	}
}

// =============================================================================
// ParseLenient Tests
// =============================================================================

func TestParseLenient(t *testing.T) {
	content := `x{{block image='a'}}y{{block name='A'}}z`

	res := ParseLenient(content)

	assert.Equal(t, `x{{block image='a'}}y__BLOCK_PLACEHOLDER_0__z`, res.Text)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "A", res.Blocks[0].Name)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1, res.Errors[0].Offset)
	assert.Equal(t, `{{block image='a'}}`, res.Errors[0].Raw)
	assert.Equal(t, 1, res.Errors[0].TextOffset)
}

func TestParseLenient_TextOffsetAfterPlaceholders(t *testing.T) {
	content := `{{block name="Long Block Name"}}-{{block x="1"}}`

	res := ParseLenient(content)

	require.Len(t, res.Errors, 1)
	e := res.Errors[0]
	assert.Equal(t, 33, e.Offset)
	assert.Equal(t, len(Placeholder(0))+1, e.TextOffset)
	assert.Equal(t, e.Raw, res.Text[e.TextOffset:e.TextOffset+len(e.Raw)])
}

func TestParseLenient_MatchesParseWhenWellFormed(t *testing.T) {
	content := `<p>{{block name="A" products="1, 2"}}</p>`

	strict, err := Parse(content)
	require.NoError(t, err)
	lenient := ParseLenient(content)

	assert.Equal(t, strict.Text, lenient.Text)
	assert.Equal(t, strict.Blocks, lenient.Blocks)
	assert.Empty(t, lenient.Errors)
}

// =============================================================================
// Tag Accessor Tests
// =============================================================================

func TestTag_Accessors(t *testing.T) {
	res, err := Parse(`{{block name="Top Picks" image="/i.png" products="A,B" caption="Hi"}}`)
	require.NoError(t, err)
	tag := res.Blocks[0]

	assert.Equal(t, "Hi", tag.Value("caption"))
	assert.Equal(t, "", tag.Value("missing"))

	_, ok := tag.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{
		"name":     "Top Picks",
		"image":    "/i.png",
		"products": []string{"A", "B"},
		"caption":  "Hi",
	}, tag.Map())
}

func TestTag_NoProducts(t *testing.T) {
	res, err := Parse(`{{block name="Image Showcase"}}`)
	require.NoError(t, err)
	assert.Nil(t, res.Blocks[0].Products())
	assert.Empty(t, res.Blocks[0].Image())
}

func TestPlaceholder(t *testing.T) {
	assert.Equal(t, "__BLOCK_PLACEHOLDER_0__", Placeholder(0))
	assert.Equal(t, "__BLOCK_PLACEHOLDER_42__", Placeholder(42))
}
