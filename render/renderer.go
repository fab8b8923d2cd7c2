package render

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/randalmurphal/blogkit/blocks"
	"github.com/randalmurphal/blogkit/blog"
)

// Options configures a Renderer.
type Options struct {
	// Sanitize filters text fragments through Policy.
	Sanitize bool

	// Policy is the sanitizer policy. Nil uses DefaultPolicy().
	Policy *bluemonday.Policy

	// Lenient renders malformed block tags as escaped text instead of
	// failing.
	Lenient bool
}

// DefaultPolicy returns the user-generated-content policy used for post
// text, extended with class and id attributes on every element.
func DefaultPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("id").Globally()
	return p
}

// Renderer renders post content with block widgets.
// It is safe for concurrent use.
type Renderer struct {
	registry *Registry
	policy   *bluemonday.Policy
	md       goldmark.Markdown
	lenient  bool
}

// NewRenderer creates a renderer that draws blocks with reg.
func NewRenderer(reg *Registry, opts Options) *Renderer {
	r := &Renderer{
		registry: reg,
		lenient:  opts.Lenient,
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				emoji.Emoji,
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
			),
		),
	}
	if opts.Sanitize {
		r.policy = opts.Policy
		if r.policy == nil {
			r.policy = DefaultPolicy()
		}
	}
	return r
}

// Registry returns the widget registry.
func (r *Renderer) Registry() *Registry {
	return r.registry
}

// RenderPost renders a post's content in its format.
func (r *Renderer) RenderPost(p blog.Post) (template.HTML, error) {
	out, err := r.RenderContent(p.Content, p.Format)
	if err != nil {
		return "", fmt.Errorf("render post %s: %w", p.ID, err)
	}
	return out, nil
}

// RenderContent renders content written in format.
//
// Text fragments are emitted as markup; Markdown fragments are converted
// one fragment at a time so block placeholders never reach the Markdown
// parser. Block segments are rendered by their widgets.
func (r *Renderer) RenderContent(content string, format blog.Format) (template.HTML, error) {
	var res *blocks.Result
	if r.lenient {
		res = blocks.ParseLenient(content)
	} else {
		var err error
		res, err = blocks.Parse(content)
		if err != nil {
			return "", err
		}
	}

	var sb strings.Builder
	for _, seg := range res.Segments() {
		switch seg.Kind {
		case blocks.SegmentText:
			frag, err := r.renderText(seg.Text, format)
			if err != nil {
				return "", err
			}
			sb.WriteString(frag)

		case blocks.SegmentBlock:
			tag, ok := res.Block(seg)
			if !ok {
				continue
			}
			out, err := r.registry.Render(tag)
			if err != nil {
				return "", err
			}
			sb.WriteString(string(out))

		case blocks.SegmentMalformed:
			sb.WriteString(template.HTMLEscapeString(seg.Text))
		}
	}

	return template.HTML(sb.String()), nil
}

func (r *Renderer) renderText(text string, format blog.Format) (string, error) {
	if format.OrDefault() == blog.FormatMarkdown {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(text), &buf); err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		text = buf.String()
	}
	if r.policy != nil {
		text = r.policy.Sanitize(text)
	}
	return text, nil
}
