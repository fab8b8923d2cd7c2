package blog

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/randalmurphal/blogkit/excerpt"
)

// DateLayout is the layout of Post.PublishedDate.
const DateLayout = "2006-01-02"

// Format is the markup language of a post's content.
type Format string

const (
	// FormatHTML content is an HTML fragment. It is the default.
	FormatHTML Format = "html"

	// FormatMarkdown content is CommonMark with GitHub extensions.
	FormatMarkdown Format = "markdown"
)

// Valid reports whether f is empty or a known format.
func (f Format) Valid() bool {
	return f == "" || f == FormatHTML || f == FormatMarkdown
}

// OrDefault returns f, or FormatHTML when f is empty.
func (f Format) OrDefault() Format {
	if f == "" {
		return FormatHTML
	}
	return f
}

// Post is a published article. Content may embed {{block ...}} tags.
type Post struct {
	ID            string `json:"id" jsonschema:"description=24 hex character identifier"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	ShortSnippet  string `json:"shortSnippet"`
	CoverImage    string `json:"coverImage,omitempty"`
	PublishedDate string `json:"publishedDate" jsonschema:"description=YYYY-MM-DD"`
	Content       string `json:"content"`
	Slug          string `json:"slug"`
	Format        Format `json:"format,omitempty" jsonschema:"enum=html,enum=markdown"`
}

// Comment is a reader comment on a post.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewPost is the input for creating a post.
type NewPost struct {
	Title        string `json:"title" yaml:"title"`
	Author       string `json:"author" yaml:"author"`
	Content      string `json:"content" yaml:"content"`
	ShortSnippet string `json:"shortSnippet,omitempty" yaml:"short_snippet"`
	CoverImage   string `json:"coverImage,omitempty" yaml:"cover_image"`
	Format       Format `json:"format,omitempty" yaml:"format" jsonschema:"enum=html,enum=markdown"`
}

// Validate checks that title, author and content are present.
func (n NewPost) Validate() error {
	var missing []string
	if blank(n.Title) {
		missing = append(missing, "title")
	}
	if blank(n.Author) {
		missing = append(missing, "author")
	}
	if blank(n.Content) {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Msg: "Title, author, and content are required"}
	}
	if !n.Format.Valid() {
		return &ValidationError{Fields: []string{"format"}, Msg: "Unsupported format: " + string(n.Format)}
	}
	return nil
}

// Build creates the post that n describes. The slug is derived from the
// title and the published date from now. A missing short snippet is
// generated from the content.
func (n NewPost) Build(id string, now time.Time) Post {
	snippet := n.ShortSnippet
	if blank(snippet) {
		snippet = excerpt.Snippet(n.Content, excerpt.DefaultSnippetWords)
	}
	return Post{
		ID:            id,
		Title:         n.Title,
		Author:        n.Author,
		ShortSnippet:  snippet,
		CoverImage:    n.CoverImage,
		PublishedDate: now.Format(DateLayout),
		Content:       n.Content,
		Slug:          Slug(n.Title),
		Format:        n.Format.OrDefault(),
	}
}

// PostUpdate is a partial update. Nil fields are left unchanged.
type PostUpdate struct {
	Title        *string `json:"title,omitempty"`
	Author       *string `json:"author,omitempty"`
	Content      *string `json:"content,omitempty"`
	ShortSnippet *string `json:"shortSnippet,omitempty"`
	CoverImage   *string `json:"coverImage,omitempty"`
	Format       *Format `json:"format,omitempty" jsonschema:"enum=html,enum=markdown"`
}

// Empty reports whether the update sets no field.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Content == nil &&
		u.ShortSnippet == nil && u.CoverImage == nil && u.Format == nil
}

// Validate rejects empty updates and blanking of required fields.
func (u PostUpdate) Validate() error {
	if u.Empty() {
		return &ValidationError{Msg: "No fields to update"}
	}
	var blanked []string
	if u.Title != nil && blank(*u.Title) {
		blanked = append(blanked, "title")
	}
	if u.Author != nil && blank(*u.Author) {
		blanked = append(blanked, "author")
	}
	if u.Content != nil && blank(*u.Content) {
		blanked = append(blanked, "content")
	}
	if len(blanked) > 0 {
		return &ValidationError{Fields: blanked, Msg: "Title, author, and content cannot be empty"}
	}
	if u.Format != nil && !u.Format.Valid() {
		return &ValidationError{Fields: []string{"format"}, Msg: "Unsupported format: " + string(*u.Format)}
	}
	return nil
}

// Apply returns p with the update applied. Setting the title regenerates
// the slug.
func (u PostUpdate) Apply(p Post) Post {
	if u.Title != nil {
		p.Title = *u.Title
		p.Slug = Slug(*u.Title)
	}
	if u.Author != nil {
		p.Author = *u.Author
	}
	if u.Content != nil {
		p.Content = *u.Content
	}
	if u.ShortSnippet != nil {
		p.ShortSnippet = *u.ShortSnippet
	}
	if u.CoverImage != nil {
		p.CoverImage = *u.CoverImage
	}
	if u.Format != nil {
		p.Format = u.Format.OrDefault()
	}
	return p
}

// NewComment is the input for adding a comment.
type NewComment struct {
	PostID  string `json:"postId"`
	Author  string `json:"author"`
	Content string `json:"content"`
}

// Validate checks that post id, author and content are present.
func (n NewComment) Validate() error {
	var missing []string
	if blank(n.PostID) {
		missing = append(missing, "postId")
	}
	if blank(n.Author) {
		missing = append(missing, "author")
	}
	if blank(n.Content) {
		missing = append(missing, "content")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing, Msg: "postId, author, and content are required"}
	}
	return nil
}

// Build creates the comment that n describes.
func (n NewComment) Build(id string, now time.Time) Comment {
	return Comment{
		ID:        id,
		PostID:    n.PostID,
		Author:    n.Author,
		Content:   n.Content,
		CreatedAt: now.UTC(),
	}
}

// NewID returns a random 24 character lowercase hex identifier.
func NewID() string {
	var b [12]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic("blog: crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b[:])
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
