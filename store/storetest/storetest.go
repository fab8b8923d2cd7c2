// Package storetest keeps a conformance suite for store.Store implementations.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/store"
)

// Factory creates an empty store configured with opts. Run closes it.
type Factory func(t *testing.T, opts ...store.Option) store.Store

// Epoch is the first time handed out by the suite's clock.
var Epoch = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

// Clock is a deterministic time source that advances one minute per call.
type Clock struct {
	mu   sync.Mutex
	next time.Time
}

// NewClock returns a clock starting at start.
func NewClock(start time.Time) *Clock {
	return &Clock{next: start}
}

// Now returns the current time and advances the clock.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.next
	c.next = c.next.Add(time.Minute)
	return t
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.next = t
	c.mu.Unlock()
}

// SeqIDs returns an ID generator yielding 24-digit hex counters.
func SeqIDs() func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%024x", n)
	}
}

type fixture struct {
	store.Store
	clock *Clock
}

func setup(t *testing.T, factory Factory) fixture {
	t.Helper()
	clock := NewClock(Epoch)
	s := factory(t, store.WithClock(clock.Now), store.WithIDGenerator(SeqIDs()))
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return fixture{Store: s, clock: clock}
}

// Run runs the conformance suite against stores built by factory.
func Run(t *testing.T, factory Factory) {
	tests := []struct {
		name string
		fn   func(*testing.T, fixture)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"CreateRejectsInvalid", testCreateRejectsInvalid},
		{"CreateSlugConflict", testCreateSlugConflict},
		{"EmptySlugFallsBackToID", testEmptySlug},
		{"ListAndCount", testListAndCount},
		{"ListFilters", testListFilters},
		{"Update", testUpdate},
		{"UpdateErrors", testUpdateErrors},
		{"Delete", testDelete},
		{"Comments", testComments},
		{"CommentErrors", testCommentErrors},
		{"CanceledContext", testCanceledContext},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, setup(t, factory))
		})
	}
}

func mustCreate(t *testing.T, s store.Store, title, author, content string) blog.Post {
	t.Helper()
	p, err := s.CreatePost(context.Background(), blog.NewPost{Title: title, Author: author, Content: content})
	require.NoError(t, err)
	return p
}

func testCreateAndGet(t *testing.T, f fixture) {
	ctx := context.Background()

	created, err := f.CreatePost(ctx, blog.NewPost{
		Title:        "Hello World",
		Author:       "Ann",
		Content:      `<p>Hi</p>{{block name="Top Picks" products="SKU123"}}`,
		ShortSnippet: "Greetings",
		CoverImage:   "/cover.jpg",
	})
	require.NoError(t, err)

	want := blog.Post{
		ID:            fmt.Sprintf("%024x", 1),
		Title:         "Hello World",
		Author:        "Ann",
		ShortSnippet:  "Greetings",
		CoverImage:    "/cover.jpg",
		PublishedDate: "2024-05-01",
		Content:       `<p>Hi</p>{{block name="Top Picks" products="SKU123"}}`,
		Slug:          "hello-world",
		Format:        blog.FormatHTML,
	}
	if diff := cmp.Diff(want, created); diff != "" {
		t.Errorf("CreatePost() mismatch (-want +got):\n%s", diff)
	}

	byID, err := f.PostByID(ctx, created.ID)
	require.NoError(t, err)
	if diff := cmp.Diff(created, byID); diff != "" {
		t.Errorf("PostByID() mismatch (-want +got):\n%s", diff)
	}

	bySlug, err := f.PostBySlug(ctx, "hello-world")
	require.NoError(t, err)
	if diff := cmp.Diff(created, bySlug); diff != "" {
		t.Errorf("PostBySlug() mismatch (-want +got):\n%s", diff)
	}

	_, err = f.PostByID(ctx, "nope")
	assert.ErrorIs(t, err, blog.ErrNotFound)
	_, err = f.PostBySlug(ctx, "nope")
	assert.ErrorIs(t, err, blog.ErrNotFound)
}

func testCreateRejectsInvalid(t *testing.T, f fixture) {
	ctx := context.Background()

	_, err := f.CreatePost(ctx, blog.NewPost{Title: "No body", Author: "Ann"})
	assert.ErrorIs(t, err, blog.ErrInvalid)

	n, err := f.CountPosts(ctx, blog.Query{}.Normalize())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func testCreateSlugConflict(t *testing.T, f fixture) {
	mustCreate(t, f, "Same Title", "Ann", "a")

	_, err := f.CreatePost(context.Background(), blog.NewPost{Title: "same title!", Author: "Bob", Content: "b"})
	assert.ErrorIs(t, err, blog.ErrConflict)
}

func testEmptySlug(t *testing.T, f fixture) {
	p := mustCreate(t, f, "!!!", "Ann", "a")
	assert.Equal(t, p.ID, p.Slug)

	got, err := f.PostBySlug(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func testListAndCount(t *testing.T, f fixture) {
	ctx := context.Background()

	var ids []string
	for i := 1; i <= 8; i++ {
		ids = append(ids, mustCreate(t, f, fmt.Sprintf("Post %d", i), "Ann", "body").ID)
	}

	q := blog.Query{}.Normalize()
	page1, err := f.ListPosts(ctx, q)
	require.NoError(t, err)
	if diff := cmp.Diff(ids[:6], postIDs(page1)); diff != "" {
		t.Errorf("page 1 mismatch (-want +got):\n%s", diff)
	}

	q.Page = 2
	page2, err := f.ListPosts(ctx, q)
	require.NoError(t, err)
	if diff := cmp.Diff(ids[6:], postIDs(page2)); diff != "" {
		t.Errorf("page 2 mismatch (-want +got):\n%s", diff)
	}

	q.Page = 9
	empty, err := f.ListPosts(ctx, q)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	n, err := f.CountPosts(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func testListFilters(t *testing.T, f fixture) {
	ctx := context.Background()

	kb := mustCreate(t, f, "Best Keyboards", "Ann Smith", "<p>clicky switches</p>")
	mouse := mustCreate(t, f, "Mouse Review", "Bob", "<p>a keyboard companion</p>")
	mustCreate(t, f, "Monitors", "Carol", "<p>pixels</p>")

	tests := []struct {
		name string
		q    blog.Query
		want []string
	}{
		{name: "keyword in title or content", q: blog.Query{Keyword: "KEYBOARD"}, want: []string{kb.ID, mouse.ID}},
		{name: "author", q: blog.Query{Author: "smith"}, want: []string{kb.ID}},
		{name: "keyword and author", q: blog.Query{Keyword: "keyboard", Author: "bob"}, want: []string{mouse.ID}},
		{name: "no match", q: blog.Query{Keyword: "tablet"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := tt.q.Normalize()
			got, err := f.ListPosts(ctx, q)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, postIDs(got)); diff != "" {
				t.Errorf("ListPosts() mismatch (-want +got):\n%s", diff)
			}

			n, err := f.CountPosts(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), n)
		})
	}
}

func testUpdate(t *testing.T, f fixture) {
	ctx := context.Background()
	orig := mustCreate(t, f, "Old Title", "Ann", "<p>old</p>")

	title := "New Title"
	updated, err := f.UpdatePost(ctx, orig.ID, blog.PostUpdate{Title: &title})
	require.NoError(t, err)

	want := orig
	want.Title = "New Title"
	want.Slug = "new-title"
	if diff := cmp.Diff(want, updated); diff != "" {
		t.Errorf("UpdatePost() mismatch (-want +got):\n%s", diff)
	}

	_, err = f.PostBySlug(ctx, "old-title")
	assert.ErrorIs(t, err, blog.ErrNotFound)

	got, err := f.PostBySlug(ctx, "new-title")
	require.NoError(t, err)
	assert.Equal(t, orig.ID, got.ID)

	content := "<p>new</p>"
	updated, err = f.UpdatePost(ctx, orig.ID, blog.PostUpdate{Content: &content})
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slug)
	assert.Equal(t, "<p>new</p>", updated.Content)

	// Re-setting the same title keeps the slug owned by this post.
	updated, err = f.UpdatePost(ctx, orig.ID, blog.PostUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "new-title", updated.Slug)
}

func testUpdateErrors(t *testing.T, f fixture) {
	ctx := context.Background()
	a := mustCreate(t, f, "Alpha", "Ann", "a")
	mustCreate(t, f, "Beta", "Ann", "b")

	_, err := f.UpdatePost(ctx, a.ID, blog.PostUpdate{})
	assert.ErrorIs(t, err, blog.ErrInvalid)

	title := "Gamma"
	_, err = f.UpdatePost(ctx, "nope", blog.PostUpdate{Title: &title})
	assert.ErrorIs(t, err, blog.ErrNotFound)

	taken := "Beta"
	_, err = f.UpdatePost(ctx, a.ID, blog.PostUpdate{Title: &taken})
	assert.ErrorIs(t, err, blog.ErrConflict)

	got, err := f.PostByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Slug, "failed update must not change the post")
}

func testDelete(t *testing.T, f fixture) {
	ctx := context.Background()
	p := mustCreate(t, f, "Doomed", "Ann", "x")
	keep := mustCreate(t, f, "Kept", "Ann", "y")

	_, err := f.AddComment(ctx, blog.NewComment{PostID: p.ID, Author: "Bob", Content: "bye"})
	require.NoError(t, err)

	require.NoError(t, f.DeletePost(ctx, p.ID))
	assert.ErrorIs(t, f.DeletePost(ctx, p.ID), blog.ErrNotFound)

	_, err = f.PostByID(ctx, p.ID)
	assert.ErrorIs(t, err, blog.ErrNotFound)

	comments, err := f.CommentsForPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	// The slug is free again.
	again := mustCreate(t, f, "Doomed", "Ann", "z")
	assert.Equal(t, "doomed", again.Slug)

	list, err := f.ListPosts(ctx, blog.Query{}.Normalize())
	require.NoError(t, err)
	if diff := cmp.Diff([]string{keep.ID, again.ID}, postIDs(list)); diff != "" {
		t.Errorf("ListPosts() mismatch (-want +got):\n%s", diff)
	}
}

func testComments(t *testing.T, f fixture) {
	ctx := context.Background()
	p := mustCreate(t, f, "Talked About", "Ann", "x")
	other := mustCreate(t, f, "Quiet", "Ann", "y")

	f.clock.Set(Epoch.Add(time.Hour))
	later, err := f.AddComment(ctx, blog.NewComment{PostID: p.ID, Author: "Bob", Content: "second"})
	require.NoError(t, err)

	f.clock.Set(Epoch.Add(30 * time.Minute))
	earlier, err := f.AddComment(ctx, blog.NewComment{PostID: p.ID, Author: "Cy", Content: "first"})
	require.NoError(t, err)

	assert.Equal(t, p.ID, earlier.PostID)
	assert.True(t, earlier.CreatedAt.Equal(Epoch.Add(30*time.Minute)))

	got, err := f.CommentsForPost(ctx, p.ID)
	require.NoError(t, err)
	if diff := cmp.Diff([]string{earlier.ID, later.ID}, commentIDs(got)); diff != "" {
		t.Errorf("CommentsForPost() order mismatch (-want +got):\n%s", diff)
	}

	none, err := f.CommentsForPost(ctx, other.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	unknown, err := f.CommentsForPost(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, unknown)
}

func testCommentErrors(t *testing.T, f fixture) {
	ctx := context.Background()

	_, err := f.AddComment(ctx, blog.NewComment{PostID: "nope", Author: "Bob", Content: "hi"})
	assert.ErrorIs(t, err, blog.ErrNotFound)

	_, err = f.AddComment(ctx, blog.NewComment{Author: "Bob"})
	assert.ErrorIs(t, err, blog.ErrInvalid)
}

func testCanceledContext(t *testing.T, f fixture) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ListPosts(ctx, blog.Query{}.Normalize())
	assert.True(t, errors.Is(err, context.Canceled))

	_, err = f.CreatePost(ctx, blog.NewPost{Title: "T", Author: "A", Content: "C"})
	assert.True(t, errors.Is(err, context.Canceled))
}

func postIDs(posts []blog.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}

func commentIDs(comments []blog.Comment) []string {
	ids := make([]string, 0, len(comments))
	for _, c := range comments {
		ids = append(ids, c.ID)
	}
	return ids
}
