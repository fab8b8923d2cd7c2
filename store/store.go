// Package store defines persistence for posts and comments.
//
// Store is implemented by memstore (in-process, for tests and demos) and
// boltstore (a single bbolt file). Both pass the storetest conformance
// suite.
//
// Errors match the blog sentinels: blog.ErrNotFound for a missing post,
// blog.ErrInvalid for rejected input, blog.ErrConflict for a slug taken
// by another post.
package store

import (
	"context"
	"time"

	"github.com/randalmurphal/blogkit/blog"
)

// Store persists posts and their comments.
type Store interface {
	// ListPosts returns the page of posts matching q, in insertion order.
	// The query must be normalized and valid. The result is never nil.
	ListPosts(ctx context.Context, q blog.Query) ([]blog.Post, error)

	// CountPosts returns how many posts match q's filters.
	CountPosts(ctx context.Context, q blog.Query) (int, error)

	// PostByID returns the post with the given id.
	PostByID(ctx context.Context, id string) (blog.Post, error)

	// PostBySlug returns the post with the given slug.
	PostBySlug(ctx context.Context, slug string) (blog.Post, error)

	// CreatePost validates in and stores a new post built from it.
	CreatePost(ctx context.Context, in blog.NewPost) (blog.Post, error)

	// UpdatePost applies u to the post with the given id.
	UpdatePost(ctx context.Context, id string, u blog.PostUpdate) (blog.Post, error)

	// DeletePost removes a post and its comments.
	DeletePost(ctx context.Context, id string) error

	// CommentsForPost returns a post's comments, oldest first.
	// A post without comments, or an unknown post, yields an empty slice.
	CommentsForPost(ctx context.Context, postID string) ([]blog.Comment, error)

	// AddComment validates in and attaches a new comment to its post.
	AddComment(ctx context.Context, in blog.NewComment) (blog.Comment, error)

	// Close releases the store's resources.
	Close() error
}

// Options holds settings shared by Store implementations.
type Options struct {
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// NewID returns a fresh identifier. Defaults to blog.NewID.
	NewID func() string
}

// Option configures a Store implementation.
type Option func(*Options)

// WithClock sets the time source used for published dates and comment
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Options) {
		o.Now = now
	}
}

// WithIDGenerator sets the identifier source.
func WithIDGenerator(newID func() string) Option {
	return func(o *Options) {
		o.NewID = newID
	}
}

// ApplyOptions returns the defaults with opts applied.
func ApplyOptions(opts ...Option) Options {
	o := Options{Now: time.Now, NewID: blog.NewID}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SlugFor returns the slug stored for p: its title slug, or its id when
// the title yields no slug.
func SlugFor(p blog.Post) string {
	if p.Slug == "" {
		return p.ID
	}
	return p.Slug
}
