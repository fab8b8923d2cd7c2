// Package memstore is an in-memory store.Store.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/store"
)

// Store keeps posts and comments in memory. It is safe for concurrent use.
type Store struct {
	opts store.Options

	mu       sync.RWMutex
	posts    []blog.Post
	comments map[string][]blog.Comment
}

var _ store.Store = (*Store)(nil)

// New creates an empty store.
func New(opts ...store.Option) *Store {
	return &Store{
		opts:     store.ApplyOptions(opts...),
		comments: make(map[string][]blog.Comment),
	}
}

// ListPosts implements store.Store.
func (s *Store) ListPosts(ctx context.Context, q blog.Query) ([]blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	page := q.Paginate(s.matching(q))
	out := make([]blog.Post, len(page))
	copy(out, page)
	return out, nil
}

// CountPosts implements store.Store.
func (s *Store) CountPosts(ctx context.Context, q blog.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.matching(q)), nil
}

func (s *Store) matching(q blog.Query) []blog.Post {
	var out []blog.Post
	for _, p := range s.posts {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// PostByID implements store.Store.
func (s *Store) PostByID(ctx context.Context, id string) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexByID(id)
	if i < 0 {
		return blog.Post{}, fmt.Errorf("post %s: %w", id, blog.ErrNotFound)
	}
	return s.posts[i], nil
}

// PostBySlug implements store.Store.
func (s *Store) PostBySlug(ctx context.Context, slug string) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return blog.Post{}, fmt.Errorf("post with slug %q: %w", slug, blog.ErrNotFound)
}

// CreatePost implements store.Store.
func (s *Store) CreatePost(ctx context.Context, in blog.NewPost) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}
	if err := in.Validate(); err != nil {
		return blog.Post{}, err
	}

	p := in.Build(s.opts.NewID(), s.opts.Now())
	p.Slug = store.SlugFor(p)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slugTaken(p.Slug, "") {
		return blog.Post{}, fmt.Errorf("slug %q: %w", p.Slug, blog.ErrConflict)
	}
	s.posts = append(s.posts, p)
	return p, nil
}

// UpdatePost implements store.Store.
func (s *Store) UpdatePost(ctx context.Context, id string, u blog.PostUpdate) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}
	if err := u.Validate(); err != nil {
		return blog.Post{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return blog.Post{}, fmt.Errorf("post %s: %w", id, blog.ErrNotFound)
	}

	p := u.Apply(s.posts[i])
	p.Slug = store.SlugFor(p)
	if s.slugTaken(p.Slug, id) {
		return blog.Post{}, fmt.Errorf("slug %q: %w", p.Slug, blog.ErrConflict)
	}
	s.posts[i] = p
	return p, nil
}

// DeletePost implements store.Store.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexByID(id)
	if i < 0 {
		return fmt.Errorf("post %s: %w", id, blog.ErrNotFound)
	}
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	delete(s.comments, id)
	return nil
}

// CommentsForPost implements store.Store.
func (s *Store) CommentsForPost(ctx context.Context, postID string) ([]blog.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]blog.Comment, len(s.comments[postID]))
	copy(out, s.comments[postID])
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// AddComment implements store.Store.
func (s *Store) AddComment(ctx context.Context, in blog.NewComment) (blog.Comment, error) {
	if err := ctx.Err(); err != nil {
		return blog.Comment{}, err
	}
	if err := in.Validate(); err != nil {
		return blog.Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexByID(in.PostID) < 0 {
		return blog.Comment{}, fmt.Errorf("post %s: %w", in.PostID, blog.ErrNotFound)
	}
	c := in.Build(s.opts.NewID(), s.opts.Now())
	s.comments[in.PostID] = append(s.comments[in.PostID], c)
	return c, nil
}

// Close implements store.Store. It is a no-op.
func (s *Store) Close() error {
	return nil
}

func (s *Store) indexByID(id string) int {
	for i, p := range s.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// slugTaken reports whether a post other than exceptID uses slug.
func (s *Store) slugTaken(slug, exceptID string) bool {
	for _, p := range s.posts {
		if p.Slug == slug && p.ID != exceptID {
			return true
		}
	}
	return false
}
