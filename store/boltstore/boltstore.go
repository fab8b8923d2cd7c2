// Package boltstore is a store.Store backed by a bbolt database file.
//
// Layout:
//
//	posts     seq -> post JSON (insertion order)
//	post_ids  id -> seq
//	slugs     slug -> id
//	comments  post id -> nested bucket of seq -> comment JSON
package boltstore

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/store"
)

const (
	bucketPosts    = "posts"
	bucketPostIDs  = "post_ids"
	bucketSlugs    = "slugs"
	bucketComments = "comments"
)

// initDB holds the hooks run when a database is opened.
var initDB = map[string]func(*bolt.Tx) error{
	"initialize buckets": func(tx *bolt.Tx) error {
		for _, name := range []string{bucketPosts, bucketPostIDs, bucketSlugs, bucketComments} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	},
}

// Store is a bbolt-backed store. It is safe for concurrent use.
type Store struct {
	db   *bolt.DB
	opts store.Options
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path.
func Open(path string, opts ...store.Option) (*Store, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, opts: store.ApplyOptions(opts...)}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.db.Path()
}

// ListPosts implements store.Store.
func (s *Store) ListPosts(ctx context.Context, q blog.Query) ([]blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var matching []blog.Post
	err := s.eachPost(func(p blog.Post) {
		if q.Matches(p) {
			matching = append(matching, p)
		}
	})
	if err != nil {
		return nil, err
	}
	return q.Paginate(matching), nil
}

// CountPosts implements store.Store.
func (s *Store) CountPosts(ctx context.Context, q blog.Query) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	n := 0
	err := s.eachPost(func(p blog.Post) {
		if q.Matches(p) {
			n++
		}
	})
	return n, err
}

func (s *Store) eachPost(f func(blog.Post)) error {
	return s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketPosts)).ForEach(func(_, v []byte) error {
			var p blog.Post
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("decode post: %w", err)
			}
			f(p)
			return nil
		})
	})
}

// PostByID implements store.Store.
func (s *Store) PostByID(ctx context.Context, id string) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}

	var p blog.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		p, _, err = getPost(tx, id)
		return err
	})
	return p, err
}

// PostBySlug implements store.Store.
func (s *Store) PostBySlug(ctx context.Context, slug string) (blog.Post, error) {
	if err := ctx.Err(); err != nil {
		return blog.Post{}, err
	}

	var p blog.Post
	err := s.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket([]byte(bucketSlugs)).Get([]byte(slug))
		if id == nil {
			return fmt.Errorf("post with slug %q: %w", slug, blog.ErrNotFound)
		}
		var err error
		p, _, err = getPost(tx, string(id))
		return err
	})
	return p, err
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

	err := s.db.Update(func(tx *bolt.Tx) error {
		slugs := tx.Bucket([]byte(bucketSlugs))
		if slugs.Get([]byte(p.Slug)) != nil {
			return fmt.Errorf("slug %q: %w", p.Slug, blog.ErrConflict)
		}

		posts := tx.Bucket([]byte(bucketPosts))
		seq, err := posts.NextSequence()
		if err != nil {
			return err
		}
		if err := putPost(tx, marshalSeq(seq), p); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketPostIDs)).Put([]byte(p.ID), marshalSeq(seq)); err != nil {
			return err
		}
		return slugs.Put([]byte(p.Slug), []byte(p.ID))
	})
	if err != nil {
		return blog.Post{}, err
	}
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

	var updated blog.Post
	err := s.db.Update(func(tx *bolt.Tx) error {
		old, key, err := getPost(tx, id)
		if err != nil {
			return err
		}

		p := u.Apply(old)
		p.Slug = store.SlugFor(p)

		if p.Slug != old.Slug {
			slugs := tx.Bucket([]byte(bucketSlugs))
			if owner := slugs.Get([]byte(p.Slug)); owner != nil && string(owner) != id {
				return fmt.Errorf("slug %q: %w", p.Slug, blog.ErrConflict)
			}
			if err := slugs.Delete([]byte(old.Slug)); err != nil {
				return err
			}
			if err := slugs.Put([]byte(p.Slug), []byte(id)); err != nil {
				return err
			}
		}

		updated = p
		return putPost(tx, key, p)
	})
	if err != nil {
		return blog.Post{}, err
	}
	return updated, nil
}

// DeletePost implements store.Store.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		p, key, err := getPost(tx, id)
		if err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketPosts)).Delete(key); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketPostIDs)).Delete([]byte(id)); err != nil {
			return err
		}
		if err := tx.Bucket([]byte(bucketSlugs)).Delete([]byte(p.Slug)); err != nil {
			return err
		}

		comments := tx.Bucket([]byte(bucketComments))
		if comments.Bucket([]byte(id)) != nil {
			return comments.DeleteBucket([]byte(id))
		}
		return nil
	})
}

// CommentsForPost implements store.Store.
func (s *Store) CommentsForPost(ctx context.Context, postID string) ([]blog.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []blog.Comment{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketComments)).Bucket([]byte(postID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(_, v []byte) error {
			var c blog.Comment
			if err := json.Unmarshal(v, &c); err != nil {
				return fmt.Errorf("decode comment: %w", err)
			}
			out = append(out, c)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

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

	c := in.Build(s.opts.NewID(), s.opts.Now())
	err := s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(bucketPostIDs)).Get([]byte(in.PostID)) == nil {
			return fmt.Errorf("post %s: %w", in.PostID, blog.ErrNotFound)
		}

		b, err := tx.Bucket([]byte(bucketComments)).CreateBucketIfNotExists([]byte(in.PostID))
		if err != nil {
			return err
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		data, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("encode comment: %w", err)
		}
		return b.Put(marshalSeq(seq), data)
	})
	if err != nil {
		return blog.Comment{}, err
	}
	return c, nil
}

// Close implements store.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// getPost returns the post with the given id and its key in the posts bucket.
func getPost(tx *bolt.Tx, id string) (blog.Post, []byte, error) {
	key := tx.Bucket([]byte(bucketPostIDs)).Get([]byte(id))
	if key == nil {
		return blog.Post{}, nil, fmt.Errorf("post %s: %w", id, blog.ErrNotFound)
	}
	v := tx.Bucket([]byte(bucketPosts)).Get(key)
	if v == nil {
		return blog.Post{}, nil, fmt.Errorf("post %s: index points at missing record: %w", id, blog.ErrNotFound)
	}

	var p blog.Post
	if err := json.Unmarshal(v, &p); err != nil {
		return blog.Post{}, nil, fmt.Errorf("decode post %s: %w", id, err)
	}
	// Keys returned by Get are only valid for the life of the transaction.
	return p, append([]byte(nil), key...), nil
}

func putPost(tx *bolt.Tx, key []byte, p blog.Post) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode post: %w", err)
	}
	return tx.Bucket([]byte(bucketPosts)).Put(key, data)
}

func marshalSeq(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}
