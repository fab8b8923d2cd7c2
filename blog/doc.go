// Package blog defines the blog's domain model: posts, comments, their
// create and update inputs, listing queries, and slugs.
//
// Inputs validate themselves. Validation failures are *ValidationError
// values whose messages are fit to show to API clients, and which match
// ErrInvalid:
//
//	in := blog.NewPost{Title: "Hello", Author: "Ann", Content: "<p>Hi</p>"}
//	if err := in.Validate(); err != nil {
//	    // errors.Is(err, blog.ErrInvalid) == true
//	}
//	post := in.Build(blog.NewID(), time.Now())
//
// Storage lives in package store; this package has no I/O.
package blog
