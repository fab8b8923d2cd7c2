// Package server exposes the blog over HTTP.
//
// The JSON API lives under /api:
//
//	GET    /api/posts?page=&pageSize=&keyword=&author=   {"posts": [...], "totalCount": n}
//	POST   /api/posts                                    201 created post
//	GET    /api/posts/{id}
//	PUT    /api/posts/{id}                               partial update
//	DELETE /api/posts/{id}
//	GET    /api/comments?postId=
//	POST   /api/comments                                 201 created comment
//	GET    /api/schema                                   schema names
//	GET    /api/schema/{name}                            JSON Schema of a payload
//
// Errors are reported as {"message": "..."} with a 4xx or 500 status.
// Post content is checked for malformed block tags on create and update,
// so stored posts always render.
//
// HTML pages are served at / and /posts (paginated listing with keyword
// and author filters) and /posts/{slug} (a post with its blocks rendered
// and its comments). /healthz answers OK.
package server
