package server

import (
	"net/http"
	"strconv"

	"github.com/randalmurphal/blogkit/blocks"
	"github.com/randalmurphal/blogkit/blog"
)

type listResponse struct {
	Posts      []blog.Post `json:"posts"`
	TotalCount int         `json:"totalCount"`
}

// parseQuery reads page, pageSize, keyword and author. Absent numbers
// take their defaults; present ones must be positive integers.
func (s *Server) parseQuery(r *http.Request) (blog.Query, error) {
	v := r.URL.Query()
	q := blog.Query{
		Page:     blog.DefaultPage,
		PageSize: s.pageSize,
		Keyword:  v.Get("keyword"),
		Author:   v.Get("author"),
	}

	if raw := v.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, &blog.ValidationError{Fields: []string{"page"}, Msg: "Invalid page number"}
		}
		q.Page = n
	}
	if raw := v.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, &blog.ValidationError{Fields: []string{"pageSize"}, Msg: "Invalid page size"}
		}
		q.PageSize = n
	}

	q = q.Normalize()
	return q, q.Validate()
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	posts, err := s.store.ListPosts(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	total, err := s.store.CountPosts(r.Context(), q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, listResponse{Posts: posts, TotalCount: total})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var in blog.NewPost
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := blocks.Parse(in.Content); err != nil {
		s.writeError(w, r, err)
		return
	}

	post, err := s.store.CreatePost(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.logger.Info("post created", "id", post.ID, "slug", post.Slug)
	s.writeJSON(w, http.StatusCreated, post)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.PostByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	var u blog.PostUpdate
	if err := decodeJSON(w, r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := u.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if u.Content != nil {
		if _, err := blocks.Parse(*u.Content); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	post, err := s.store.UpdatePost(r.Context(), r.PathValue("id"), u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, post)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePost(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeMessage(w, http.StatusOK, msgDeleted)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID := r.URL.Query().Get("postId")
	if postID == "" {
		s.writeMessage(w, http.StatusBadRequest, msgPostIDRequired)
		return
	}

	comments, err := s.store.CommentsForPost(r.Context(), postID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, comments)
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var in blog.NewComment
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	comment, err := s.store.AddComment(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comment)
}
