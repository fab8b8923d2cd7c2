package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/randalmurphal/blogkit/blocks"
	"github.com/randalmurphal/blogkit/blog"
)

// Client-facing messages.
const (
	msgInternal       = "Internal Server Error"
	msgPostNotFound   = "Post not found"
	msgInvalidJSON    = "Invalid JSON body"
	msgSlugConflict   = "A post with this title already exists"
	msgPostIDRequired = "postId query parameter is required"
	msgDeleted        = "Post deleted successfully"
	msgUnknownSchema  = "Unknown schema"
)

type messageBody struct {
	Message string `json:"message"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeMessage(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, messageBody{Message: msg})
}

// writeError maps err to a status and message. Unexpected errors are
// logged and reported as 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.writeMessage(w, status, msg)
}

func classify(err error) (int, string) {
	var (
		ve   *blog.ValidationError
		merr *blocks.MalformedBlockError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.As(err, &merr):
		return http.StatusBadRequest, fmt.Sprintf("Malformed block at offset %d: a block must have a name property", merr.Offset)
	case errors.Is(err, blog.ErrNotFound):
		return http.StatusNotFound, msgPostNotFound
	case errors.Is(err, blog.ErrConflict):
		return http.StatusConflict, msgSlugConflict
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

// decodeJSON reads a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &blog.ValidationError{Msg: msgInvalidJSON}
	}
	return nil
}
