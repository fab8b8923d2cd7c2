package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/randalmurphal/blogkit/blog"
	"github.com/randalmurphal/blogkit/excerpt"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	siteTitle       = "Blog"
	siteDescription = "Posts with embedded product blocks"
)

func parsePages() *template.Template {
	funcs := template.FuncMap{
		"formatDate": formatDate,
		"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	}
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(templateFS, "templates/*.html"))
}

// formatDate renders a stored publication date for display. Dates in an
// unexpected layout are shown as stored.
func formatDate(date string) string {
	t, err := time.Parse(blog.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("January 2, 2006")
}

type pageMeta struct {
	Title       string
	Description string
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
}

type listPage struct {
	pageMeta
	Posts      []blog.Post
	Keyword    string
	Author     string
	TotalCount int
	Page       int
	TotalPages int
	PrevURL    string
	NextURL    string
	Pages      []pageLink
}

type postPage struct {
	pageMeta
	Post           blog.Post
	Body           template.HTML
	ReadingMinutes int
	Comments       []blog.Comment
	FormError      string
	FormAuthor     string
	FormContent    string
}

type errorPage struct {
	pageMeta
	Status  int
	Message string
}

// renderPage executes the named page into a buffer so that a failing
// template still produces a clean 500.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("render page", "page", name, "path", r.URL.Path, "error", err)
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	s.renderPage(w, r, status, "error.html", errorPage{
		pageMeta: pageMeta{Title: http.StatusText(status) + " | " + siteTitle},
		Status:   status,
		Message:  msg,
	})
}

// pageError renders err as an error page with the same status mapping as
// the API.
func (s *Server) pageError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	s.renderErrorPage(w, r, status, msg)
}

func (s *Server) handleListPage(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	posts, err := s.store.ListPosts(r.Context(), q)
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	total, err := s.store.CountPosts(r.Context(), q)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	data := listPage{
		pageMeta:   pageMeta{Title: siteTitle, Description: siteDescription},
		Posts:      posts,
		Keyword:    q.Keyword,
		Author:     q.Author,
		TotalCount: total,
		Page:       q.Page,
		TotalPages: q.TotalPages(total),
	}
	for n := 1; n <= data.TotalPages; n++ {
		data.Pages = append(data.Pages, pageLink{Number: n, URL: listURL(q, n), Current: n == q.Page})
	}
	if q.Page > 1 && q.Page <= data.TotalPages {
		data.PrevURL = listURL(q, q.Page-1)
	}
	if q.Page < data.TotalPages {
		data.NextURL = listURL(q, q.Page+1)
	}

	s.renderPage(w, r, http.StatusOK, "list.html", data)
}

// listURL links to page of the listing q describes, keeping its filters.
func listURL(q blog.Query, page int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(page))
	if q.PageSize != blog.DefaultPageSize {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Keyword != "" {
		v.Set("keyword", q.Keyword)
	}
	if q.Author != "" {
		v.Set("author", q.Author)
	}
	return "/posts?" + v.Encode()
}

func (s *Server) handlePostPage(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.PostBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}
	s.showPost(w, r, http.StatusOK, post, postPage{})
}

// showPost renders post with its comments. form carries a rejected
// comment submission back to the reader.
func (s *Server) showPost(w http.ResponseWriter, r *http.Request, status int, post blog.Post, form postPage) {
	body, err := s.renderer.RenderPost(post)
	if err != nil {
		// Stored content that no longer renders is a server fault.
		s.logger.Error("render post", "id", post.ID, "slug", post.Slug, "error", err)
		s.renderErrorPage(w, r, http.StatusInternalServerError, msgInternal)
		return
	}
	comments, err := s.store.CommentsForPost(r.Context(), post.ID)
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	form.pageMeta = pageMeta{Title: post.Title + " | " + siteTitle, Description: post.ShortSnippet}
	form.Post = post
	form.Body = body
	form.ReadingMinutes = int(excerpt.ReadingTime(post.Content) / time.Minute)
	form.Comments = comments
	s.renderPage(w, r, status, "post.html", form)
}

func (s *Server) handleCommentForm(w http.ResponseWriter, r *http.Request) {
	post, err := s.store.PostBySlug(r.Context(), r.PathValue("slug"))
	if err != nil {
		s.pageError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.renderErrorPage(w, r, http.StatusBadRequest, "Invalid form body")
		return
	}
	in := blog.NewComment{
		PostID:  post.ID,
		Author:  r.PostForm.Get("author"),
		Content: r.PostForm.Get("content"),
	}

	if _, err := s.store.AddComment(r.Context(), in); err != nil {
		var ve *blog.ValidationError
		if errors.As(err, &ve) {
			s.showPost(w, r, http.StatusBadRequest, post, postPage{
				FormError:   ve.Error(),
				FormAuthor:  in.Author,
				FormContent: in.Content,
			})
			return
		}
		s.pageError(w, r, err)
		return
	}

	http.Redirect(w, r, "/posts/"+url.PathEscape(post.Slug)+"#comments", http.StatusSeeOther)
}
