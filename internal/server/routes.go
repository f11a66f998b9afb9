package server

import (
	"net/http"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /blog", s.handleBlog)
	mux.HandleFunc("GET /blog/{slug}", s.handlePost)
	mux.HandleFunc("GET /case-studies/{slug}", s.handleCaseStudy)
	mux.HandleFunc("GET /tools/brute-force-outbound-calculator", s.handleOutboundCalculator)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", s.uploads()))

	mux.HandleFunc("GET /admin/login", s.handleLoginPage)
	mux.HandleFunc("POST /admin/login", s.deps.Auth.HandleLogin)
	mux.HandleFunc("POST /admin/logout", s.deps.Auth.HandleLogout)

	admin := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.deps.Auth.Require(h))
	}
	admin("GET /admin", s.handleDashboard)
	admin("GET /admin/{$}", s.handleDashboard)
	admin("GET /admin/new", s.handleNew)
	admin("GET /admin/edit/{id}", s.handleEdit)
	admin("POST /admin/posts", s.handleCreate)
	admin("POST /admin/posts/{id}", s.handleUpdate)
	admin("POST /admin/posts/{id}/delete", s.handleDelete)
	admin("POST /admin/posts/{id}/publish", s.handlePublish)

	api := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, s.deps.Auth.RequireAPI(h))
	}
	api("POST /admin/api/preview", s.handlePreview)
	api("POST /admin/api/markup", s.handleMarkup)
	api("POST /api/upload", s.handleUpload)

	mux.HandleFunc("/", s.notFound)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) uploads() http.Handler {
	if s.deps.Blobs == nil {
		return http.HandlerFunc(s.notFound)
	}
	return s.deps.Blobs.Handler()
}
