package server

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/rdharma/folio/internal/auth"
	"github.com/rdharma/folio/internal/post"
)

type editorView struct {
	Action    string
	Form      post.Form
	Published bool
	Error     string
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if s.deps.Auth.Authenticated(r) {
		http.Redirect(w, r, auth.AdminPath, http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Admin Login", struct{ Error bool }{
		Error: r.URL.Query().Get("error") != "",
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Posts.List(r.Context(), post.ListOptions{})
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	s.render(w, r, http.StatusOK, "admin.html", "Admin", struct{ Posts []*post.Post }{posts})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "editor.html", "New post", editorView{
		Action: "/admin/posts",
		Form:   post.Form{Author: s.cfg.Site.Author},
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	p, ok := s.lookupPost(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "editor.html", "Edit post", editorView{
		Action: "/admin/posts/" + p.ID,
		Form: post.Form{
			ID:         p.ID,
			Title:      p.Title,
			Subtitle:   deref(p.Subtitle),
			Author:     p.Author,
			CoverImage: deref(p.CoverImage),
			Content:    p.Markup(),
		},
		Published: p.Published,
	})
}

func (s *Server) lookupPost(w http.ResponseWriter, r *http.Request) (*post.Post, bool) {
	p, err := s.deps.Posts.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, post.ErrNotFound) {
		s.notFound(w, r)
		return nil, false
	}
	if err != nil {
		s.serverError(w, r, err)
		return nil, false
	}
	return p, true
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return false
	}
	return true
}

// handleCreate redirects to the published post, or back to the editor for
// drafts.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := post.FormFromValues(r.PostForm)

	p, err := s.deps.Posts.Create(r.Context(), form)
	if errors.Is(err, post.ErrInvalid) {
		s.render(w, r, http.StatusBadRequest, "editor.html", "New post", editorView{
			Action: "/admin/posts",
			Form:   form,
			Error:  err.Error(),
		})
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	if p.Published {
		http.Redirect(w, r, "/blog/"+p.Slug, http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/admin/edit/"+p.ID, http.StatusSeeOther)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	form := post.FormFromValues(r.PostForm)
	form.ID = r.PathValue("id")

	p, err := s.deps.Posts.Update(r.Context(), form)
	switch {
	case errors.Is(err, post.ErrNotFound):
		s.notFound(w, r)
		return
	case errors.Is(err, post.ErrInvalid):
		s.render(w, r, http.StatusBadRequest, "editor.html", "Edit post", editorView{
			Action: "/admin/posts/" + form.ID,
			Form:   form,
			Error:  err.Error(),
		})
		return
	case err != nil:
		s.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/admin/edit/"+p.ID, http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	_, err := s.deps.Posts.Delete(r.Context(), r.PathValue("id"))
	if errors.Is(err, post.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, auth.AdminPath, http.StatusSeeOther)
}

// handlePublish sets the published flag from the "published" form value.
func (s *Server) handlePublish(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}

	_, err := s.deps.Posts.SetPublished(r.Context(), r.PathValue("id"), post.ParseBool(r.PostForm.Get("published")))
	if errors.Is(err, post.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, auth.AdminPath, http.StatusSeeOther)
}
