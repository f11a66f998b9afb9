package server

import (
	"net/http"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/rdharma/folio/internal/casestudy"
	"github.com/rdharma/folio/internal/outbound"
	"github.com/rdharma/folio/internal/post"
	"github.com/rdharma/folio/pkg/richtext"
)

type homeView struct {
	Author      string
	Description string
	CaseStudies []entryView
}

type entryView struct {
	Kind       string
	Href       string
	Title      string
	Summary    string
	Author     string
	Date       time.Time
	CoverImage string
}

type articleView struct {
	Label      string
	Title      string
	Summary    string
	Author     string
	Date       time.Time
	BackHref   string
	BackLabel  string
	CoverImage string
	Doc        richtext.Document
}

func caseStudyEntry(cs *casestudy.CaseStudy) entryView {
	summary := cs.Meta.Summary
	if summary == "" {
		summary = cs.Meta.Description
	}
	return entryView{
		Kind:       "case-study",
		Href:       "/case-studies/" + cs.Slug,
		Title:      cs.Meta.Title,
		Summary:    summary,
		Author:     cs.Meta.Author,
		Date:       cs.Meta.Time(),
		CoverImage: cs.Meta.CoverImage,
	}
}

func postEntry(p *post.Post) entryView {
	return entryView{
		Kind:       "post",
		Href:       "/blog/" + p.Slug,
		Title:      p.Title,
		Summary:    deref(p.Subtitle),
		Author:     p.Author,
		Date:       p.CreatedAt,
		CoverImage: deref(p.CoverImage),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Server) caseStudies() []*casestudy.CaseStudy {
	if s.deps.CaseStudies == nil {
		return nil
	}
	return s.deps.CaseStudies.List()
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	view := homeView{
		Author:      s.cfg.Site.Author,
		Description: s.cfg.Site.Description,
	}
	for _, cs := range s.caseStudies() {
		view.CaseStudies = append(view.CaseStudies, caseStudyEntry(cs))
	}
	s.render(w, r, http.StatusOK, "home.html", "", view)
}

// handleBlog lists published posts and case studies, newest first.
func (s *Server) handleBlog(w http.ResponseWriter, r *http.Request) {
	posts, err := s.deps.Posts.List(r.Context(), post.ListOptions{PublishedOnly: true}, s.cfg.Filters...)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	entries := make([]entryView, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, postEntry(p))
	}
	for _, cs := range s.caseStudies() {
		entries = append(entries, caseStudyEntry(cs))
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})

	s.render(w, r, http.StatusOK, "blog.html", "Blog", struct{ Entries []entryView }{entries})
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	p, err := s.deps.Posts.GetPublished(r.Context(), r.PathValue("slug"))
	if errors.Is(err, post.ErrNotFound) {
		s.notFound(w, r)
		return
	}
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	s.render(w, r, http.StatusOK, "article.html", p.Title, articleView{
		Label:      "BLOG",
		Title:      p.Title,
		Summary:    deref(p.Subtitle),
		Author:     p.Author,
		Date:       p.CreatedAt,
		BackHref:   "/blog",
		BackLabel:  "← Back to blog",
		CoverImage: deref(p.CoverImage),
		Doc:        p.Document(),
	})
}

func (s *Server) handleCaseStudy(w http.ResponseWriter, r *http.Request) {
	if s.deps.CaseStudies == nil {
		s.notFound(w, r)
		return
	}
	cs, ok := s.deps.CaseStudies.Get(r.PathValue("slug"))
	if !ok {
		s.notFound(w, r)
		return
	}

	s.render(w, r, http.StatusOK, "article.html", cs.Meta.Title, articleView{
		Label:      cs.Meta.Label,
		Title:      cs.Meta.Title,
		Summary:    cs.Meta.Summary,
		Author:     cs.Meta.Author,
		Date:       cs.Meta.Time(),
		BackHref:   cs.Meta.BackHref,
		BackLabel:  cs.Meta.BackLabel,
		CoverImage: cs.Meta.CoverImage,
		Doc:        cs.Doc,
	})
}

// handleOutboundCalculator renders the outbound plan for the scenario in the
// query string.
func (s *Server) handleOutboundCalculator(w http.ResponseWriter, r *http.Request) {
	plan := outbound.NewPlan(outbound.ParseInputs(r.URL.Query()))
	s.render(w, r, http.StatusOK, "calculator.html", "Brute-Force Outbound Calculator", plan)
}
