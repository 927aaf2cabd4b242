// Package hrboxtest provides an in-memory HR document box for tests.
package hrboxtest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/hrbox-pull/hrbox-pull/pkg/hrbox"
	jsoniter "github.com/json-iterator/go"
)

const (
	Token          = "xsrf-test-token"
	SessionCookie  = "SESSION"
	anonymousValue = "anonymous"
	loggedInValue  = "authenticated"
)

// Server answers bootstrap, login, listing and content requests and
// records every request it receives.
type Server struct {
	*httptest.Server

	Username string
	Password string
	// Pages are served in order, one per listing request. Requests beyond
	// the last page get the last page again.
	Pages []hrbox.Page
	// Body, when set, is served verbatim to listing requests instead of Pages.
	Body []byte
	// Contents maps FILE_INDEX to the document bytes. Missing indexes get 404.
	Contents map[string][]byte
	// NoToken makes the bootstrap response omit the XSRF cookie.
	NoToken bool
	// BootstrapStatus overrides the 302 of the bootstrap response.
	BootstrapStatus int

	mu       sync.Mutex
	requests []Request
	pageHits int
}

type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
	Authed bool
}

func NewServer() *Server {
	s := &Server{
		Username: "alice",
		Password: "secret",
		Contents: make(map[string][]byte),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveHTTP))
	return s
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many recorded requests went to path, ignoring the query.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

// CountPrefix returns how many recorded requests have a path starting with prefix.
func (s *Server) CountPrefix(prefix string) int {
	n := 0
	for _, r := range s.Requests() {
		if strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func (s *Server) serveHTTP(w http.ResponseWriter, r *http.Request) {
	authed := false
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value == loggedInValue {
		authed = true
	}
	s.mu.Lock()
	s.requests = append(s.requests, Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Token:  r.Header.Get(hrbox.XSRFHeader),
		Authed: authed,
	})
	s.mu.Unlock()

	switch {
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		s.bootstrap(w)
	case r.URL.Path == hrbox.LoginPath && r.Method == http.MethodPost:
		s.login(w, r)
	case r.URL.Path == hrbox.DocumentsPath && r.Method == http.MethodGet:
		if !s.authorized(w, r, authed) {
			return
		}
		s.listing(w)
	case strings.HasPrefix(r.URL.Path, hrbox.DocumentsPath+"/") && strings.HasSuffix(r.URL.Path, "/pdf"):
		if !s.authorized(w, r, authed) {
			return
		}
		index := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, hrbox.DocumentsPath+"/"), "/pdf")
		s.content(w, index)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) bootstrap(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: anonymousValue, Path: "/"})
	if !s.NoToken {
		http.SetCookie(w, &http.Cookie{Name: hrbox.XSRFCookie, Value: Token, Path: "/"})
	}
	if s.BootstrapStatus != 0 {
		w.WriteHeader(s.BootstrapStatus)
		return
	}
	w.Header().Set("Location", "/login")
	w.WriteHeader(http.StatusFound)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(hrbox.XSRFHeader) != Token {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != s.Username || r.PostForm.Get("password") != s.Password {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: loggedInValue, Path: "/"})
	w.WriteHeader(http.StatusOK)
}

func (s *Server) authorized(w http.ResponseWriter, r *http.Request, authed bool) bool {
	if !authed || r.Header.Get(hrbox.XSRFHeader) != Token {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return false
	}
	return true
}

func (s *Server) listing(w http.ResponseWriter) {
	s.mu.Lock()
	if s.Body != nil {
		body := s.Body
		s.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write(body)
		return
	}
	if len(s.Pages) == 0 {
		s.mu.Unlock()
		http.Error(w, "no pages", http.StatusInternalServerError)
		return
	}
	page := s.Pages[min(s.pageHits, len(s.Pages)-1)]
	s.pageHits++
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(page)
}

func (s *Server) content(w http.ResponseWriter, index string) {
	s.mu.Lock()
	data, ok := s.Contents[index]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// Documents builds documents named after names, with FILE_INDEX 1..n
// starting at first.
func Documents(first int, names ...string) []hrbox.Document {
	docs := make([]hrbox.Document, 0, len(names))
	for i, name := range names {
		docs = append(docs, hrbox.Document{
			Name:      name,
			FileIndex: strconv.Itoa(first + i),
			Folder:    "payslips",
		})
	}
	return docs
}

// PageOf wraps docs into a page reporting total documents overall.
func PageOf(total uint32, offset uint32, docs []hrbox.Document) hrbox.Page {
	if docs == nil {
		docs = []hrbox.Document{}
	}
	return hrbox.Page{
		Success:          true,
		TotalResultCount: uint32(len(docs)),
		TotalCount:       total,
		Offset:           offset,
		Documents:        docs,
	}
}

// PDF returns a minimal payload that sniffs as application/pdf.
func PDF(body string) []byte {
	return []byte(fmt.Sprintf("%%PDF-1.4\n%s\n%%%%EOF\n", body))
}
