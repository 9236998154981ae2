// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xastest provides an in-memory XAS server for tests.
//
// The server understands the six actions of the xas package and the file
// endpoint. It issues a fresh CSRF token on every login and session-data
// call and rejects data actions whose X-Csrf-Token header does not match
// the latest token of the caller's session.
package xastest

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"mxprobe/cli/internal/xas"
)

// SessionCookie is the cookie carrying the server-side session id.
const SessionCookie = "XASSESSIONID"

// Call is one request observed by the server.
type Call struct {
	Action    xas.Action
	CSRFToken string
	UserAgent string
	Body      []byte
}

// Operation is the scripted reply of one runtimeOperation.
type Operation struct {
	Status      int
	Description string
	Objects     []xas.Object
}

type userSession struct {
	user  string
	token string
}

// Server is a scripted XAS server. Exported fields may be set before the
// first request; use the methods afterwards.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	// Users maps identity name to secret. Unknown names fail with 401.
	Users map[string]string
	// Classes is the metadata snapshot returned by get_session_data.
	Classes []string
	// Microflows is returned by get_session_data.
	Microflows xas.MicroflowMap
	// Operations scripts runtimeOperation replies by operation id.
	// Unknown ids answer 560.
	Operations map[string]Operation
	// Files maps FileDocument guid to content.
	Files map[string][]byte
	// FailSessionData makes get_session_data answer 500.
	FailSessionData bool
	// FailRetrieve makes retrieve_by_xpath for the listed types answer 500.
	FailRetrieve map[string]bool
	// IgnoreAmount disables server-side truncation.
	IgnoreAmount bool

	order    []string
	objects  map[string]xas.Object
	sessions map[string]*userSession
	seq      int
	calls    []Call
	fetches  []string
}

// New starts a server. Close it with t.Cleanup(srv.Close).
func New() *Server {
	s := &Server{
		Users:        map[string]string{},
		Operations:   map[string]Operation{},
		Files:        map[string][]byte{},
		FailRetrieve: map[string]bool{},
		objects:      map[string]xas.Object{},
		sessions:     map[string]*userSession{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/xas/", s.handleAction)
	mux.HandleFunc("/file", s.handleFile)
	s.Server = httptest.NewServer(mux)
	return s
}

// AddObject stores an object. Objects are returned in insertion order.
func (s *Server) AddObject(o xas.Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[o.GUID]; !ok {
		s.order = append(s.order, o.GUID)
	}
	s.objects[o.GUID] = o
}

// Object returns the stored object.
func (s *Server) Object(guid string) (xas.Object, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.objects[guid]
	return o, ok
}

// Calls returns every action received so far.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsOf returns the received actions named a.
func (s *Server) CallsOf(a xas.Action) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Action == a {
			out = append(out, c)
		}
	}
	return out
}

// Fetches returns the guids requested from the file endpoint.
func (s *Server) Fetches() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.fetches...)
}

// LastToken returns the most recently issued CSRF token.
func (s *Server) LastToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq == 0 {
		return ""
	}
	return tokenFor(s.seq)
}

func tokenFor(n int) string { return fmt.Sprintf("csrf-%04d", n) }

type wireRequest struct {
	Action      xas.Action                            `json:"action"`
	Params      jsontext.Value                        `json:"params"`
	Changes     map[string]map[string]xas.ChangeValue `json:"changes"`
	OperationID string                                `json:"operationId"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body, _ := io.ReadAll(r.Body)
	var req wireRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{Action: req.Action, CSRFToken: r.Header.Get("X-Csrf-Token"), UserAgent: r.UserAgent(), Body: body})

	sess := s.sessionOf(r)
	switch req.Action {
	case xas.ActionLogin:
		s.login(w, req)
		return
	case xas.ActionGetSessionData:
		if s.FailSessionData {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if sess == nil {
			sess = s.newSession(w, "")
		}
		s.sessionData(w, sess)
		return
	}

	if sess == nil || sess.token == "" || r.Header.Get("X-Csrf-Token") != sess.token {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	switch req.Action {
	case xas.ActionRetrieveByXPath:
		var p xas.XPathParams
		_ = json.Unmarshal(req.Params, &p)
		s.retrieveByXPath(w, p)
	case xas.ActionRetrieveByIDs:
		var p xas.IDsParams
		_ = json.Unmarshal(req.Params, &p)
		var out []xas.Object
		for _, id := range p.IDs {
			if o, ok := s.objects[id]; ok {
				out = append(out, o)
			}
		}
		writeJSON(w, http.StatusOK, xas.Response{Objects: out})
	case xas.ActionCommit:
		s.commit(w, req.Changes)
	case xas.ActionRuntimeOperation:
		op, ok := s.Operations[req.OperationID]
		if !ok {
			w.WriteHeader(560)
			return
		}
		status := op.Status
		if status == 0 {
			status = http.StatusOK
		}
		writeJSON(w, status, xas.Response{Description: op.Description, Objects: op.Objects})
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (s *Server) login(w http.ResponseWriter, req wireRequest) {
	var p xas.LoginParams
	_ = json.Unmarshal(req.Params, &p)
	secret, ok := s.Users[p.Username]
	if !ok || secret != p.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	sess := s.newSession(w, p.Username)
	s.seq++
	sess.token = tokenFor(s.seq)
	writeJSON(w, http.StatusOK, xas.Response{CSRFToken: sess.token})
}

func (s *Server) sessionData(w http.ResponseWriter, sess *userSession) {
	s.seq++
	sess.token = tokenFor(s.seq)
	name := sess.user
	if name == "" {
		name = "Anonymous"
	}
	meta := make([]xas.ClassMeta, 0, len(s.Classes))
	for _, c := range s.Classes {
		meta = append(meta, xas.ClassMeta{ObjectType: c})
	}
	writeJSON(w, http.StatusOK, xas.Response{
		CSRFToken: sess.token,
		User: &xas.Object{
			GUID:       "user-" + name,
			ObjectType: "System.User",
			Attributes: map[string]xas.Attribute{"Name": {Value: name, ReadOnly: true}},
		},
		Metadata:   meta,
		Microflows: s.Microflows,
	})
}

func (s *Server) retrieveByXPath(w http.ResponseWriter, p xas.XPathParams) {
	typ := strings.TrimPrefix(p.XPath, "//")
	if s.FailRetrieve[typ] {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	var out []xas.Object
	for _, g := range s.order {
		o := s.objects[g]
		if o.ObjectType != typ {
			continue
		}
		if !s.IgnoreAmount && p.Schema.Amount > 0 && len(out) >= p.Schema.Amount {
			break
		}
		out = append(out, o)
	}
	writeJSON(w, http.StatusOK, xas.Response{Objects: out})
}

func (s *Server) commit(w http.ResponseWriter, changes map[string]map[string]xas.ChangeValue) {
	var out []xas.Object
	for guid, attrs := range changes {
		o, ok := s.objects[guid]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		next := make(map[string]xas.Attribute, len(o.Attributes))
		for k, v := range o.Attributes {
			next[k] = v
		}
		for name, cv := range attrs {
			if a, ok := next[name]; ok && a.ReadOnly {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			a := next[name]
			a.Value = cv.Value
			next[name] = a
		}
		o.Attributes = next
		s.objects[guid] = o
		out = append(out, o)
	}
	writeJSON(w, http.StatusOK, xas.Response{Objects: out})
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	guid := r.URL.Query().Get("guid")
	s.mu.Lock()
	s.fetches = append(s.fetches, guid)
	data, ok := s.Files[guid]
	s.mu.Unlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}

func (s *Server) sessionOf(r *http.Request) *userSession {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return nil
	}
	return s.sessions[c.Value]
}

func (s *Server) newSession(w http.ResponseWriter, user string) *userSession {
	id := fmt.Sprintf("sess-%d", len(s.sessions)+1)
	sess := &userSession{user: user}
	s.sessions[id] = sess
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true})
	return sess
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
