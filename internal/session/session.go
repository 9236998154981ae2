// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package session holds the mutable state of one logical connection to an
// XAS server: transport settings, the header map and cookie jar, the CSRF
// token, the current identity and the last metadata snapshot.
//
// A Session is owned by one caller and is not safe for concurrent mutation.
// Only UpdateHeaders and UpdateCookies are meant for general callers; the
// BeginAuth and Adopt transitions belong to internal/auth.
package session

import (
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	mxerrors "mxprobe/cli/internal/errors"
)

// CSRFHeader is the header carrying the anti-forgery token.
const CSRFHeader = "X-Csrf-Token"

// sessionCookies are dropped from the jar when a new identity authenticates.
var sessionCookies = []string{"XASSESSIONID", "__Host-XASSESSIONID", "XASID", "__Host-XASID"}

// DefaultUserAgent emulates a common desktop browser for protocol compatibility.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"

// DefaultCookies are the device-profile cookies a desktop browser sends.
var DefaultCookies = map[string]string{
	"__Host-DeviceType": "Desktop",
	"__Host-Profile":    "Responsive",
}

// Options configures a new Session.
type Options struct {
	// Proxy is an optional http(s)/socks5 proxy URL.
	Proxy string
	// Timeout bounds every request (default 30s).
	Timeout time.Duration
	// Headers are merged over the default browser headers.
	Headers map[string]string
	// Cookies are merged over the default device-profile cookies.
	Cookies map[string]string
}

// Session is one logical connection to a server instance.
type Session struct {
	baseURL  *url.URL
	raw      string
	proxy    string
	timeout  time.Duration
	header   http.Header
	cookies  map[string]string
	jar      *cookiejar.Jar
	identity string
	metadata *Metadata
}

// New validates baseURL and returns a fresh unauthenticated session.
// The URL must use http or https, name a host and not end with a slash.
func New(baseURL string, opts Options) (*Session, error) {
	u, err := ValidateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	s := &Session{
		baseURL:  u,
		raw:      baseURL,
		proxy:    strings.TrimSpace(opts.Proxy),
		timeout:  opts.Timeout,
		header:   http.Header{},
		cookies:  map[string]string{},
		identity: AnonymousName,
	}
	s.header.Set("User-Agent", DefaultUserAgent)
	s.header.Set("Accept", "application/json")
	s.UpdateHeaders(opts.Headers)
	if err := s.resetJar(); err != nil {
		return nil, err
	}
	s.UpdateCookies(DefaultCookies)
	s.UpdateCookies(opts.Cookies)
	return s, nil
}

// ValidateBaseURL parses a base URL and enforces the scheme and trailing
// slash rules.
func ValidateBaseURL(baseURL string) (*url.URL, error) {
	if strings.HasSuffix(baseURL, "/") {
		return nil, mxerrors.New(mxerrors.Config, "base URL must not end with /")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, mxerrors.Wrap(mxerrors.Config, "invalid base URL", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, mxerrors.New(mxerrors.Config, "base URL must start with http:// or https://")
	}
	if u.Host == "" {
		return nil, mxerrors.New(mxerrors.Config, "base URL has no host")
	}
	return u, nil
}

// NormalizeBaseURL adds https:// when no scheme is given and strips trailing
// slashes. It is a convenience for user input; New still validates.
func NormalizeBaseURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return strings.TrimRight(raw, "/")
}

// BaseURL returns the validated base URL.
func (s *Session) BaseURL() string { return s.raw }

// Host returns the host part of the base URL.
func (s *Session) Host() string { return s.baseURL.Host }

// Proxy returns the configured proxy URL, or "".
func (s *Session) Proxy() string { return s.proxy }

// Timeout returns the per-request timeout.
func (s *Session) Timeout() time.Duration { return s.timeout }

// Jar returns the cookie jar attached to every request.
func (s *Session) Jar() http.CookieJar { return s.jar }

// Header returns a copy of the header map sent with every action.
func (s *Session) Header() http.Header { return s.header.Clone() }

// CSRFToken returns the active anti-forgery token, or "".
func (s *Session) CSRFToken() string { return s.header.Get(CSRFHeader) }

// Identity returns the display name of the current identity.
func (s *Session) Identity() string { return s.identity }

// Metadata returns the last metadata snapshot, or nil before the first
// successful bootstrap.
func (s *Session) Metadata() *Metadata { return s.metadata }

// Authenticated reports whether a session document has been adopted.
func (s *Session) Authenticated() bool { return s.metadata != nil }

// UpdateHeaders merges headers into the header map. An empty value removes
// the header.
func (s *Session) UpdateHeaders(headers map[string]string) {
	for k, v := range headers {
		if v == "" {
			s.header.Del(k)
			continue
		}
		s.header.Set(k, v)
	}
}

// UpdateCookies merges cookies into the jar for the base URL. An empty value
// removes the cookie.
func (s *Session) UpdateCookies(cookies map[string]string) {
	if len(cookies) == 0 {
		return
	}
	var set []*http.Cookie
	for name, value := range cookies {
		if value == "" {
			delete(s.cookies, name)
			set = append(set, &http.Cookie{Name: name, Path: "/", MaxAge: -1})
			continue
		}
		s.cookies[name] = value
		set = append(set, &http.Cookie{Name: name, Value: value, Path: "/"})
	}
	s.jar.SetCookies(s.baseURL, set)
}

// Cookies returns the cookies the jar would send to the base URL.
func (s *Session) Cookies() []*http.Cookie {
	return s.jar.Cookies(s.baseURL)
}

// BeginAuth clears the CSRF token and the server session cookies before an
// identity transition. Caller-supplied cookies survive.
func (s *Session) BeginAuth() error {
	s.header.Del(CSRFHeader)
	if err := s.resetJar(); err != nil {
		return err
	}
	keep := make(map[string]string, len(s.cookies))
	for name, value := range s.cookies {
		if !isSessionCookie(name) {
			keep[name] = value
		}
	}
	s.cookies = map[string]string{}
	s.UpdateCookies(keep)
	return nil
}

// Adopt installs the result of a successful session-data refresh: the CSRF
// token, the current identity and the metadata snapshot, replacing the
// previous snapshot wholesale.
func (s *Session) Adopt(token, identity string, md *Metadata) {
	if token == "" {
		s.header.Del(CSRFHeader)
	} else {
		s.header.Set(CSRFHeader, token)
	}
	if identity == "" {
		identity = AnonymousName
	}
	s.identity = identity
	s.metadata = md
}

// SetCSRFToken installs the token returned by a login action ahead of the
// session-data refresh.
func (s *Session) SetCSRFToken(token string) {
	if token == "" {
		return
	}
	s.header.Set(CSRFHeader, token)
}

func (s *Session) resetJar() error {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return err
	}
	s.jar = jar
	return nil
}

func isSessionCookie(name string) bool {
	for _, n := range sessionCookies {
		if strings.EqualFold(n, name) {
			return true
		}
	}
	return false
}
