// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth drives identity transitions on a session: the login action,
// the session-data refresh that follows it, and the header-based bootstrap
// for sessions captured outside the tool.
//
// Every successful transition leaves exactly one CSRF token in the session's
// header map; every failure is reported with Kind fatal and leaves the
// controller Unauthenticated.
package auth

import (
	"context"
	"maps"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
)

// Service centralizes authentication-related operations against one session.
type Service struct {
	api  backend.API
	sess *session.Session

	state State
	// captured holds the headers applied by the last SetHeaders call so a
	// later Login can withdraw them and Restore can re-apply them.
	captured map[string]string
	// shadowed holds the values captured headers replaced; "" means absent.
	shadowed map[string]string
}

// NewService constructs an auth Service for sess.
func NewService(api backend.API, sess *session.Session) *Service {
	return &Service{api: api, sess: sess}
}

// Session returns the session the service operates on.
func (s *Service) Session() *session.Session { return s.sess }

// Current returns the controller state, including the identity (with its
// secret) that Restore needs to return to it.
func (s *Service) Current() State {
	st := s.state
	st.Headers = maps.Clone(s.captured)
	return st
}

// Login switches to id. A nil or anonymous id takes the anonymous path and
// sends no login action. In every case a get_session_data refresh follows.
func (s *Service) Login(ctx context.Context, id *session.Identity) error {
	ident := session.Anonymous()
	if id != nil {
		ident = *id
	}
	logging.Logf("auth", "login as %s", ident.DisplayName())

	s.state = State{}
	s.withdrawCaptured()
	if err := s.sess.BeginAuth(); err != nil {
		return mxerrors.Wrap(mxerrors.Fatal, "reset session", err)
	}

	if !ident.IsAnonymous() {
		resp, err := s.api.Send(ctx, xas.NewLogin(ident.Name, ident.Secret))
		if err != nil {
			return mxerrors.Wrap(mxerrors.Fatal, "login as "+ident.Name, err)
		}
		s.sess.SetCSRFToken(resp.CSRFToken)
	}
	return s.refresh(ctx, ident)
}

// SetHeaders bootstraps from headers captured elsewhere (a browser session
// cookie, for example) without sending a login action, then refreshes the
// session data.
func (s *Service) SetHeaders(ctx context.Context, headers map[string]string) error {
	logging.Logf("auth", "bootstrap from %d captured headers", len(headers))
	s.state = State{}
	s.withdrawCaptured()
	current := s.sess.Header()
	s.shadowed = make(map[string]string, len(headers))
	for k := range headers {
		s.shadowed[k] = current.Get(k)
	}
	s.sess.UpdateHeaders(headers)
	s.captured = maps.Clone(headers)
	return s.refresh(ctx, session.Anonymous())
}

// Refresh re-issues get_session_data under the current identity, rotating
// the CSRF token and replacing the metadata snapshot.
func (s *Service) Refresh(ctx context.Context) error {
	return s.refresh(ctx, s.state.Identity)
}

// Restore returns to a state previously obtained from Current: captured
// headers are re-applied when present, otherwise the identity logs in again.
func (s *Service) Restore(ctx context.Context, st State) error {
	if len(st.Headers) > 0 {
		if err := s.sess.BeginAuth(); err != nil {
			return mxerrors.Wrap(mxerrors.Fatal, "reset session", err)
		}
		return s.SetHeaders(ctx, st.Headers)
	}
	ident := st.Identity
	return s.Login(ctx, &ident)
}

func (s *Service) refresh(ctx context.Context, ident session.Identity) error {
	resp, err := s.api.Send(ctx, xas.NewGetSessionData())
	if err != nil {
		s.state = State{}
		return mxerrors.Wrap(mxerrors.Fatal, "get session data", err)
	}

	token := resp.CSRFToken
	if token == "" {
		token = s.sess.CSRFToken()
	}
	md := session.NewMetadata(resp)
	name := md.UserName()
	if name == "" {
		name = ident.DisplayName()
	}
	s.sess.Adopt(token, name, md)

	s.state = State{
		Phase:       Authenticated,
		Identity:    ident,
		DisplayName: name,
		UserGUID:    md.UserGUID(),
	}
	logging.Logf("auth", "session ready for %s (%d classes, csrftoken=%s)", name, len(md.Classes), token)
	return nil
}

// withdrawCaptured puts back the header values the captured headers
// replaced, removing the ones that had no previous value.
func (s *Service) withdrawCaptured() {
	if len(s.captured) == 0 {
		return
	}
	prior := make(map[string]string, len(s.captured))
	for k := range s.captured {
		prior[k] = s.shadowed[k]
	}
	s.sess.UpdateHeaders(prior)
	s.captured = nil
	s.shadowed = nil
}
