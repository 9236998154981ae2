// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import "mxprobe/cli/internal/session"

// Phase is the position of a session in the authentication state machine.
type Phase int

const (
	// Unauthenticated is the phase before the first successful bootstrap and
	// after a failed transition.
	Unauthenticated Phase = iota
	// Authenticated means a session document and CSRF token are active.
	Authenticated
)

func (p Phase) String() string {
	if p == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// State is a snapshot of the controller.
type State struct {
	Phase Phase
	// Identity is the credential pair used for the last successful transition.
	// It is anonymous for set_headers bootstraps.
	Identity session.Identity
	// DisplayName is the name reported by the server's current-user record.
	DisplayName string
	// UserGUID is the guid of the server's current-user record.
	UserGUID string
	// Headers are the captured headers of a set_headers bootstrap, nil otherwise.
	Headers map[string]string
}

// LoggedIn reports whether the controller is in the Authenticated phase.
func (s State) LoggedIn() bool { return s.Phase == Authenticated }
