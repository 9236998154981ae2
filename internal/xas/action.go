// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package xas defines the wire vocabulary of the XAS runtime action protocol:
// the closed set of action names, the typed request variants sent to the
// single action endpoint, and the response envelope with the business objects
// and session document it may carry.
//
// The package is pure data. Transport lives in internal/backend.
package xas

import "fmt"

// Action names one call understood by the action endpoint.
type Action string

const (
	// ActionLogin authenticates a named identity and returns a CSRF token.
	ActionLogin Action = "login"
	// ActionGetSessionData returns the current user, the metadata snapshot and a CSRF token.
	ActionGetSessionData Action = "get_session_data"
	// ActionRetrieveByXPath runs a bounded object query.
	ActionRetrieveByXPath Action = "retrieve_by_xpath"
	// ActionRetrieveByIDs looks objects up by guid.
	ActionRetrieveByIDs Action = "retrieve_by_ids"
	// ActionCommit writes attribute changes.
	ActionCommit Action = "commit"
	// ActionRuntimeOperation invokes a server-side procedure (microflow).
	ActionRuntimeOperation Action = "runtimeOperation"
)

var actions = []Action{
	ActionLogin,
	ActionGetSessionData,
	ActionRetrieveByXPath,
	ActionRetrieveByIDs,
	ActionCommit,
	ActionRuntimeOperation,
}

// Actions returns the closed set of supported actions.
func Actions() []Action {
	out := make([]Action, len(actions))
	copy(out, actions)
	return out
}

// Valid reports whether a is part of the supported action set.
func (a Action) Valid() bool {
	for _, known := range actions {
		if a == known {
			return true
		}
	}
	return false
}

// UnknownActionError is returned when a request names an action outside the set.
type UnknownActionError struct {
	Action Action
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("unknown xas action %q", string(e.Action))
}
