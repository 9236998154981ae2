// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

// AnonymousName is the display name of the anonymous identity.
const AnonymousName = "Anonymous"

// Identity is a named credential pair. The zero value is the anonymous
// identity.
type Identity struct {
	Name   string
	Secret string
}

// Anonymous returns the anonymous identity.
func Anonymous() Identity { return Identity{} }

// IsAnonymous reports whether i carries no credentials.
func (i Identity) IsAnonymous() bool { return i.Name == "" }

// DisplayName returns the name shown for i.
func (i Identity) DisplayName() string {
	if i.IsAnonymous() {
		return AnonymousName
	}
	return i.Name
}
