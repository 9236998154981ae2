// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package session

import (
	"sort"

	"mxprobe/cli/internal/xas"
)

// Metadata is the session-scoped snapshot of server-declared classes and
// microflow bindings. It is replaced wholesale, never updated in place.
type Metadata struct {
	User       *xas.Object
	Classes    []xas.ClassMeta
	Microflows xas.MicroflowMap
}

// ClassNames returns the distinct declared object types, sorted.
func (m *Metadata) ClassNames() []string {
	if m == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(m.Classes))
	out := make([]string, 0, len(m.Classes))
	for _, c := range m.Classes {
		if c.ObjectType == "" {
			continue
		}
		if _, ok := seen[c.ObjectType]; ok {
			continue
		}
		seen[c.ObjectType] = struct{}{}
		out = append(out, c.ObjectType)
	}
	sort.Strings(out)
	return out
}

// UserName returns the Name attribute of the current user record.
func (m *Metadata) UserName() string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.Name()
}

// UserGUID returns the guid of the current user record.
func (m *Metadata) UserGUID() string {
	if m == nil || m.User == nil {
		return ""
	}
	return m.User.GUID
}

// NewMetadata builds a snapshot from a get_session_data response.
func NewMetadata(resp *xas.Response) *Metadata {
	md := &Metadata{
		User:       resp.User,
		Classes:    append([]xas.ClassMeta(nil), resp.Metadata...),
		Microflows: append(xas.MicroflowMap(nil), resp.Microflows...),
	}
	return md
}
