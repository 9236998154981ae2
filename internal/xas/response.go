// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xas

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Response is the envelope returned by the action endpoint. Every field is
// optional; which ones are present depends on the action.
type Response struct {
	Objects     []Object     `json:"objects,omitempty"`
	Description string       `json:"description,omitempty"`
	CSRFToken   string       `json:"csrftoken,omitempty"`
	User        *Object      `json:"user,omitempty"`
	Metadata    []ClassMeta  `json:"metadata,omitempty"`
	Microflows  MicroflowMap `json:"microflows,omitzero"`
}

// Object is one business-domain record.
type Object struct {
	GUID       string               `json:"guid"`
	ObjectType string               `json:"objectType"`
	Attributes map[string]Attribute `json:"attributes,omitempty"`
}

// Attribute is one attribute value plus the server's read-only flag as of
// retrieval time.
type Attribute struct {
	Value    any  `json:"value"`
	ReadOnly bool `json:"readonly,omitempty"`
}

// ClassMeta is one entry of the metadata snapshot.
type ClassMeta struct {
	ObjectType string `json:"objectType"`
	// Everything else the server declares for the class is kept verbatim.
	Extra jsontext.Value `json:",unknown"`
}

// Attribute returns the named attribute and whether it is present.
func (o Object) Attribute(name string) (Attribute, bool) {
	a, ok := o.Attributes[name]
	return a, ok
}

// AttributeNames returns the attribute names sorted lexically.
func (o Object) AttributeNames() []string {
	names := make([]string, 0, len(o.Attributes))
	for n := range o.Attributes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// StringValue returns the attribute value formatted for display. Absent
// and null values yield "".
func (o Object) StringValue(name string) string {
	a, ok := o.Attributes[name]
	if !ok || a.Value == nil {
		return ""
	}
	return FormatValue(a.Value)
}

// Name returns the value of the conventional Name attribute.
func (o Object) Name() string {
	return o.StringValue("Name")
}

// FormatValue renders a decoded JSON value the way it would be typed back.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}

// MicroflowGroup is one entry of the microflow map: a group name and its
// comma-joined operation ids.
type MicroflowGroup struct {
	Name         string
	OperationIDs string
}

// MicroflowMap is the microflow group map in the order the server declared it.
type MicroflowMap []MicroflowGroup

// UnmarshalJSON decodes a JSON object keeping the key order.
func (m *MicroflowMap) UnmarshalJSON(b []byte) error {
	dec := jsontext.NewDecoder(bytes.NewReader(b))
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	if tok.Kind() == 'n' {
		*m = nil
		return nil
	}
	if tok.Kind() != '{' {
		return fmt.Errorf("microflows: expected object, got %s", tok.Kind())
	}
	out := MicroflowMap{}
	for dec.PeekKind() != '}' {
		key, err := dec.ReadToken()
		if err != nil {
			return err
		}
		// The token is only valid until the next decoder call.
		name := key.String()
		val, err := dec.ReadValue()
		if err != nil {
			return err
		}
		var ids string
		if val.Kind() == '"' {
			if err := json.Unmarshal(val, &ids); err != nil {
				return err
			}
		}
		out = append(out, MicroflowGroup{Name: name, OperationIDs: ids})
	}
	if _, err := dec.ReadToken(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON encodes the groups as a JSON object in declared order.
func (m MicroflowMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(g.Name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(g.OperationIDs)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// OperationIDs flattens every group's comma-separated list into one ordered
// sequence. Blank entries are dropped.
func (m MicroflowMap) OperationIDs() []string {
	var out []string
	for _, g := range m {
		for _, id := range strings.Split(g.OperationIDs, ",") {
			if id = strings.TrimSpace(id); id != "" {
				out = append(out, id)
			}
		}
	}
	return out
}

// DecodeResponse parses a JSON response body.
func DecodeResponse(body []byte) (*Response, error) {
	var r Response
	if len(bytes.TrimSpace(body)) == 0 {
		return &r, nil
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("decode xas response: %w", err)
	}
	return &r, nil
}

// EncodeRequest serialises a request body after validating its action.
func EncodeRequest(r Request) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(r)
}
