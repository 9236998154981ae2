// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package xas

import (
	"testing"

	"github.com/go-json-experiment/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sessionDocument = `{
  "csrftoken": "abc",
  "user": {"guid": "9", "objectType": "System.User", "attributes": {"Name": {"value": "Anonymous", "readonly": true}}},
  "metadata": [
    {"objectType": "System.User", "attributes": {"Name": {"type": "String"}}},
    {"objectType": "Sales.Order"}
  ],
  "microflows": {"zeta": "op-3, op-4", "alpha": "op-1,op-2,", "empty": ""}
}`

func TestDecodeResponse_SessionDocument(t *testing.T) {
	r, err := DecodeResponse([]byte(sessionDocument))
	require.NoError(t, err)

	assert.Equal(t, "abc", r.CSRFToken)
	require.NotNil(t, r.User)
	assert.Equal(t, "Anonymous", r.User.Name())
	assert.Equal(t, "9", r.User.GUID)

	require.Len(t, r.Metadata, 2)
	assert.Equal(t, "System.User", r.Metadata[0].ObjectType)
	assert.Contains(t, string(r.Metadata[0].Extra), `"attributes"`)

	require.Len(t, r.Microflows, 3)
	assert.Equal(t, "zeta", r.Microflows[0].Name)
	assert.Equal(t, "alpha", r.Microflows[1].Name)
	assert.Equal(t, []string{"op-3", "op-4", "op-1", "op-2"}, r.Microflows.OperationIDs())
}

func TestDecodeResponse_EmptyBody(t *testing.T) {
	r, err := DecodeResponse(nil)
	require.NoError(t, err)
	assert.Empty(t, r.Objects)
	assert.Nil(t, r.User)
}

func TestDecodeResponse_Malformed(t *testing.T) {
	_, err := DecodeResponse([]byte(`{"objects": 12}`))
	assert.Error(t, err)
}

func TestMicroflowMap_NullAndRoundTrip(t *testing.T) {
	var r Response
	require.NoError(t, json.Unmarshal([]byte(`{"microflows": null}`), &r))
	assert.Nil(t, r.Microflows)

	in := MicroflowMap{{Name: "b", OperationIDs: "1"}, {Name: "a", OperationIDs: "2,3"}}
	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"2,3"}`, string(b))

	var out MicroflowMap
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestObject_Accessors(t *testing.T) {
	o := Object{
		GUID:       "1",
		ObjectType: "Sales.Order",
		Attributes: map[string]Attribute{
			"Total":  {Value: float64(250)},
			"Rate":   {Value: 0.5},
			"Name":   {Value: "ORD-1", ReadOnly: true},
			"Note":   {Value: nil},
			"Closed": {Value: false},
		},
	}
	assert.Equal(t, []string{"Closed", "Name", "Note", "Rate", "Total"}, o.AttributeNames())
	assert.Equal(t, "250", o.StringValue("Total"))
	assert.Equal(t, "0.5", o.StringValue("Rate"))
	assert.Equal(t, "false", o.StringValue("Closed"))
	assert.Equal(t, "", o.StringValue("Note"))
	assert.Equal(t, "", o.StringValue("Missing"))
	assert.Equal(t, "ORD-1", o.Name())

	a, ok := o.Attribute("Name")
	require.True(t, ok)
	assert.True(t, a.ReadOnly)
}
