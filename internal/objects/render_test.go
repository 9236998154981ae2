// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package objects

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"mxprobe/cli/internal/xas"
)

func TestRender(t *testing.T) {
	objs := []xas.Object{
		{
			GUID:       "1",
			ObjectType: "Sales.Order",
			Attributes: map[string]xas.Attribute{
				"Status": {Value: "Open"},
				"Name":   {Value: "ORD-1", ReadOnly: true},
				"Total":  {Value: float64(12)},
			},
		},
		{GUID: "2", ObjectType: "System.User"},
	}
	want := "[Sales.Order] @ 1\n" +
		"\tName: ORD-1\n" +
		"\tStatus (MODIFIABLE): Open\n" +
		"\tTotal (MODIFIABLE): 12\n" +
		"[System.User] @ 2"
	assert.Equal(t, want, Render(objs, RenderOptions{}))
	assert.Equal(t, "", Render(nil, RenderOptions{}))
}

func TestRender_TruncatesDisplayOnly(t *testing.T) {
	long := strings.Repeat("é", 200)
	objs := []xas.Object{{
		GUID:       "1",
		ObjectType: "System.FileDocument",
		Attributes: map[string]xas.Attribute{"Contents": {Value: long, ReadOnly: true}},
	}}

	out := Render(objs, RenderOptions{})
	assert.Equal(t, "[System.FileDocument] @ 1\n\tContents: "+strings.Repeat("é", DefaultMaxValueLen), out)
	assert.Equal(t, long, objs[0].Attributes["Contents"].Value)

	out = Render(objs, RenderOptions{MaxValueLen: 3})
	assert.True(t, strings.HasSuffix(out, ": ééé"))
}

func TestRender_Color(t *testing.T) {
	objs := []xas.Object{{
		GUID:       "1",
		ObjectType: "T",
		Attributes: map[string]xas.Attribute{"A": {Value: "x"}},
	}}
	out := Render(objs, RenderOptions{Color: true})
	assert.Contains(t, out, "(MODIFIABLE): x")
	assert.Contains(t, out, "A")
}
