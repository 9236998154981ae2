// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package objects

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"mxprobe/cli/internal/xas"
)

// DefaultMaxValueLen is the display truncation of attribute values, in runes.
const DefaultMaxValueLen = 128

// RenderOptions controls Render.
type RenderOptions struct {
	// MaxValueLen truncates values; <= 0 means DefaultMaxValueLen.
	MaxValueLen int
	// Color marks read-only names green and modifiable names red.
	Color bool
}

// Render formats objects for display: a "[Type] @ guid" header per object and
// one indented line per attribute, modifiable ones suffixed "(MODIFIABLE)".
// It does not modify objs.
func Render(objs []xas.Object, opts RenderOptions) string {
	if opts.MaxValueLen <= 0 {
		opts.MaxValueLen = DefaultMaxValueLen
	}
	var b strings.Builder
	for i, o := range objs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s] @ %s", o.ObjectType, o.GUID)
		for _, name := range o.AttributeNames() {
			attr := o.Attributes[name]
			b.WriteString("\n\t")
			b.WriteString(renderName(name, attr.ReadOnly, opts.Color))
			b.WriteString(": ")
			b.WriteString(truncate(xas.FormatValue(attr.Value), opts.MaxValueLen))
		}
	}
	return b.String()
}

func renderName(name string, readOnly, color bool) string {
	switch {
	case readOnly && color:
		return pterm.Green(name)
	case readOnly:
		return name
	case color:
		return pterm.Red(name) + " (MODIFIABLE)"
	default:
		return name + " (MODIFIABLE)"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
