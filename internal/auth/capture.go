// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"strings"
)

// ParseCapturedHeaders reads request headers copied from a browser. Two
// layouts are accepted: "Name: value" per line, and the DevTools layout
// where the name and the value sit on consecutive lines. HTTP/2
// pseudo-headers (":authority" and friends) are skipped, as are headers the
// transport computes itself.
func ParseCapturedHeaders(raw string) map[string]string {
	var lines []string
	for _, l := range strings.Split(raw, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	out := map[string]string{}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		var name, value string
		if strings.HasPrefix(line, ":") {
			if rest := line[1:]; strings.Contains(rest, ":") {
				continue
			}
			i++
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok && strings.TrimSpace(v) != "" {
			name, value = k, v
		} else {
			name = strings.TrimSuffix(line, ":")
			if i+1 < len(lines) {
				i++
				value = lines[i]
			}
		}
		name = strings.TrimSpace(name)
		if name == "" || skipCaptured(name) {
			continue
		}
		out[name] = strings.TrimSpace(value)
	}
	return out
}

func skipCaptured(name string) bool {
	switch strings.ToLower(name) {
	case "content-length", "host", "connection", "accept-encoding":
		return true
	}
	return false
}
