// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCapturedHeaders(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want map[string]string
	}{
		{
			name: "colon per line",
			raw:  "Cookie: XASSESSIONID=abc; __Host-DeviceType=Desktop\nX-Csrf-Token: 123\nContent-Length: 10\n",
			want: map[string]string{"Cookie": "XASSESSIONID=abc; __Host-DeviceType=Desktop", "X-Csrf-Token": "123"},
		},
		{
			name: "devtools layout",
			raw:  ":authority\napp.example.com\n:method\nPOST\naccept\napplication/json\ncookie\nXASSESSIONID=abc\n",
			want: map[string]string{"accept": "application/json", "cookie": "XASSESSIONID=abc"},
		},
		{
			name: "devtools layout with trailing colons",
			raw:  "accept:\napplication/json\n\nx-csrf-token:\nabc\n",
			want: map[string]string{"accept": "application/json", "x-csrf-token": "abc"},
		},
		{
			name: "pseudo header with value on the same line",
			raw:  ":path: /xas/\nReferer: https://app.example.com/index.html\n",
			want: map[string]string{"Referer": "https://app.example.com/index.html"},
		},
		{name: "empty", raw: "\n\n", want: map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCapturedHeaders(tt.raw))
		})
	}
}
