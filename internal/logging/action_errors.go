// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"net/http"
	"strings"

	"github.com/pterm/pterm"
)

// ActionErrorType represents the category of a rejected action.
type ActionErrorType int

const (
	ActionErrorUnknown ActionErrorType = iota
	ActionErrorAuth
	ActionErrorNotFound
	ActionErrorBadRequest
	ActionErrorServer
)

// ParseActionStatus categorizes the HTTP status of a rejected action.
func ParseActionStatus(code int) ActionErrorType {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ActionErrorAuth
	case code == http.StatusNotFound:
		return ActionErrorNotFound
	case code >= 400 && code < 500:
		return ActionErrorBadRequest
	case code >= 500:
		// Mendix runtimes answer 560 for unhandled microflow errors.
		return ActionErrorServer
	}
	return ActionErrorUnknown
}

// FormatActionError formats a rejected action in a user-friendly way.
func FormatActionError(action string, code int, detail string) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprintf("%s rejected (HTTP %d)", action, code))
	builder.WriteString("\n")

	switch ParseActionStatus(code) {
	case ActionErrorAuth:
		builder.WriteString("The current identity is not allowed to perform this action.\n")
		builder.WriteString("  • Log in as a different identity ('login <name>')\n")
		builder.WriteString("  • The session may have expired; log in again\n")
	case ActionErrorNotFound:
		builder.WriteString("The action endpoint was not found. Check the base URL and endpoint paths.\n")
	case ActionErrorBadRequest:
		builder.WriteString("The server refused the request. The entity or attribute may not exist,\n")
		builder.WriteString("or the identity lacks access to it.\n")
	case ActionErrorServer:
		builder.WriteString("The server failed while handling the action.\n")
	default:
		builder.WriteString("Unexpected reply from the server.\n")
	}

	if strings.TrimSpace(detail) != "" {
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(detail)))
		builder.WriteString("\n")
	}

	return builder.String()
}
