// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures against a target into
// readable terminal messages.
package httperrors

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
)

// Category classifies a failure for display.
type Category string

const (
	CategoryTimeout   Category = "timeout"
	CategoryDNS       Category = "dns"
	CategoryRefused   Category = "refused"
	CategoryTLS       Category = "tls"
	CategoryProxy     Category = "proxy"
	CategoryStatus    Category = "status"
	CategoryNetwork   Category = "network"
	CategoryUnrelated Category = ""
)

// Classify returns the display category of err.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnrelated
	}
	if _, ok := backend.AsStatusError(err); ok {
		return CategoryStatus
	}
	if isTimeoutError(err) {
		return CategoryTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CategoryDNS
	}
	if isProxyError(err) {
		return CategoryProxy
	}
	if isConnectionRefusedError(err) {
		return CategoryRefused
	}
	if isTLSError(err) {
		return CategoryTLS
	}
	if mxerrors.Is(err, mxerrors.Transport) {
		return CategoryNetwork
	}
	return CategoryUnrelated
}

// FormatNetworkError writes a hint for err to w when err is a network
// failure against host and returns err unchanged.
func FormatNetworkError(w io.Writer, err error, host, doing string) error {
	if err == nil {
		return nil
	}
	p := pterm.Warning.WithWriter(w)
	switch Classify(err) {
	case CategoryTimeout:
		p.Printfln("%s did not answer in time while %s. Raise the profile timeout or check the proxy.", host, doing)
	case CategoryDNS:
		p.Printfln("Cannot resolve %s while %s.", host, doing)
	case CategoryRefused:
		p.Printfln("%s refused the connection while %s.", host, doing)
	case CategoryTLS:
		p.Printfln("TLS handshake with %s failed while %s.", host, doing)
	case CategoryProxy:
		p.Printfln("The configured proxy rejected the request to %s while %s.", host, doing)
	case CategoryStatus:
		se, _ := backend.AsStatusError(err)
		p.Printfln("%s answered %d to %s while %s.", host, se.StatusCode, se.Action, doing)
	case CategoryNetwork:
		p.Printfln("Network error talking to %s while %s.", host, doing)
	default:
		return err
	}
	logging.Logf("http", "technical details: %s", shorten(err.Error(), 200))
	return err
}

func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") || strings.Contains(s, "certificate") || strings.Contains(s, "handshake")
}

func isProxyError(err error) bool {
	var ue *url.Error
	if !errors.As(err, &ue) {
		return false
	}
	s := strings.ToLower(ue.Err.Error())
	return strings.Contains(s, "proxyconnect") || strings.Contains(s, "socks")
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}

func shorten(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
