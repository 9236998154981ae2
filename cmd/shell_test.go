// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxprobe/cli/internal/config"
	"mxprobe/cli/internal/identity"
	"mxprobe/cli/internal/xas"
	"mxprobe/cli/internal/xastest"
)

func TestParseShellLine(t *testing.T) {
	tests := []struct {
		line string
		want shellCommand
	}{
		{"", shellCommand{op: opNone}},
		{"   ", shellCommand{op: opNone}},
		{"//Sales.Order", shellCommand{op: opQuery, typeName: "Sales.Order"}},
		{"//Sales.Order 25", shellCommand{op: opQuery, typeName: "Sales.Order", limit: 25}},
		{"//Sales.Order many", shellCommand{op: opQuery, typeName: "Sales.Order"}},
		{"//", shellCommand{op: opUnknown}},
		{"281474976710657", shellCommand{op: opByID, guid: "281474976710657"}},
		{"?", shellCommand{op: opSample}},
		{"list", shellCommand{op: opList}},
		{"help", shellCommand{op: opHelp}},
		{"show_source_ip", shellCommand{op: opSourceIP}},
		{"monitor_files", shellCommand{op: opMonitor}},
		{"flows", shellCommand{op: opFlows}},
		{"login", shellCommand{op: opLogin}},
		{"login alice", shellCommand{op: opLogin, name: "alice"}},
		{"update 12 Status Shipped  today", shellCommand{op: opUpdate, guid: "12", attr: "Status", value: "Shipped  today"}},
		{"update 12 Status", shellCommand{op: opUnknown}},
		{"update abc Status x", shellCommand{op: opUnknown}},
		{"@12", shellCommand{op: opScan, guid: "12"}},
		{"@abc", shellCommand{op: opUnknown}},
		{"exit", shellCommand{op: opExit}},
		{"loginx", shellCommand{op: opUnknown}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, parseShellLine(tt.line))
		})
	}
}

func newShellServer(t *testing.T) *xastest.Server {
	t.Helper()
	srv := xastest.New()
	t.Cleanup(srv.Close)
	srv.Users = map[string]string{"alice": "pw-a", "bob": "pw-b"}
	srv.Classes = []string{"System.User", "Sales.Order"}
	srv.Microflows = xas.MicroflowMap{{Name: "Orders", OperationIDs: "op.a,op.b"}}
	srv.Operations["op.a"] = xastest.Operation{Description: "recalculated 3 orders"}
	srv.AddObject(xas.Object{
		GUID:       "77",
		ObjectType: "Sales.Order",
		Attributes: map[string]xas.Attribute{
			"Number": {Value: "SO-1", ReadOnly: true},
			"Status": {Value: "New"},
		},
	})
	return srv
}

func newTestClient(t *testing.T, srv *xastest.Server, out *bytes.Buffer) *client {
	t.Helper()
	ids := filepath.Join(t.TempDir(), "identities.yaml")
	require.NoError(t, os.WriteFile(ids, []byte("alice: pw-a\nbob: pw-b\n"), 0o600))
	t.Setenv(identity.FileEnv, ids)

	echo := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("203.0.113.7\n"))
	}))
	t.Cleanup(echo.Close)

	c, err := newClient(config.Target{URL: srv.URL}, nil, out)
	require.NoError(t, err)
	c.echoURL = echo.URL
	return c
}

func TestRunShell(t *testing.T) {
	srv := newShellServer(t)
	var out bytes.Buffer
	c := newTestClient(t, srv, &out)
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx, ""))

	input := strings.Join([]string{
		"list",
		"//Sales.Order 1",
		"77",
		"update 77 Status Shipped now",
		"@77",
		"flows",
		"bogus",
		"login alice",
		"exit",
		"list",
	}, "\n")
	c.runShell(ctx, strings.NewReader(input))
	got := out.String()

	assert.Contains(t, got, "You are using source IP: 203.0.113.7")
	assert.Contains(t, got, "//Sales.Order\n//System.User\n")
	assert.Contains(t, got, "[Sales.Order] @ 77")
	assert.Contains(t, got, "Status (MODIFIABLE): Shipped now")
	assert.Contains(t, got, "As alice")
	assert.Contains(t, got, "As bob")
	assert.Contains(t, got, "recalculated 3 orders")
	assert.Contains(t, got, "op.b: HTTP 560")
	assert.Contains(t, got, "Unknown command; type 'help'")
	assert.Contains(t, got, "You are logged in as alice")
	assert.True(t, strings.HasSuffix(got, "kthxbye\n"))
	assert.Equal(t, 1, strings.Count(got, "//System.User"), "lines after exit are not run")

	// two logins for the scan, anonymous restore sends none, then login alice
	assert.Len(t, srv.CallsOf(xas.ActionLogin), 3)
	assert.Equal(t, "alice", c.sess.Identity())

	o, ok := srv.Object("77")
	require.True(t, ok)
	assert.Equal(t, "Shipped now", o.Attributes["Status"].Value)
}

func TestBatchFailuresAreReportedInline(t *testing.T) {
	srv := newShellServer(t)
	srv.FailRetrieve["Sales.Order"] = true
	var out bytes.Buffer
	c := newTestClient(t, srv, &out)
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx, ""))

	c.sample(ctx)
	assert.Contains(t, out.String(), "Sales.Order: HTTP 500")

	out.Reset()
	c.warnSoft("op.c", errors.New("dial tcp: connection refused"))
	assert.Contains(t, out.String(), "op.c: dial tcp: connection refused")
}

func TestExec_ReportsErrorsAndContinues(t *testing.T) {
	srv := newShellServer(t)
	var out bytes.Buffer
	c := newTestClient(t, srv, &out)
	ctx := context.Background()
	require.NoError(t, c.bootstrap(ctx, ""))

	assert.False(t, c.exec(ctx, parseShellLine("update 77 Number SO-2")))
	assert.Contains(t, out.String(), "Number is not marked modifiable on 77")
	assert.Contains(t, out.String(), "commit rejected (HTTP 403)")

	out.Reset()
	assert.False(t, c.exec(ctx, parseShellLine("login mallory")))
	assert.Contains(t, out.String(), "unknown identity mallory")

	out.Reset()
	assert.False(t, c.exec(ctx, parseShellLine("12345")))
	assert.Contains(t, out.String(), "No objects returned")

	assert.True(t, c.exec(ctx, parseShellLine("quit")))
}
