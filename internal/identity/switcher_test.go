// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mxprobe/cli/internal/auth"
	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/manifest"
	"mxprobe/cli/internal/objects"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
	"mxprobe/cli/internal/xastest"
)

func setup(t *testing.T, srv *xastest.Server) (*auth.Service, *Switcher) {
	t.Helper()
	sess, err := session.New(srv.URL, session.Options{})
	require.NoError(t, err)
	api, err := backend.New(sess, manifest.Default())
	require.NoError(t, err)
	svc := auth.NewService(api, sess)
	return svc, NewSwitcher(svc, objects.NewAccessor(api, sess))
}

func newServer(t *testing.T) *xastest.Server {
	srv := xastest.New()
	t.Cleanup(srv.Close)
	srv.Users = map[string]string{"admin": "a", "alice": "b", "bob": "c", "carol": "d"}
	srv.AddObject(xas.Object{GUID: "77", ObjectType: "Sales.Order"})
	return srv
}

func TestScan_LoginCountAndRestore(t *testing.T) {
	srv := newServer(t)
	svc, sw := setup(t, srv)
	ctx := context.Background()
	require.NoError(t, svc.Login(ctx, &session.Identity{Name: "admin", Secret: "a"}))

	known := []session.Identity{{Name: "alice", Secret: "b"}, {Name: "bob", Secret: "c"}, {Name: "carol", Secret: "d"}}
	results, err := sw.Scan(ctx, "77", known)
	require.NoError(t, err)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, known[i].Name, r.Identity)
		require.NoError(t, r.Err)
		require.Len(t, r.Objects, 1)
	}

	assert.Len(t, srv.CallsOf(xas.ActionLogin), len(known)+2)
	assert.Equal(t, "admin", svc.Session().Identity())
	assert.Equal(t, "admin", svc.Current().Identity.Name)
	assert.Equal(t, srv.LastToken(), svc.Session().CSRFToken())
}

func TestScan_AnonymousOriginalRestoresAnonymously(t *testing.T) {
	srv := newServer(t)
	svc, sw := setup(t, srv)
	ctx := context.Background()
	require.NoError(t, svc.Login(ctx, nil))

	_, err := sw.Scan(ctx, "77", []session.Identity{{Name: "alice", Secret: "b"}})
	require.NoError(t, err)

	assert.Len(t, srv.CallsOf(xas.ActionLogin), 1)
	assert.Equal(t, "Anonymous", svc.Session().Identity())
	assert.True(t, svc.Current().LoggedIn())
}

func TestScan_RestoresAfterFailedLogin(t *testing.T) {
	srv := newServer(t)
	svc, sw := setup(t, srv)
	ctx := context.Background()
	require.NoError(t, svc.Login(ctx, &session.Identity{Name: "admin", Secret: "a"}))

	known := []session.Identity{{Name: "alice", Secret: "b"}, {Name: "bob", Secret: "wrong"}, {Name: "carol", Secret: "d"}}
	results, err := sw.Scan(ctx, "77", known)
	require.Error(t, err)
	assert.Equal(t, mxerrors.Fatal, mxerrors.KindOf(err))
	assert.Len(t, results, 1)

	// admin, alice, bob (rejected), restore admin
	assert.Len(t, srv.CallsOf(xas.ActionLogin), 4)
	assert.Equal(t, "admin", svc.Session().Identity())
	assert.True(t, svc.Current().LoggedIn())
}

func TestScan_RetrievalFailureIsSoft(t *testing.T) {
	srv := newServer(t)
	svc, sw := setup(t, srv)
	ctx := context.Background()
	require.NoError(t, svc.Login(ctx, nil))

	sw.retriever = failingRetriever{}
	results, err := sw.Scan(ctx, "77", []session.Identity{{Name: "alice", Secret: "b"}, {Name: "bob", Secret: "c"}})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, mxerrors.Soft, mxerrors.KindOf(r.Err))
	}
}

type failingRetriever struct{}

func (failingRetriever) RetrieveByID(ctx context.Context, guid string) ([]xas.Object, error) {
	return nil, mxerrors.New(mxerrors.Transport, "connection reset")
}
