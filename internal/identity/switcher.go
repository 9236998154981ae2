// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package identity scans one object under every known identity and manages
// the set of known identities for a target.
package identity

import (
	"context"
	"errors"

	"mxprobe/cli/internal/auth"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
)

// Authenticator performs identity transitions. *auth.Service implements it.
type Authenticator interface {
	Login(ctx context.Context, id *session.Identity) error
	Current() auth.State
	Restore(ctx context.Context, st auth.State) error
}

// Retriever looks objects up by guid. *objects.Accessor implements it.
type Retriever interface {
	RetrieveByID(ctx context.Context, guid string) ([]xas.Object, error)
}

// ScanResult is what one identity sees of the scanned object.
type ScanResult struct {
	Identity string
	Objects  []xas.Object
	// Err is a soft retrieval error; the scan continued.
	Err error
}

// Switcher runs identity scans. Logins are strictly sequential.
type Switcher struct {
	auth      Authenticator
	retriever Retriever
}

// NewSwitcher returns a Switcher.
func NewSwitcher(a Authenticator, r Retriever) *Switcher {
	return &Switcher{auth: a, retriever: r}
}

// Scan logs in as every identity of known, in order, and retrieves guid
// under each. The identity active before the scan is restored on return,
// whether the scan completed or not. A failed login aborts the scan; a
// failed retrieval is recorded in its result and the scan continues.
func (s *Switcher) Scan(ctx context.Context, guid string, known []session.Identity) (results []ScanResult, err error) {
	original := s.auth.Current()
	logging.Logf("identity", "scan %s as %d identities, restoring %s afterwards", guid, len(known), original.Identity.DisplayName())

	defer func() {
		if rerr := s.auth.Restore(context.WithoutCancel(ctx), original); rerr != nil {
			err = errors.Join(err, mxerrors.Wrap(mxerrors.Fatal, "restore "+original.Identity.DisplayName(), rerr))
		}
	}()

	for _, id := range known {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		if err := s.auth.Login(ctx, &id); err != nil {
			return results, err
		}
		objs, rerr := s.retriever.RetrieveByID(ctx, guid)
		if rerr != nil {
			rerr = mxerrors.Wrap(mxerrors.Soft, "retrieve "+guid+" as "+id.DisplayName(), rerr)
		}
		results = append(results, ScanResult{Identity: id.DisplayName(), Objects: objs, Err: rerr})
	}
	return results, nil
}
