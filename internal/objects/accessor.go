// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package objects retrieves and mutates business objects over the action
// envelope and renders them for display.
package objects

import (
	"context"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
)

// DefaultLimit bounds RetrieveByQuery when no positive limit is given.
const DefaultLimit = 10

// Accessor issues retrieval and commit actions for one session.
type Accessor struct {
	api  backend.API
	sess *session.Session
}

// NewAccessor returns an Accessor sending through api. sess supplies the
// metadata snapshot for ListClasses.
func NewAccessor(api backend.API, sess *session.Session) *Accessor {
	return &Accessor{api: api, sess: sess}
}

// RetrieveByQuery returns up to limit objects of typeName. Truncation is the
// server's job; the reply is returned as received.
func (a *Accessor) RetrieveByQuery(ctx context.Context, typeName string, limit int) ([]xas.Object, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	resp, err := a.api.Send(ctx, xas.NewRetrieveByXPath(xas.XPathForType(typeName), limit))
	if err != nil {
		return nil, err
	}
	return resp.Objects, nil
}

// RetrieveByID looks one object up by guid. An unknown guid yields an empty
// slice.
func (a *Accessor) RetrieveByID(ctx context.Context, guid string) ([]xas.Object, error) {
	resp, err := a.api.Send(ctx, xas.NewRetrieveByIDs(guid))
	if err != nil {
		return nil, err
	}
	return resp.Objects, nil
}

// Commit sets attribute to value on the object guid and returns the objects
// the server reports as changed. There is no concurrency token; the last
// write wins.
func (a *Accessor) Commit(ctx context.Context, guid, attribute string, value any) ([]xas.Object, error) {
	resp, err := a.api.Send(ctx, xas.NewCommit(guid, attribute, value))
	if err != nil {
		return nil, err
	}
	return resp.Objects, nil
}

// ListClasses returns the object types declared in the current metadata
// snapshot, sorted. It does not contact the server.
func (a *Accessor) ListClasses() []string {
	return a.sess.Metadata().ClassNames()
}

// SampleResult is the outcome of sampling one class.
type SampleResult struct {
	Class   string
	Objects []xas.Object
	Err     error
}

// Sample retrieves one object of every declared class. A failing class is
// recorded with a soft error and the walk continues; only cancellation of
// ctx stops it early.
func (a *Accessor) Sample(ctx context.Context) []SampleResult {
	classes := a.ListClasses()
	out := make([]SampleResult, 0, len(classes))
	for _, class := range classes {
		if ctx.Err() != nil {
			break
		}
		objs, err := a.RetrieveByQuery(ctx, class, 1)
		if err != nil {
			err = mxerrors.Wrap(mxerrors.Soft, "sample "+class, err)
		}
		out = append(out, SampleResult{Class: class, Objects: objs, Err: err})
	}
	return out
}

// Writable reports whether attribute exists on o and was not flagged
// read-only when o was retrieved.
func Writable(o xas.Object, attribute string) bool {
	attr, ok := o.Attribute(attribute)
	return ok && !attr.ReadOnly
}
