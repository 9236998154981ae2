// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package microflow discovers the server-side procedures bound in the session
// metadata and invokes them one by one.
package microflow

import (
	"context"

	"mxprobe/cli/internal/backend"
	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/session"
	"mxprobe/cli/internal/xas"
)

// Result is the outcome of one runtimeOperation.
type Result struct {
	OperationID string
	// Description is the server's human-readable reply, if any.
	Description string
	// Objects is set when no description was returned.
	Objects []xas.Object
	// Err is a soft error for a rejected or failed operation.
	Err error
}

// Invoker runs the operations of one session.
type Invoker struct {
	api  backend.API
	sess *session.Session
}

// NewInvoker returns an Invoker sending through api.
func NewInvoker(api backend.API, sess *session.Session) *Invoker {
	return &Invoker{api: api, sess: sess}
}

// OperationIDs returns every operation id of the metadata snapshot in
// declared order.
func (i *Invoker) OperationIDs() []string {
	md := i.sess.Metadata()
	if md == nil {
		return nil
	}
	return md.Microflows.OperationIDs()
}

// Run invokes one operation with empty params, changes and objects.
func (i *Invoker) Run(ctx context.Context, operationID string) Result {
	res := Result{OperationID: operationID}
	resp, err := i.api.Send(ctx, xas.NewRuntimeOperation(operationID))
	if err != nil {
		res.Err = mxerrors.Wrap(mxerrors.Soft, "operation "+operationID, err)
		if resp != nil {
			res.Description = resp.Description
		}
		return res
	}
	if resp.Description != "" {
		res.Description = resp.Description
		return res
	}
	res.Objects = resp.Objects
	return res
}

// DiscoverAndRun invokes every discovered operation sequentially. A failing
// operation is recorded and the batch continues; cancellation of ctx stops
// the batch before the next operation.
func (i *Invoker) DiscoverAndRun(ctx context.Context) []Result {
	ids := i.OperationIDs()
	logging.Logf("microflow", "discovered %d operations", len(ids))
	out := make([]Result, 0, len(ids))
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		out = append(out, i.Run(ctx, id))
	}
	return out
}
