// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package monitor

import (
	"io"
	"os"

	"github.com/pterm/pterm"

	"mxprobe/cli/internal/logging"
)

// Renderer prints monitor events to a terminal.
type Renderer struct {
	out        io.Writer
	downloaded int
	failed     int
}

// NewRenderer creates a renderer writing to w (stdout when nil).
func NewRenderer(w io.Writer) *Renderer {
	if w == nil {
		w = os.Stdout
	}
	return &Renderer{out: w}
}

// Render processes a single event. Poll events are only shown in verbose mode.
func (r *Renderer) Render(ev Event) {
	switch ev.Type {
	case EventDownloaded:
		r.downloaded++
		pterm.Success.WithWriter(r.out).Printfln("Downloaded [%s]: %s to %s (%d bytes)", ev.GUID, ev.Name, ev.Path, ev.Bytes)
	case EventFailed:
		r.failed++
		pterm.Error.WithWriter(r.out).Printfln("Could not download file %s: %s", ev.GUID, logging.PresentError("", ev.Err))
	case EventPollFailed:
		pterm.Warning.WithWriter(r.out).Printfln("Poll %d failed: %s", ev.Iteration, logging.PresentError("", ev.Err))
	case EventPoll:
		logging.Logf("monitor", "poll %d: %d objects, %d known", ev.Iteration, ev.Seen, ev.Known)
	case EventDiscovered:
		// Reported once the download settles
	}
}

// Totals returns the downloaded and failed counts rendered so far.
func (r *Renderer) Totals() (downloaded, failed int) { return r.downloaded, r.failed }
