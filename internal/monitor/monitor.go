// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package monitor polls the server for FileDocument objects and downloads
// each payload at most once per monitor instance.
//
// A Monitor is single-threaded: one query per iteration, then one download
// per newly seen guid, in the order the server returned them. Cancellation
// is checked between iterations and before every download.
package monitor

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"

	mxerrors "mxprobe/cli/internal/errors"
	"mxprobe/cli/internal/logging"
	"mxprobe/cli/internal/metrics"
	"mxprobe/cli/internal/xas"
)

const (
	// DefaultFileClass is the object type of server-managed attachments.
	DefaultFileClass = "System.FileDocument"
	// DefaultInterval paces the discovery queries.
	DefaultInterval = 2 * time.Second
)

// Querier retrieves objects by type. *objects.Accessor implements it.
type Querier interface {
	RetrieveByQuery(ctx context.Context, typeName string, limit int) ([]xas.Object, error)
}

// Fetcher downloads FileDocument payloads. *backend.HTTP implements it.
type Fetcher interface {
	FetchFile(ctx context.Context, guid string) ([]byte, error)
}

// Options configures a Monitor.
type Options struct {
	// Destination is the directory files are written to. It is created if missing.
	Destination string
	// Interval is the minimum time between discovery queries (default 2s).
	Interval time.Duration
	// FileClass is the queried object type (default System.FileDocument).
	FileClass string
	// Limit bounds each discovery query; <= 0 uses the accessor default.
	Limit int
	// Events receives progress events (optional).
	Events Sink
	// Metrics records download results (optional).
	Metrics *metrics.Metrics
}

// Monitor is one polling loop with its own ledger.
type Monitor struct {
	query  Querier
	fetch  Fetcher
	opts   Options
	ledger *Ledger
	iter   int
}

// New returns a Monitor with an empty ledger.
func New(query Querier, fetch Fetcher, opts Options) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FileClass == "" {
		opts.FileClass = DefaultFileClass
	}
	if opts.Destination == "" {
		opts.Destination = "."
	}
	return &Monitor{query: query, fetch: fetch, opts: opts, ledger: NewLedger()}
}

// Ledger returns the monitor's ledger.
func (m *Monitor) Ledger() *Ledger { return m.ledger }

// Run polls until ctx is cancelled. Poll and download failures are reported
// through events and do not stop the loop. Run returns nil on cancellation
// and an error only if the destination cannot be created.
func (m *Monitor) Run(ctx context.Context) error {
	if err := os.MkdirAll(m.opts.Destination, 0o755); err != nil {
		return mxerrors.Wrap(mxerrors.Config, "create destination "+m.opts.Destination, err)
	}
	limiter := rate.NewLimiter(rate.Every(m.opts.Interval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if _, err := m.Poll(ctx); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// Poll runs a single iteration and returns the number of new guids claimed.
func (m *Monitor) Poll(ctx context.Context) (int, error) {
	m.iter++
	objs, err := m.query.RetrieveByQuery(ctx, m.opts.FileClass, m.opts.Limit)
	if err != nil {
		err = mxerrors.Wrap(mxerrors.Soft, "query "+m.opts.FileClass, err)
		m.emit(Event{Type: EventPollFailed, Iteration: m.iter, Err: err})
		return 0, err
	}

	claimed := 0
	for _, o := range objs {
		if ctx.Err() != nil {
			break
		}
		if o.GUID == "" || !m.ledger.Claim(o.GUID) {
			continue
		}
		claimed++
		m.emit(Event{Type: EventDiscovered, GUID: o.GUID, Name: o.Name()})
		m.download(ctx, o)
	}
	m.emit(Event{Type: EventPoll, Iteration: m.iter, Seen: len(objs), Known: m.ledger.Len()})
	return claimed, nil
}

func (m *Monitor) download(ctx context.Context, o xas.Object) {
	name := o.Name()
	data, err := m.fetch.FetchFile(ctx, o.GUID)
	if err == nil {
		path := filepath.Join(m.opts.Destination, FileName(o.GUID, name))
		if werr := os.WriteFile(path, data, 0o644); werr != nil {
			err = werr
		} else {
			m.opts.Metrics.ObserveDownload(metrics.DownloadOK)
			logging.Logf("monitor", "saved %s (%d bytes)", path, len(data))
			m.emit(Event{Type: EventDownloaded, GUID: o.GUID, Name: name, Path: path, Bytes: len(data)})
			return
		}
	}
	m.opts.Metrics.ObserveDownload(metrics.DownloadFailed)
	m.emit(Event{Type: EventFailed, GUID: o.GUID, Name: name, Err: mxerrors.Wrap(mxerrors.Soft, "download "+o.GUID, err)})
}

func (m *Monitor) emit(ev Event) {
	if m.opts.Events != nil {
		m.opts.Events(ev)
	}
}

// FileName returns the on-disk name of a download: "{guid}_{name}", with
// both parts reduced to a single path element.
func FileName(guid, name string) string {
	return baseName(guid, "unknown") + "_" + baseName(name, "file")
}

func baseName(s, fallback string) string {
	s = filepath.Base(strings.ReplaceAll(s, "\\", "/"))
	switch s {
	case "", ".", "..", "/":
		return fallback
	}
	return s
}
