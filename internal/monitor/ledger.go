// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package monitor

import (
	"sort"
	"sync"
)

// Ledger is the set of FileDocument guids already handled by one monitor.
// It only grows.
type Ledger struct {
	// mu makes Claim's check-then-insert atomic
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// Claim inserts guid and reports whether it was absent.
func (l *Ledger) Claim(guid string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.seen[guid]; ok {
		return false
	}
	l.seen[guid] = struct{}{}
	return true
}

// Has reports whether guid has been claimed.
func (l *Ledger) Has(guid string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.seen[guid]
	return ok
}

// Len returns the number of claimed guids.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// GUIDs returns the claimed guids, sorted.
func (l *Ledger) GUIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.seen))
	for g := range l.seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}
