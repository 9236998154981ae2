// Copyright (c) 2025 Mxprobe
// Licensed under the MIT License. See LICENSE file in the project root for details.

package monitor

// EventType enumerates monitor event kinds.
type EventType string

const (
	// EventPoll is emitted after each successful discovery query.
	EventPoll EventType = "poll"
	// EventPollFailed carries a failed discovery query; the loop continues.
	EventPollFailed EventType = "poll_failed"
	// EventDiscovered is emitted when a guid is claimed for the first time.
	EventDiscovered EventType = "discovered"
	// EventDownloaded is emitted after a payload has been written to disk.
	EventDownloaded EventType = "downloaded"
	// EventFailed carries a failed download. The guid stays claimed.
	EventFailed EventType = "failed"
)

// Event is a generic container for monitor UI events.
// Only a subset of fields is set depending on Type.
type Event struct {
	Type EventType

	// Poll
	Iteration int
	Seen      int // objects returned by the query
	Known     int // ledger size after the poll

	// Per file
	GUID  string
	Name  string
	Path  string
	Bytes int

	Err error
}

// Sink receives events. It is called on the monitor's goroutine.
type Sink func(Event)
