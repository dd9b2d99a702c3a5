// Package report collects observability events from the rename pipeline.
//
// The engine itself never logs; it records events through a Sink so hosts
// can surface renames and best-effort reconcile failures however they like.
package report

import (
	"encoding/json"
	"io"
	"sync"
)

// EventKind classifies pipeline events.
type EventKind string

const (
	// EventRename is one artifact move (original name -> final name).
	EventRename EventKind = "rename"

	// EventMerge is a rename whose target name was already occupied by a
	// byte-identical artifact; the two entries collapsed into one.
	EventMerge EventKind = "merge"

	// EventManifestPatch is an in-memory manifest content correction.
	EventManifestPatch EventKind = "manifest-patch"

	// EventReconcilePatch is a disk-phase manifest file correction.
	EventReconcilePatch EventKind = "reconcile-patch"

	// EventReconcileError is a swallowed disk-phase failure.
	EventReconcileError EventKind = "reconcile-error"
)

// Event is one pipeline occurrence. From/To are set for renames and merges,
// Path for manifest events, Err for swallowed failures.
type Event struct {
	Kind EventKind `json:"kind"`
	From string    `json:"from,omitempty"`
	To   string    `json:"to,omitempty"`
	Path string    `json:"path,omitempty"`
	Err  string    `json:"err,omitempty"`
}

// Sink is the minimal interface the pipeline depends on.
//
// Record must be inert: it must not panic and must not return errors. The
// caller assumes Record may be a no-op.
type Sink interface {
	Record(event Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Record(Event) {}

// SafeRecord records an event and guarantees inertness even if the sink is
// buggy. It intentionally swallows panics.
func SafeRecord(s Sink, event Event) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(event)
}

// Recorder is a concurrency-safe in-memory collector.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Record(event Event) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all recorded events.
func (r *Recorder) Snapshot() []Event {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// WriteJSON writes the recorded events as an indented JSON array.
func (r *Recorder) WriteJSON(w io.Writer) error {
	events := r.Snapshot()
	if events == nil {
		events = []Event{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}
