// Package plugin exposes the rename engine's two phases as host hooks.
//
// Hosts invoke ProcessBundle after all artifacts are finalized in memory
// but before persistence, and ReconcileOutput after the output set has been
// written to durable storage. The package is pure glue over engine and
// reconcile.
package plugin

import (
	"context"

	"github.com/rs/zerolog"

	"cidify/internal/cid"
	"cidify/internal/core"
	"cidify/internal/engine"
	"cidify/internal/reconcile"
	"cidify/internal/report"
)

// Options configures a Plugin.
type Options struct {
	// Scheme selects the multihash scheme; empty means sha2-256.
	Scheme string

	// Log receives disk-phase diagnostics. Defaults to a no-op logger.
	Log zerolog.Logger

	// Sink receives pipeline events. Optional.
	Sink report.Sink
}

// Plugin binds the in-memory engine and the disk-phase reconciler.
type Plugin struct {
	engine *engine.Engine
	log    zerolog.Logger
	sink   report.Sink
}

// New builds a Plugin, validating the hash scheme up front.
func New(opts Options) (*Plugin, error) {
	gen := cid.DefaultGenerator()
	if opts.Scheme != "" {
		var err error
		gen, err = cid.NewGenerator(opts.Scheme)
		if err != nil {
			return nil, err
		}
	}
	return &Plugin{
		engine: engine.New(engine.Options{Generator: gen, Sink: opts.Sink}),
		log:    opts.Log,
		sink:   opts.Sink,
	}, nil
}

// ProcessBundle runs the in-memory phase over the finalized output set.
// The host must not mutate the set concurrently; errors abort the build.
func (p *Plugin) ProcessBundle(set *core.OutputSet) (*core.RenameMap, error) {
	return p.engine.Process(set)
}

// ReconcileOutput runs the disk phase against the persisted output
// directory. Pass the rename map from ProcessBundle when still available;
// with a nil map the reconciler falls back to convention-based matching.
// Per-file failures are non-fatal by contract.
func (p *Plugin) ReconcileOutput(ctx context.Context, dir string, set *core.OutputSet, renames *core.RenameMap) error {
	r := &reconcile.Reconciler{
		Dir:     dir,
		Set:     set,
		Renames: renames,
		Log:     p.log,
		Sink:    p.sink,
	}
	return r.Run(ctx)
}
