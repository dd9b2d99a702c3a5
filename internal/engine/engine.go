// Package engine implements the in-memory rename-and-rewrite phase.
//
// The engine receives a finished output set from the host bundler, renames
// every renameable artifact to its content identifier, and rewrites every
// reference so the tree stays internally consistent. Processing is strictly
// single-threaded: a dependency's final name must be known before a
// dependent's content is digested.
package engine

import (
	"fmt"
	"path"
	"strings"

	"cidify/internal/cid"
	"cidify/internal/core"
	"cidify/internal/graph"
	"cidify/internal/report"
)

// Options configures an Engine. Zero values select the sha2-256 generator
// and a no-op event sink.
type Options struct {
	Generator *cid.Generator
	Sink      report.Sink
}

// Engine runs the Grapher -> Planner -> Rewriter pipeline over an output set.
type Engine struct {
	gen  *cid.Generator
	sink report.Sink
}

// New returns an Engine with the given options.
func New(opts Options) *Engine {
	gen := opts.Generator
	if gen == nil {
		gen = cid.DefaultGenerator()
	}
	var sink report.Sink = opts.Sink
	if sink == nil {
		sink = report.NopSink{}
	}
	return &Engine{gen: gen, sink: sink}
}

// Process renames every renameable artifact in the set to its content
// identifier and rewrites all references. It returns the ordered rename map.
//
// Any error aborts the build: partial renaming leaves an inconsistent,
// unservable output tree. On success the set's keys are the final names and
// every artifact's content reflects them.
func (e *Engine) Process(set *core.OutputSet) (*core.RenameMap, error) {
	order := graph.Linearize(set)
	renames := core.NewRenameMap()

	for _, name := range order {
		if _, moved := renames.Lookup(name); moved {
			// Already renamed by sourcemap pairing; derived names are
			// not re-planned. Content is patched in the final pass.
			continue
		}
		a, ok := set.Get(name)
		if !ok {
			// Merged into a byte-identical artifact earlier in the pass.
			continue
		}
		if a.IsManifest() {
			// Manifests are rewritten after all renames are known and
			// are never renamed themselves.
			continue
		}

		// Rewrite before digesting, so the digest covers content that
		// already embeds the final names of every dependency.
		if a.IsText() {
			a.Content = RewriteText(a.Content, renames)
		}

		if a.IsMarkup() {
			// Entry documents keep a stable, server-resolvable name.
			continue
		}
		if a.IsSourceMap() && e.pairedToParent(set, renames, name) {
			// Renamed by derivation when its parent chunk moves.
			continue
		}

		id, err := e.gen.Generate(a.Content)
		if err != nil {
			return nil, fmt.Errorf("rename %q: %w", name, err)
		}
		newName := withBase(name, id)
		if newName == name {
			continue
		}

		kind := report.EventRename
		if set.Has(newName) {
			kind = report.EventMerge
		}
		if err := set.Rename(name, newName); err != nil {
			return nil, fmt.Errorf("rename %q: %w", name, err)
		}
		renames.Append(name, newName)
		report.SafeRecord(e.sink, report.Event{Kind: kind, From: name, To: newName})

		e.pairSourceMap(set, renames, name, newName)
	}

	// Final pass: re-apply the complete map to every artifact, including
	// already-renamed ones, since earlier artifacts may reference names
	// that were only renamed later (cycles, sourcemap self-references).
	for _, name := range set.Names() {
		a, ok := set.Get(name)
		if !ok || a.IsManifest() || !a.IsText() {
			continue
		}
		a.Content = RewriteText(a.Content, renames)
	}

	// Manifests last, so every rename has already been recorded.
	for _, name := range set.Names() {
		a, ok := set.Get(name)
		if !ok || !a.IsManifest() {
			continue
		}
		patched, changed := RewriteManifest(a.Content, renames)
		if changed {
			a.Content = patched
			report.SafeRecord(e.sink, report.Event{Kind: report.EventManifestPatch, Path: name})
		}
	}

	return renames, nil
}

// pairedToParent reports whether the sourcemap name has a parent artifact
// that will (or did) carry it along on rename: "x.js.map" pairs with "x.js".
func (e *Engine) pairedToParent(set *core.OutputSet, renames *core.RenameMap, name string) bool {
	parent := strings.TrimSuffix(name, ".map")
	if parent == name {
		return false
	}
	if set.Has(parent) {
		return true
	}
	_, renamed := renames.Lookup(parent)
	return renamed
}

// pairSourceMap renames the ".map" sibling of a just-renamed artifact by
// derivation. The sibling's new name is the parent's new name plus ".map",
// which is exactly what literal base-name substitution produces in every
// artifact that references it, so the tree stays consistent without the map
// being independently content-hashed.
func (e *Engine) pairSourceMap(set *core.OutputSet, renames *core.RenameMap, oldName, newName string) {
	sibling := oldName + ".map"
	if !set.Has(sibling) {
		return
	}
	newSibling := newName + ".map"
	if err := set.Rename(sibling, newSibling); err != nil {
		return
	}
	renames.Append(sibling, newSibling)
	report.SafeRecord(e.sink, report.Event{Kind: report.EventRename, From: sibling, To: newSibling})
}

// withBase substitutes the extension-stripped base of name with id,
// preserving directory and extension: "assets/main.js" -> "assets/<id>.js".
func withBase(name, id string) string {
	dir := path.Dir(name)
	ext := path.Ext(name)
	return path.Join(dir, id+ext)
}
