// Package reconcile implements the disk-phase manifest pass.
//
// The host bundler's own manifest-emission step runs after the in-memory
// rewrite, so persisted manifests can still carry pre-rename paths the
// in-memory pass never saw. The reconciler re-opens manifest files under
// the output directory and patches any remaining stale references.
//
// The whole phase is best-effort hardening: per-file failures are never
// fatal and never fail the build. They are, however, emitted on the
// diagnostic logger and the event sink rather than fully suppressed, since
// a silent data-correctness failure in a persisted manifest is worth a
// trace in production.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"

	"cidify/internal/cid"
	"cidify/internal/core"
	"cidify/internal/engine"
	"cidify/internal/report"
)

// Reconciler patches persisted manifest files against the finalized output set.
type Reconciler struct {
	// Dir is the output directory the host bundler persisted to.
	Dir string

	// Set is the finalized in-memory output set, used for name-convention
	// matching and for ruling out paths that are already final.
	Set *core.OutputSet

	// Renames, when available, removes the reverse-matching heuristic
	// entirely: stale references are corrected straight from the recorded
	// moves. Leave nil when the in-memory phase ran in another process.
	Renames *core.RenameMap

	// Log receives swallowed per-file failures at debug level.
	Log zerolog.Logger

	// Sink receives patch and error events. Optional.
	Sink report.Sink
}

// Run scans Dir for manifest-convention files and corrects stale paths.
// It returns an error only when the context is cancelled; everything else
// is non-fatal by contract.
func (r *Reconciler) Run(ctx context.Context) error {
	walkErr := filepath.WalkDir(r.Dir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			r.swallow(p, err)
			return nil
		}
		if d.IsDir() || !core.IsManifestName(d.Name()) {
			return nil
		}
		r.patchFile(p)
		return nil
	})
	if walkErr != nil && ctx.Err() != nil {
		return ctx.Err()
	}
	if walkErr != nil {
		r.swallow(r.Dir, walkErr)
	}
	return nil
}

func (r *Reconciler) patchFile(p string) {
	raw, err := os.ReadFile(p)
	if err != nil {
		r.swallow(p, err)
		return
	}

	// Tolerate commented/relaxed JSON, but only patch documents that are
	// recognizably JSON at all.
	if !json.Valid(jsonc.ToJSON(raw)) {
		r.Log.Debug().Str("path", p).Msg("reconcile: manifest is not valid JSON, skipping")
		return
	}

	patched, dirty := r.patch(raw)
	if !dirty {
		return
	}
	if err := os.WriteFile(p, patched, 0o644); err != nil {
		r.swallow(p, err)
		return
	}
	report.SafeRecord(r.Sink, report.Event{Kind: report.EventReconcilePatch, Path: p})
}

func (r *Reconciler) patch(content []byte) ([]byte, bool) {
	if r.Renames != nil && r.Renames.Len() > 0 {
		// Same policy as the in-memory pass: structured value substitution,
		// keys untouched, literal fallback for relaxed JSON.
		return engine.RewriteManifest(content, r.Renames)
	}
	return r.patchByConvention(content)
}

// patchByConvention reverse-matches stale paths without a rename map: every
// finalized name whose base is a content identifier yields a pattern of
// "same directory + arbitrary base name + same extension"; quoted strings
// matching the pattern that are neither current set keys nor content-named
// themselves are stale pre-rename paths and are replaced project-wide.
func (r *Reconciler) patchByConvention(content []byte) ([]byte, bool) {
	dirty := false
	for _, final := range r.Set.Names() {
		base := path.Base(final)
		ext := path.Ext(base)
		if !cid.IsContentName(strings.TrimSuffix(base, ext)) {
			continue
		}

		prefix := ""
		if dir := path.Dir(final); dir != "." {
			prefix = regexp.QuoteMeta(dir + "/")
		}
		re := regexp.MustCompile(`"` + prefix + `[^"/]+` + regexp.QuoteMeta(ext) + `"`)

		for _, m := range dedupe(re.FindAll(content, -1)) {
			candidate := strings.Trim(string(m), `"`)
			if r.Set.Has(candidate) {
				continue
			}
			candBase := path.Base(candidate)
			if cid.IsContentName(strings.TrimSuffix(candBase, path.Ext(candBase))) {
				continue
			}
			content = bytes.ReplaceAll(content, m, []byte(`"`+final+`"`))
			dirty = true
		}
	}
	return content, dirty
}

func (r *Reconciler) swallow(p string, err error) {
	r.Log.Debug().Str("path", p).Err(err).Msg("reconcile: skipping")
	report.SafeRecord(r.Sink, report.Event{Kind: report.EventReconcileError, Path: p, Err: err.Error()})
}

func dedupe(matches [][]byte) [][]byte {
	seen := make(map[string]struct{}, len(matches))
	out := matches[:0]
	for _, m := range matches {
		if _, ok := seen[string(m)]; ok {
			continue
		}
		seen[string(m)] = struct{}{}
		out = append(out, m)
	}
	return out
}
