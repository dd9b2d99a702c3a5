package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"cidify/internal/core"
	"cidify/internal/plugin"
	"cidify/internal/report"
)

// Invocation is the fully canonicalized description of a run. All engine
// behavior is decided here, before any engine logic is invoked.
type Invocation struct {
	// Dir is the finished build output directory to process, absolute or
	// relative to the process working directory.
	Dir string

	// Scheme is the multihash scheme name; empty selects sha2-256.
	Scheme string

	// DryRun prints the planned renames without touching the directory.
	DryRun bool

	// ReportPath, when set, receives the recorded pipeline events as JSON.
	ReportPath string

	// Verbose enables debug-level diagnostics on stderr.
	Verbose bool
}

// Execute runs both engine phases against the invocation's directory and
// writes the renamed tree back in place.
func Execute(ctx context.Context, inv Invocation, out io.Writer) error {
	level := zerolog.InfoLevel
	if inv.Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	recorder := report.NewRecorder()
	p, err := plugin.New(plugin.Options{Scheme: inv.Scheme, Log: log, Sink: recorder})
	if err != nil {
		return err
	}

	set, err := LoadOutputSet(inv.Dir)
	if err != nil {
		return err
	}
	before := set.Names()

	renames, err := p.ProcessBundle(set)
	if err != nil {
		return err
	}

	if inv.DryRun {
		for _, e := range renames.Entries() {
			fmt.Fprintf(out, "%s -> %s\n", e.From, e.To)
		}
		return nil
	}

	if err := writeBack(inv.Dir, set, before); err != nil {
		return err
	}

	if err := p.ReconcileOutput(ctx, inv.Dir, set, renames); err != nil {
		return err
	}

	for _, e := range renames.Entries() {
		log.Info().Str("from", e.From).Str("to", e.To).Msg("renamed")
	}
	if inv.ReportPath != "" {
		if err := writeReport(inv.ReportPath, recorder); err != nil {
			return err
		}
	}
	return nil
}

// writeBack persists the finalized set: files whose pre-rename names are no
// longer keys are removed, then every artifact is written under its final
// name. Content is rewritten unconditionally since references may have
// changed even in artifacts that kept their names.
func writeBack(dir string, set *core.OutputSet, before []string) error {
	for _, name := range before {
		if set.Has(name) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, filepath.FromSlash(name))); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %q: %w", name, err)
		}
	}
	for _, name := range set.Names() {
		a, _ := set.Get(name)
		p := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
		if err := os.WriteFile(p, a.Content, 0o644); err != nil {
			return fmt.Errorf("write %q: %w", name, err)
		}
	}
	return nil
}

func writeReport(path string, recorder *report.Recorder) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := recorder.WriteJSON(f); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
