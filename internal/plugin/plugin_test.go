package plugin

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cidify/internal/cid"
	"cidify/internal/core"
)

func TestNew_RejectsUnknownScheme(t *testing.T) {
	_, err := New(Options{Scheme: "crc32"})
	require.ErrorIs(t, err, cid.ErrUnknownScheme)
}

func TestPlugin_BothPhases(t *testing.T) {
	p, err := New(Options{})
	require.NoError(t, err)

	js := []byte("console.log('app')")
	set := core.NewOutputSet()
	require.NoError(t, set.Add(&core.Artifact{
		Name:    "index.html",
		Kind:    core.KindAsset,
		Content: []byte(`<script src="main.js"></script>`),
		Assets:  []string{"main.js"},
	}))
	require.NoError(t, set.Add(&core.Artifact{Name: "main.js", Kind: core.KindChunk, Content: js}))

	renames, err := p.ProcessBundle(set)
	require.NoError(t, err)
	require.Equal(t, 1, renames.Len())

	final, ok := renames.Lookup("main.js")
	require.True(t, ok)

	// Simulate the host persisting the set, then emitting a manifest with a
	// stale pre-rename path afterwards.
	dir := t.TempDir()
	manifest := filepath.Join(dir, "manifest.json")
	require.NoError(t, os.WriteFile(manifest, []byte(`{"main.js": {"file": "main.js"}}`), 0o644))

	require.NoError(t, p.ReconcileOutput(context.Background(), dir, set, renames))

	got, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Contains(t, string(got), `"file": "`+final+`"`)
	assert.Contains(t, string(got), `"main.js"`, "manifest keys keep original names")
}
