package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cidify/internal/cid"
)

func writeTree(t *testing.T, dir string, files map[string][]byte) {
	t.Helper()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, content, 0o644))
	}
}

func distFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{
		"index.html":    []byte(`<script type="module" src="/main.js"></script><link rel="stylesheet" href="/style.css">`),
		"main.js":       []byte(`console.log("app")`),
		"style.css":     []byte(`body { background: url(bg.png) }`),
		"bg.png":        {0x89, 0x50, 0x4e, 0x47},
		"manifest.json": []byte(`{"main.js": {"file": "main.js", "css": ["style.css"]}}`),
	})
	return dir
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	var out []string
	require.NoError(t, filepath.WalkDir(dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	}))
	return out
}

func TestExecute_EndToEnd(t *testing.T) {
	dir := distFixture(t)

	err := Execute(context.Background(), Invocation{Dir: dir}, io.Discard)
	require.NoError(t, err)

	files := listFiles(t, dir)
	assert.Contains(t, files, "index.html")
	assert.Contains(t, files, "manifest.json")
	assert.NotContains(t, files, "main.js")
	assert.NotContains(t, files, "style.css")
	assert.NotContains(t, files, "bg.png")

	renamed := 0
	for _, f := range files {
		base := filepath.Base(f)
		stem := strings.TrimSuffix(base, filepath.Ext(base))
		if cid.IsContentName(stem) {
			renamed++
		}
	}
	assert.Equal(t, 3, renamed, "chunk, style and asset must carry content names: %v", files)

	html, err := os.ReadFile(filepath.Join(dir, "index.html"))
	require.NoError(t, err)
	assert.NotContains(t, string(html), "main.js")
	assert.NotContains(t, string(html), "style.css")

	man, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	require.NoError(t, err)
	var doc map[string]map[string]any
	require.NoError(t, json.Unmarshal(man, &doc))
	entry, ok := doc["main.js"]
	require.True(t, ok, "manifest keys keep original names")
	file, _ := entry["file"].(string)
	assert.True(t, cid.IsContentName(strings.TrimSuffix(file, ".js")), "manifest file value must be finalized: %q", file)
}

func TestExecute_DryRunLeavesTreeUntouched(t *testing.T) {
	dir := distFixture(t)
	before := listFiles(t, dir)

	var out bytes.Buffer
	err := Execute(context.Background(), Invocation{Dir: dir, DryRun: true}, &out)
	require.NoError(t, err)

	assert.ElementsMatch(t, before, listFiles(t, dir))
	assert.Contains(t, out.String(), "main.js -> ")
	assert.Contains(t, out.String(), "style.css -> ")
	assert.Contains(t, out.String(), "bg.png -> ")
}

func TestExecute_ReportWritten(t *testing.T) {
	dir := distFixture(t)
	reportPath := filepath.Join(t.TempDir(), "events.json")

	err := Execute(context.Background(), Invocation{Dir: dir, ReportPath: reportPath}, io.Discard)
	require.NoError(t, err)

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(raw, &events))
	assert.NotEmpty(t, events)
}

func TestExecute_UnknownScheme(t *testing.T) {
	err := Execute(context.Background(), Invocation{Dir: t.TempDir(), Scheme: "md5"}, io.Discard)
	require.Error(t, err)
}

func TestExecute_BlakeScheme(t *testing.T) {
	dir := t.TempDir()
	writeTree(t, dir, map[string][]byte{"main.js": []byte("export {}")})

	err := Execute(context.Background(), Invocation{Dir: dir, Scheme: cid.SchemeBlake2b}, io.Discard)
	require.NoError(t, err)

	files := listFiles(t, dir)
	require.Len(t, files, 1)
	stem := strings.TrimSuffix(files[0], ".js")
	assert.True(t, cid.IsContentName(stem))
}

func TestRootCommand_DryRunFlag(t *testing.T) {
	dir := distFixture(t)

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--dry-run", dir})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "main.js -> ")
	assert.Contains(t, listFiles(t, dir), "main.js")
}

func TestLoadOutputSet_ClassifiesAndLinks(t *testing.T) {
	dir := distFixture(t)

	set, err := LoadOutputSet(dir)
	require.NoError(t, err)
	require.Equal(t, 5, set.Len())

	html, ok := set.Get("index.html")
	require.True(t, ok)
	assert.Contains(t, html.Imports, "main.js")
	assert.Contains(t, html.Styles, "style.css")

	css, ok := set.Get("style.css")
	require.True(t, ok)
	assert.Contains(t, css.Assets, "bg.png")

	js, ok := set.Get("main.js")
	require.True(t, ok)
	assert.Equal(t, "code-chunk", string(js.Kind))

	png, ok := set.Get("bg.png")
	require.True(t, ok)
	assert.Empty(t, png.References(), "binary assets carry no outbound edges")
}
