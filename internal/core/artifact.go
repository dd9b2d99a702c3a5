package core

import (
	"path"
	"strings"
)

// Kind discriminates the two artifact categories exposed by the host bundler.
type Kind string

const (
	// KindChunk is a code chunk emitted by the bundler. Chunks carry the
	// dependency edges (imports, dynamic imports, referenced assets/styles).
	KindChunk Kind = "code-chunk"

	// KindAsset is any non-chunk output: style sheets, markup documents,
	// images, manifests, sourcemaps.
	KindAsset Kind = "static-asset"
)

// Artifact represents one finished build output unit.
//
// Name is a slash-separated path relative to the output directory and is the
// artifact's key in the OutputSet. It is mutated exactly once, by the rename
// planner, through OutputSet.Rename.
//
// Content is textual for chunks, styles, markup and manifests, and raw bytes
// for opaque assets. The rename engine mutates it in place.
type Artifact struct {
	Name    string
	Kind    Kind
	Content []byte

	// Dependency edges declared by the bundler, as current names of other
	// artifacts in the output set. Names not present in the set are ignored
	// for ordering purposes.
	Imports        []string
	DynamicImports []string
	Assets         []string
	Styles         []string
}

// References returns all declared outbound edges in a fixed order:
// static imports, dynamic imports, assets, styles.
func (a *Artifact) References() []string {
	out := make([]string, 0, len(a.Imports)+len(a.DynamicImports)+len(a.Assets)+len(a.Styles))
	out = append(out, a.Imports...)
	out = append(out, a.DynamicImports...)
	out = append(out, a.Assets...)
	out = append(out, a.Styles...)
	return out
}

// IsMarkup reports whether the artifact is a markup document. Markup entry
// documents keep their names so they stay resolvable at a fixed server path.
func (a *Artifact) IsMarkup() bool {
	ext := strings.ToLower(path.Ext(a.Name))
	return ext == ".html" || ext == ".htm"
}

// IsManifest reports whether the artifact is a build manifest: a JSON
// document whose base name carries the manifest marker. Manifests are never
// renamed; only their string values are corrected.
func (a *Artifact) IsManifest() bool {
	return IsManifestName(a.Name)
}

// IsSourceMap reports whether the artifact is a sourcemap companion file.
func (a *Artifact) IsSourceMap() bool {
	return strings.HasSuffix(a.Name, ".map")
}

// textExtensions lists asset extensions whose content is treated as text and
// is therefore subject to literal reference rewriting. Chunks are always
// textual regardless of extension.
var textExtensions = map[string]struct{}{
	".js": {}, ".mjs": {}, ".cjs": {}, ".jsx": {}, ".ts": {},
	".css": {}, ".html": {}, ".htm": {}, ".svg": {}, ".xml": {},
	".json": {}, ".webmanifest": {}, ".map": {}, ".txt": {}, ".md": {},
}

// IsText reports whether the artifact's content is textual. Opaque binary
// assets are never rewritten, only renamed.
func (a *Artifact) IsText() bool {
	if a.Kind == KindChunk {
		return true
	}
	_, ok := textExtensions[strings.ToLower(path.Ext(a.Name))]
	return ok
}

// IsManifestName reports whether name follows the manifest naming convention:
// a .json or .webmanifest file whose base name contains "manifest".
func IsManifestName(name string) bool {
	base := strings.ToLower(path.Base(name))
	ext := path.Ext(base)
	if ext != ".json" && ext != ".webmanifest" {
		return false
	}
	return strings.Contains(base, "manifest")
}
