package engine

import (
	"bytes"
	"encoding/json"
	"path"
	"strings"

	"cidify/internal/core"
)

// RewriteText replaces every occurrence of a renamed artifact's old base
// name with its new base name, in rename-map insertion order.
//
// Matching is exact literal substring matching across the entire content,
// deliberately syntax-agnostic: it also rewrites references inside string
// literals, comments and CSS url() values without a parser per content
// type. A base name recurring in unrelated text would be rewritten too; an
// accepted tradeoff since bundler output names are effectively unique.
func RewriteText(content []byte, renames *core.RenameMap) []byte {
	for _, e := range renames.Entries() {
		oldBase := path.Base(e.From)
		newBase := path.Base(e.To)
		if oldBase == newBase {
			continue
		}
		content = bytes.ReplaceAll(content, []byte(oldBase), []byte(newBase))
	}
	return content
}

// RewriteManifest corrects stale names inside a manifest document.
//
// It attempts structured substitution first: parse as JSON, rewrite every
// string value, re-serialize. Keys are left alone: a manifest maps original
// names to metadata about the finalized artifact. If the content does not parse it falls back to raw literal
// substitution, to stay robust against malformed or partially-generated
// manifests. Returns the (possibly new) content and whether it changed.
func RewriteManifest(content []byte, renames *core.RenameMap) ([]byte, bool) {
	var doc any
	if err := json.Unmarshal(content, &doc); err != nil {
		out := RewriteText(content, renames)
		return out, !bytes.Equal(out, content)
	}

	changed := false
	doc = rewriteJSONValue(doc, renames, &changed)
	if !changed {
		return content, false
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return content, false
	}
	out = append(out, '\n')
	return out, true
}

func rewriteJSONValue(v any, renames *core.RenameMap, changed *bool) any {
	switch val := v.(type) {
	case map[string]any:
		for k, child := range val {
			val[k] = rewriteJSONValue(child, renames, changed)
		}
		return val
	case []any:
		for i, child := range val {
			val[i] = rewriteJSONValue(child, renames, changed)
		}
		return val
	case string:
		out := rewriteString(val, renames)
		if out != val {
			*changed = true
		}
		return out
	default:
		return v
	}
}

func rewriteString(s string, renames *core.RenameMap) string {
	for _, e := range renames.Entries() {
		if s == e.From {
			s = e.To
			continue
		}
		oldBase := path.Base(e.From)
		newBase := path.Base(e.To)
		if oldBase != newBase {
			s = strings.ReplaceAll(s, oldBase, newBase)
		}
	}
	return s
}
