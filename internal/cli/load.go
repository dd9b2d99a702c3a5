package cli

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"cidify/internal/core"
)

var chunkExtensions = map[string]struct{}{
	".js": {}, ".mjs": {}, ".cjs": {}, ".jsx": {},
}

// LoadOutputSet reads a finished build directory into an output set.
//
// This is host-simulation glue: a real bundler hands the engine its output
// graph directly. Here the dependency edges are recovered by scanning each
// textual artifact for the base names of the other artifacts, which yields
// the same edge classes (imports, styles, assets) the engine orders by.
func LoadOutputSet(dir string) (*core.OutputSet, error) {
	set := core.NewOutputSet()

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		return set.Add(&core.Artifact{
			Name:    name,
			Kind:    classify(name),
			Content: content,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("load output directory %q: %w", dir, err)
	}

	deriveEdges(set)
	return set, nil
}

func classify(name string) core.Kind {
	if _, ok := chunkExtensions[strings.ToLower(path.Ext(name))]; ok {
		return core.KindChunk
	}
	return core.KindAsset
}

// deriveEdges declares an edge from every textual artifact to each artifact
// whose base name occurs in its content, bucketed the way a bundler would
// declare them: chunk targets as imports, style sheets as styles, the rest
// as assets.
func deriveEdges(set *core.OutputSet) {
	names := set.Names()
	for _, from := range names {
		a, _ := set.Get(from)
		if !a.IsText() {
			continue
		}
		for _, to := range names {
			if to == from {
				continue
			}
			if !bytes.Contains(a.Content, []byte(path.Base(to))) {
				continue
			}
			target, _ := set.Get(to)
			switch {
			case target.Kind == core.KindChunk:
				a.Imports = append(a.Imports, to)
			case strings.EqualFold(path.Ext(to), ".css"):
				a.Styles = append(a.Styles, to)
			default:
				a.Assets = append(a.Assets, to)
			}
		}
	}
}
