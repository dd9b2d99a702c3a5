// Package cid generates content identifiers for build artifacts.
//
// A renamed artifact's final base name is the string form of a CIDv1 with
// the raw codec over the artifact's bytes: base32-lower multibase, so the
// result is filesystem-safe, fixed-format and case-insensitive-stable.
// Identical bytes always yield the identical identifier.
package cid

import (
	"errors"
	"fmt"

	gocid "github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// Supported multihash scheme names.
const (
	SchemeSHA2    = "sha2-256"
	SchemeBlake2b = "blake2b-256"
)

// ErrUnknownScheme is returned for hash scheme names outside the supported set.
var ErrUnknownScheme = errors.New("unknown hash scheme")

// Generator computes content identifiers with a fixed multihash scheme.
// It is stateless and safe for concurrent use.
type Generator struct {
	code uint64
}

// NewGenerator returns a Generator for the named scheme.
func NewGenerator(scheme string) (*Generator, error) {
	switch scheme {
	case SchemeSHA2:
		return &Generator{code: mh.SHA2_256}, nil
	case SchemeBlake2b:
		return &Generator{code: mh.BLAKE2B_MIN + 31}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, scheme)
	}
}

// DefaultGenerator returns the sha2-256 generator.
func DefaultGenerator() *Generator {
	return &Generator{code: mh.SHA2_256}
}

// Generate maps content bytes to their identifier. Deterministic, no side
// effects; empty input is valid and yields the identifier of the empty byte
// sequence.
func (g *Generator) Generate(content []byte) (string, error) {
	sum, err := mh.Sum(content, g.code, -1)
	if err != nil {
		return "", fmt.Errorf("digest content: %w", err)
	}
	return gocid.NewCidV1(gocid.Raw, sum).String(), nil
}

// IsContentName reports whether base is a name produced by Generate. Unlike
// a prefix check this round-trips the candidate through the CID parser, so
// ordinary hashed bundler names ("main-B3xQz1.js" style) never match.
func IsContentName(base string) bool {
	if base == "" {
		return false
	}
	c, err := gocid.Decode(base)
	if err != nil {
		return false
	}
	return c.Version() == 1
}
