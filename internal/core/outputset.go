package core

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownArtifact   = errors.New("unknown artifact")
	ErrDuplicateArtifact = errors.New("duplicate artifact")
)

// OutputSet is an order-preserving mapping from current artifact name to
// Artifact, representing the entire build output.
//
// Insertion order is the order the host bundler emitted the artifacts; it is
// preserved across renames so traversal stays deterministic. The set is not
// safe for concurrent use: the engine is single-threaded by contract.
type OutputSet struct {
	names  []string
	byName map[string]*Artifact
}

// NewOutputSet returns an empty output set.
func NewOutputSet() *OutputSet {
	return &OutputSet{byName: make(map[string]*Artifact)}
}

// Add inserts an artifact under its current name.
func (s *OutputSet) Add(a *Artifact) error {
	if a == nil || a.Name == "" {
		return errors.New("artifact name is required")
	}
	if _, exists := s.byName[a.Name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateArtifact, a.Name)
	}
	s.byName[a.Name] = a
	s.names = append(s.names, a.Name)
	return nil
}

// Get returns the artifact currently stored under name.
func (s *OutputSet) Get(name string) (*Artifact, bool) {
	a, ok := s.byName[name]
	return a, ok
}

// Has reports whether name is a current key of the set.
func (s *OutputSet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Len returns the number of artifacts in the set.
func (s *OutputSet) Len() int { return len(s.names) }

// Names returns the current artifact names in insertion order.
func (s *OutputSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Rename atomically moves the artifact stored under oldName to newName and
// updates the artifact's own Name field. No observer ever sees both keys
// missing or both present.
//
// If newName is already occupied the artifacts have, by construction of the
// content-addressed naming scheme, byte-identical content: the old entry is
// dropped and the existing artifact keeps the slot. Renaming a name to
// itself is a no-op.
func (s *OutputSet) Rename(oldName, newName string) error {
	a, ok := s.byName[oldName]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownArtifact, oldName)
	}
	if oldName == newName {
		return nil
	}

	if _, occupied := s.byName[newName]; occupied {
		delete(s.byName, oldName)
		s.removeName(oldName)
		return nil
	}

	delete(s.byName, oldName)
	a.Name = newName
	s.byName[newName] = a
	for i, n := range s.names {
		if n == oldName {
			s.names[i] = newName
			break
		}
	}
	return nil
}

func (s *OutputSet) removeName(name string) {
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			return
		}
	}
}
