package core

// RenameEntry records one artifact move.
type RenameEntry struct {
	From string
	To   string
}

// RenameMap is the ordered, append-only record of renames performed during
// the in-memory phase.
//
// Insertion order equals the planner's topological visitation order, so when
// artifact A is rewritten every dependency of A already has its final entry
// present. It never contains an entry for a markup entry document.
type RenameMap struct {
	entries []RenameEntry
	byFrom  map[string]int
}

// NewRenameMap returns an empty rename map.
func NewRenameMap() *RenameMap {
	return &RenameMap{byFrom: make(map[string]int)}
}

// Append records a move from -> to. Later appends for the same original name
// win on lookup; the entry list keeps both, in order.
func (m *RenameMap) Append(from, to string) {
	m.byFrom[from] = len(m.entries)
	m.entries = append(m.entries, RenameEntry{From: from, To: to})
}

// Lookup returns the final name recorded for an original name.
func (m *RenameMap) Lookup(from string) (string, bool) {
	i, ok := m.byFrom[from]
	if !ok {
		return "", false
	}
	return m.entries[i].To, true
}

// Entries returns the recorded moves in insertion order.
func (m *RenameMap) Entries() []RenameEntry {
	out := make([]RenameEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Len returns the number of recorded moves.
func (m *RenameMap) Len() int { return len(m.entries) }
