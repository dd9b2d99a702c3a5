// Package core defines the domain model for post-build content addressing.
//
// It is intentionally split into:
//   - Artifact: one finished build output unit, as handed over by the host bundler
//   - OutputSet: an order-preserving name -> Artifact mapping with atomic rename
//   - RenameMap: the append-only record of (original name -> final name) moves
//
// The output set is exclusively owned by the rename engine for the duration of
// the in-memory phase; at any instant every key equals its artifact's current
// name.
package core
