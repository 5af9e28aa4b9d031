// Package repository implements the persistence collaborator over MySQL. The
// registry itself is in-memory; these repositories load the catalog and the
// screening snapshot at startup and append accepted mutations afterwards.
// They never participate in the registry's locking.
package repository

import "errors"

// ErrScreeningExists is returned when a screening snapshot row with the same
// identifier has already been appended. Handlers treat this as a benign
// replay (the registry already rejected true schedule conflicts).
var ErrScreeningExists = errors.New("screening already persisted")
