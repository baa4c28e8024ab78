package storage

import "context"

// Catalog is the optional external pointer-swap collaborator: a system
// that atomically advances a table's "current metadata location" pointer,
// independent of the metadata file storage itself (e.g. a Hive Metastore,
// a Glue catalog, a key-value store). Nothing in this module calls
// Catalog: Table.Commit in package table always commits through
// Backend.PutIfAbsent and the version-hint file.
type Catalog interface {
	// CurrentMetadataLocation returns the table's current metadata file
	// location and an opaque version token for CAS.
	CurrentMetadataLocation(ctx context.Context, tableIdentifier string) (location string, version string, err error)

	// CommitMetadataLocation swaps the table's pointer to newLocation,
	// succeeding only if the table's current version token still matches
	// expectedVersion. Returns ErrAlreadyExists-coded on a lost race,
	// mirroring Backend.PutIfAbsent's CAS failure semantics.
	CommitMetadataLocation(ctx context.Context, tableIdentifier, newLocation, expectedVersion string) error
}
