// Package deletes implements row-level delete application: position-
// delete, equality-delete, and deletion-vector bookkeeping on top of the
// manifest layer's DataFile/ManifestEntry shapes.
package deletes

import "github.com/gear6io/icebergcore/manifest"

// Index classifies a snapshot's live delete-file manifest entries so a
// reader can find which deletes apply to a given data file without
// rescanning every manifest entry per lookup.
type Index struct {
	// activeDV maps a data file's path to its one active deletion
	// vector; at most one deletion vector may be active per data file
	// per snapshot.
	activeDV map[string]*manifest.DataFile

	// positionDeletes holds every legacy (v2) position-delete file,
	// regardless of which data file it references; PositionDeletesFor
	// filters by reference and sequence number at lookup time since a
	// single position-delete file's rows may reference several data
	// files.
	positionDeletes []*manifest.ManifestEntry

	// equalityDeletes holds every equality-delete file.
	equalityDeletes []*manifest.ManifestEntry
}

// NewIndex builds an Index from a snapshot's live (status != deleted)
// delete-file manifest entries. entries may also include content=0 data
// entries; they are ignored.
func NewIndex(entries []*manifest.ManifestEntry) (*Index, error) {
	idx := &Index{activeDV: map[string]*manifest.DataFile{}}
	for _, e := range entries {
		if e.Status == manifest.StatusDeleted || e.DataFile == nil {
			continue
		}
		df := e.DataFile
		switch df.Content {
		case manifest.ContentPositionDeletes:
			if df.IsDeletionVector() {
				path := *df.ReferencedDataFile
				if _, exists := idx.activeDV[path]; exists {
					return nil, newError(ErrMultipleActiveDVs, "more than one active deletion vector for data file "+path)
				}
				idx.activeDV[path] = df
			} else {
				idx.positionDeletes = append(idx.positionDeletes, e)
			}
		case manifest.ContentEqualityDeletes:
			idx.equalityDeletes = append(idx.equalityDeletes, e)
		}
	}
	return idx, nil
}

// ShouldIgnorePositionDeletes reports whether dataFilePath has an active
// deletion vector, meaning a reader must ignore any legacy position-
// delete files for it.
func (idx *Index) ShouldIgnorePositionDeletes(dataFilePath string) bool {
	_, ok := idx.activeDV[dataFilePath]
	return ok
}

// ActiveDV returns the active deletion vector for dataFilePath, if any.
func (idx *Index) ActiveDV(dataFilePath string) (*manifest.DataFile, bool) {
	dv, ok := idx.activeDV[dataFilePath]
	return dv, ok
}

// referencesFile reports whether a position-delete file's recorded
// lower/upper bound on the reserved file-path field id could include
// dataFilePath. Without decoding the delete file's actual rows (out of
// scope: row data I/O is a consumer concern), membership is judged by
// whether the file-path column's bounds admit the path; callers that
// need exact membership must open the delete file itself.
func referencesFile(df *manifest.DataFile, dataFilePath string) bool {
	lower, hasLower := df.LowerBounds[manifest.PositionDeleteFilePathFieldID]
	upper, hasUpper := df.UpperBounds[manifest.PositionDeleteFilePathFieldID]
	if !hasLower || !hasUpper {
		return true // no bounds recorded, must assume it may apply
	}
	return string(lower) <= dataFilePath && dataFilePath <= string(upper)
}

// PositionDeletesFor returns the legacy position-delete files with a
// sequence number at or after dataFileSequenceNumber that reference
// dataFilePath, or nil if an active deletion vector already covers it.
func (idx *Index) PositionDeletesFor(dataFilePath string, dataFileSequenceNumber int64) []*manifest.DataFile {
	if idx.ShouldIgnorePositionDeletes(dataFilePath) {
		return nil
	}
	var out []*manifest.DataFile
	for _, e := range idx.positionDeletes {
		if e.SequenceNumber < dataFileSequenceNumber {
			continue
		}
		if referencesFile(e.DataFile, dataFilePath) {
			out = append(out, e.DataFile)
		}
	}
	return out
}

// EqualityDeletesFor returns the equality-delete files with a sequence
// number at or after dataFileSequenceNumber. These always apply on top
// of whichever deletion-vector or position-delete result Resolve picks.
func (idx *Index) EqualityDeletesFor(dataFileSequenceNumber int64) []*manifest.DataFile {
	var out []*manifest.DataFile
	for _, e := range idx.equalityDeletes {
		if e.SequenceNumber < dataFileSequenceNumber {
			continue
		}
		out = append(out, e.DataFile)
	}
	return out
}

// Applicable resolves the full application-order decision for one data
// file: an active deletion vector if present, otherwise legacy
// position-delete files, plus any equality-delete files in both cases.
type Applicable struct {
	DeletionVector  *manifest.DataFile
	PositionDeletes []*manifest.DataFile
	EqualityDeletes []*manifest.DataFile
}

// Resolve computes the Applicable deletes for dataFilePath at
// dataFileSequenceNumber: deletion vector takes priority over position
// deletes, and equality deletes always layer on top of either.
func (idx *Index) Resolve(dataFilePath string, dataFileSequenceNumber int64) Applicable {
	var a Applicable
	if dv, ok := idx.ActiveDV(dataFilePath); ok {
		a.DeletionVector = dv
	} else {
		a.PositionDeletes = idx.PositionDeletesFor(dataFilePath, dataFileSequenceNumber)
	}
	a.EqualityDeletes = idx.EqualityDeletesFor(dataFileSequenceNumber)
	return a
}
