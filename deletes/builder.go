package deletes

import (
	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/manifest"
	"github.com/gear6io/icebergcore/stats"
)

// NewPositionDeleteFile builds the DataFile record for a legacy (v2)
// position-delete file recording (file-path, pos) pairs against the
// reserved schema. The caller has already written the physical delete
// file (row I/O is out of scope); this only produces the manifest-
// entry-ready statistics record, with bounds computed over the
// referenced paths/positions actually written.
func NewPositionDeleteFile(path string, format manifest.FileFormat, fileSizeInBytes int64, referencedPaths []string, positions []int64) (*manifest.DataFile, error) {
	if len(referencedPaths) != len(positions) {
		return nil, newError(ErrInvalidDeleteFile, "referencedPaths and positions must be the same length")
	}
	df := &manifest.DataFile{
		Content:         manifest.ContentPositionDeletes,
		FilePath:        path,
		FileFormat:      format,
		RecordCount:     int64(len(positions)),
		FileSizeInBytes: fileSizeInBytes,
		ValueCounts:     map[int]int64{},
		NullValueCounts: map[int]int64{},
		LowerBounds:     map[int][]byte{},
		UpperBounds:     map[int][]byte{},
	}
	pathCol := stats.NewCollector(iceberg.StringType)
	posCol := stats.NewCollector(iceberg.Int64)
	for i, p := range referencedPaths {
		if err := pathCol.Observe(p, int64(len(p))); err != nil {
			return nil, err
		}
		if err := posCol.Observe(positions[i], 8); err != nil {
			return nil, err
		}
	}
	pathStats := pathCol.Finish()
	posStats := posCol.Finish()
	df.ValueCounts[manifest.PositionDeleteFilePathFieldID] = pathStats.ValueCount
	df.ValueCounts[manifest.PositionDeletePosFieldID] = posStats.ValueCount
	df.LowerBounds[manifest.PositionDeleteFilePathFieldID] = pathStats.LowerBound
	df.UpperBounds[manifest.PositionDeleteFilePathFieldID] = pathStats.UpperBound
	df.LowerBounds[manifest.PositionDeletePosFieldID] = posStats.LowerBound
	df.UpperBounds[manifest.PositionDeletePosFieldID] = posStats.UpperBound
	return df, nil
}

// NewEqualityDeleteFile builds the DataFile record for an equality-
// delete file projecting over equalityFieldIDs, recorded against the
// reserved equality-delete schema id.
func NewEqualityDeleteFile(path string, format manifest.FileFormat, fileSizeInBytes, recordCount int64, equalityFieldIDs []int) *manifest.DataFile {
	return &manifest.DataFile{
		Content:         manifest.ContentEqualityDeletes,
		FilePath:        path,
		FileFormat:      format,
		RecordCount:     recordCount,
		FileSizeInBytes: fileSizeInBytes,
		EqualityIDs:     equalityFieldIDs,
	}
}

// NewDeletionVector builds the DataFile record for a v3 deletion vector
// stored in a Puffin container at puffinPath, referencing referencedDataFile.
func NewDeletionVector(puffinPath string, fileSizeInBytes int64, contentOffset, contentSizeInBytes int64, referencedDataFile string, cardinality int64) *manifest.DataFile {
	offset := contentOffset
	size := contentSizeInBytes
	ref := referencedDataFile
	return &manifest.DataFile{
		Content:            manifest.ContentPositionDeletes,
		FilePath:           puffinPath,
		FileFormat:         manifest.FormatPuffin,
		RecordCount:        cardinality,
		FileSizeInBytes:    fileSizeInBytes,
		ContentOffset:      &offset,
		ContentSizeInBytes: &size,
		ReferencedDataFile: &ref,
	}
}
