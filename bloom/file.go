package bloom

import (
	"encoding/binary"
	"encoding/json"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// fileMagic tags a bloom-filter *file*, which aggregates one filter
// blob per column, distinct from a single filter blob's own magic.
var fileMagic = [4]byte{'I', 'B', 'L', 'F'}

const fileFormatVersion byte = 1

// ColumnFilter is one column's filter plus the construction parameters
// Encode needs to write its trailer.
type ColumnFilter struct {
	FieldID           int
	ColumnName        string
	Filter            *Filter
	Count             int64
	FalsePositiveRate float64
}

// directoryEntry locates one column's filter blob within the file.
type directoryEntry struct {
	FieldID    int    `json:"field-id"`
	ColumnName string `json:"column-name"`
	Offset     int    `json:"offset"`
	Length     int    `json:"length"`
}

// ColumnEntry is a decoded column filter read back from a File.
type ColumnEntry struct {
	FieldID    int
	ColumnName string
	Filter     *Filter
	Trailer    Trailer
}

// WriteFile serializes columns as one bloom-filter file: `file magic(4)
// | version(1)`, then each column's Encode blob back to back, then a
// JSON directory and its length (4 bytes LE) as a footer.
func WriteFile(columns []ColumnFilter) ([]byte, error) {
	out := append([]byte{}, fileMagic[:]...)
	out = append(out, fileFormatVersion)

	dir := make([]directoryEntry, 0, len(columns))
	for _, c := range columns {
		blob, err := Encode(c.Filter, c.Count, c.FalsePositiveRate)
		if err != nil {
			return nil, err
		}
		dir = append(dir, directoryEntry{
			FieldID:    c.FieldID,
			ColumnName: c.ColumnName,
			Offset:     len(out),
			Length:     len(blob),
		})
		out = append(out, blob...)
	}

	dirJSON, err := json.Marshal(dir)
	if err != nil {
		return nil, errors.New(ErrInvalidConfig, "failed to encode bloom-filter file directory: "+err.Error(), nil)
	}
	out = append(out, dirJSON...)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(dirJSON)))
	out = append(out, lenBuf[:]...)
	return out, nil
}

// ReadFile decodes a bloom-filter file written by WriteFile.
func ReadFile(data []byte) ([]ColumnEntry, error) {
	if len(data) < 4+1+4 {
		return nil, errors.New(ErrTruncated, "bloom-filter file too short", nil)
	}
	if [4]byte(data[:4]) != fileMagic {
		return nil, errors.New(ErrBadMagic, "bloom-filter file magic mismatch", nil)
	}
	if data[4] != fileFormatVersion {
		return nil, errors.New(ErrUnsupportedVersion, "unsupported bloom-filter file version", nil)
	}

	dirLen := binary.LittleEndian.Uint32(data[len(data)-4:])
	dirStart := len(data) - 4 - int(dirLen)
	if dirStart < 5 {
		return nil, errors.New(ErrTruncated, "bloom-filter file directory length out of range", nil)
	}
	var dir []directoryEntry
	if err := json.Unmarshal(data[dirStart:dirStart+int(dirLen)], &dir); err != nil {
		return nil, errors.New(ErrTruncated, "failed to decode bloom-filter file directory: "+err.Error(), nil)
	}

	out := make([]ColumnEntry, 0, len(dir))
	for _, entry := range dir {
		if entry.Offset < 0 || entry.Offset+entry.Length > dirStart {
			return nil, errors.New(ErrTruncated, "bloom-filter directory entry out of range", nil)
		}
		f, trailer, err := Decode(data[entry.Offset : entry.Offset+entry.Length])
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnEntry{
			FieldID:    entry.FieldID,
			ColumnName: entry.ColumnName,
			Filter:     f,
			Trailer:    *trailer,
		})
	}
	return out, nil
}

// Lookup finds a decoded column's filter by field ID.
func Lookup(entries []ColumnEntry, fieldID int) (*Filter, error) {
	for _, e := range entries {
		if e.FieldID == fieldID {
			return e.Filter, nil
		}
	}
	return nil, errors.New(ErrUnknownColumn, "no bloom filter for field id", nil)
}
