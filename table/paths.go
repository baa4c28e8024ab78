package table

import (
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// MetadataDir is the conventional subdirectory holding table-metadata
// version files.
const MetadataDir = "metadata"

// VersionHintFile is the pointer file holding the current metadata
// version number, read optimistically and then checked against a listing
// of the metadata directory for any newer staged version.
const VersionHintFile = "version-hint.text"

// MetadataFileName returns "v{n}.metadata.json" for version n.
func MetadataFileName(version int) string {
	return fmt.Sprintf("v%d.metadata.json", version)
}

// MetadataPath joins a table location with the metadata directory and
// the versioned file name.
func MetadataPath(location string, version int) string {
	return strings.TrimSuffix(location, "/") + "/" + MetadataDir + "/" + MetadataFileName(version)
}

// VersionHintPath returns the version-hint file's path under location.
func VersionHintPath(location string) string {
	return strings.TrimSuffix(location, "/") + "/" + MetadataDir + "/" + VersionHintFile
}

// ParseVersion extracts the integer version from a "v{n}.metadata.json"
// file name.
func ParseVersion(fileName string) (int, error) {
	base := path.Base(fileName)
	if !strings.HasPrefix(base, "v") || !strings.HasSuffix(base, ".metadata.json") {
		return 0, errors.New(ErrMetadataInvalid, fmt.Sprintf("not a metadata version file: %s", fileName), nil)
	}
	numStr := strings.TrimSuffix(strings.TrimPrefix(base, "v"), ".metadata.json")
	n, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, errors.New(ErrMetadataInvalid, fmt.Sprintf("invalid version in file name: %s", fileName), err)
	}
	return n, nil
}
