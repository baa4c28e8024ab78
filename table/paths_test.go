package table

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMetadataFileNameAndPath(t *testing.T) {
	require.Equal(t, "v3.metadata.json", MetadataFileName(3))
	require.Equal(t, "s3://b/t/metadata/v3.metadata.json", MetadataPath("s3://b/t", 3))
}

func TestVersionHintPath(t *testing.T) {
	require.Equal(t, "s3://b/t/metadata/version-hint.text", VersionHintPath("s3://b/t"))
}

func TestParseVersionRoundTrip(t *testing.T) {
	for _, v := range []int{1, 2, 42} {
		n, err := ParseVersion(MetadataFileName(v))
		require.NoError(t, err)
		require.Equal(t, v, n)
	}
}

func TestParseVersionRejectsGarbage(t *testing.T) {
	_, err := ParseVersion("not-a-metadata-file.json")
	require.Error(t, err)
}
