package deletes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/manifest"
)

func TestNewPositionDeleteFileComputesBounds(t *testing.T) {
	df, err := NewPositionDeleteFile("pd.parquet", manifest.FormatParquet, 256,
		[]string{"a.parquet", "b.parquet"}, []int64{3, 7})
	require.NoError(t, err)
	require.Equal(t, manifest.ContentPositionDeletes, df.Content)
	require.Equal(t, int64(2), df.RecordCount)
	require.NotNil(t, df.LowerBounds[manifest.PositionDeleteFilePathFieldID])
	require.NotNil(t, df.UpperBounds[manifest.PositionDeletePosFieldID])
}

func TestNewPositionDeleteFileRejectsMismatchedLengths(t *testing.T) {
	_, err := NewPositionDeleteFile("pd.parquet", manifest.FormatParquet, 256,
		[]string{"a.parquet"}, []int64{3, 7})
	require.Error(t, err)
}

func TestNewEqualityDeleteFile(t *testing.T) {
	df := NewEqualityDeleteFile("eq.parquet", manifest.FormatParquet, 128, 10, []int{1, 2})
	require.Equal(t, manifest.ContentEqualityDeletes, df.Content)
	require.Equal(t, []int{1, 2}, df.EqualityIDs)
}

func TestNewDeletionVectorValidates(t *testing.T) {
	df := NewDeletionVector("dv.puffin", 64, 0, 24, "d.parquet", 3)
	require.NoError(t, df.ValidateDV())
	require.True(t, df.IsDeletionVector())
	require.Equal(t, manifest.FormatPuffin, df.FileFormat)
}
