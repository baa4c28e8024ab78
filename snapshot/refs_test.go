package snapshot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gear6io/icebergcore/table"
)

func chain(n int, startTs int64) []*table.Snapshot {
	out := make([]*table.Snapshot, n)
	for i := 0; i < n; i++ {
		s := &table.Snapshot{SnapshotID: int64(i + 1), SequenceNumber: int64(i + 1), TimestampMs: startTs + int64(i)*1000}
		if i > 0 {
			parent := s.SnapshotID - 1
			s.ParentSnapshotID = &parent
		}
		out[i] = s
	}
	return out
}

func TestExpireKeepsRefHeads(t *testing.T) {
	snaps := chain(5, 0)
	refs := map[string]*table.Ref{
		DefaultBranch: {SnapshotID: 5, Type: table.RefBranch},
	}
	policy := RetentionPolicy{MaxSnapshotAgeMs: 0, MinSnapshotsToKeep: 1}
	keep := Expire(snaps, refs, 100000, policy)
	require.Contains(t, keep, int64(5))
}

func TestExpireKeepsYoungSnapshots(t *testing.T) {
	snaps := chain(5, 0)
	refs := map[string]*table.Ref{
		DefaultBranch: {SnapshotID: 5, Type: table.RefBranch},
	}
	policy := RetentionPolicy{MaxSnapshotAgeMs: 2500, MinSnapshotsToKeep: 1}
	keep := Expire(snaps, refs, 4000, policy)
	require.Contains(t, keep, int64(4)) // ts=3000, age=1000 < 2500
	require.Contains(t, keep, int64(5)) // head
}

func TestExpireKeepsMostRecentNPerBranch(t *testing.T) {
	snaps := chain(5, 0)
	refs := map[string]*table.Ref{
		DefaultBranch: {SnapshotID: 5, Type: table.RefBranch},
	}
	policy := RetentionPolicy{MaxSnapshotAgeMs: 0, MinSnapshotsToKeep: 3}
	keep := Expire(snaps, refs, 100000, policy)
	require.Contains(t, keep, int64(5))
	require.Contains(t, keep, int64(4))
	require.Contains(t, keep, int64(3))
	require.NotContains(t, keep, int64(2))
}

func TestExpireTagIsAlwaysKept(t *testing.T) {
	snaps := chain(5, 0)
	refs := map[string]*table.Ref{
		DefaultBranch: {SnapshotID: 5, Type: table.RefBranch},
		"v1.0":        {SnapshotID: 2, Type: table.RefTag},
	}
	policy := RetentionPolicy{MaxSnapshotAgeMs: 0, MinSnapshotsToKeep: 1}
	keep := Expire(snaps, refs, 100000, policy)
	require.Contains(t, keep, int64(2))
}

func TestExpirePerBranchOverride(t *testing.T) {
	snaps := chain(5, 0)
	minKeep := 2
	refs := map[string]*table.Ref{
		DefaultBranch: {SnapshotID: 5, Type: table.RefBranch, MinSnapshotsToKeep: &minKeep},
	}
	policy := RetentionPolicy{MaxSnapshotAgeMs: 0, MinSnapshotsToKeep: 10}
	keep := Expire(snaps, refs, 100000, policy)
	require.Contains(t, keep, int64(5))
	require.Contains(t, keep, int64(4))
	require.NotContains(t, keep, int64(3))
}
