package snapshot

import "github.com/gear6io/icebergcore/table"

// DefaultBranch is the name of the table's always-present mutable head.
const DefaultBranch = "main"

// NewBranch builds a branch ref with optional retention overrides (nil
// fields mean "use the table's configured default").
func NewBranch(snapshotID int64, maxRefAgeMs, maxSnapshotAgeMs *int64, minSnapshotsToKeep *int) *table.Ref {
	return &table.Ref{
		SnapshotID:         snapshotID,
		Type:               table.RefBranch,
		MaxRefAgeMs:        maxRefAgeMs,
		MaxSnapshotAgeMs:   maxSnapshotAgeMs,
		MinSnapshotsToKeep: minSnapshotsToKeep,
	}
}

// NewTag builds an immutable tag ref pinned to snapshotID.
func NewTag(snapshotID int64, maxRefAgeMs *int64) *table.Ref {
	return &table.Ref{SnapshotID: snapshotID, Type: table.RefTag, MaxRefAgeMs: maxRefAgeMs}
}

// RetentionPolicy carries the table-wide defaults used when a ref leaves
// a retention field unset, sourced from config.RetentionConfig.
type RetentionPolicy struct {
	MaxSnapshotAgeMs   int64
	MinSnapshotsToKeep int
}

// branchEffectiveParams resolves a branch's retention parameters,
// falling back to the policy default for any field the ref leaves unset.
func (p RetentionPolicy) branchEffectiveParams(ref *table.Ref) (maxSnapshotAgeMs int64, minToKeep int) {
	maxSnapshotAgeMs = p.MaxSnapshotAgeMs
	if ref.MaxSnapshotAgeMs != nil {
		maxSnapshotAgeMs = *ref.MaxSnapshotAgeMs
	}
	minToKeep = p.MinSnapshotsToKeep
	if ref.MinSnapshotsToKeep != nil {
		minToKeep = *ref.MinSnapshotsToKeep
	}
	return maxSnapshotAgeMs, minToKeep
}

// Expire computes the set of snapshot IDs to retain out of allSnapshots
// given refs and nowMs: every ref head, every snapshot younger than its
// branch's max-snapshot-age-ms, and the most recent min-snapshots-to-keep
// on each branch. History beyond a branch's own parent chain is not
// walked here — a caller that must keep a retained snapshot's whole
// ancestry reachable should also retain its parent chain, since an
// orphaned non-head snapshot is unreachable from any ref regardless of
// this policy.
func Expire(allSnapshots []*table.Snapshot, refs map[string]*table.Ref, nowMs int64, policy RetentionPolicy) map[int64]struct{} {
	keep := map[int64]struct{}{}

	for _, ref := range refs {
		keep[ref.SnapshotID] = struct{}{}
	}

	byID := make(map[int64]*table.Snapshot, len(allSnapshots))
	for _, s := range allSnapshots {
		byID[s.SnapshotID] = s
	}

	for _, ref := range refs {
		if ref.Type != table.RefBranch {
			continue
		}
		maxAge, minKeep := policy.branchEffectiveParams(ref)

		// Walk this branch's history by following ParentSnapshotID from
		// its head, since allSnapshots is table-wide and may include
		// other branches' history.
		var chain []*table.Snapshot
		cur, ok := byID[ref.SnapshotID]
		for ok {
			chain = append(chain, cur)
			if cur.ParentSnapshotID == nil {
				break
			}
			cur, ok = byID[*cur.ParentSnapshotID]
		}

		for i, s := range chain {
			young := maxAge > 0 && (nowMs-s.TimestampMs) < maxAge
			mostRecent := i < minKeep
			if young || mostRecent {
				keep[s.SnapshotID] = struct{}{}
			}
		}
	}

	return keep
}
