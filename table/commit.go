package table

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/icebergcore/config"
	"github.com/gear6io/icebergcore/iceberg"
	"github.com/gear6io/icebergcore/pkg/errors"
	"github.com/gear6io/icebergcore/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxMetadataLogEntries bounds the metadata-log retained in a committed
// document; older entries are trimmed on commit, mirroring the
// write.metadata.previous-versions-max table property.
const MaxMetadataLogEntries = 100

// Table binds a storage location to the commit protocol: it loads the
// current metadata via the version-hint file, and commits new versions
// with a PutIfAbsent-based compare-and-swap, retrying on lost races.
type Table struct {
	Backend  storage.Backend
	Location string
	Logger   zerolog.Logger

	// RetryConfig overrides the OCC retry policy. Nil means
	// DefaultRetryConfig(); set it via RetryConfigFromCommitConfig and a
	// table's resolved config.Config to honor commit.retry.* properties.
	RetryConfig *RetryConfig
}

// NewTable binds a Table to a storage backend and location, with the
// retry policy taken from cfg.Commit (config.DefaultConfig() if nil).
func NewTable(backend storage.Backend, location string, logger zerolog.Logger, cfg *config.Config) *Table {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	retry := RetryConfigFromCommitConfig(cfg.Commit)
	return &Table{Backend: backend, Location: location, Logger: logger, RetryConfig: &retry}
}

func (t *Table) retryConfig() RetryConfig {
	if t.RetryConfig != nil {
		return *t.RetryConfig
	}
	return DefaultRetryConfig()
}

// hasCode reports whether err is a *pkg/errors.Error carrying code.
func hasCode(err error, code errors.Code) bool {
	e, ok := err.(*errors.Error)
	return ok && e.Code == code
}

// loaded is the current on-disk metadata state: the document itself, plus
// the version number it was read at (0 if the table does not yet exist).
type loaded struct {
	metadata *Metadata
	version  int
}

// load reads the version-hint file and the metadata document it points
// at. A missing version-hint means the table does not exist yet.
func (t *Table) load(ctx context.Context) (*loaded, error) {
	hintData, err := t.Backend.Get(ctx, VersionHintPath(t.Location))
	if err != nil {
		if hasCode(err, storage.ErrNotFound) {
			return &loaded{metadata: nil, version: 0}, nil
		}
		return nil, errors.New(ErrCommitTransaction, "failed to read version hint", err)
	}

	version, convErr := strconv.Atoi(strings.TrimSpace(string(hintData)))
	if convErr != nil {
		return nil, errors.New(ErrMetadataInvalid, fmt.Sprintf("corrupt version hint: %q", string(hintData)), convErr)
	}

	// A writer may have staged a newer version without advancing the hint
	// yet; take the highest version the metadata listing shows.
	dir := strings.TrimSuffix(VersionHintPath(t.Location), VersionHintFile)
	if names, listErr := t.Backend.List(ctx, dir); listErr == nil {
		for _, name := range names {
			if n, perr := ParseVersion(name); perr == nil && n > version {
				version = n
			}
		}
	}

	data, err := t.Backend.Get(ctx, MetadataPath(t.Location, version))
	if err != nil {
		return nil, errors.New(ErrCommitTransaction, fmt.Sprintf("failed to read metadata version %d", version), err)
	}

	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(ErrMetadataInvalid, "failed to parse metadata document", err)
	}

	return &loaded{metadata: &m, version: version}, nil
}

// Load returns the table's current metadata, or nil if it does not exist.
func (t *Table) Load(ctx context.Context) (*Metadata, error) {
	l, err := t.load(ctx)
	if err != nil {
		return nil, err
	}
	return l.metadata, nil
}

// CommitRequest is one attempt to advance table state: a base version
// assumed to still be current, a set of preconditions, and a set of
// mutations to fold into the candidate metadata.
type CommitRequest struct {
	Requirements []Requirement
	Updates      []Update
}

// Commit executes the six-step atomic commit algorithm, retried under OCC
// via RetryCommit:
//
//  1. load the current metadata and version hint
//  2. evaluate every requirement against it, failing closed on conflict
//  3. fold every update into a cloned candidate document, re-validating
//     invariants
//  4. stage the candidate at v{N+1}.metadata.json via PutIfAbsent (CAS)
//  5. append the previous metadata location to metadata-log, trim it to
//     MaxMetadataLogEntries and rewrite the staged file, best-effort (a
//     failed rewrite is logged and leaves the untrimmed version live)
//  6. overwrite version-hint.text to point at N+1
func (t *Table) Commit(ctx context.Context, req CommitRequest) (*Metadata, error) {
	var result *Metadata

	err := RetryCommit(ctx, t.retryConfig(), func(ctx context.Context, attempt int) error {
		cur, err := t.load(ctx)
		if err != nil {
			return err
		}

		if err := CheckAll(req.Requirements, cur.metadata); err != nil {
			return err
		}

		var candidate *Metadata
		if cur.metadata == nil {
			candidate = &Metadata{
				FormatVersion:      FormatV2,
				TableUUID:          uuid.NewString(),
				Location:           t.Location,
				PartitionSpecs:     []*iceberg.PartitionSpec{{ID: 0, Fields: nil}},
				LastPartitionID:    MinPartitionFieldID,
				SortOrders:         []*iceberg.SortOrder{iceberg.UnsortedOrder},
				DefaultSortOrderID: 0,
				Refs:               map[string]*Ref{},
				Properties:         map[string]string{},
			}
		} else {
			candidate = cur.metadata.Clone()
		}

		if err := ApplyAll(req.Updates, candidate); err != nil {
			return err
		}
		candidate.LastUpdatedMs = time.Now().UnixMilli()

		if err := candidate.Validate(); err != nil {
			return err
		}

		newVersion := cur.version + 1
		data, err := json.Marshal(candidate)
		if err != nil {
			return errors.New(ErrCommitTransaction, "failed to encode candidate metadata", err)
		}

		newPath := MetadataPath(t.Location, newVersion)
		if err := t.Backend.PutIfAbsent(ctx, newPath, data); err != nil {
			if hasCode(err, storage.ErrAlreadyExists) {
				return errors.New(ErrCommitConflict, "lost race staging new metadata version", err)
			}
			return errors.New(ErrCommitTransaction, "failed to stage new metadata version", err)
		}

		if cur.version > 0 {
			candidate.MetadataLog = append(candidate.MetadataLog, MetadataLogEntry{
				TimestampMs:  candidate.LastUpdatedMs,
				MetadataFile: MetadataPath(t.Location, cur.version),
			})
			if len(candidate.MetadataLog) > MaxMetadataLogEntries {
				candidate.MetadataLog = candidate.MetadataLog[len(candidate.MetadataLog)-MaxMetadataLogEntries:]
			}
			data, err = json.Marshal(candidate)
			if err != nil {
				return errors.New(ErrCommitTransaction, "failed to re-encode metadata with log trim", err)
			}
			if err := t.Backend.Put(ctx, newPath, data); err != nil {
				t.Logger.Warn().Err(err).Msg("failed to persist trimmed metadata-log, leaving untrimmed version live")
			}
		}

		if err := t.Backend.Put(ctx, VersionHintPath(t.Location), []byte(strconv.Itoa(newVersion))); err != nil {
			t.Logger.Error().Err(err).Int("version", newVersion).Msg("staged metadata but failed to advance version hint")
			return errors.New(ErrCommitTransaction, "failed to advance version hint", err)
		}

		result = candidate
		return nil
	}, t.Logger)

	if err != nil {
		return nil, err
	}
	return result, nil
}
