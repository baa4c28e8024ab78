// Package config holds the yaml-tagged, table-property-driven tunables
// for the commit protocol, snapshot retention, and variant shredding:
// one struct per concern, a DefaultConfig, and a LoadFromFile that
// overlays yaml onto the defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gear6io/icebergcore/pkg/errors"
)

// CommitConfig maps the "commit.retry.*" and "commit.manifest.*" table
// properties.
type CommitConfig struct {
	NumRetries         int           `yaml:"num_retries"`
	MinWaitMs          time.Duration `yaml:"min_wait_ms"`
	MaxWaitMs          time.Duration `yaml:"max_wait_ms"`
	TotalTimeoutMs     time.Duration `yaml:"total_timeout_ms"`
	ManifestTargetSize int64         `yaml:"manifest_target_size_bytes"`
	ManifestMinCount   int           `yaml:"manifest_min_count_to_merge"`
}

// RetentionConfig maps the "history.expire.*" table properties.
type RetentionConfig struct {
	MaxSnapshotAgeMs  time.Duration `yaml:"max_snapshot_age_ms"`
	MinSnapshotsToKeep int          `yaml:"min_snapshots_to_keep"`
	MaxRefAgeMs       time.Duration `yaml:"max_ref_age_ms"`
}

// VariantShredConfig maps the "write.variant.*" table properties:
// `write.variant.shred-columns` (which variant columns get shredded),
// `write.variant.<col>.shred-fields` (dotted paths within that column),
// and `write.variant.<col>.field-types` (each path's Iceberg type name).
type VariantShredConfig struct {
	ShredColumns []string                     `yaml:"shred_columns"`
	FieldsByCol  map[string][]string          `yaml:"fields_by_column"`
	TypesByCol   map[string]map[string]string `yaml:"types_by_column"`
}

// Config bundles every table-property-driven tunable this module exposes.
type Config struct {
	Commit  CommitConfig        `yaml:"commit"`
	Retain  RetentionConfig     `yaml:"retention"`
	Variant VariantShredConfig  `yaml:"variant"`
}

// DefaultConfig mirrors the standard Iceberg table-property defaults.
func DefaultConfig() *Config {
	return &Config{
		Commit: CommitConfig{
			NumRetries:         4,
			MinWaitMs:          100 * time.Millisecond,
			MaxWaitMs:          5 * time.Second,
			TotalTimeoutMs:     30 * time.Second,
			ManifestTargetSize: 8 * 1024 * 1024,
			ManifestMinCount:   100,
		},
		Retain: RetentionConfig{
			MaxSnapshotAgeMs:   5 * 24 * time.Hour,
			MinSnapshotsToKeep: 1,
			MaxRefAgeMs:        0,
		},
		Variant: VariantShredConfig{
			FieldsByCol: map[string][]string{},
			TypesByCol:  map[string]map[string]string{},
		},
	}
}

var ErrConfigLoad = errors.MustNewCode("config.load_failed")

// LoadFromFile overlays a yaml document at path onto DefaultConfig.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.New(ErrConfigLoad, "failed to read config file", err).AddContext("path", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(ErrConfigLoad, "failed to parse config yaml", err).AddContext("path", path)
	}
	return cfg, nil
}

// FromTableProperties maps an Iceberg table-properties map onto a
// Config, leaving unset properties at their DefaultConfig values.
func FromTableProperties(props map[string]string) *Config {
	cfg := DefaultConfig()
	if v, ok := props["commit.retry.num-retries"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.NumRetries = n
		}
	}
	if v, ok := props["commit.retry.min-wait-ms"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.MinWaitMs = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := props["commit.retry.max-wait-ms"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.MaxWaitMs = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := props["commit.retry.total-timeout-ms"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.TotalTimeoutMs = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := props["commit.manifest.target-size-bytes"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.ManifestTargetSize = int64(n)
		}
	}
	if v, ok := props["commit.manifest.min-count-to-merge"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Commit.ManifestMinCount = n
		}
	}
	if v, ok := props["history.expire.max-snapshot-age-ms"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Retain.MaxSnapshotAgeMs = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := props["history.expire.min-snapshots-to-keep"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Retain.MinSnapshotsToKeep = n
		}
	}
	if v, ok := props["history.expire.max-ref-age-ms"]; ok {
		if n, err := parseInt(v); err == nil {
			cfg.Retain.MaxRefAgeMs = time.Duration(n) * time.Millisecond
		}
	}
	if v, ok := props["write.variant.shred-columns"]; ok {
		cfg.Variant.ShredColumns = splitCommaList(v)
	}
	for key, v := range props {
		rest, ok := strings.CutPrefix(key, "write.variant.")
		if !ok {
			continue
		}
		switch {
		case strings.HasSuffix(rest, ".shred-fields"):
			col := strings.TrimSuffix(rest, ".shred-fields")
			cfg.Variant.FieldsByCol[col] = splitCommaList(v)
		case strings.HasSuffix(rest, ".field-types"):
			col := strings.TrimSuffix(rest, ".field-types")
			types := map[string]string{}
			for _, pair := range splitCommaList(v) {
				path, typ, found := strings.Cut(pair, ":")
				if !found {
					continue
				}
				types[strings.TrimSpace(path)] = strings.TrimSpace(typ)
			}
			cfg.Variant.TypesByCol[col] = types
		}
	}
	return cfg
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New(ErrConfigLoad, "invalid numeric property value", err).AddContext("value", s)
	}
	return n, nil
}

func splitCommaList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
