// Package cache provides pluggable result caching for the pipeline.
//
// Validation reports and rendered artifacts are pure functions of the
// snapshot fingerprint, the style configuration, and the render
// options, so they cache aggressively. Backends:
//
//   - [FileCache]: per-user on-disk cache for CLI runs
//   - [RedisCache]: shared cache for the preview server
//   - [NullCache]: disabled caching
//
// Keys are built by a [Keyer] so every consumer derives them the same
// way; [ScopedKeyer] adds a namespace prefix when several taxonomy
// sources share one backend.
package cache

import (
	"context"
	"time"
)

// Default TTLs. Reports and artifacts are invalidated by fingerprint
// change anyway; the TTL only bounds the size of stale content kept for
// sources that never change.
const (
	// DefaultReportTTL bounds cached validation reports.
	DefaultReportTTL = 24 * time.Hour

	// DefaultArtifactTTL bounds cached rendered diagrams.
	DefaultArtifactTTL = 7 * 24 * time.Hour
)

// Cache stores raw bytes by key with optional expiry.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present; a miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 stores without expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// ReportKeyOpts are the inputs that change a validation report beyond
// the snapshot itself.
type ReportKeyOpts struct {
	// AllowIsolated mirrors the validator option of the same name.
	AllowIsolated bool
}

// ArtifactKeyOpts are the inputs that change a rendered diagram beyond
// the snapshot itself.
type ArtifactKeyOpts struct {
	View       string
	Format     string
	StyleHash  string
	RootID     string
	DebugRanks bool
}

// Keyer derives cache keys. All implementations must be deterministic:
// equal inputs produce equal keys across runs and processes.
type Keyer interface {
	// ReportKey keys the validation report of one snapshot.
	ReportKey(snapshotHash string, opts ReportKeyOpts) string

	// ArtifactKey keys one rendered diagram of one snapshot.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the inputs into fixed-width keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ReportKey generates a key for a validation report.
func (k *DefaultKeyer) ReportKey(snapshotHash string, opts ReportKeyOpts) string {
	return hashKey("report", snapshotHash, opts)
}

// ArtifactKey generates a key for a rendered diagram.
func (k *DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
