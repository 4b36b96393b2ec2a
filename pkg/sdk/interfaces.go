package sdk

import (
	"github.com/itam-dev/itam-store/internal/registry"
	"github.com/itam-dev/itam-store/pkg/schema"
)

// ErrAssetNotFound is returned when a requested asset does not exist in the
// registry. It is the embedded registry's sentinel, re-exported so remote
// callers can compare with errors.Is without importing internal packages.
var ErrAssetNotFound = registry.ErrAssetNotFound

// --- Functional Interfaces (Interface Segregation) ---

// AssetReader defines the pure read operations of the registry.
type AssetReader interface {
	// GetAssetByID returns the matching asset or ErrAssetNotFound.
	GetAssetByID(id string) (schema.Asset, error)
	// ListAssets returns the full asset collection in insertion order.
	ListAssets() ([]schema.Asset, error)
}

// AssetWriter defines the single-item mutations.
type AssetWriter interface {
	// AddAsset assigns a fresh id, stamps createdAt/updatedAt and appends a
	// "created" history entry.
	AddAsset(input schema.AssetInput) (schema.Asset, error)
	// UpdateAsset fully replaces the asset's fields, preserving id and
	// createdAt. Unknown ids are a silent no-op on the collection, yet an
	// "updated" history entry is still appended (reference behavior).
	UpdateAsset(id string, input schema.AssetInput) error
	// DeleteAsset removes the asset if present; a "deleted" history entry is
	// appended only when something was actually removed.
	DeleteAsset(id string) error
}

// BulkWriter defines the batch mutations.
type BulkWriter interface {
	// BulkDeleteAssets removes every listed asset that exists. History entries
	// are counted against a snapshot of the prior collection, one per id that
	// existed at call time.
	BulkDeleteAssets(ids []string) error
	// BulkUpdateStatus sets the status and refreshes updatedAt for every
	// listed asset, appending one "updated" entry per requested id whether or
	// not it exists (mirrors the single-update no-op contract).
	BulkUpdateStatus(ids []string, status schema.AssetStatus) error
}

// HistoryReader exposes the append-only audit log.
type HistoryReader interface {
	// GetAssetHistory returns the entries for one asset, newest first.
	GetAssetHistory(id string) ([]schema.HistoryEntry, error)
	// History returns the full audit log, newest first.
	History() ([]schema.HistoryEntry, error)
}

// Snapshotter handles the backup/restore boundary.
type Snapshotter interface {
	// Snapshot returns both collections in insertion order.
	Snapshot() (schema.Snapshot, error)
	// ReplaceAssets is the import escape hatch: it swaps the entire asset
	// collection in one operation, persisting and notifying observers but
	// appending no history.
	ReplaceAssets(assets []schema.Asset) error
}

// StatsReader computes the dashboard aggregates.
type StatsReader interface {
	Stats() (schema.Stats, error)
}

// --- Composite Interface ---

// AssetRegistry is the primary interface for interacting with the asset store.
// Both the embedded registry and the remote network client implement this contract.
type AssetRegistry interface {
	AssetReader
	AssetWriter
	BulkWriter
	HistoryReader
	Snapshotter
	StatsReader
}
