// Package registry implements the asset registry and audit-log state manager.
// It is the single source of truth for both collections and the only writer
// of the durable blobs.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itam-dev/itam-store/pkg/schema"
)

// ErrAssetNotFound is returned when a requested asset does not exist.
var ErrAssetNotFound = errors.New("asset not found")

// DefaultActor is the attribution written into history entries when no actor
// is configured. No real auth context reaches the registry.
const DefaultActor = "system"

// Event describes one committed mutation. Observers (the websocket hub, the
// import path's future history logging) subscribe to these instead of polling.
type Event struct {
	Action  string `json:"action"`
	AssetID string `json:"assetId,omitempty"`
}

// EventImported is published by ReplaceAssets, which writes no history entry.
const EventImported = "imported"

// Registry owns the in-memory asset and history collections.
// Every mutation re-serializes the touched collection to its blob before
// returning, so the durable state is never more than one mutation behind.
type Registry struct {
	mu        sync.RWMutex
	assets    []schema.Asset
	history   []schema.HistoryEntry
	persister *Persistence
	actor     string
	histSeq   uint64

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

// New initializes a registry. It accepts existing collections (from
// Persistence.LoadAssets / LoadHistory) and a persister; both may be nil for
// an empty, memory-only registry.
func New(assets []schema.Asset, history []schema.HistoryEntry, p *Persistence, actor string) *Registry {
	if actor == "" {
		actor = DefaultActor
	}
	return &Registry{
		assets:    assets,
		history:   history,
		persister: p,
		actor:     actor,
		subs:      make(map[chan Event]struct{}),
	}
}

// --- Write operations ---

// AddAsset assigns a fresh unique id, stamps createdAt = updatedAt = now and
// appends one "created" history entry referencing the new id.
func (r *Registry) AddAsset(input schema.AssetInput) (schema.Asset, error) {
	r.mu.Lock()
	now := time.Now().UTC()
	asset := assetFromInput(input)
	asset.ID = uuid.NewString()
	asset.CreatedAt = now
	asset.UpdatedAt = now

	r.assets = append(r.assets, asset)
	r.appendHistoryLocked(asset.ID, schema.ActionCreated, fmt.Sprintf("Asset %s created", asset.Name))
	err := r.persistLocked(true, true)
	r.mu.Unlock()

	r.publish(Event{Action: string(schema.ActionCreated), AssetID: asset.ID})
	return asset, err
}

// UpdateAsset fully replaces the asset's fields (not a merge), preserving id
// and createdAt and setting updatedAt = now. An unknown id leaves the asset
// collection untouched, but an "updated" history entry is appended anyway;
// that inconsistency is the documented reference behavior.
func (r *Registry) UpdateAsset(id string, input schema.AssetInput) error {
	r.mu.Lock()
	found := false
	for i := range r.assets {
		if r.assets[i].ID == id {
			replacement := assetFromInput(input)
			replacement.ID = id
			replacement.CreatedAt = r.assets[i].CreatedAt
			replacement.UpdatedAt = time.Now().UTC()
			r.assets[i] = replacement
			found = true
			break
		}
	}
	r.appendHistoryLocked(id, schema.ActionUpdated, "Asset updated")
	err := r.persistLocked(found, true)
	r.mu.Unlock()

	r.publish(Event{Action: string(schema.ActionUpdated), AssetID: id})
	return err
}

// DeleteAsset removes the matching asset if present. The "deleted" history
// entry is appended only when something was actually removed.
func (r *Registry) DeleteAsset(id string) error {
	r.mu.Lock()
	idx := -1
	for i := range r.assets {
		if r.assets[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		r.mu.Unlock()
		return nil
	}
	name := r.assets[idx].Name
	r.assets = append(r.assets[:idx], r.assets[idx+1:]...)
	r.appendHistoryLocked(id, schema.ActionDeleted, fmt.Sprintf("Asset %s deleted", name))
	err := r.persistLocked(true, true)
	r.mu.Unlock()

	r.publish(Event{Action: string(schema.ActionDeleted), AssetID: id})
	return err
}

// BulkDeleteAssets removes every asset whose id is in the set, in one pass
// against a snapshot of the prior collection. One "deleted" entry is appended
// per id that existed at call time, never per requested id.
func (r *Registry) BulkDeleteAssets(ids []string) error {
	r.mu.Lock()
	prior := make(map[string]string, len(r.assets)) // id -> name, the pre-call snapshot
	for _, a := range r.assets {
		prior[a.ID] = a.Name
	}

	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	kept := r.assets[:0]
	for _, a := range r.assets {
		if _, hit := requested[a.ID]; !hit {
			kept = append(kept, a)
		}
	}
	removed := len(r.assets) - len(kept)
	r.assets = kept

	var deleted []string
	for _, id := range ids {
		if name, existed := prior[id]; existed {
			r.appendHistoryLocked(id, schema.ActionDeleted, fmt.Sprintf("Bulk delete: %s", name))
			deleted = append(deleted, id)
		}
	}

	var err error
	if removed > 0 {
		err = r.persistLocked(true, true)
	}
	r.mu.Unlock()

	for _, id := range deleted {
		r.publish(Event{Action: string(schema.ActionDeleted), AssetID: id})
	}
	return err
}

// BulkUpdateStatus sets the status and refreshes updatedAt for every asset in
// the set. It appends one "updated" entry per requested id unconditionally,
// mirroring the single-update no-op behavior.
func (r *Registry) BulkUpdateStatus(ids []string, status schema.AssetStatus) error {
	r.mu.Lock()
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}

	now := time.Now().UTC()
	touched := false
	for i := range r.assets {
		if _, hit := requested[r.assets[i].ID]; hit {
			r.assets[i].Status = status
			r.assets[i].UpdatedAt = now
			touched = true
		}
	}
	for _, id := range ids {
		r.appendHistoryLocked(id, schema.ActionUpdated, fmt.Sprintf("Status changed to %s", status))
	}
	err := r.persistLocked(touched, len(ids) > 0)
	r.mu.Unlock()

	for _, id := range ids {
		r.publish(Event{Action: string(schema.ActionUpdated), AssetID: id})
	}
	return err
}

// ReplaceAssets is the import escape hatch: it swaps the entire asset
// collection in one operation. It goes through the registry (persisted,
// observable) but appends no history, matching the backup/restore contract.
func (r *Registry) ReplaceAssets(assets []schema.Asset) error {
	r.mu.Lock()
	r.assets = append([]schema.Asset(nil), assets...)
	err := r.persistLocked(true, false)
	r.mu.Unlock()

	r.publish(Event{Action: EventImported})
	return err
}

// --- Read operations ---

// GetAssetByID returns the matching asset or ErrAssetNotFound. Pure read.
func (r *Registry) GetAssetByID(id string) (schema.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.assets {
		if a.ID == id {
			return a, nil
		}
	}
	return schema.Asset{}, ErrAssetNotFound
}

// ListAssets returns a copy of the full asset collection in insertion order.
func (r *Registry) ListAssets() ([]schema.Asset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]schema.Asset(nil), r.assets...), nil
}

// GetAssetHistory returns all history entries for one asset, newest first.
// Entries with equal timestamps keep their insertion order.
func (r *Registry) GetAssetHistory(id string) ([]schema.HistoryEntry, error) {
	r.mu.RLock()
	var entries []schema.HistoryEntry
	for _, h := range r.history {
		if h.AssetID == id {
			entries = append(entries, h)
		}
	}
	r.mu.RUnlock()

	sortNewestFirst(entries)
	return entries, nil
}

// History returns the full audit log, newest first.
func (r *Registry) History() ([]schema.HistoryEntry, error) {
	r.mu.RLock()
	entries := append([]schema.HistoryEntry(nil), r.history...)
	r.mu.RUnlock()

	sortNewestFirst(entries)
	return entries, nil
}

// Snapshot returns both collections in insertion order, for the export-all path.
func (r *Registry) Snapshot() (schema.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return schema.Snapshot{
		Assets:  append([]schema.Asset(nil), r.assets...),
		History: append([]schema.HistoryEntry(nil), r.history...),
	}, nil
}

// Stats computes the dashboard aggregates over the live collection.
func (r *Registry) Stats() (schema.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := schema.Stats{
		TotalAssets: len(r.assets),
		ByCategory:  make(map[schema.AssetCategory]int),
	}
	for _, a := range r.assets {
		switch a.Status {
		case schema.StatusActive:
			stats.ActiveAssets++
		case schema.StatusBroken:
			stats.BrokenAssets++
		case schema.StatusUnderRepair:
			stats.InRepairAssets++
		}
		stats.ByCategory[a.Category]++
	}
	return stats, nil
}

// --- Observers ---

// Subscribe registers a change-event channel. The channel is buffered and
// sends are non-blocking; a slow consumer drops events rather than stalling
// mutations.
func (r *Registry) Subscribe() chan Event {
	ch := make(chan Event, 64)
	r.subMu.Lock()
	r.subs[ch] = struct{}{}
	r.subMu.Unlock()
	return ch
}

// Unsubscribe removes and closes a previously subscribed channel.
func (r *Registry) Unsubscribe(ch chan Event) {
	r.subMu.Lock()
	if _, ok := r.subs[ch]; ok {
		delete(r.subs, ch)
		close(ch)
	}
	r.subMu.Unlock()
}

func (r *Registry) publish(ev Event) {
	r.subMu.Lock()
	for ch := range r.subs {
		select {
		case ch <- ev:
		default:
		}
	}
	r.subMu.Unlock()
}

// Close flushes both collections one final time and drops all subscribers.
func (r *Registry) Close() error {
	r.mu.Lock()
	err := r.persistLocked(true, true)
	r.mu.Unlock()

	r.subMu.Lock()
	for ch := range r.subs {
		delete(r.subs, ch)
		close(ch)
	}
	r.subMu.Unlock()
	return err
}

// --- Internals ---

// appendHistoryLocked creates an immutable audit record. The id is
// time-derived with a per-registry sequence so two entries within the same
// millisecond still get distinct ids. Must be called with r.mu held.
func (r *Registry) appendHistoryLocked(assetID string, action schema.HistoryAction, changes string) {
	now := time.Now().UTC()
	r.histSeq++
	r.history = append(r.history, schema.HistoryEntry{
		ID:        fmt.Sprintf("%d-%d", now.UnixMilli(), r.histSeq),
		AssetID:   assetID,
		Action:    action,
		Changes:   changes,
		Timestamp: now,
		User:      r.actor,
	})
}

// persistLocked rewrites the touched blobs. Must be called with r.mu held so
// the durable state always matches the in-memory state it was taken from.
func (r *Registry) persistLocked(assets, history bool) error {
	if r.persister == nil {
		return nil
	}
	if assets {
		if err := r.persister.SaveAssets(r.assets); err != nil {
			return fmt.Errorf("persist assets: %w", err)
		}
	}
	if history {
		if err := r.persister.SaveHistory(r.history); err != nil {
			return fmt.Errorf("persist history: %w", err)
		}
	}
	return nil
}

func assetFromInput(in schema.AssetInput) schema.Asset {
	return schema.Asset{
		Name:                in.Name,
		AccessionNumber:     in.AccessionNumber,
		ModelType:           in.ModelType,
		SerialNumber:        in.SerialNumber,
		AssignedUser:        in.AssignedUser,
		Department:          in.Department,
		DateReceived:        in.DateReceived,
		Status:              in.Status,
		Category:            in.Category,
		Notes:               in.Notes,
		ImageURL:            in.ImageURL,
		Location:            in.Location,
		PurchasePrice:       in.PurchasePrice,
		WarrantyExpiry:      in.WarrantyExpiry,
		Vendor:              in.Vendor,
		MaintenanceSchedule: in.MaintenanceSchedule,
		LastMaintenance:     in.LastMaintenance,
	}
}

func sortNewestFirst(entries []schema.HistoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
}
