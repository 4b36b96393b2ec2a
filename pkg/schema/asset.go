// Package schema defines universal data structures used across the ITAM platform.
package schema

import "time"

// AssetStatus is the lifecycle state of a tracked asset.
// The wire values are the ones the original inventory uses; renaming them
// would silently break every previously written blob.
type AssetStatus string

const (
	StatusActive      AssetStatus = "Aktif"
	StatusBroken      AssetStatus = "Rusak"
	StatusUnderRepair AssetStatus = "Dalam Perbaikan"
	StatusDeleted     AssetStatus = "Dihapus"
)

// AssetCategory is the closed set of device classes.
type AssetCategory string

const (
	CategoryLaptop   AssetCategory = "Laptop"
	CategoryPrinter  AssetCategory = "Printer"
	CategoryMonitor  AssetCategory = "Monitor"
	CategoryDesktop  AssetCategory = "PC Desktop"
	CategoryServer   AssetCategory = "Server"
	CategoryNetwork  AssetCategory = "Network Equipment"
	CategoryRadioRIG AssetCategory = "Radio RIG"
	CategoryRadioHT  AssetCategory = "Radio HT"
	CategoryOther    AssetCategory = "Lainnya"
)

// HistoryAction classifies an audit record.
type HistoryAction string

const (
	ActionCreated     HistoryAction = "created"
	ActionUpdated     HistoryAction = "updated"
	ActionDeleted     HistoryAction = "deleted"
	ActionMaintenance HistoryAction = "maintenance"
)

// Asset is one tracked physical inventory item.
// ID is assigned by the registry at creation and never changes or gets reused.
type Asset struct {
	ID                  string        `json:"id"`
	Name                string        `json:"name"`
	AccessionNumber     string        `json:"accessionNumber"`
	ModelType           string        `json:"modelType"`
	SerialNumber        string        `json:"serialNumber"`
	AssignedUser        string        `json:"assignedUser"`
	Department          string        `json:"department"`
	DateReceived        string        `json:"dateReceived"`
	Status              AssetStatus   `json:"status"`
	Category            AssetCategory `json:"category"`
	Notes               string        `json:"notes,omitempty"`
	ImageURL            string        `json:"imageUrl,omitempty"`
	Location            string        `json:"location,omitempty"`
	PurchasePrice       float64       `json:"purchasePrice,omitempty"`
	WarrantyExpiry      string        `json:"warrantyExpiry,omitempty"`
	Vendor              string        `json:"vendor,omitempty"`
	MaintenanceSchedule string        `json:"maintenanceSchedule,omitempty"`
	LastMaintenance     string        `json:"lastMaintenance,omitempty"`
	CreatedAt           time.Time     `json:"createdAt,omitzero"`
	UpdatedAt           time.Time     `json:"updatedAt,omitzero"`
}

// AssetInput carries the caller-supplied fields for a create or full-replace
// update. The registry owns id, createdAt and updatedAt; they never arrive
// from outside. Binding tags implement the edge validation; the registry
// itself performs no field checks.
type AssetInput struct {
	Name                string        `json:"name" binding:"required"`
	AccessionNumber     string        `json:"accessionNumber" binding:"required"`
	ModelType           string        `json:"modelType" binding:"required"`
	SerialNumber        string        `json:"serialNumber" binding:"required"`
	AssignedUser        string        `json:"assignedUser" binding:"required"`
	Department          string        `json:"department" binding:"required"`
	DateReceived        string        `json:"dateReceived" binding:"required"`
	Status              AssetStatus   `json:"status" binding:"required"`
	Category            AssetCategory `json:"category" binding:"required"`
	Notes               string        `json:"notes,omitempty"`
	ImageURL            string        `json:"imageUrl,omitempty"`
	Location            string        `json:"location,omitempty"`
	PurchasePrice       float64       `json:"purchasePrice,omitempty"`
	WarrantyExpiry      string        `json:"warrantyExpiry,omitempty"`
	Vendor              string        `json:"vendor,omitempty"`
	MaintenanceSchedule string        `json:"maintenanceSchedule,omitempty"`
	LastMaintenance     string        `json:"lastMaintenance,omitempty"`
}

// HistoryEntry is one immutable audit record. Entries are never mutated or
// removed, even when the referenced asset is gone.
type HistoryEntry struct {
	ID        string        `json:"id"`
	AssetID   string        `json:"assetId"`
	Action    HistoryAction `json:"action"`
	Changes   string        `json:"changes,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	User      string        `json:"user,omitempty"`
}

// Snapshot is the export-all document: both collections in insertion order.
type Snapshot struct {
	Assets  []Asset        `json:"assets"`
	History []HistoryEntry `json:"history"`
}

// Stats carries the dashboard aggregates.
type Stats struct {
	TotalAssets    int                   `json:"totalAssets"`
	ActiveAssets   int                   `json:"activeAssets"`
	BrokenAssets   int                   `json:"brokenAssets"`
	InRepairAssets int                   `json:"inRepairAssets"`
	ByCategory     map[AssetCategory]int `json:"byCategory"`
}
