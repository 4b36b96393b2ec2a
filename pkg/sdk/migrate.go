package sdk

import "fmt"

// Migrate copies the asset collection from a source store into a destination
// store. This works for:
// - Embedded -> Remote (moving a local inventory onto the daemon)
// - Remote -> Embedded (taking an offline backup)
// The copy uses the import escape hatch, so the destination's audit log is
// not polluted with synthetic "created" entries.
func Migrate(src Snapshotter, dst Snapshotter) error {
	snap, err := src.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot source: %w", err)
	}

	if err := dst.ReplaceAssets(snap.Assets); err != nil {
		return fmt.Errorf("failed to import into destination: %w", err)
	}
	return nil
}
