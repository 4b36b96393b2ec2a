package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/itam-dev/itam-store/pkg/schema"
)

// The two durable blobs. Each holds one full collection in insertion order.
const (
	assetsBlob  = "itam-assets.json"
	historyBlob = "itam-history.json"
)

// Persistence handles the disk I/O for the Registry.
type Persistence struct {
	DataDir string
	mu      sync.Mutex // Protects concurrent writes to the filesystem
}

// NewPersistence initializes a persistence handler.
func NewPersistence(dir string) (*Persistence, error) {
	// Ensure the data directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &Persistence{DataDir: dir}, nil
}

// SaveAssets rewrites the asset blob atomically.
func (p *Persistence) SaveAssets(assets []schema.Asset) error {
	if assets == nil {
		assets = []schema.Asset{}
	}
	return p.save(assetsBlob, assets)
}

// SaveHistory rewrites the history blob atomically.
func (p *Persistence) SaveHistory(history []schema.HistoryEntry) error {
	if history == nil {
		history = []schema.HistoryEntry{}
	}
	return p.save(historyBlob, history)
}

func (p *Persistence) save(name string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	filePath := filepath.Join(p.DataDir, name)
	tempPath := filePath + ".tmp"

	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	// Write to a temporary file first, then swap it in with an atomic rename.
	// If the power fails, the blob is either the old one or the new one,
	// never a torn write.
	if err := os.WriteFile(tempPath, bytes, 0644); err != nil {
		return err
	}
	return os.Rename(tempPath, filePath)
}

// LoadAssets returns the stored asset collection. A missing or unparseable
// blob degrades to the seed dataset; that condition is logged and never
// propagates past this point.
func (p *Persistence) LoadAssets() []schema.Asset {
	var assets []schema.Asset
	if ok := p.load(assetsBlob, &assets); !ok {
		return SeedAssets()
	}
	return assets
}

// LoadHistory returns the stored audit log, or an empty log when the blob is
// missing or unparseable.
func (p *Persistence) LoadHistory() []schema.HistoryEntry {
	var history []schema.HistoryEntry
	if ok := p.load(historyBlob, &history); !ok {
		return nil
	}
	return history
}

func (p *Persistence) load(name string, v any) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	content, err := os.ReadFile(filepath.Join(p.DataDir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			log.Printf("Warning: Could not read %s: %v", name, err)
		}
		return false
	}
	if err := json.Unmarshal(content, v); err != nil {
		log.Printf("Warning: Could not unmarshal %s, falling back to defaults: %v", name, err)
		return false
	}
	return true
}

// Open is the standard boot path: load both blobs (with their fallbacks) and
// hand them to a new registry instance.
func Open(dataDir, actor string) (*Registry, error) {
	p, err := NewPersistence(dataDir)
	if err != nil {
		return nil, fmt.Errorf("init persistence: %w", err)
	}
	return New(p.LoadAssets(), p.LoadHistory(), p, actor), nil
}
