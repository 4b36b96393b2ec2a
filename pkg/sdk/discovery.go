package sdk

import (
	"os"

	"github.com/itam-dev/itam-store/internal/registry"
)

// New initializes the store based on the environment.
// It returns the interface, so the app doesn't care if it's local or remote.
func New(dataDir string) (AssetRegistry, error) {
	// 1. Check if a remote store is defined in environment variables
	remoteAddr := os.Getenv("ITAM_STORE_ADDR")

	if remoteAddr != "" {
		// Attempt to connect to the network service
		client, err := Connect(remoteAddr)
		if err == nil {
			return client, nil
		}
		// If the connection fails, fall back to local
	}

	// 2. Fallback to embedded mode.
	// This uses the same registry the daemon uses, but inside the app process.
	reg, err := registry.Open(dataDir, "")
	if err != nil {
		return nil, err
	}
	return reg, nil
}
