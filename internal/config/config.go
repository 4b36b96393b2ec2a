// Package config holds the daemon's environment-driven settings.
package config

import "os"

var (
	// DataDir is where the two durable blobs live.
	DataDir string
	// Port is the TCP protocol port.
	Port string
	// HTTPPort is the management API port.
	HTTPPort string
	// DisableTLS turns off the self-signed TLS on the TCP listener.
	DisableTLS bool
	// Actor is the attribution string written into history entries.
	Actor string
)

// LoadConfig reads the environment. Call godotenv.Load first if a .env file
// should participate.
func LoadConfig() {
	DataDir = os.Getenv("ITAM_DATA_DIR")
	if DataDir == "" {
		DataDir = "./data"
	}

	Port = os.Getenv("ITAM_PORT")
	if Port == "" {
		Port = "7101"
	}

	HTTPPort = os.Getenv("ITAM_HTTP_PORT")
	if HTTPPort == "" {
		HTTPPort = "7102"
	}

	DisableTLS = os.Getenv("ITAM_DISABLE_TLS") == "true"

	Actor = os.Getenv("ITAM_ACTOR")
}
