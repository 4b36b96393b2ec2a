package sdk_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/itam-dev/itam-store/internal/registry"
	"github.com/itam-dev/itam-store/internal/server"
	"github.com/itam-dev/itam-store/pkg/schema"
	"github.com/itam-dev/itam-store/pkg/sdk"
)

func sampleInput(name string) schema.AssetInput {
	return schema.AssetInput{
		Name:            name,
		AccessionNumber: "ACC-SDK-001",
		ModelType:       "Test Model",
		SerialNumber:    "SN-SDK-001",
		AssignedUser:    "Tester",
		Department:      "QA",
		DateReceived:    "2024-01-01",
		Status:          schema.StatusActive,
		Category:        schema.CategoryLaptop,
	}
}

// startDaemon boots a plain-TCP router over an in-memory registry and returns
// its address.
func startDaemon(t *testing.T) (*server.Router, *registry.Registry, string) {
	t.Helper()
	reg := registry.New(nil, nil, nil, "")
	router := server.NewRouter(reg)
	go router.Listen("0")

	for i := 0; i < 20; i++ {
		if addr := router.Addr(); addr != nil {
			return router, reg, addr.String()
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatal("Server did not start in time")
	return nil, nil, ""
}

func TestClientRoundTrip(t *testing.T) {
	t.Setenv("ITAM_DISABLE_TLS", "true")

	router, _, addr := startDaemon(t)
	defer router.Stop()

	client, err := sdk.Connect(addr)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := client.Ping(); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}

	created, err := client.AddAsset(sampleInput("Remote Laptop"))
	if err != nil {
		t.Fatalf("AddAsset failed: %v", err)
	}
	if created.ID == "" || !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Errorf("Unexpected created asset: %+v", created)
	}

	got, err := client.GetAssetByID(created.ID)
	if err != nil {
		t.Fatalf("GetAssetByID failed: %v", err)
	}
	if got.Name != "Remote Laptop" {
		t.Errorf("Expected Remote Laptop, got %q", got.Name)
	}

	if err := client.BulkUpdateStatus([]string{created.ID}, schema.StatusUnderRepair); err != nil {
		t.Fatalf("BulkUpdateStatus failed: %v", err)
	}
	got, _ = client.GetAssetByID(created.ID)
	if got.Status != schema.StatusUnderRepair {
		t.Errorf("Expected Dalam Perbaikan, got %q", got.Status)
	}

	entries, err := client.GetAssetHistory(created.ID)
	if err != nil {
		t.Fatalf("GetAssetHistory failed: %v", err)
	}
	if len(entries) != 2 || entries[0].Action != schema.ActionUpdated {
		t.Errorf("Expected updated entry newest-first, got %+v", entries)
	}

	if err := client.DeleteAsset(created.ID); err != nil {
		t.Fatalf("DeleteAsset failed: %v", err)
	}
	if _, err := client.GetAssetByID(created.ID); !errors.Is(err, sdk.ErrAssetNotFound) {
		t.Errorf("Expected ErrAssetNotFound across the wire, got %v", err)
	}
}

func TestMigrateEmbeddedToRemote(t *testing.T) {
	t.Setenv("ITAM_DISABLE_TLS", "true")

	router, remoteReg, addr := startDaemon(t)
	defer router.Stop()

	local := registry.New(nil, nil, nil, "")
	for i := 0; i < 3; i++ {
		local.AddAsset(sampleInput(fmt.Sprintf("Asset %d", i)))
	}

	client, err := sdk.Connect(addr)
	if err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	if err := sdk.Migrate(local, client); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}

	assets, _ := remoteReg.ListAssets()
	if len(assets) != 3 {
		t.Errorf("Expected 3 migrated assets, got %d", len(assets))
	}
	// The import path writes no audit entries on the destination.
	entries, _ := remoteReg.History()
	if len(entries) != 0 {
		t.Errorf("Migration must not fabricate history, got %d entries", len(entries))
	}
}

func TestDiscoveryFallsBackToEmbedded(t *testing.T) {
	t.Setenv("ITAM_STORE_ADDR", "")
	dir := t.TempDir()

	store, err := sdk.New(dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Embedded mode starts from the seed dataset.
	assets, err := store.ListAssets()
	if err != nil {
		t.Fatalf("ListAssets failed: %v", err)
	}
	if len(assets) == 0 {
		t.Error("Expected the seed dataset in a fresh data dir")
	}
}
