package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/itam-dev/itam-store/internal/registry"
	"github.com/itam-dev/itam-store/pkg/schema"
)

func startTestRouter(t *testing.T) (*Router, *registry.Registry, string) {
	t.Helper()
	reg := registry.New(nil, nil, nil, "")
	router := NewRouter(reg)

	// Let Router.Listen use ":0" to get a random port
	go router.Listen("0")

	var port string
	for i := 0; i < 10; i++ {
		time.Sleep(50 * time.Millisecond)
		router.mu.Lock()
		if router.listener != nil {
			port = fmt.Sprintf("%d", router.listener.Addr().(*net.TCPAddr).Port)
			router.mu.Unlock()
			break
		}
		router.mu.Unlock()
	}
	if port == "" {
		t.Fatalf("Server did not start in time")
	}
	return router, reg, port
}

func sampleInputJSON() string {
	in := schema.AssetInput{
		Name:            "Dell X",
		AccessionNumber: "ACC-LPT-010",
		ModelType:       "Latitude",
		SerialNumber:    "SN-010",
		AssignedUser:    "Andi",
		Department:      "IT",
		DateReceived:    "2024-03-01",
		Status:          schema.StatusActive,
		Category:        schema.CategoryLaptop,
	}
	b, _ := json.Marshal(in)
	return string(b)
}

func TestRouter_TCP_Commands(t *testing.T) {
	router, _, port := startTestRouter(t)
	defer router.Stop()

	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// Test PING
	fmt.Fprintf(conn, "PING\n")
	line, _ := reader.ReadString('\n')
	if line != "PONG\n" {
		t.Errorf("Expected PONG, got %q", line)
	}

	// Test ADD
	fmt.Fprintf(conn, "ADD %s\n", sampleInputJSON())
	line, _ = reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK ") {
		t.Fatalf("Expected OK with asset, got %q", line)
	}
	var created schema.Asset
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "OK ")), &created); err != nil {
		t.Fatalf("ADD response is not an asset: %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected an assigned id")
	}

	// Test GET
	fmt.Fprintf(conn, "GET %s\n", created.ID)
	line, _ = reader.ReadString('\n')
	if !strings.HasPrefix(line, "OK ") || !strings.Contains(line, created.ID) {
		t.Errorf("Expected the created asset, got %q", line)
	}

	// Test HISTORY
	fmt.Fprintf(conn, "HISTORY %s\n", created.ID)
	line, _ = reader.ReadString('\n')
	var entries []schema.HistoryEntry
	json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "OK ")), &entries)
	if len(entries) != 1 || entries[0].Action != schema.ActionCreated {
		t.Errorf("Expected one created entry, got %q", line)
	}

	// Test DEL
	fmt.Fprintf(conn, "DEL %s\n", created.ID)
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Errorf("Expected OK, got %q", line)
	}

	// Test GET after DEL
	fmt.Fprintf(conn, "GET %s\n", created.ID)
	line, _ = reader.ReadString('\n')
	if len(line) < 3 || line[:3] != "ERR" {
		t.Errorf("Expected ERR, got %q", line)
	}
}

func TestRouter_BulkAndExport(t *testing.T) {
	router, reg, port := startTestRouter(t)
	defer router.Stop()

	var in schema.AssetInput
	json.Unmarshal([]byte(sampleInputJSON()), &in)
	a, _ := reg.AddAsset(in)
	b, _ := reg.AddAsset(in)

	conn, err := net.Dial("tcp", "127.0.0.1:"+port)
	if err != nil {
		t.Fatalf("Failed to dial: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Status change with a space in the value; the payload is one JSON blob.
	fmt.Fprintf(conn, "BULK_STATUS {\"ids\":[%q],\"status\":\"Dalam Perbaikan\"}\n", a.ID)
	line, _ := reader.ReadString('\n')
	if line != "OK\n" {
		t.Fatalf("Expected OK, got %q", line)
	}
	got, _ := reg.GetAssetByID(a.ID)
	if got.Status != schema.StatusUnderRepair {
		t.Errorf("Expected Dalam Perbaikan, got %q", got.Status)
	}

	// BULK_DEL with one ghost id
	fmt.Fprintf(conn, "BULK_DEL [%q,\"ghost\"]\n", b.ID)
	line, _ = reader.ReadString('\n')
	if line != "OK\n" {
		t.Fatalf("Expected OK, got %q", line)
	}
	assets, _ := reg.ListAssets()
	if len(assets) != 1 {
		t.Errorf("Expected 1 remaining asset, got %d", len(assets))
	}

	// EXPORT returns the full snapshot
	fmt.Fprintf(conn, "EXPORT\n")
	line, _ = reader.ReadString('\n')
	var snap schema.Snapshot
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "OK ")), &snap); err != nil {
		t.Fatalf("EXPORT is not a snapshot: %v (%q)", err, line)
	}
	if len(snap.Assets) != 1 {
		t.Errorf("Expected 1 asset in snapshot, got %d", len(snap.Assets))
	}
}

func TestRouter_MalformedCommands(t *testing.T) {
	router, _, port := startTestRouter(t)
	defer router.Stop()

	conn, _ := net.Dial("tcp", "127.0.0.1:"+port)
	defer conn.Close()
	reader := bufio.NewReader(conn)

	// Case 1: Incomplete command
	fmt.Fprintf(conn, "UPDATE onlyid\n")

	// Case 2: Malformed JSON payload
	fmt.Fprintf(conn, "ADD {invalid}\n")

	// Flush with a valid command and check response
	fmt.Fprintf(conn, "PING\n")

	// We read until we find PONG. We might get "ERR invalid json value" first.
	foundPong := false
	for i := 0; i < 3; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if line == "PONG\n" {
			foundPong = true
			break
		}
	}
	if !foundPong {
		t.Error("Did not receive PONG")
	}
}

func TestRouter_ConcurrentConnections(t *testing.T) {
	router, _, port := startTestRouter(t)
	defer router.Stop()

	// Try to open more connections than the semaphore allows
	conns := make([]net.Conn, 0)
	for i := 0; i < 110; i++ {
		conn, err := net.DialTimeout("tcp", "127.0.0.1:"+port, 100*time.Millisecond)
		if err == nil {
			conns = append(conns, conn)
		}
	}

	for _, c := range conns {
		c.Close()
	}
}
