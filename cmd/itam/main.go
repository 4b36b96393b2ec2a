package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/itam-dev/itam-store/internal/vault"
	"github.com/itam-dev/itam-store/pkg/schema"
	"github.com/itam-dev/itam-store/pkg/sdk"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		return
	}

	addr := os.Getenv("ITAM_STORE_ADDR")
	if addr == "" {
		addr = "localhost:7101"
	}

	client, err := sdk.Connect(addr)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", addr, err)
	}
	defer client.Close()

	command := strings.ToUpper(os.Args[1])
	args := os.Args[2:]

	switch command {
	case "LIST":
		assets, err := client.ListAssets()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(assets)

	case "GET":
		if len(args) < 1 {
			log.Fatal("Usage: itam GET <id>")
		}
		asset, err := client.GetAssetByID(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(asset)

	case "ADD":
		if len(args) < 1 {
			log.Fatal("Usage: itam ADD <asset-json>")
		}
		var input schema.AssetInput
		if err := json.Unmarshal([]byte(args[0]), &input); err != nil {
			log.Fatalf("Invalid asset JSON: %v", err)
		}
		asset, err := client.AddAsset(input)
		if err != nil {
			log.Fatal(err)
		}
		printJSON(asset)

	case "UPDATE":
		if len(args) < 2 {
			log.Fatal("Usage: itam UPDATE <id> <asset-json>")
		}
		var input schema.AssetInput
		if err := json.Unmarshal([]byte(args[1]), &input); err != nil {
			log.Fatalf("Invalid asset JSON: %v", err)
		}
		if err := client.UpdateAsset(args[0], input); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "DEL":
		if len(args) < 1 {
			log.Fatal("Usage: itam DEL <id> [<id>...]")
		}
		if len(args) == 1 {
			err = client.DeleteAsset(args[0])
		} else {
			err = client.BulkDeleteAssets(args)
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "STATUS":
		if len(args) < 2 {
			log.Fatal("Usage: itam STATUS <status> <id> [<id>...]")
		}
		if err := client.BulkUpdateStatus(args[1:], schema.AssetStatus(args[0])); err != nil {
			log.Fatal(err)
		}
		fmt.Println("OK")

	case "HISTORY":
		if len(args) < 1 {
			log.Fatal("Usage: itam HISTORY <id>")
		}
		entries, err := client.GetAssetHistory(args[0])
		if err != nil {
			log.Fatal(err)
		}
		printJSON(entries)

	case "AUDIT":
		entries, err := client.History()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(entries)

	case "STATS":
		stats, err := client.Stats()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(stats)

	case "EXPORT":
		snap, err := client.Snapshot()
		if err != nil {
			log.Fatal(err)
		}
		printJSON(snap)

	case "IMPORT":
		if len(args) < 1 {
			log.Fatal("Usage: itam IMPORT <file.json>")
		}
		content, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		var assets []schema.Asset
		if err := json.Unmarshal(content, &assets); err != nil {
			log.Fatalf("Invalid import document: %v", err)
		}
		if err := client.ReplaceAssets(assets); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Imported %d assets\n", len(assets))

	case "BACKUP":
		if len(args) < 2 {
			log.Fatal("Usage: itam BACKUP <file> <passphrase>")
		}
		snap, err := client.Snapshot()
		if err != nil {
			log.Fatal(err)
		}
		plain, err := json.Marshal(snap)
		if err != nil {
			log.Fatal(err)
		}
		sealed, err := vault.Encrypt(string(plain), vault.DeriveKey(args[1]))
		if err != nil {
			log.Fatalf("Encryption failed: %v", err)
		}
		if err := os.WriteFile(args[0], []byte(sealed), 0600); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Encrypted backup written to %s (%d assets)\n", args[0], len(snap.Assets))

	case "RESTORE":
		if len(args) < 2 {
			log.Fatal("Usage: itam RESTORE <file> <passphrase>")
		}
		sealed, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatal(err)
		}
		plain, err := vault.Decrypt(string(sealed), vault.DeriveKey(args[1]))
		if err != nil {
			log.Fatalf("Decryption failed: %v", err)
		}
		var snap schema.Snapshot
		if err := json.Unmarshal([]byte(plain), &snap); err != nil {
			log.Fatalf("Invalid backup document: %v", err)
		}
		if err := client.ReplaceAssets(snap.Assets); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Restored %d assets\n", len(snap.Assets))

	case "PING":
		if err := client.Ping(); err != nil {
			log.Fatal(err)
		}
		fmt.Println("PONG")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
	}
}

func printUsage() {
	fmt.Println("ITAM CLI - Interface for itam-store")
	fmt.Println("\nUsage:")
	fmt.Println("  itam LIST")
	fmt.Println("  itam GET <id>")
	fmt.Println("  itam ADD <asset-json>")
	fmt.Println("  itam UPDATE <id> <asset-json>")
	fmt.Println("  itam DEL <id> [<id>...]")
	fmt.Println("  itam STATUS <status> <id> [<id>...]")
	fmt.Println("  itam HISTORY <id>")
	fmt.Println("  itam AUDIT")
	fmt.Println("  itam STATS")
	fmt.Println("  itam EXPORT")
	fmt.Println("  itam IMPORT <file.json>")
	fmt.Println("  itam BACKUP <file> <passphrase>")
	fmt.Println("  itam RESTORE <file> <passphrase>")
	fmt.Println("  itam PING")
	fmt.Println("\nEnvironment Variables:")
	fmt.Println("  ITAM_STORE_ADDR    Address of the store (default: localhost:7101)")
	fmt.Println("  ITAM_DISABLE_TLS   Set to true to disable TLS")
}

func printJSON(v any) {
	bytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(bytes))
}
