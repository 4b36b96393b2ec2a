// Package sdk provides the client-side library for interacting with the ITAM
// store. It supports both remote connections via TCP/TLS and local embedded mode.
package sdk

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/itam-dev/itam-store/pkg/schema"
)

// Client is a remote client for the ITAM store.
// It implements the AssetRegistry interface.
type Client struct {
	addr   string
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex // Protects concurrent access to the connection
}

// Connect establishes a TLS-encrypted connection to a remote ITAM store daemon.
// If ITAM_DISABLE_TLS is set to "true", it falls back to plain TCP.
func Connect(addr string) (*Client, error) {
	c := &Client{addr: addr}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}

	var conn net.Conn
	var err error

	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 60 * time.Second,
	}

	if os.Getenv("ITAM_DISABLE_TLS") == "true" {
		conn, err = dialer.Dial("tcp", c.addr)
	} else {
		config := &tls.Config{
			InsecureSkipVerify: true, // We use self-signed certs for internal traffic
		}
		conn, err = tls.DialWithDialer(dialer, "tcp", c.addr, config)
	}

	if err != nil {
		return err
	}

	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Internal helper for TCP communication
func (c *Client) sendAndReceive(cmd string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	var resp string

	// Try up to 3 times with exponential backoff
	for i := 0; i < 3; i++ {
		// Ensure we have a connection
		if c.conn == nil {
			if reconnectErr := c.reconnect(); reconnectErr != nil {
				err = fmt.Errorf("reconnect failed: %w", reconnectErr)
				time.Sleep(time.Duration(i*100) * time.Millisecond)
				continue
			}
		}

		// Set deadlines for the operation
		c.conn.SetDeadline(time.Now().Add(30 * time.Second))

		_, err = fmt.Fprint(c.conn, cmd+"\n")
		if err == nil {
			resp, err = c.reader.ReadString('\n')
			if err == nil {
				resp = strings.TrimSpace(resp)
				if strings.HasPrefix(resp, "ERR") {
					msg := strings.TrimPrefix(resp, "ERR ")
					// Map the registry's sentinel back so errors.Is works
					// across the wire.
					if msg == ErrAssetNotFound.Error() {
						return "", ErrAssetNotFound
					}
					return "", fmt.Errorf("%s", msg)
				}
				return resp, nil
			}
		}

		// If we got here, there was an error communicating.
		fmt.Fprintf(os.Stderr, "[ITAM SDK] Attempt %d failed: %v. Reconnecting...\n", i+1, err)

		// Force a reconnect on the next iteration
		if closeErr := c.reconnect(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "[ITAM SDK] Reconnect attempt failed: %v\n", closeErr)
		}

		// Wait before retrying (exponential backoff)
		time.Sleep(time.Duration((i+1)*200) * time.Millisecond)
	}

	return "", fmt.Errorf("failed after 3 attempts. last error: %v", err)
}

func decodeOK[T any](resp string) (T, error) {
	var out T
	err := json.Unmarshal([]byte(strings.TrimPrefix(resp, "OK ")), &out)
	return out, err
}

func (c *Client) ListAssets() ([]schema.Asset, error) {
	resp, err := c.sendAndReceive("LIST")
	if err != nil {
		return nil, err
	}
	return decodeOK[[]schema.Asset](resp)
}

func (c *Client) GetAssetByID(id string) (schema.Asset, error) {
	resp, err := c.sendAndReceive(fmt.Sprintf("GET %s", id))
	if err != nil {
		return schema.Asset{}, err
	}
	return decodeOK[schema.Asset](resp)
}

func (c *Client) AddAsset(input schema.AssetInput) (schema.Asset, error) {
	payload, _ := json.Marshal(input)
	resp, err := c.sendAndReceive(fmt.Sprintf("ADD %s", payload))
	if err != nil {
		return schema.Asset{}, err
	}
	return decodeOK[schema.Asset](resp)
}

func (c *Client) UpdateAsset(id string, input schema.AssetInput) error {
	payload, _ := json.Marshal(input)
	_, err := c.sendAndReceive(fmt.Sprintf("UPDATE %s %s", id, payload))
	return err
}

func (c *Client) DeleteAsset(id string) error {
	_, err := c.sendAndReceive(fmt.Sprintf("DEL %s", id))
	return err
}

func (c *Client) BulkDeleteAssets(ids []string) error {
	payload, _ := json.Marshal(ids)
	_, err := c.sendAndReceive(fmt.Sprintf("BULK_DEL %s", payload))
	return err
}

func (c *Client) BulkUpdateStatus(ids []string, status schema.AssetStatus) error {
	payload, _ := json.Marshal(struct {
		IDs    []string           `json:"ids"`
		Status schema.AssetStatus `json:"status"`
	}{ids, status})
	_, err := c.sendAndReceive(fmt.Sprintf("BULK_STATUS %s", payload))
	return err
}

func (c *Client) GetAssetHistory(id string) ([]schema.HistoryEntry, error) {
	resp, err := c.sendAndReceive(fmt.Sprintf("HISTORY %s", id))
	if err != nil {
		return nil, err
	}
	return decodeOK[[]schema.HistoryEntry](resp)
}

func (c *Client) History() ([]schema.HistoryEntry, error) {
	resp, err := c.sendAndReceive("AUDIT")
	if err != nil {
		return nil, err
	}
	return decodeOK[[]schema.HistoryEntry](resp)
}

func (c *Client) Snapshot() (schema.Snapshot, error) {
	resp, err := c.sendAndReceive("EXPORT")
	if err != nil {
		return schema.Snapshot{}, err
	}
	return decodeOK[schema.Snapshot](resp)
}

func (c *Client) ReplaceAssets(assets []schema.Asset) error {
	if assets == nil {
		assets = []schema.Asset{}
	}
	payload, _ := json.Marshal(assets)
	_, err := c.sendAndReceive(fmt.Sprintf("IMPORT %s", payload))
	return err
}

func (c *Client) Stats() (schema.Stats, error) {
	resp, err := c.sendAndReceive("STATS")
	if err != nil {
		return schema.Stats{}, err
	}
	return decodeOK[schema.Stats](resp)
}

// Ping checks liveness of the daemon.
func (c *Client) Ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		if err := c.reconnect(); err != nil {
			return err
		}
	}
	c.conn.SetDeadline(time.Now().Add(10 * time.Second))
	if _, err := fmt.Fprint(c.conn, "PING\n"); err != nil {
		return err
	}
	resp, err := c.reader.ReadString('\n')
	if err != nil {
		return err
	}
	if strings.TrimSpace(resp) != "PONG" {
		return fmt.Errorf("unexpected ping response %q", resp)
	}
	return nil
}

func (c *Client) Close() error {
	fmt.Fprintln(c.conn, "QUIT")
	return c.conn.Close()
}
