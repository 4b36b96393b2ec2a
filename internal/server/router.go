// Package server exposes the asset registry over a line-oriented TCP protocol.
package server

import (
	"bufio"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/itam-dev/itam-store/pkg/schema"
	"github.com/itam-dev/itam-store/pkg/sdk"
)

type Router struct {
	store    sdk.AssetRegistry
	cert     *tls.Certificate
	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func NewRouter(s sdk.AssetRegistry) *Router {
	return &Router{store: s}
}

// SetCertificate sets the TLS certificate for the router
func (r *Router) SetCertificate(cert tls.Certificate) {
	r.cert = &cert
}

// Listen starts the TCP server
func (r *Router) Listen(port string) error {
	var listener net.Listener
	var err error

	if r.cert != nil {
		config := &tls.Config{Certificates: []tls.Certificate{*r.cert}}
		listener, err = tls.Listen("tcp", ":"+port, config)
	} else {
		listener, err = net.Listen("tcp", ":"+port)
	}
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.listener = listener
	r.mu.Unlock()
	defer listener.Close()

	semaphore := make(chan struct{}, 100) // Max 100 concurrent connections

	for {
		conn, err := listener.Accept()
		if err != nil {
			r.mu.Lock()
			closed := r.closed
			r.mu.Unlock()
			if closed {
				return nil
			}
			continue
		}

		// Set aggressive timeouts for light traffic to prevent resource exhaustion
		conn.SetDeadline(time.Now().Add(5 * time.Minute))

		go func(c net.Conn) {
			semaphore <- struct{}{}
			defer func() {
				<-semaphore
				c.Close()
			}()
			r.handleConnection(c)
		}(conn)
	}
}

// Addr reports the bound listener address, or nil before Listen succeeds.
// Callers passing port "0" use this to discover the picked port.
func (r *Router) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop closes the listener; in-flight connections finish on their own.
func (r *Router) Stop() {
	r.mu.Lock()
	r.closed = true
	if r.listener != nil {
		r.listener.Close()
	}
	r.mu.Unlock()
}

func (r *Router) handleConnection(conn net.Conn) {
	reader := bufio.NewReader(conn)

	for {
		// Set a deadline for the next command
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))

		line, err := reader.ReadString('\n')
		if err != nil {
			return // Connection closed or timeout
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		command, rest, _ := strings.Cut(line, " ")
		command = strings.ToUpper(command)
		rest = strings.TrimSpace(rest)

		switch command {
		case "LIST":
			assets, err := r.store.ListAssets()
			r.reply(conn, assets, err)

		case "GET":
			if rest == "" {
				continue
			}
			asset, err := r.store.GetAssetByID(rest)
			r.reply(conn, asset, err)

		case "ADD":
			var input schema.AssetInput
			if err := json.Unmarshal([]byte(rest), &input); err != nil {
				fmt.Fprintln(conn, "ERR invalid json value")
				continue
			}
			asset, err := r.store.AddAsset(input)
			r.reply(conn, asset, err)

		case "UPDATE":
			id, payload, ok := strings.Cut(rest, " ")
			if !ok {
				continue
			}
			var input schema.AssetInput
			if err := json.Unmarshal([]byte(payload), &input); err != nil {
				fmt.Fprintln(conn, "ERR invalid json value")
				continue
			}
			r.replyStatus(conn, r.store.UpdateAsset(id, input))

		case "DEL":
			if rest == "" {
				continue
			}
			r.replyStatus(conn, r.store.DeleteAsset(rest))

		case "BULK_DEL":
			var ids []string
			if err := json.Unmarshal([]byte(rest), &ids); err != nil {
				fmt.Fprintln(conn, "ERR invalid json value")
				continue
			}
			r.replyStatus(conn, r.store.BulkDeleteAssets(ids))

		case "BULK_STATUS":
			var input struct {
				IDs    []string           `json:"ids"`
				Status schema.AssetStatus `json:"status"`
			}
			if err := json.Unmarshal([]byte(rest), &input); err != nil {
				fmt.Fprintln(conn, "ERR invalid json value")
				continue
			}
			r.replyStatus(conn, r.store.BulkUpdateStatus(input.IDs, input.Status))

		case "HISTORY":
			if rest == "" {
				continue
			}
			entries, err := r.store.GetAssetHistory(rest)
			if entries == nil {
				entries = []schema.HistoryEntry{}
			}
			r.reply(conn, entries, err)

		case "AUDIT":
			entries, err := r.store.History()
			if entries == nil {
				entries = []schema.HistoryEntry{}
			}
			r.reply(conn, entries, err)

		case "STATS":
			stats, err := r.store.Stats()
			r.reply(conn, stats, err)

		case "EXPORT":
			snap, err := r.store.Snapshot()
			r.reply(conn, snap, err)

		case "IMPORT":
			var assets []schema.Asset
			if err := json.Unmarshal([]byte(rest), &assets); err != nil {
				fmt.Fprintln(conn, "ERR invalid json value")
				continue
			}
			r.replyStatus(conn, r.store.ReplaceAssets(assets))

		case "PING":
			fmt.Fprintln(conn, "PONG")

		case "QUIT":
			return
		}
	}
}

// reply sends "OK <json>" or "ERR <msg>". Marshaled JSON never contains raw
// newlines, so the response stays one line.
func (r *Router) reply(conn net.Conn, v any, err error) {
	if err != nil {
		fmt.Fprintln(conn, "ERR", err)
		return
	}
	res, err := json.Marshal(v)
	if err != nil {
		fmt.Fprintln(conn, "ERR internal error")
		return
	}
	fmt.Fprintln(conn, "OK", string(res))
}

func (r *Router) replyStatus(conn net.Conn, err error) {
	if err != nil {
		fmt.Fprintln(conn, "ERR", err)
		return
	}
	fmt.Fprintln(conn, "OK")
}
