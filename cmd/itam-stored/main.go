package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itam-dev/itam-store/internal/api"
	"github.com/itam-dev/itam-store/internal/config"
	"github.com/itam-dev/itam-store/internal/registry"
	"github.com/itam-dev/itam-store/internal/server"
	"github.com/itam-dev/itam-store/internal/vault"
)

func main() {
	fmt.Println("Starting ITAM Store Daemon...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it")
	}
	config.LoadConfig()

	// 1. Load existing blobs (or the seed) and start the registry
	reg, err := registry.Open(config.DataDir, config.Actor)
	if err != nil {
		log.Fatalf("Failed to open registry: %v", err)
	}
	assets, _ := reg.ListAssets()
	fmt.Printf("Registry started. Loaded %d assets.\n", len(assets))

	// 2. Observability: mutation counters and the live change feed
	metrics := api.NewMetrics(prometheus.DefaultRegisterer)
	go metrics.ObserveRegistry(reg.Subscribe())

	hub := api.NewHub(metrics)
	go hub.Run(reg.Subscribe())

	// 3. Initialize the TCP router
	router := server.NewRouter(reg)

	if !config.DisableTLS {
		fmt.Println("Generating self-signed certificate for internal TLS...")
		cert, err := vault.GenerateSelfSignedCert()
		if err != nil {
			log.Fatalf("Failed to generate TLS certificate: %v", err)
		}
		router.SetCertificate(cert)
		fmt.Println("TLS encryption enabled.")
	} else {
		fmt.Println("TLS encryption disabled (ITAM_DISABLE_TLS=true).")
	}

	// 4. Initialize the HTTP API
	h := &api.Handler{Registry: reg}
	r := gin.Default()
	r.Use(metrics.Middleware())

	// CORS
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	h.Register(r.Group("/api"))
	r.GET("/ws", hub.ServeWS)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 5. Start servers
	go func() {
		fmt.Printf("HTTP API listening on :%s\n", config.HTTPPort)
		if err := r.Run(":" + config.HTTPPort); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// 6. Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutdown signal received. Finalizing disk writes...")
		router.Stop()
		if err := reg.Close(); err != nil {
			log.Printf("Flush on shutdown failed: %v", err)
		}
		fmt.Println("Persistence complete. Exiting.")
		os.Exit(0)
	}()

	// 7. Start the TCP server
	fmt.Printf("ITAM registry listening on :%s (TCP)\n", config.Port)
	err = router.Listen(config.Port)
	if err != nil {
		select {
		case <-sigChan:
		default:
			log.Fatalf("TCP Server failed: %v", err)
		}
	}
}
