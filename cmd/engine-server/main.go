// Package main serves a single chess engine over the stateless exchange
// protocol: GET / for metadata, POST / for one move exchange.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"enginehost/internal/engines/randmover"
	"enginehost/internal/server"
)

const gracefulShutdownTimeout = time.Second * 5

func main() {
	var (
		apiHost = flag.String("api-host", "localhost", "API server host")
		apiPort = flag.Int("api-port", 8080, "API server port")
		dev     = flag.Bool("dev", false, "Development mode (relaxed rate limits)")
		pidPath = flag.String("pid", "", "Optional path to write PID file")
		pidLock = flag.Bool("pid-lock", false, "Lock PID file to allow only one instance (requires -pid)")
	)
	flag.Parse()

	if *pidLock && *pidPath == "" {
		log.Fatal("Error: -pid-lock flag requires the -pid flag to be set")
	}

	if *pidPath != "" {
		cleanup, err := managePIDFile(*pidPath, *pidLock)
		if err != nil {
			log.Fatalf("Failed to manage PID file: %v", err)
		}
		defer cleanup()
		log.Printf("PID file created at: %s (lock: %v)", *pidPath, *pidLock)
	}

	// One engine instance for the lifetime of the process. The host
	// serializes all exchanges against it.
	eng := randmover.New()
	host := server.NewHost[randmover.State, randmover.StatusInfo](eng)
	app := server.NewFiberApp(host, *dev)

	apiAddr := fmt.Sprintf("%s:%d", *apiHost, *apiPort)

	go func() {
		info := eng.Info()
		log.Printf("Engine Exchange Server starting...")
		log.Printf("Listening on: http://%s", apiAddr)
		log.Printf("Engine: %s (%s)", info.ID, info.Description)
		if *dev {
			log.Printf("Rate Limit: 20 requests/second per IP (DEV MODE)")
		} else {
			log.Printf("Rate Limit: 10 requests/second per IP")
		}
		log.Printf("Metadata: GET http://%s/", apiAddr)
		log.Printf("Exchange: POST http://%s/", apiAddr)
		log.Printf("Health: http://%s/health", apiAddr)

		if err := app.Listen(apiAddr); err != nil {
			log.Printf("API server listen error: %v", err)
		}
	}()

	// Wait for an interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
