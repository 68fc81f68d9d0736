package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/AFatNiBBa/config-fs/internal/infrastructure/config"
	"github.com/AFatNiBBa/config-fs/internal/infrastructure/server"
)

func main() {
	cfg := config.LoadOrDefault()

	port := flag.String("port", cfg.Server.Port, "Server port")
	definition := flag.String("graph", cfg.Graph.Definition, "Graph definition file (.yaml or .json snapshot)")
	contextDir := flag.String("context", cfg.Graph.ContextDir, "Context directory for real-file delegates")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Graph.Definition = *definition
	cfg.Graph.ContextDir = *contextDir

	srv, err := server.New(cfg)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Println("shutting down gracefully")
		if err := srv.Close(); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
	case err := <-errChan:
		log.Fatalf("Server error: %v", err)
	}
}
