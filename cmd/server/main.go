package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cognigames/roomserver/internal/registry"
	"github.com/cognigames/roomserver/internal/router"
	"github.com/cognigames/roomserver/internal/server"
)

const shutdownTimeout = 10 * time.Second

func main() {
	fmt.Println("Starting room coordinator...")

	config := server.NewConfigFromEnv()
	server.SetConfig(config)

	// Wire the core: one registry, one router fanning out through the hub.
	reg := registry.New()
	hub := server.NewHub()
	eventRouter := router.New(reg, hub)
	hub.Bind(eventRouter)

	api := server.NewAPI(hub, eventRouter, reg)
	mux := server.SetupRoutes(api)
	httpServer := server.CreateServer(config.Port, mux)

	go hub.Run()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case sig := <-stop:
		log.Printf("Received signal %v, shutting down", sig)
	}

	if err := server.ShutdownServer(httpServer, shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown incomplete: %v", err)
	}
	if err := hub.Shutdown(shutdownTimeout); err != nil {
		log.Printf("Hub shutdown incomplete: %v", err)
	}
}
