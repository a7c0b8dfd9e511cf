package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orgbilling-service/internal/app"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}
	srv := app.NewServer()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err := srv.Init(initCtx)
	cancelInit()
	if err != nil {
		log.Printf("❌ Server failed to initialize: %v", err)
		_ = srv.Shutdown(context.Background())
		os.Exit(1)
	}

	// Run server in a separate goroutine so we can listen for shutdown signals
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Printf("❌ Server stopped: %v", err)
		}
	case <-quit:
		log.Println("🛑 Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown finished with errors: %v", err)
		os.Exit(1)
	}
	log.Println("✅ Server stopped gracefully")
}
