package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-easyhunt/internal/api"
	"go-easyhunt/internal/config"
	"go-easyhunt/internal/pipeline"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	searcher, err := pipeline.NewLinkedInSearcher(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to build searcher: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: api.NewServer(searcher, cfg.Report.TopCompanies).Router(),
	}

	go func() {
		log.Printf("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Println("🛑 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Forced shutdown: %v", err)
	}
}
