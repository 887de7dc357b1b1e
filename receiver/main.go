package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/itohio/badgelab/pkg/config"
	"github.com/itohio/badgelab/pkg/journal"
	"github.com/itohio/badgelab/pkg/link"
)

func main() {
	var (
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		listenFlag = flag.String("listen", "", "UDP listen address override (e.g., :4210)")
		httpFlag   = flag.String("http", "", "HTTP address override (e.g., :8080)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *listenFlag != "" {
		cfg.Link.ListenAddr = *listenFlag
	}
	if *httpFlag != "" {
		cfg.Receiver.HTTPAddr = *httpFlag
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := link.Listen(ctx, cfg.Link.ListenAddr, 0)
	if err != nil {
		log.Fatalf("Failed to listen for badges: %v", err)
	}
	defer listener.Close()
	log.Printf("Receiver ready on %s", listener.Addr())

	j := journal.New(cfg.Receiver.History)

	consumed := make(chan struct{})
	go func() {
		defer close(consumed)
		j.Consume(ctx, listener.Packets())
	}()

	root := chi.NewRouter()
	root.Use(middleware.Logger)
	root.Mount("/", j.Router())

	srv := &http.Server{
		Addr:              cfg.Receiver.HTTPAddr,
		Handler:           root,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Printf("Journal API on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	<-consumed
}
