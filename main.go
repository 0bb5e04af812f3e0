package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"static-url-vetting/config"
	"static-url-vetting/vetting"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Printf("⚠️ %v (using defaults)", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := vetting.NewMetrics(reg)

	analyzer := vetting.NewAnalyzer(vetting.NewWhoisAgeResolver(cfg.WhoisTimeout), cfg.WhoisTimeout, metrics)
	handler := vetting.NewHandler(analyzer)

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: handler.Routes(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), cfg.RequestTimeout),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Printf("✅ static url vetting service listening on %s\n", srv.Addr)
	log.Println("📍 Endpoints:")
	log.Println("   GET  /                - API info")
	log.Println("   GET  /health          - Health check")
	log.Println("   POST /analyze/static  - Static URL analysis")
	log.Println("   GET  /metrics         - Prometheus metrics")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}
}
