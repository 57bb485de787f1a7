package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/glennDGreatest/CasaLink-sub000/internal/config"
	"github.com/glennDGreatest/CasaLink-sub000/internal/monitoring"
	"github.com/glennDGreatest/CasaLink-sub000/internal/service"
	"github.com/glennDGreatest/CasaLink-sub000/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.Load()
	var (
		httpPort  = flag.Int("http-port", cfg.HTTPPort, "Port for health checks and metrics")
		dbHost    = flag.String("db-host", cfg.DBHost, "Database host")
		dbPort    = flag.Int("db-port", cfg.DBPort, "Database port")
		dbUser    = flag.String("db-user", cfg.DBUser, "Database user")
		dbPass    = flag.String("db-pass", cfg.DBPass, "Database password")
		dbName    = flag.String("db-name", cfg.DBName, "Database name")
		redisAddr = flag.String("redis-addr", cfg.RedisAddr, "Redis address (empty disables caching)")
		sweepTick = flag.Duration("sweep-tick", time.Hour, "Billing sweep interval")
	)
	flag.Parse()

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		*dbHost, *dbPort, *dbUser, *dbPass, *dbName)

	st, err := store.New(dsn, *redisAddr)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer st.Close()

	monitoring.InitMetrics()

	billing := service.NewBillingService(st.Leases, st.Bills, st.Settings)
	var marker service.Marker
	if m := st.Marker(); m != nil {
		marker = m
	}
	scheduler := service.NewScheduler(billing, st.Settings, st.Runs, marker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().Msg("Starting CasaLink billing worker")
	go scheduler.Run(ctx, *sweepTick)

	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		httpServer := &http.Server{
			Addr:    fmt.Sprintf(":%d", *httpPort),
			Handler: mux,
		}

		log.Info().Msgf("HTTP server for health checks and metrics started on port %d", *httpPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down worker...")

	cancel()
	log.Info().Msg("Worker exiting")
}
