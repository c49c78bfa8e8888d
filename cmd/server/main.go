package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"birthdayReminderTracker/internal/auth"
	"birthdayReminderTracker/internal/config"
	"birthdayReminderTracker/internal/db"
	"birthdayReminderTracker/internal/httpapi"
	"birthdayReminderTracker/internal/monitoring"
	"birthdayReminderTracker/internal/obs"
	"birthdayReminderTracker/repository"
)

func main() {
	startedAt := time.Now()

	// Load configuration
	if err := config.LoadDotenv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg, err := config.LoadWithDefaults()
	if err == nil && cfg.IsProduction() {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.Auth.JWTSecret == config.DevJWTSecret {
		log.Printf("warning: JWT_SECRET is not set, using the development secret")
	}
	log.Printf("Configuration loaded: %v", cfg)
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Open DB
	d, g, err := db.OpenGorm(cfg.DB.Path)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			log.Printf("close db: %v", err)
		}
	}()
	d.SetMaxOpenConns(cfg.DB.MaxOpenConns)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, obs.TracerConfig{
		ServiceName: cfg.Trace.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Env,
		Endpoint:    cfg.Trace.OTLPEndpoint,
	})
	if err != nil {
		log.Fatalf("init tracer: %v", err)
	}

	users := repository.NewUserRepository(g)
	birthdays := repository.NewBirthdayRepository(g)

	srv, err := httpapi.NewServer(httpapi.Options{
		Users:       users,
		Birthdays:   birthdays,
		Tokens:      auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
		Monitor:     monitoring.NewService(startedAt, cfg.App.Version, d, users, birthdays),
		Location:    loc,
		CORSOrigins: cfg.HTTP.CORSOrigins,
	})
	if err != nil {
		log.Fatalf("build server: %v", err)
	}

	// Start HTTP
	shutdown, addr, err := srv.Start(cfg.HTTP.Address)
	if err != nil {
		log.Fatalf("start http: %v", err)
	}
	log.Printf("HTTP server listening on %s", addr)

	// Wait for signal
	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown error: %v", err)
	}
}
