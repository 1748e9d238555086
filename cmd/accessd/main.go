package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"google.golang.org/grpc"

	"sentra.org/internal/access"
	"sentra.org/internal/audit"
	"sentra.org/internal/config"
	"sentra.org/internal/httpapi"
	"sentra.org/internal/obs"
	"sentra.org/internal/session"
)

var version = "0.3.1"

func main() {
	loadLocalEnv()
	obs.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Optional DB connection so /readyz can ping it. The access core itself
	// is in-memory; persistence belongs to the surrounding application.
	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	issuer, err := session.NewIssuer(cfg.SessionSecret,
		session.WithIssuer(cfg.SessionIssuer),
		session.WithLifetime(cfg.SessionLifetime),
	)
	if err != nil {
		log.Fatalf("session issuer: %v", err)
	}

	managerOpts := []access.ManagerOption{}
	if cfg.BootstrapAdminPassword != "" {
		managerOpts = append(managerOpts, access.WithBootstrapAdmin(access.BootstrapAdmin{
			Username: cfg.BootstrapAdminUsername,
			Email:    cfg.BootstrapAdminEmail,
			Password: cfg.BootstrapAdminPassword,
		}))
	}
	if cfg.IsDevelopment() {
		managerOpts = append(managerOpts, access.WithInsecureBootstrap())
	}

	manager, err := access.NewManager(issuer, audit.NewLog(), managerOpts...)
	if err != nil {
		log.Fatalf("access manager: %v", err)
	}

	probe := httpapi.ReadyProbe{DB: db}
	api := httpapi.New(manager, probe, version)

	srv := &http.Server{
		Addr:              cfg.HTTPAddress(),
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting sentra-access %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	var grpcServer *grpc.Server
	if addr := cfg.GRPCAddress(); addr != "" {
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcServer = grpc.NewServer()
		httpapi.RegisterGRPC(grpcServer, probe)
		log.Printf("gRPC health on %s", addr)
		go func() {
			if err := grpcServer.Serve(listener); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
