package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ignite/recipient-sync/internal/api"
	"github.com/ignite/recipient-sync/internal/archive"
	"github.com/ignite/recipient-sync/internal/config"
	"github.com/ignite/recipient-sync/internal/drive"
	"github.com/ignite/recipient-sync/internal/recipient"
	"github.com/ignite/recipient-sync/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required (campaign + recipient tables)")
	}
	log.Printf("DB URL host portion: ...@%s/...", extractHost(cfg.Database.URL))
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		cancelPing()
		log.Fatalf("Database ping failed: %v", err)
	}
	cancelPing()

	driveClient, err := drive.NewClient(cfg.Drive)
	if err != nil {
		log.Fatalf("Failed to create Drive client: %v", err)
	}

	campaigns := postgres.NewCampaignRepo(db)
	recipients := postgres.NewRecipientRepo(db)
	persister := recipient.NewPersister(recipients, cfg.Sync.RecipientBatchSize, cfg.Sync.InterBatchDelay())

	syncer := recipient.NewSyncer(
		driveClient,
		campaigns,
		persister,
		cfg.Drive.Folders,
		cfg.Drive.DefaultFolder,
		cfg.Sync.MaxRuntime(),
		cfg.Sync.InterFileDelay(),
	)

	if cfg.Archive.Enabled {
		arch, err := archive.NewS3Archive(context.Background(), cfg.Archive.S3Bucket, cfg.Archive.S3Region)
		if err != nil {
			log.Printf("Warning: S3 archive disabled: %v", err)
		} else {
			syncer.SetArchiver(arch)
			log.Printf("S3 archive enabled: bucket=%s region=%s", cfg.Archive.S3Bucket, cfg.Archive.S3Region)
		}
	}

	var sessions *api.SessionStore
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Printf("Warning: Redis unreachable at %s, session folding disabled: %v", cfg.Redis.Addr, err)
		} else {
			sessions = api.NewSessionStore(rdb)
			log.Printf("Session store enabled: redis=%s", cfg.Redis.Addr)
		}
	}

	server := api.NewServer(syncer, sessions)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe(fmt.Sprintf("%s:%d", host, port))
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("Server error: %v", err)
	case sig := <-sigCh:
		log.Printf("Received %v, shutting down...", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}
}
