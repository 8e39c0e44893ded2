// Command sync runs a full recipient sync from the terminal, paginating
// through the folder listing the same way the dashboard does and printing
// the merged summary when the folder is exhausted.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/recipient-sync/internal/archive"
	"github.com/ignite/recipient-sync/internal/config"
	"github.com/ignite/recipient-sync/internal/drive"
	"github.com/ignite/recipient-sync/internal/recipient"
	"github.com/ignite/recipient-sync/internal/repository/postgres"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		folder     = flag.String("folder", "", "folder key to sync (default: configured default folder)")
		start      = flag.Int("start", 0, "listing index to start from")
		batch      = flag.Int("batch", 0, "files per run (0 = whole remaining listing)")
		runtimeS   = flag.Int("max-runtime", 0, "per-run budget in seconds (0 = configured default)")
	)
	flag.Parse()

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Database ping failed: %v", err)
	}

	driveClient, err := drive.NewClient(cfg.Drive)
	if err != nil {
		log.Fatalf("Failed to create Drive client: %v", err)
	}

	persister := recipient.NewPersister(
		postgres.NewRecipientRepo(db), cfg.Sync.RecipientBatchSize, cfg.Sync.InterBatchDelay())
	syncer := recipient.NewSyncer(
		driveClient,
		postgres.NewCampaignRepo(db),
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
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		merged recipient.Summary
		next   = *start
		first  = true
	)
	for {
		summary, err := syncer.Run(ctx, recipient.Options{
			StartIndex: next,
			BatchSize:  *batch,
			MaxRuntime: time.Duration(*runtimeS) * time.Second,
			Folder:     *folder,
		})
		if err != nil {
			log.Fatalf("Sync run failed: %v", err)
		}

		if first {
			merged = *summary
			first = false
		} else {
			merged = merged.Merge(*summary)
		}

		log.Printf("run complete: files %d-%d of %d, parsed=%d inserted=%d updated=%d",
			summary.ProcessedRange.Start, summary.ProcessedRange.End,
			summary.TotalFiles, summary.RecipientsParsed,
			summary.RecipientsInserted, summary.RecipientsUpdated)

		next = summary.ProcessedRange.End + 1
		if next >= summary.TotalFiles || summary.ProcessedFiles == 0 {
			break
		}
		if ctx.Err() != nil {
			log.Println("Interrupted; printing partial summary")
			break
		}
	}

	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode summary: %v", err)
	}
	os.Stdout.Write(append(out, '\n'))
}
