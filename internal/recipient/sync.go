package recipient

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/recipient-sync/internal/config"
	"github.com/ignite/recipient-sync/internal/drive"
	"github.com/ignite/recipient-sync/internal/pkg/logger"
)

// FileStore is the remote file-store contract the coordinator consumes.
// *drive.Client satisfies it.
type FileStore interface {
	ListFilesInFolder(ctx context.Context, folderID string) ([]drive.File, error)
	DownloadFile(ctx context.Context, f drive.File) (string, error)
}

// Archiver receives the raw bytes of each successfully downloaded file.
// Archiving is best-effort; failures are logged, never fatal.
type Archiver interface {
	Store(ctx context.Context, folderKey, fileName string, content []byte) error
}

// Options controls one coordinator run. Zero values mean: start at the
// beginning, process all remaining files, use the configured default runtime
// budget and folder.
type Options struct {
	StartIndex int           `json:"start_index"`
	BatchSize  int           `json:"batch_size"`
	MaxRuntime time.Duration `json:"-"`
	Folder     string        `json:"folder"`
}

// Syncer orchestrates one sync pass: list, slice, match, download, parse,
// persist. It holds no mutable state between runs; resumability is purely
// the caller re-supplying ProcessedRange.End + 1 as the next StartIndex.
type Syncer struct {
	files          FileStore
	matcher        *Matcher
	persister      *Persister
	folders        map[string]config.FolderConfig
	defaultFolder  string
	defaultRuntime time.Duration
	interFileDelay time.Duration
	archiver       Archiver
	log            *logger.Logger
}

// NewSyncer wires the coordinator. folders must contain defaultFolder.
func NewSyncer(
	files FileStore,
	campaigns CampaignRepository,
	persister *Persister,
	folders map[string]config.FolderConfig,
	defaultFolder string,
	defaultRuntime, interFileDelay time.Duration,
) *Syncer {
	if defaultRuntime <= 0 {
		defaultRuntime = 4 * time.Minute
	}
	return &Syncer{
		files:          files,
		matcher:        NewMatcher(campaigns),
		persister:      persister,
		folders:        folders,
		defaultFolder:  defaultFolder,
		defaultRuntime: defaultRuntime,
		interFileDelay: interFileDelay,
		log:            logger.Component("sync"),
	}
}

// SetArchiver enables raw-file archiving of downloaded content.
func (s *Syncer) SetArchiver(a Archiver) { s.archiver = a }

// Folders returns the configured folder table and the default key.
func (s *Syncer) Folders() (map[string]config.FolderConfig, string) {
	return s.folders, s.defaultFolder
}

// Run executes one sync pass over the window [StartIndex, StartIndex +
// BatchSize) of the folder listing, stopping early if the runtime budget is
// exhausted. Per-file problems land in the summary; only systemic failures
// (unknown folder, total listing failure) return an error.
func (s *Syncer) Run(ctx context.Context, opts Options) (*Summary, error) {
	started := time.Now()

	folderKey, folder, err := s.resolveFolder(opts.Folder)
	if err != nil {
		return nil, err
	}

	budget := opts.MaxRuntime
	if budget <= 0 {
		budget = s.defaultRuntime
	}

	files, err := s.files.ListFilesInFolder(ctx, folder.ID)
	if err != nil {
		return nil, fmt.Errorf("listing folder %q: %w", folderKey, err)
	}

	start := opts.StartIndex
	if start < 0 {
		start = 0
	}
	if start > len(files) {
		start = len(files)
	}
	end := len(files)
	if opts.BatchSize > 0 && start+opts.BatchSize < end {
		end = start + opts.BatchSize
	}

	summary := &Summary{
		TotalFiles:      len(files),
		UnmatchedFiles:  []string{},
		FailedDownloads: []string{},
	}

	s.log.Info("sync run starting",
		"folder", folderKey,
		"total_files", len(files),
		"window_start", start,
		"window_end", end,
		"budget", budget.String())

	processed := 0
	for i := start; i < end; i++ {
		if time.Since(started) >= budget {
			s.log.Warn("runtime budget exhausted, stopping early",
				"processed", processed,
				"remaining", end-i)
			break
		}

		s.processFile(ctx, folderKey, files[i], summary)
		processed++
	}

	summary.ProcessedFiles = processed
	summary.ProcessedRange = Range{Start: start, End: start + processed - 1}

	s.log.Info("sync run finished",
		"processed", processed,
		"matched", summary.FilesMatched,
		"unmatched", len(summary.UnmatchedFiles),
		"failed_downloads", len(summary.FailedDownloads),
		"inserted", summary.RecipientsInserted,
		"updated", summary.RecipientsUpdated)
	return summary, nil
}

// processFile runs the per-file pipeline: match, download, parse, persist.
// Matching comes first so unmatched files never cost a download.
func (s *Syncer) processFile(ctx context.Context, folderKey string, f drive.File, summary *Summary) {
	campaign, err := s.matcher.FindCampaignByFileName(ctx, f.Name)
	if err != nil {
		summary.FailedDownloads = append(summary.FailedDownloads,
			fmt.Sprintf("%s: campaign lookup failed: %v", f.Name, err))
		return
	}
	if campaign == nil {
		summary.UnmatchedFiles = append(summary.UnmatchedFiles, f.Name)
		return
	}
	summary.FilesMatched++

	// Pace downloads against the remote store
	if s.interFileDelay > 0 {
		if err := waitCtx(ctx, s.interFileDelay); err != nil {
			summary.FailedDownloads = append(summary.FailedDownloads,
				fmt.Sprintf("%s: %v", f.Name, err))
			return
		}
	}

	content, err := s.files.DownloadFile(ctx, f)
	if err != nil {
		summary.FailedDownloads = append(summary.FailedDownloads,
			fmt.Sprintf("%s: %v", f.Name, err))
		return
	}

	if s.archiver != nil {
		if err := s.archiver.Store(ctx, folderKey, f.Name, []byte(content)); err != nil {
			s.log.Warn("archive failed", "file", f.Name, "error", err)
		}
	}

	recipients := ParseRecipients(content)
	summary.RecipientsParsed += len(recipients)

	result, err := s.persister.Persist(ctx, campaign.ID, recipients)
	summary.RecipientsInserted += result.Inserted
	summary.RecipientsUpdated += result.Updated
	summary.RecipientsDuplicate += result.Duplicates
	summary.RecipientsExisting += result.Existing
	if err != nil {
		summary.FailedDownloads = append(summary.FailedDownloads,
			fmt.Sprintf("%s: persist failed: %v", f.Name, err))
	}
}

func (s *Syncer) resolveFolder(key string) (string, config.FolderConfig, error) {
	if key == "" {
		key = s.defaultFolder
	}
	folder, ok := s.folders[key]
	if !ok {
		return "", config.FolderConfig{}, fmt.Errorf("%w: %q", ErrUnknownFolder, key)
	}
	return key, folder, nil
}
