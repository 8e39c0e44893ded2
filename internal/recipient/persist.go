package recipient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/recipient-sync/internal/domain"
	"github.com/ignite/recipient-sync/internal/pkg/logger"
)

// PersistResult aggregates the outcome of one Persist call.
type PersistResult struct {
	Inserted   int `json:"inserted"`   // net new rows
	Updated    int `json:"updated"`    // existing rows with at least one changed field
	Existing   int `json:"existing"`   // all rows that already existed, changed or not
	Duplicates int `json:"duplicates"` // in-memory collisions dropped before any DB work
}

// Persister writes parsed recipients to storage in fixed-size batches with
// in-memory dedup and change detection.
type Persister struct {
	repo       RecipientRepository
	batchSize  int
	batchDelay time.Duration
	log        *logger.Logger
}

// NewPersister creates a persister. batchSize ≤ 0 defaults to 250;
// batchDelay ≤ 0 means no pause between batches.
func NewPersister(repo RecipientRepository, batchSize int, batchDelay time.Duration) *Persister {
	if batchSize <= 0 {
		batchSize = 250
	}
	return &Persister{
		repo:       repo,
		batchSize:  batchSize,
		batchDelay: batchDelay,
		log:        logger.Component("persist"),
	}
}

// Persist deduplicates the input in memory (by normalized email and by
// composite address key), then upserts the survivors in batches: rows whose
// email already exists for the campaign are updated only when a field
// differs; the rest are inserted with duplicate-tolerant semantics. The
// dedup pass is advisory, not authoritative, against concurrent writers —
// storage-level conflicts are skipped silently.
func (p *Persister) Persist(ctx context.Context, campaignID string, recipients []domain.Recipient) (PersistResult, error) {
	var result PersistResult

	deduped := p.dedupe(recipients, &result)

	for start := 0; start < len(deduped); start += p.batchSize {
		end := start + p.batchSize
		if end > len(deduped) {
			end = len(deduped)
		}

		if start > 0 && p.batchDelay > 0 {
			if err := waitCtx(ctx, p.batchDelay); err != nil {
				return result, err
			}
		}

		if err := p.persistBatch(ctx, campaignID, deduped[start:end], &result); err != nil {
			return result, err
		}
	}

	p.log.Info("persist complete",
		"campaign_id", campaignID,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"existing", result.Existing,
		"duplicates", result.Duplicates)
	return result, nil
}

// dedupe drops records whose normalized email or composite address key was
// already seen within this call, counting them as duplicates.
func (p *Persister) dedupe(recipients []domain.Recipient, result *PersistResult) []domain.Recipient {
	seenEmails := make(map[string]bool, len(recipients))
	seenAddrs := make(map[string]bool, len(recipients))

	kept := make([]domain.Recipient, 0, len(recipients))
	for _, rec := range recipients {
		email := normalizeEmail(rec.Email)
		if email == "" {
			result.Duplicates++
			continue
		}
		addrKey := addressKey(rec)

		if seenEmails[email] || (addrKey != "" && seenAddrs[addrKey]) {
			result.Duplicates++
			continue
		}
		seenEmails[email] = true
		if addrKey != "" {
			seenAddrs[addrKey] = true
		}
		kept = append(kept, rec)
	}
	return kept
}

func (p *Persister) persistBatch(ctx context.Context, campaignID string, batch []domain.Recipient, result *PersistResult) error {
	emails := make([]string, len(batch))
	for i, rec := range batch {
		emails[i] = normalizeEmail(rec.Email)
	}

	existingRows, err := p.repo.FindByEmails(ctx, campaignID, emails)
	if err != nil {
		return fmt.Errorf("looking up existing recipients: %w", err)
	}
	existing := make(map[string]domain.Recipient, len(existingRows))
	for _, row := range existingRows {
		existing[normalizeEmail(row.Email)] = row
	}

	var inserts, updates []domain.Recipient
	for _, rec := range batch {
		rec.EmailCampaignID = campaignID

		row, ok := existing[normalizeEmail(rec.Email)]
		if !ok {
			rec.ID = uuid.New().String()
			inserts = append(inserts, rec)
			continue
		}

		result.Existing++
		if rec.FieldsDiffer(row) {
			rec.ID = row.ID
			updates = append(updates, rec)
		}
	}

	if len(inserts) > 0 {
		n, err := p.repo.CreateMany(ctx, inserts)
		if err != nil {
			return fmt.Errorf("inserting recipients: %w", err)
		}
		result.Inserted += n
	}
	if len(updates) > 0 {
		if err := p.repo.UpdateMany(ctx, updates); err != nil {
			return fmt.Errorf("updating recipients: %w", err)
		}
		result.Updated += len(updates)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// addressKey builds the composite in-memory dedup key: the address ID when
// present, otherwise a pipe-joined normalized address tuple. Records with no
// address data at all return "" and are deduped by email only.
func addressKey(rec domain.Recipient) string {
	if id := strings.ToLower(strings.TrimSpace(rec.AddressID)); id != "" {
		return "id|" + id
	}
	parts := []string{
		strings.ToLower(strings.TrimSpace(rec.AddressLine1)),
		strings.ToLower(strings.TrimSpace(rec.City)),
		strings.ToLower(strings.TrimSpace(rec.StateProvinceRegion)),
		strings.ToLower(strings.TrimSpace(rec.PostalCode)),
	}
	key := strings.Join(parts, "|")
	if key == "|||" {
		return ""
	}
	return key
}

// waitCtx sleeps for d or returns early with the context's error.
func waitCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
