package recipient

import (
	"context"
	"strings"
	"sync"

	"github.com/ignite/recipient-sync/internal/domain"
	"github.com/ignite/recipient-sync/internal/drive"
)

// fakeCampaignRepo matches candidates against a fixed set of campaign names,
// case-insensitively, the way the SQL lookup does.
type fakeCampaignRepo struct {
	campaigns []domain.Campaign
	err       error
	calls     int
}

func (f *fakeCampaignRepo) FindByNameCandidates(ctx context.Context, candidates []string) (*domain.Campaign, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	for _, c := range f.campaigns {
		for _, cand := range candidates {
			if strings.EqualFold(c.CampaignName, cand) {
				match := c
				return &match, nil
			}
		}
	}
	return nil, nil
}

// memRecipientRepo is an in-memory RecipientRepository keyed by campaign and
// lowercased email. Duplicate-tolerant inserts mirror ON CONFLICT DO NOTHING.
type memRecipientRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Recipient // key: campaignID + "|" + lower(email)
	findErr error
	creates int
	updates int
}

func newMemRecipientRepo() *memRecipientRepo {
	return &memRecipientRepo{rows: make(map[string]domain.Recipient)}
}

func (m *memRecipientRepo) key(campaignID, email string) string {
	return campaignID + "|" + strings.ToLower(strings.TrimSpace(email))
}

func (m *memRecipientRepo) FindByEmails(ctx context.Context, campaignID string, emails []string) ([]domain.Recipient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return nil, m.findErr
	}
	var out []domain.Recipient
	for _, e := range emails {
		if row, ok := m.rows[m.key(campaignID, e)]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memRecipientRepo) CreateMany(ctx context.Context, recipients []domain.Recipient) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	n := 0
	for _, rec := range recipients {
		k := m.key(rec.EmailCampaignID, rec.Email)
		if _, exists := m.rows[k]; exists {
			continue
		}
		m.rows[k] = rec
		n++
	}
	return n, nil
}

func (m *memRecipientRepo) UpdateMany(ctx context.Context, recipients []domain.Recipient) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates++
	for _, rec := range recipients {
		m.rows[m.key(rec.EmailCampaignID, rec.Email)] = rec
	}
	return nil
}

func (m *memRecipientRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// fakeFileStore serves a static listing with per-file content or errors.
type fakeFileStore struct {
	files     []drive.File
	content   map[string]string // file ID → CSV text
	downErr   map[string]error  // file ID → download error
	listErr   error
	downloads int
}

func (f *fakeFileStore) ListFilesInFolder(ctx context.Context, folderID string) ([]drive.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.files, nil
}

func (f *fakeFileStore) DownloadFile(ctx context.Context, file drive.File) (string, error) {
	f.downloads++
	if err, ok := f.downErr[file.ID]; ok {
		return "", err
	}
	return f.content[file.ID], nil
}
