package recipient

import (
	"context"
	"strings"

	"github.com/ignite/recipient-sync/internal/domain"
)

// Matcher maps Drive file names to persisted campaigns.
type Matcher struct {
	campaigns CampaignRepository
}

// NewMatcher creates a matcher backed by the given campaign repository.
func NewMatcher(campaigns CampaignRepository) *Matcher {
	return &Matcher{campaigns: campaigns}
}

// FindCampaignByFileName strips the file extension, generates normalized
// name candidates, and performs one case-insensitive OR lookup across all of
// them. Returns (nil, nil) when no campaign matches.
func (m *Matcher) FindCampaignByFileName(ctx context.Context, fileName string) (*domain.Campaign, error) {
	candidates := fileNameCandidates(fileName)
	if len(candidates) == 0 {
		return nil, nil
	}
	return m.campaigns.FindByNameCandidates(ctx, candidates)
}

// fileNameCandidates returns the deduplicated name candidates for a file:
// the extensionless base name as-is, with underscores as spaces, and with
// spaces as underscores. Empty candidates are excluded.
func fileNameCandidates(fileName string) []string {
	base := fileName
	if i := strings.LastIndex(base, "."); i > 0 {
		base = base[:i]
	}
	base = strings.TrimSpace(base)

	candidates := []string{
		base,
		strings.ReplaceAll(base, "_", " "),
		strings.ReplaceAll(base, " ", "_"),
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
