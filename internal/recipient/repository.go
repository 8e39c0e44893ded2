package recipient

import (
	"context"

	"github.com/ignite/recipient-sync/internal/domain"
)

// CampaignRepository is the narrow campaign-lookup contract this subsystem
// consumes. Implementations must be safe for concurrent use.
type CampaignRepository interface {
	// FindByNameCandidates returns at most one campaign whose name equals any
	// of the candidates, case-insensitive, in a single query. Returns
	// (nil, nil) when no campaign matches.
	FindByNameCandidates(ctx context.Context, candidates []string) (*domain.Campaign, error)
}

// RecipientRepository is the recipient-storage contract.
type RecipientRepository interface {
	// FindByEmails returns the persisted rows for the campaign whose email
	// matches any of the given emails, case-insensitive.
	FindByEmails(ctx context.Context, campaignID string, emails []string) ([]domain.Recipient, error)

	// CreateMany inserts the given rows, silently skipping rows that collide
	// with an existing (campaign, email) pair. Returns the number of rows
	// actually inserted.
	CreateMany(ctx context.Context, recipients []domain.Recipient) (int, error)

	// UpdateMany applies all updates as a single atomic unit: either every
	// row in the slice is updated or none are.
	UpdateMany(ctx context.Context, recipients []domain.Recipient) error
}
