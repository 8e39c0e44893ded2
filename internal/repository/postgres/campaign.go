// Package postgres implements the campaign and recipient repositories
// against the platform's PostgreSQL database.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/recipient-sync/internal/domain"
)

// CampaignRepo implements recipient.CampaignRepository against PostgreSQL.
type CampaignRepo struct{ db *sql.DB }

// NewCampaignRepo creates a Postgres-backed campaign repository.
func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{db: db} }

// FindByNameCandidates returns at most one campaign whose name equals any
// candidate, case-insensitive. One query per call regardless of how many
// candidates there are.
func (r *CampaignRepo) FindByNameCandidates(ctx context.Context, candidates []string) (*domain.Campaign, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(candidates))
	for i, c := range candidates {
		lowered[i] = strings.ToLower(c)
	}

	c := &domain.Campaign{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, campaign_name
		FROM email_campaigns
		WHERE LOWER(campaign_name) = ANY($1)
		LIMIT 1
	`, pq.Array(lowered)).Scan(&c.ID, &c.CampaignName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find campaign by name: %w", err)
	}
	return c, nil
}
