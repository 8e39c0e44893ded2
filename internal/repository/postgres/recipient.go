package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/ignite/recipient-sync/internal/domain"
)

// recipientColumns is the scan/insert column order for campaign_recipients.
const recipientColumns = `id, email_campaign_id, address_id, address_line_1,
	state_province_region, city, postal_code, market, sector, email,
	core_segment, sub_segment`

// RecipientRepo implements recipient.RecipientRepository against PostgreSQL.
// The table carries a unique index on (email_campaign_id, LOWER(email)).
type RecipientRepo struct{ db *sql.DB }

// NewRecipientRepo creates a Postgres-backed recipient repository.
func NewRecipientRepo(db *sql.DB) *RecipientRepo { return &RecipientRepo{db: db} }

// FindByEmails returns persisted rows for the campaign whose email matches
// any of the given emails, case-insensitive.
func (r *RecipientRepo) FindByEmails(ctx context.Context, campaignID string, emails []string) ([]domain.Recipient, error) {
	if len(emails) == 0 {
		return nil, nil
	}

	lowered := make([]string, len(emails))
	for i, e := range emails {
		lowered[i] = strings.ToLower(e)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recipientColumns+`
		FROM campaign_recipients
		WHERE email_campaign_id = $1 AND LOWER(email) = ANY($2)
	`, campaignID, pq.Array(lowered))
	if err != nil {
		return nil, fmt.Errorf("find recipients by email: %w", err)
	}
	defer rows.Close()

	var out []domain.Recipient
	for rows.Next() {
		var rec domain.Recipient
		if err := rows.Scan(
			&rec.ID, &rec.EmailCampaignID, &rec.AddressID, &rec.AddressLine1,
			&rec.StateProvinceRegion, &rec.City, &rec.PostalCode, &rec.Market,
			&rec.Sector, &rec.Email, &rec.CoreSegment, &rec.SubSegment,
		); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateMany inserts all rows in one statement. ON CONFLICT DO NOTHING makes
// the insert tolerant of races with concurrent syncs: a row that collides
// with the (campaign, email) uniqueness is skipped, not an error. Returns
// the number of rows actually inserted.
func (r *RecipientRepo) CreateMany(ctx context.Context, recipients []domain.Recipient) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}

	const fieldsPerRow = 12
	placeholders := make([]string, 0, len(recipients))
	args := make([]any, 0, len(recipients)*fieldsPerRow)
	for i, rec := range recipients {
		base := i * fieldsPerRow
		marks := make([]string, fieldsPerRow)
		for j := range marks {
			marks[j] = fmt.Sprintf("$%d", base+j+1)
		}
		placeholders = append(placeholders, "("+strings.Join(marks, ", ")+", NOW(), NOW())")
		args = append(args,
			rec.ID, rec.EmailCampaignID, rec.AddressID, rec.AddressLine1,
			rec.StateProvinceRegion, rec.City, rec.PostalCode, rec.Market,
			rec.Sector, rec.Email, rec.CoreSegment, rec.SubSegment,
		)
	}

	query := `
		INSERT INTO campaign_recipients
			(` + recipientColumns + `, created_at, updated_at)
		VALUES ` + strings.Join(placeholders, ", ") + `
		ON CONFLICT DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("create recipients: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// UpdateMany applies every update inside one transaction: a mid-batch
// failure rolls the whole batch back.
func (r *RecipientRepo) UpdateMany(ctx context.Context, recipients []domain.Recipient) error {
	if len(recipients) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update batch: %w", err)
	}

	for _, rec := range recipients {
		if _, err := tx.ExecContext(ctx, `
			UPDATE campaign_recipients SET
				address_id = $1, address_line_1 = $2, state_province_region = $3,
				city = $4, postal_code = $5, market = $6, sector = $7,
				core_segment = $8, sub_segment = $9, updated_at = NOW()
			WHERE id = $10
		`, rec.AddressID, rec.AddressLine1, rec.StateProvinceRegion,
			rec.City, rec.PostalCode, rec.Market, rec.Sector,
			rec.CoreSegment, rec.SubSegment, rec.ID); err != nil {
			tx.Rollback()
			return fmt.Errorf("update recipient %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update batch: %w", err)
	}
	return nil
}
