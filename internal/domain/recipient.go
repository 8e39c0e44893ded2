package domain

import "time"

// Recipient is one campaign recipient row. Parsed instances carry no ID;
// persisted rows are keyed by (EmailCampaignID, lower(Email)).
type Recipient struct {
	ID                  string    `json:"id" db:"id"`
	EmailCampaignID     string    `json:"email_campaign_id" db:"email_campaign_id"`
	AddressID           string    `json:"address_id" db:"address_id"`
	AddressLine1        string    `json:"address_line_1" db:"address_line_1"`
	StateProvinceRegion string    `json:"state_province_region" db:"state_province_region"`
	City                string    `json:"city" db:"city"`
	PostalCode          string    `json:"postal_code" db:"postal_code"`
	Market              string    `json:"market" db:"market"`
	Sector              string    `json:"sector" db:"sector"`
	Email               string    `json:"email" db:"email"`
	CoreSegment         string    `json:"core_segment" db:"core_segment"`
	SubSegment          string    `json:"sub_segment" db:"sub_segment"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// FieldsDiffer reports whether any mutable (CSV-sourced) field differs
// between the incoming record and an existing persisted row. Email and
// campaign ID are identity, not mutable state.
func (r Recipient) FieldsDiffer(existing Recipient) bool {
	return r.AddressID != existing.AddressID ||
		r.AddressLine1 != existing.AddressLine1 ||
		r.StateProvinceRegion != existing.StateProvinceRegion ||
		r.City != existing.City ||
		r.PostalCode != existing.PostalCode ||
		r.Market != existing.Market ||
		r.Sector != existing.Sector ||
		r.CoreSegment != existing.CoreSegment ||
		r.SubSegment != existing.SubSegment
}
