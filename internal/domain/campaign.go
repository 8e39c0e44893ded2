package domain

// Campaign is the slice of a persisted email campaign that recipient sync
// needs: an identifier and a name stable enough for file-name matching.
// Campaigns are owned by the main platform and are read-only here.
type Campaign struct {
	ID           string `json:"id" db:"id"`
	CampaignName string `json:"campaign_name" db:"campaign_name"`
}
