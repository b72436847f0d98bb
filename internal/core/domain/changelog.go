package domain

import "time"

// PriceLog is the immutable record of one variant's price change under a
// campaign. A row is written only after the remote mutation for its batch
// succeeded, and is the sole source of truth for reverting the campaign.
type PriceLog struct {
	ID           int64
	CampaignID   int64
	VariantID    string
	ProductID    string
	ProductTitle string
	VariantTitle string
	OldPrice     float64
	NewPrice     float64
	CreatedAt    time.Time
}
