package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Seed inserts demo campaign data into the pricewave database.
func Seed(ctx context.Context, pool *pgxpool.Pool) error {
	shop := "demo-store.myshopify.com"

	var campaignID int64
	err := pool.QueryRow(ctx, `INSERT INTO campaigns
    (shop, title, filter_type, filter_value, collection_id,
     type, strategy, value, rounding, compare_at_price,
     status, executed_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now(),now())
RETURNING id`,
		shop, "Summer sale 15% off", "all", "", "",
		"percentage", "decrease", 15.0, "ROUND_99", true,
		"completed",
	).Scan(&campaignID)
	if err != nil {
		return err
	}

	for i := 1; i <= 5; i++ {
		_, err = pool.Exec(ctx, `INSERT INTO price_logs
    (campaign_id, variant_id, product_id, product_title, variant_title, old_price, new_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
			campaignID,
			fmt.Sprintf("gid://shopify/ProductVariant/%d", 1000+i),
			fmt.Sprintf("gid://shopify/Product/%d", 100+i),
			fmt.Sprintf("Demo product %d", i),
			"Default",
			float64(20+i*5), float64(20+i*5)*0.85,
		)
		if err != nil {
			return err
		}
	}

	// One future scheduled campaign with a paired auto-revert.
	scheduledAt := time.Now().Add(24 * time.Hour)
	revertAt := time.Now().Add(72 * time.Hour)
	var scheduledID int64
	err = pool.QueryRow(ctx, `INSERT INTO campaigns
    (shop, title, filter_type, filter_value,
     type, strategy, value, rounding,
     status, scheduled_at, revert_at, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
RETURNING id`,
		shop, "Weekend flash sale", "vendor", "Acme",
		"percentage", "decrease", 20.0, "NONE",
		"scheduled", scheduledAt, revertAt,
	).Scan(&scheduledID)
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, `INSERT INTO campaigns
    (shop, title, filter_type, filter_value,
     type, strategy, value, rounding,
     status, scheduled_at, linked_campaign_id, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())`,
		shop, fmt.Sprintf("Auto-revert of #%d", scheduledID), "vendor", "Acme",
		"auto_revert", "increase", 20.0, "NONE",
		"scheduled", revertAt, scheduledID,
	)
	return err
}
