package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// CampaignRepository implements port.CampaignStore using pgxpool for
// PostgreSQL.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a new repository instance.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

const campaignColumns = `
    id, shop, title, filter_type, filter_value, collection_id,
    type, strategy, value, rounding, compare_at_price,
    status, failure_reason,
    scheduled_at, revert_at, executed_at, reverted_at,
    revert_campaign_id, linked_campaign_id,
    created_at, updated_at`

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(
		&c.ID,
		&c.Shop,
		&c.Title,
		&c.FilterType,
		&c.FilterValue,
		&c.CollectionID,
		&c.Type,
		&c.Strategy,
		&c.Value,
		&c.Rounding,
		&c.CompareAtPrice,
		&c.Status,
		&c.FailureReason,
		&c.ScheduledAt,
		&c.RevertAt,
		&c.ExecutedAt,
		&c.RevertedAt,
		&c.RevertCampaignID,
		&c.LinkedCampaignID,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	return c, err
}

// Create persists a new campaign and returns it with identity and
// timestamps populated.
func (r *CampaignRepository) Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	query := `INSERT INTO campaigns
    (shop, title, filter_type, filter_value, collection_id,
     type, strategy, value, rounding, compare_at_price,
     status, failure_reason, scheduled_at, revert_at, linked_campaign_id,
     created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,now(),now())
RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		c.Shop,
		c.Title,
		c.FilterType,
		c.FilterValue,
		c.CollectionID,
		c.Type,
		c.Strategy,
		c.Value,
		c.Rounding,
		c.CompareAtPrice,
		c.Status,
		c.FailureReason,
		c.ScheduledAt,
		c.RevertAt,
		c.LinkedCampaignID,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return c, fmt.Errorf("create campaign: %w", err)
	}
	return c, nil
}

// FindByID returns the campaign or port.ErrCampaignNotFound.
func (r *CampaignRepository) FindByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, scanCampaign)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, port.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindMany returns campaigns matching every set predicate, newest first.
func (r *CampaignRepository) FindMany(ctx context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.Shop != nil {
		add("shop = $%d", *f.Shop)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.Type != nil {
		add("type = $%d", *f.Type)
	}
	if f.LinkedCampaignID != nil {
		add("linked_campaign_id = $%d", *f.LinkedCampaignID)
	}
	if f.DueBefore != nil {
		add("scheduled_at <= $%d", *f.DueBefore)
	}

	query := `SELECT ` + campaignColumns + ` FROM campaigns`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

// Update applies the non-nil patch fields to one campaign.
func (r *CampaignRepository) Update(ctx context.Context, id int64, p port.CampaignPatch) error {
	sets := []string{"updated_at = now()"}
	var args []any
	set := func(col string, arg any) {
		args = append(args, arg)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if p.Status != nil {
		set("status", *p.Status)
	}
	if p.FailureReason != nil {
		set("failure_reason", *p.FailureReason)
	}
	if p.ExecutedAt != nil {
		set("executed_at", *p.ExecutedAt)
	}
	if p.RevertedAt != nil {
		set("reverted_at", *p.RevertedAt)
	}
	if p.RevertCampaignID != nil {
		set("revert_campaign_id", *p.RevertCampaignID)
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE campaigns SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update campaign %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return port.ErrCampaignNotFound
	}
	return nil
}

// ResetProcessing moves every processing campaign back to scheduled.
func (r *CampaignRepository) ResetProcessing(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE campaigns SET status = $1, updated_at = now() WHERE status = $2`,
		domain.StatusScheduled, domain.StatusProcessing)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// AppendLogs writes the rows in one batch. Logs are append-only and never
// mutated afterwards.
func (r *CampaignRepository) AppendLogs(ctx context.Context, logs []domain.PriceLog) error {
	if len(logs) == 0 {
		return nil
	}
	b := &pgx.Batch{}
	for _, l := range logs {
		b.Queue(`INSERT INTO price_logs
    (campaign_id, variant_id, product_id, product_title, variant_title, old_price, new_price, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,now())`,
			l.CampaignID, l.VariantID, l.ProductID, l.ProductTitle, l.VariantTitle, l.OldPrice, l.NewPrice)
	}
	return r.pool.SendBatch(ctx, b).Close()
}

// FindLogs returns all log rows of a campaign in insertion order.
func (r *CampaignRepository) FindLogs(ctx context.Context, campaignID int64) ([]domain.PriceLog, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, campaign_id, variant_id, product_id, product_title, variant_title, old_price, new_price, created_at
        FROM price_logs
        WHERE campaign_id = $1
        ORDER BY id`, campaignID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.PriceLog, error) {
		var l domain.PriceLog
		err := row.Scan(&l.ID, &l.CampaignID, &l.VariantID, &l.ProductID, &l.ProductTitle, &l.VariantTitle, &l.OldPrice, &l.NewPrice, &l.CreatedAt)
		return l, err
	})
}

// DeleteByShop removes a shop's campaigns; logs go with them via the
// foreign key cascade.
func (r *CampaignRepository) DeleteByShop(ctx context.Context, shop string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM campaigns WHERE shop = $1`, shop)
	return err
}
