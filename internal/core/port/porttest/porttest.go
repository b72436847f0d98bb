// Package porttest provides in-memory implementations of the outbound
// ports for use in tests.
package porttest

import (
	"context"
	"sync"
	"time"

	"pricewave/internal/core/domain"
	"pricewave/internal/core/port"
)

// Store is an in-memory port.CampaignStore.
type Store struct {
	mu     sync.Mutex
	nextID int64

	Campaigns map[int64]*domain.Campaign
	Logs      map[int64][]domain.PriceLog

	// AppendLogsErr, when set, makes every AppendLogs call fail.
	AppendLogsErr error
}

func NewStore() *Store {
	return &Store{
		Campaigns: make(map[int64]*domain.Campaign),
		Logs:      make(map[int64][]domain.PriceLog),
	}
}

// Seed inserts a campaign directly, assigning an id when missing.
func (s *Store) Seed(c domain.Campaign) domain.Campaign {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		s.nextID++
		c.ID = s.nextID
	} else if c.ID > s.nextID {
		s.nextID = c.ID
	}
	copied := c
	s.Campaigns[c.ID] = &copied
	return c
}

// SeedLogs appends log rows directly.
func (s *Store) SeedLogs(campaignID int64, logs ...domain.PriceLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range logs {
		l.CampaignID = campaignID
		s.Logs[campaignID] = append(s.Logs[campaignID], l)
	}
}

func (s *Store) Create(ctx context.Context, c domain.Campaign) (domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	copied := c
	s.Campaigns[c.ID] = &copied
	return c, nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Campaigns[id]
	if !ok {
		return nil, port.ErrCampaignNotFound
	}
	copied := *c
	return &copied, nil
}

func (s *Store) FindMany(ctx context.Context, f port.CampaignFilter) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Campaign
	for _, c := range s.Campaigns {
		if f.Shop != nil && c.Shop != *f.Shop {
			continue
		}
		if f.Status != nil && c.Status != *f.Status {
			continue
		}
		if f.Type != nil && c.Type != *f.Type {
			continue
		}
		if f.LinkedCampaignID != nil {
			if c.LinkedCampaignID == nil || *c.LinkedCampaignID != *f.LinkedCampaignID {
				continue
			}
		}
		if f.DueBefore != nil {
			if c.ScheduledAt == nil || c.ScheduledAt.After(*f.DueBefore) {
				continue
			}
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, id int64, p port.CampaignPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.Campaigns[id]
	if !ok {
		return port.ErrCampaignNotFound
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.FailureReason != nil {
		c.FailureReason = *p.FailureReason
	}
	if p.ExecutedAt != nil {
		c.ExecutedAt = p.ExecutedAt
	}
	if p.RevertedAt != nil {
		c.RevertedAt = p.RevertedAt
	}
	if p.RevertCampaignID != nil {
		c.RevertCampaignID = p.RevertCampaignID
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (s *Store) ResetProcessing(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, c := range s.Campaigns {
		if c.Status == domain.StatusProcessing {
			c.Status = domain.StatusScheduled
			n++
		}
	}
	return n, nil
}

func (s *Store) AppendLogs(ctx context.Context, logs []domain.PriceLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.AppendLogsErr != nil {
		return s.AppendLogsErr
	}
	for _, l := range logs {
		s.Logs[l.CampaignID] = append(s.Logs[l.CampaignID], l)
	}
	return nil
}

func (s *Store) FindLogs(ctx context.Context, campaignID int64) ([]domain.PriceLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.PriceLog(nil), s.Logs[campaignID]...), nil
}

func (s *Store) DeleteByShop(ctx context.Context, shop string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, c := range s.Campaigns {
		if c.Shop == shop {
			delete(s.Campaigns, id)
			delete(s.Logs, id)
		}
	}
	return nil
}

// MutateCall records one gateway mutation for assertions.
type MutateCall struct {
	Shop      string
	ProductID string
	Items     []port.MutateItem
}

// Gateway is a scripted port.CatalogGateway.
type Gateway struct {
	mu sync.Mutex

	Products []domain.Product
	FetchErr error
	// MutateFn overrides the default always-succeed behaviour.
	MutateFn func(call MutateCall) port.MutateResult
	Calls    []MutateCall

	CollectionList []domain.Collection
	VendorList     []string
	TypeList       []string
}

func (g *Gateway) FetchTargets(ctx context.Context, shop string, filter domain.TargetFilter) ([]domain.Product, error) {
	if g.FetchErr != nil {
		return nil, g.FetchErr
	}
	return g.Products, nil
}

func (g *Gateway) Mutate(ctx context.Context, shop string, productID string, items []port.MutateItem) port.MutateResult {
	call := MutateCall{Shop: shop, ProductID: productID, Items: items}
	g.mu.Lock()
	g.Calls = append(g.Calls, call)
	fn := g.MutateFn
	g.mu.Unlock()
	if fn != nil {
		return fn(call)
	}
	return port.MutateResult{Success: true}
}

func (g *Gateway) Collections(ctx context.Context, shop string) ([]domain.Collection, error) {
	return g.CollectionList, nil
}

func (g *Gateway) Vendors(ctx context.Context, shop string) ([]string, error) {
	return g.VendorList, nil
}

func (g *Gateway) ProductTypes(ctx context.Context, shop string) ([]string, error) {
	return g.TypeList, nil
}

// Billing is a fixed-answer port.BillingGate.
type Billing struct {
	Active bool
	Err    error
}

func (b *Billing) HasActiveSubscription(ctx context.Context, shop string) (bool, error) {
	return b.Active, b.Err
}
