package shopify

import (
	"context"
	"encoding/json"
	"fmt"
)

// Billing implements port.BillingGate against the Admin API's subscription
// listing. A shop is considered subscribed when any of its app
// subscriptions is ACTIVE.
type Billing struct {
	api graphQLClient
}

// NewBilling creates the billing oracle sharing the gateway's client.
func NewBilling(client *Client) *Billing {
	return &Billing{api: client}
}

func (b *Billing) HasActiveSubscription(ctx context.Context, shop string) (bool, error) {
	resp, err := b.api.Do(ctx, shop, activeSubscriptionsQuery, nil)
	if err != nil {
		return false, err
	}
	if len(resp.Errors) > 0 {
		return false, fmt.Errorf("subscription query: %s", resp.Errors[0].Message)
	}

	var payload struct {
		AppInstallation *struct {
			ActiveSubscriptions []struct {
				Status string `json:"status"`
			} `json:"activeSubscriptions"`
		} `json:"appInstallation"`
	}
	if err = json.Unmarshal(resp.Data, &payload); err != nil {
		return false, err
	}
	if payload.AppInstallation == nil {
		return false, nil
	}
	for _, sub := range payload.AppInstallation.ActiveSubscriptions {
		if sub.Status == "ACTIVE" {
			return true, nil
		}
	}
	return false, nil
}
