// Package dealers covers the B2B side: dealer networks, commissions,
// and territory operations.
package dealers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
	"github.com/knbiosciences/agriaqua-go/pkg/orders"
)

// CommissionTier defines a commission rate for a product category over
// an inclusive volume band. A nil MaxVolume means the band is unbounded
// above.
type CommissionTier struct {
	ProductCategory      string   `json:"productCategory"`
	MinVolume            float64  `json:"minVolume"`
	MaxVolume            *float64 `json:"maxVolume,omitempty"`
	CommissionPercentage float64  `json:"commissionPercentage"`
}

func (t CommissionTier) contains(category string, volume float64) bool {
	if t.ProductCategory != category {
		return false
	}
	if volume < t.MinVolume {
		return false
	}
	return t.MaxVolume == nil || volume <= *t.MaxVolume
}

// CalculateCommission returns the commission earned on a sale. The first
// tier in list order whose category matches and whose volume band
// contains currentVolume wins; callers are responsible for supplying
// non-overlapping tiers. No matching tier means no commission.
func CalculateCommission(amount float64, category string, currentVolume float64, tiers []CommissionTier) float64 {
	for _, tier := range tiers {
		if tier.contains(category, currentVolume) {
			return amount * tier.CommissionPercentage / 100
		}
	}
	return 0
}

// Network describes a dealer's position in the distribution hierarchy.
type Network struct {
	DealerID   string   `json:"dealerId"`
	Territory  string   `json:"territory"`
	ParentID   string   `json:"parentId,omitempty"`
	SubDealers []string `json:"subDealers"`
}

// SubDealer is the profile for a new sub-dealer.
type SubDealer struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Territory string `json:"territory"`
}

// TerritoryOrder is an order enriched with its originating territory.
type TerritoryOrder struct {
	orders.Order
	Territory string    `json:"territory"`
	FarmerID  string    `json:"farmer_id"`
	PlacedAt  time.Time `json:"placed_at"`
}

// Config holds dealer service endpoints.
type Config struct {
	NetworkEndpoint      string
	SubDealerEndpoint    string
	DealerOrdersEndpoint string
}

// Service manages dealer network operations.
type Service struct {
	client *api.Client
	cfg    Config
}

// NewService creates a dealer service over the given transport.
func NewService(client *api.Client, cfg Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// Network fetches the network structure for a dealer.
func (s *Service) Network(ctx context.Context, dealerID string) (*Network, error) {
	var network Network
	if err := s.client.Get(ctx, fmt.Sprintf("%s/%s", s.cfg.NetworkEndpoint, dealerID), api.RequestOptions{}, &network); err != nil {
		return nil, err
	}
	return &network, nil
}

// PlaceBulkOrder places a stock replenishment order for a dealer.
func (s *Service) PlaceBulkOrder(ctx context.Context, req orders.Request) (*orders.Order, error) {
	payload := struct {
		orders.Request
		OrderType string `json:"orderType"`
	}{Request: req, OrderType: "b2b_bulk"}

	var order orders.Order
	if err := s.client.Post(ctx, s.cfg.DealerOrdersEndpoint+"/bulk", api.RequestOptions{Body: payload}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// TerritoryOrders fetches all orders placed by farmers within a dealer's
// territory.
func (s *Service) TerritoryOrders(ctx context.Context, territory string) ([]TerritoryOrder, error) {
	var result []TerritoryOrder
	opts := api.RequestOptions{Params: url.Values{"territory": {territory}}}
	if err := s.client.Get(ctx, s.cfg.DealerOrdersEndpoint+"/territory", opts, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AddSubDealer registers a sub-dealer under a parent dealer.
func (s *Service) AddSubDealer(ctx context.Context, parentDealerID string, sub SubDealer) error {
	payload := struct {
		SubDealer
		ParentDealerID string `json:"parentDealerId"`
	}{SubDealer: sub, ParentDealerID: parentDealerID}

	return s.client.Post(ctx, s.cfg.SubDealerEndpoint, api.RequestOptions{Body: payload}, nil)
}
