package pricing

import (
	"context"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

// ServiceConfig holds the remote pricing endpoints.
type ServiceConfig struct {
	// RulesEndpoint serves the active rule set.
	RulesEndpoint string
	// CalculateEndpoint performs server-side price calculation.
	CalculateEndpoint string
}

// Service is the remote half of the pricing engine: rule fetch and
// server-side calculation. Local evaluation is CalculateLocal.
type Service struct {
	client *api.Client
	cfg    ServiceConfig
}

// NewService creates a pricing service over the given transport.
func NewService(client *api.Client, cfg ServiceConfig) *Service {
	return &Service{client: client, cfg: cfg}
}

// FetchRules retrieves all pricing rules from the server.
func (s *Service) FetchRules(ctx context.Context) ([]Rule, error) {
	var rules []Rule
	if err := s.client.Get(ctx, s.cfg.RulesEndpoint, api.RequestOptions{}, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// CalculateRemote asks the server to price a product for a user.
func (s *Service) CalculateRemote(ctx context.Context, productID, userID string, quantity int) (*Calculation, error) {
	var result Calculation
	opts := api.RequestOptions{
		Body: map[string]any{
			"productId": productID,
			"userId":    userID,
			"quantity":  quantity,
		},
	}
	if err := s.client.Post(ctx, s.cfg.CalculateEndpoint, opts, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
