// Package farmers covers the B2C side: farm profiles, recommendations,
// usage analytics, and local water quality guidance.
package farmers

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

// FarmProfile is a farmer's complete farm record.
type FarmProfile struct {
	FarmerID  string    `json:"farmerId"`
	FarmName  string    `json:"farmName"`
	Region    string    `json:"region"`
	SizeHa    float64   `json:"size"` // hectares
	FarmType  string    `json:"type"` // agriculture, aquaculture, or both
	Crops     []Crop    `json:"crops,omitempty"`
	Ponds     []Pond    `json:"ponds,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Crop is one cultivated crop on a farm.
type Crop struct {
	ID      string `json:"id"`
	Type    string `json:"type"` // e.g. wheat, rice
	Variety string `json:"variety,omitempty"`
	Status  string `json:"status"` // planted, growing, harvested, failed
}

// Pond is one aquaculture pond on a farm.
type Pond struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	SizeSqM     float64 `json:"size"`
	DepthM      float64 `json:"depth"`
	WaterSource string  `json:"waterSource"`
}

// Recommendation is a suggested product for a farm.
type Recommendation struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Reason    string  `json:"reason"`
	Score     float64 `json:"score"`
}

// UsageRecord summarizes product usage on a farm over one period.
type UsageRecord struct {
	ProductID string  `json:"productId"`
	Period    string  `json:"period"`
	Quantity  float64 `json:"quantity"`
	Spend     float64 `json:"spend"`
}

// WaterMetrics are measured water quality parameters.
type WaterMetrics struct {
	PH              float64 `json:"ph"`
	DissolvedOxygen float64 `json:"dissolvedOxygen"`
	Ammonia         float64 `json:"ammonia"`
}

// Config holds farmer service endpoints.
type Config struct {
	ProfileEndpoint         string
	RecommendationsEndpoint string
	AnalyticsEndpoint       string
}

// Service manages farmer-facing operations.
type Service struct {
	client *api.Client
	cfg    Config
}

// NewService creates a farmer service over the given transport.
func NewService(client *api.Client, cfg Config) *Service {
	return &Service{client: client, cfg: cfg}
}

// Profile fetches a farmer's complete farm profile.
func (s *Service) Profile(ctx context.Context, farmerID string) (*FarmProfile, error) {
	var profile FarmProfile
	if err := s.client.Get(ctx, fmt.Sprintf("%s/%s", s.cfg.ProfileEndpoint, farmerID), api.RequestOptions{}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile updates farm profile details.
func (s *Service) UpdateProfile(ctx context.Context, farmerID string, profile FarmProfile) (*FarmProfile, error) {
	var updated FarmProfile
	if err := s.client.Put(ctx, fmt.Sprintf("%s/%s", s.cfg.ProfileEndpoint, farmerID), api.RequestOptions{Body: profile}, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Recommendations retrieves product recommendations for a farmer.
func (s *Service) Recommendations(ctx context.Context, farmerID string) ([]Recommendation, error) {
	var recs []Recommendation
	opts := api.RequestOptions{Params: url.Values{"farmerId": {farmerID}}}
	if err := s.client.Get(ctx, s.cfg.RecommendationsEndpoint, opts, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

// UsageAnalytics fetches product usage for a farm over the given period
// (monthly, quarterly, or annual).
func (s *Service) UsageAnalytics(ctx context.Context, farmerID, period string) ([]UsageRecord, error) {
	var usage []UsageRecord
	opts := api.RequestOptions{Params: url.Values{"farmerId": {farmerID}, "period": {period}}}
	if err := s.client.Get(ctx, s.cfg.AnalyticsEndpoint, opts, &usage); err != nil {
		return nil, err
	}
	return usage, nil
}

// SubmitTestData uploads water quality or soil test measurements for a
// farm resource (pond or crop).
func (s *Service) SubmitTestData(ctx context.Context, farmID, resourceID string, data map[string]float64) error {
	endpoint := fmt.Sprintf("%s/%s/resources/%s/tests", s.cfg.ProfileEndpoint, farmID, resourceID)
	return s.client.Post(ctx, endpoint, api.RequestOptions{Body: data}, nil)
}

// WaterQualityAdvice returns immediate, action-oriented advice for the
// given water quality readings. Pure: no I/O.
func WaterQualityAdvice(metrics WaterMetrics) []string {
	var advice []string

	if metrics.PH < 6.5 {
		advice = append(advice, "pH is critically low. Add lime to increase alkalinity.")
	}
	if metrics.PH > 8.5 {
		advice = append(advice, "pH is high. Check for algae blooms and monitor ammonia toxicity.")
	}
	if metrics.DissolvedOxygen < 4.0 {
		advice = append(advice, "Dissolved Oxygen is low. Increase aeration immediately.")
	}
	if metrics.Ammonia > 0.1 {
		advice = append(advice, "Ammonia levels are rising. Reduce feeding and check for organic buildup.")
	}

	if len(advice) == 0 {
		advice = append(advice, "Water quality parameters are within optimal range.")
	}
	return advice
}
