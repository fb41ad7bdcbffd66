package pricing

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

// DefaultElasticity is the demand sensitivity coefficient used when the
// caller has no product-specific figure.
const DefaultElasticity = 1.5

// Margin returns the profit margin percentage for a sale, or 0 when the
// cost is not positive. A zero selling price with a positive cost is
// deliberately unguarded.
func Margin(costPrice, sellingPrice float64) float64 {
	if costPrice <= 0 {
		return 0
	}
	return (sellingPrice - costPrice) / sellingPrice * 100
}

// PredictDemand projects demand after a price change using a simple
// elasticity model: % change in quantity = -elasticity * % change in
// price. The result is rounded to 2 decimal places.
func PredictDemand(priceChangePercent, currentDemand, elasticity float64) float64 {
	demandChangePercent := -elasticity * priceChangePercent
	return round2(currentDemand * (1 + demandChangePercent/100))
}

// Trend is a historical pricing summary for one product.
type Trend struct {
	ProductID    string  `json:"productId"`
	Period       string  `json:"period"`
	AveragePrice float64 `json:"averagePrice"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	Volatility   float64 `json:"volatility"`
}

// Analytics fetches pricing analytics from the platform.
type Analytics struct {
	client *api.Client
}

// NewAnalytics creates an analytics service over the given transport.
func NewAnalytics(client *api.Client) *Analytics {
	return &Analytics{client: client}
}

// PriceTrends fetches historical pricing trends for a product over the
// given number of months.
func (a *Analytics) PriceTrends(ctx context.Context, productID string, months int) (*Trend, error) {
	var trend Trend
	opts := api.RequestOptions{
		Params: url.Values{"months": {strconv.Itoa(months)}},
	}
	if err := a.client.Get(ctx, fmt.Sprintf("/analytics/pricing/trends/%s", productID), opts, &trend); err != nil {
		return nil, err
	}
	return &trend, nil
}
