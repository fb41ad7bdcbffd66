// Package orders places and retrieves customer orders, diverting
// large-value orders into the request-for-quote (RFQ) flow.
package orders

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/knbiosciences/agriaqua-go/pkg/api"
)

// Status is an order lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusShipped Status = "shipped"
)

// Item is one order line.
type Item struct {
	ProductID string  `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Request is the payload for creating an order.
type Request struct {
	CustomerID string `json:"customer_id"`
	Items      []Item `json:"items"`
	// Type is set by the service when the order is diverted to RFQ.
	Type string `json:"type,omitempty"`
}

// Total is the order value: the sum of quantity times unit price over
// all items.
func (r Request) Total() float64 {
	var total float64
	for _, item := range r.Items {
		total += item.Quantity * item.UnitPrice
	}
	return total
}

// Order is a created order (or RFQ, which shares the shape).
type Order struct {
	ID          string    `json:"id"`
	CustomerID  string    `json:"customer_id"`
	Status      Status    `json:"status"`
	Items       []Item    `json:"items"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Config holds order service endpoints and the RFQ threshold.
type Config struct {
	// OrdersEndpoint is the base endpoint for orders.
	OrdersEndpoint string
	// RFQEndpoint receives orders above the threshold. Defaults to
	// OrdersEndpoint + "/rfq".
	RFQEndpoint string
	// RFQThreshold is the order total above which an RFQ is created
	// instead of a direct order.
	RFQThreshold float64
}

// Service manages order creation, RFQ handling, and history.
type Service struct {
	client *api.Client
	cfg    Config
}

// NewService creates an order service over the given transport.
func NewService(client *api.Client, cfg Config) *Service {
	if cfg.RFQEndpoint == "" {
		cfg.RFQEndpoint = cfg.OrdersEndpoint + "/rfq"
	}
	return &Service{client: client, cfg: cfg}
}

// Create submits a new order. Orders whose total exceeds the RFQ
// threshold are submitted as RFQs instead.
func (s *Service) Create(ctx context.Context, req Request) (*Order, error) {
	if total := req.Total(); total > s.cfg.RFQThreshold {
		log.Info().
			Str("customerId", req.CustomerID).
			Float64("total", total).
			Float64("threshold", s.cfg.RFQThreshold).
			Msg("Order total exceeds RFQ threshold, creating RFQ")
		return s.createRFQ(ctx, req)
	}

	var order Order
	if err := s.client.Post(ctx, s.cfg.OrdersEndpoint, api.RequestOptions{Body: req}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) createRFQ(ctx context.Context, req Request) (*Order, error) {
	req.Type = "rfq"

	var order Order
	if err := s.client.Post(ctx, s.cfg.RFQEndpoint, api.RequestOptions{Body: req}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// History fetches a customer's past orders. A limit of 0 means no limit.
func (s *Service) History(ctx context.Context, customerID string, limit int) ([]Order, error) {
	params := url.Values{"customer_id": {customerID}}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var history []Order
	if err := s.client.Get(ctx, s.cfg.OrdersEndpoint+"/history", api.RequestOptions{Params: params}, &history); err != nil {
		return nil, err
	}
	return history, nil
}
