package pricing

import "time"

// RuleType categorizes a pricing rule.
type RuleType string

const (
	RuleUserType    RuleType = "user_type"
	RuleVolume      RuleType = "volume"
	RuleGeographic  RuleType = "geographic"
	RuleSeasonal    RuleType = "seasonal"
	RuleLoyalty     RuleType = "loyalty"
	RulePromotional RuleType = "promotional"
)

// Operator is a condition comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
	OpBetween     Operator = "between"
)

// AdjustmentType identifies how an adjustment modifies the running price.
type AdjustmentType string

const (
	AdjustPercentage  AdjustmentType = "percentage"
	AdjustFixedAmount AdjustmentType = "fixed_amount"
	AdjustMultiplier  AdjustmentType = "multiplier"
)

// Condition matches one field of the evaluation context against an
// operand. A rule's conditions combine with AND semantics.
type Condition struct {
	// Field is a dot-path into the evaluation context, e.g. "user.role"
	// or "user.location.region".
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    Value    `json:"value"`
}

// Adjustment is one price modification, applied sequentially to the
// running price.
type Adjustment struct {
	Type        AdjustmentType `json:"type"`
	Value       float64        `json:"value"`
	Description string         `json:"description"`
}

// Rule is a conditional price adjustment. Higher priority rules are
// evaluated first.
type Rule struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Type        RuleType     `json:"type"`
	Conditions  []Condition  `json:"conditions"`
	Adjustments []Adjustment `json:"adjustments"`
	Priority    int          `json:"priority"`
	Active      bool         `json:"active"`
	ValidFrom   time.Time    `json:"validFrom"`
	ValidTo     *time.Time   `json:"validTo,omitempty"`
}

// inForce reports whether the rule is active and within its validity
// window at the given instant.
func (r Rule) inForce(now time.Time) bool {
	if !r.Active {
		return false
	}
	if now.Before(r.ValidFrom) {
		return false
	}
	if r.ValidTo != nil && now.After(*r.ValidTo) {
		return false
	}
	return true
}

// Location is a customer location.
type Location struct {
	Address   string  `json:"address,omitempty"`
	Region    string  `json:"region,omitempty"`
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`
}

// UserProfile is the requester side of the evaluation context.
type UserProfile struct {
	ID          string   `json:"id"`
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role"`
	LoyaltyTier string   `json:"loyalty_tier,omitempty"`
	Location    Location `json:"location"`
}

// Product is the product side of the evaluation context.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Category   string  `json:"category,omitempty"`
	BasePrice  float64 `json:"base_price"`
	ExpiryDate string  `json:"expiry_date,omitempty"`
}

// AdjustmentRecord reports one applied adjustment. The delta is rounded
// to 2 decimal places for reporting.
type AdjustmentRecord struct {
	RuleID      string  `json:"ruleId"`
	RuleName    string  `json:"ruleName"`
	Adjustment  float64 `json:"adjustment"`
	Description string  `json:"description"`
}

// Calculation is an immutable snapshot of one price calculation.
type Calculation struct {
	ProductID    string             `json:"productId"`
	UserID       string             `json:"userId"`
	Quantity     int                `json:"quantity"`
	BasePrice    float64            `json:"basePrice"`
	Adjustments  []AdjustmentRecord `json:"adjustments"`
	FinalPrice   float64            `json:"finalPrice"`
	AppliedRules []string           `json:"appliedRules"`
	CalculatedAt time.Time          `json:"calculatedAt"`
}
