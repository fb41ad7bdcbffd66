// Package pricing implements the smart pricing engine: a deterministic,
// rule-based price-adjustment evaluator plus margin, demand, and remote
// pricing helpers.
package pricing

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
)

// CalculateLocal evaluates a rule set against a product, user, and
// quantity and returns the resulting price breakdown. It is pure: no
// I/O, no mutation of the supplied rules or profiles, and identical
// inputs at the same instant produce identical results.
func CalculateLocal(product Product, user UserProfile, quantity int, rules []Rule) Calculation {
	return calculateLocalAt(product, user, quantity, rules, time.Now())
}

func calculateLocalAt(product Product, user UserProfile, quantity int, rules []Rule, now time.Time) Calculation {
	currentPrice := product.BasePrice
	adjustments := []AdjustmentRecord{}
	appliedRules := []string{}

	// Inactive or temporally out-of-window rules are excluded entirely,
	// even if their conditions would match.
	inForce := make([]Rule, 0, len(rules))
	for _, rule := range rules {
		if rule.inForce(now) {
			inForce = append(inForce, rule)
		}
	}

	// Highest priority first. The sort must be stable: equal-priority
	// rules keep their input order, and adjustment order affects the
	// running price.
	sort.SliceStable(inForce, func(i, j int) bool {
		return inForce[i].Priority > inForce[j].Priority
	})

	ctx := evalContext(product, user, quantity, now)

	for _, rule := range inForce {
		if !evaluateConditions(rule.Conditions, ctx) {
			continue
		}
		for _, adj := range rule.Adjustments {
			newPrice, delta := applyAdjustment(currentPrice, adj)

			// The running price stays unrounded between adjustments;
			// only the reported delta is rounded.
			currentPrice = newPrice

			adjustments = append(adjustments, AdjustmentRecord{
				RuleID:      rule.ID,
				RuleName:    rule.Name,
				Adjustment:  round2(delta),
				Description: adj.Description,
			})
		}
		appliedRules = append(appliedRules, rule.ID)
	}

	return Calculation{
		ProductID:    product.ID,
		UserID:       user.ID,
		Quantity:     quantity,
		BasePrice:    product.BasePrice,
		Adjustments:  adjustments,
		FinalPrice:   round2(currentPrice),
		AppliedRules: appliedRules,
		CalculatedAt: now,
	}
}

// evalContext builds the condition-resolution context from typed inputs.
func evalContext(product Product, user UserProfile, quantity int, now time.Time) Value {
	return Object(map[string]Value{
		"user": Object(map[string]Value{
			"id":           String(user.ID),
			"name":         String(user.Name),
			"email":        String(user.Email),
			"role":         String(user.Role),
			"loyalty_tier": String(user.LoyaltyTier),
			"location": Object(map[string]Value{
				"address":   String(user.Location.Address),
				"region":    String(user.Location.Region),
				"latitude":  Number(user.Location.Latitude),
				"longitude": Number(user.Location.Longitude),
			}),
		}),
		"product": Object(map[string]Value{
			"id":          String(product.ID),
			"name":        String(product.Name),
			"category":    String(product.Category),
			"base_price":  Number(product.BasePrice),
			"expiry_date": String(product.ExpiryDate),
		}),
		"quantity": Number(float64(quantity)),
		"now":      String(now.Format(time.RFC3339)),
	})
}

// evaluateConditions applies AND semantics. An empty condition list
// matches unconditionally. A missing context field fails the condition
// rather than raising an error.
func evaluateConditions(conditions []Condition, ctx Value) bool {
	for _, cond := range conditions {
		if !evaluateCondition(cond, ctx) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond Condition, ctx Value) bool {
	fieldValue, ok := ctx.Resolve(cond.Field)
	if !ok {
		return false
	}

	switch cond.Operator {
	case OpEquals:
		return fieldValue.Equal(cond.Value)

	case OpGreaterThan:
		field, fok := fieldValue.Num()
		operand, ook := cond.Value.Num()
		return fok && ook && field > operand

	case OpLessThan:
		field, fok := fieldValue.Num()
		operand, ook := cond.Value.Num()
		return fok && ook && field < operand

	case OpIn:
		members, ok := cond.Value.Items()
		if !ok {
			return false
		}
		for _, member := range members {
			if fieldValue.Equal(member) {
				return true
			}
		}
		return false

	case OpBetween:
		// Operand is an inclusive [low, high] pair; the field must be a
		// scalar number, never a list.
		bounds, ok := cond.Value.Items()
		if !ok || len(bounds) != 2 {
			return false
		}
		field, fok := fieldValue.Num()
		low, lok := bounds[0].Num()
		high, hok := bounds[1].Num()
		return fok && lok && hok && field >= low && field <= high

	default:
		// Unknown operators degrade to a non-match rather than aborting
		// the whole calculation.
		log.Warn().
			Str("operator", string(cond.Operator)).
			Str("field", cond.Field).
			Msg("Unknown pricing condition operator, treating as non-match")
		return false
	}
}

// applyAdjustment computes the next running price and the delta for one
// adjustment. An unrecognized adjustment type leaves the price unchanged.
func applyAdjustment(price float64, adj Adjustment) (newPrice, delta float64) {
	switch adj.Type {
	case AdjustPercentage:
		// Positive value = surcharge, negative = discount.
		delta = price * (adj.Value / 100)
		return price + delta, delta
	case AdjustFixedAmount:
		return price + adj.Value, adj.Value
	case AdjustMultiplier:
		newPrice = price * adj.Value
		return newPrice, newPrice - price
	default:
		return price, 0
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
