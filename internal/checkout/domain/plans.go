package domain

import "strings"

const (
	PlanOnetime = "onetime"
	PlanBasic   = "basic"
	PlanPremium = "premium"

	IntervalOnce  = "once"
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// Plan is a purchasable plan. Prices are in cents, keyed by billing interval.
type Plan struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Recurring bool             `json:"recurring"`
	Prices    map[string]int64 `json:"prices"`
	Pickups   string           `json:"pickups"`
	Discount  string           `json:"discount,omitempty"`
}

// Price returns the price for interval. One-time plans accept any interval.
func (p Plan) Price(interval string) (int64, bool) {
	if !p.Recurring {
		c, ok := p.Prices[IntervalOnce]
		return c, ok
	}
	c, ok := p.Prices[interval]
	return c, ok
}

// Catalog lists plans in display order.
type Catalog []Plan

func (c Catalog) Find(id string) (Plan, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, p := range c {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// PriceOverrides replaces catalog prices; zero keeps the default.
type PriceOverrides struct {
	OnetimeCents      int64
	BasicMonthCents   int64
	BasicYearCents    int64
	PremiumMonthCents int64
	PremiumYearCents  int64
}

// DefaultCatalog returns the standard plans with any overrides applied.
func DefaultCatalog(o PriceOverrides) Catalog {
	pick := func(override, def int64) int64 {
		if override > 0 {
			return override
		}
		return def
	}
	return Catalog{
		{
			ID:      PlanOnetime,
			Name:    "One-Time Haul",
			Prices:  map[string]int64{IntervalOnce: pick(o.OnetimeCents, 500)},
			Pickups: "1 pickup",
		},
		{
			ID:        PlanBasic,
			Name:      "Basic",
			Recurring: true,
			Prices: map[string]int64{
				IntervalMonth: pick(o.BasicMonthCents, 800),
				IntervalYear:  pick(o.BasicYearCents, 8640),
			},
			Pickups:  "2 pickups per month",
			Discount: "10% off yearly",
		},
		{
			ID:        PlanPremium,
			Name:      "Premium",
			Recurring: true,
			Prices: map[string]int64{
				IntervalMonth: pick(o.PremiumMonthCents, 1500),
				IntervalYear:  pick(o.PremiumYearCents, 16200),
			},
			Pickups:  "Unlimited pickups",
			Discount: "10% off yearly",
		},
	}
}
