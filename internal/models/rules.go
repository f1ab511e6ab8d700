package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// TimeWindow is a wall-clock window [Start, End) with zero-padded 24-hour
// "HH:MM" bounds, compared lexicographically. Windows do not wrap midnight:
// a window whose end is not after its start matches nothing.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityRule rotates a set of categories onto the menu during a
// time window on the given weekdays ("mon".."sun").
type AvailabilityRule struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Window      TimeWindow `json:"window"`
	Days        []string   `json:"days"`
	CategoryIDs []string   `json:"category_ids"`
	Active      bool       `json:"active"`
}

// PricingTarget scopes a pricing rule to either categories or items.
type PricingTarget interface {
	Matches(itemID, categoryID string) bool
}

type CategoryTarget struct {
	CategoryIDs []string
}

func (t CategoryTarget) Matches(_, categoryID string) bool {
	for _, id := range t.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

type ItemTarget struct {
	ItemIDs []string
}

func (t ItemTarget) Matches(itemID, _ string) bool {
	for _, id := range t.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}

const (
	targetModeCategories = "categories"
	targetModeItems      = "items"
)

// PricingRule applies a signed percentage adjustment (-15 means 15% off)
// to its target while its window and weekdays match.
type PricingRule struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	AdjustmentPct float64    `json:"adjustment_pct"`
	Window        TimeWindow `json:"window"`
	Days          []string   `json:"days"`
	Active        bool       `json:"active"`
	Target        PricingTarget
}

type pricingRuleJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	AdjustmentPct float64    `json:"adjustment_pct"`
	Window        TimeWindow `json:"window"`
	Days          []string   `json:"days"`
	Active        bool       `json:"active"`
	Target        struct {
		Mode        string   `json:"mode"`
		CategoryIDs []string `json:"category_ids,omitempty"`
		ItemIDs     []string `json:"item_ids,omitempty"`
	} `json:"target"`
}

func (r *PricingRule) UnmarshalJSON(data []byte) error {
	var aux pricingRuleJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	r.ID = aux.ID
	r.Name = aux.Name
	r.AdjustmentPct = aux.AdjustmentPct
	r.Window = aux.Window
	r.Days = aux.Days
	r.Active = aux.Active
	switch aux.Target.Mode {
	case targetModeCategories:
		r.Target = CategoryTarget{CategoryIDs: aux.Target.CategoryIDs}
	case targetModeItems:
		r.Target = ItemTarget{ItemIDs: aux.Target.ItemIDs}
	default:
		return fmt.Errorf("pricing rule %s: unknown target mode %q", aux.ID, aux.Target.Mode)
	}
	return nil
}

func (r PricingRule) MarshalJSON() ([]byte, error) {
	aux := pricingRuleJSON{
		ID:            r.ID,
		Name:          r.Name,
		AdjustmentPct: r.AdjustmentPct,
		Window:        r.Window,
		Days:          r.Days,
		Active:        r.Active,
	}
	switch t := r.Target.(type) {
	case CategoryTarget:
		aux.Target.Mode = targetModeCategories
		aux.Target.CategoryIDs = t.CategoryIDs
	case ItemTarget:
		aux.Target.Mode = targetModeItems
		aux.Target.ItemIDs = t.ItemIDs
	default:
		return nil, fmt.Errorf("pricing rule %s: unsupported target %T", r.ID, r.Target)
	}
	return json.Marshal(aux)
}

const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Discount is a promo code reducing the order subtotal, either by a
// percentage or by a fixed amount. At most one applies per order.
type Discount struct {
	Code  string  `json:"code"`
	Kind  string  `json:"kind"`
	Value float64 `json:"value"`
}

// AmountOff returns the monetary reduction for the given subtotal,
// clamped so the discounted total never goes negative.
func (d Discount) AmountOff(subtotal float64) float64 {
	var off float64
	switch d.Kind {
	case DiscountPercent:
		off = subtotal * d.Value / 100
	case DiscountFixed:
		off = d.Value
	default:
		return 0
	}
	if off < 0 {
		return 0
	}
	if off > subtotal {
		return subtotal
	}
	return off
}

// FindDiscount looks a promo code up case-insensitively.
func FindDiscount(codes []Discount, code string) (Discount, bool) {
	for _, d := range codes {
		if strings.EqualFold(d.Code, code) {
			return d, true
		}
	}
	return Discount{}, false
}

// RuleSet holds the operator-editable availability and pricing rules.
// Rules live in process memory only; edits bump the version so evaluator
// caches can invalidate.
type RuleSet struct {
	Availability []AvailabilityRule
	Pricing      []PricingRule

	version uint64
}

func NewRuleSet(availability []AvailabilityRule, pricing []PricingRule) *RuleSet {
	return &RuleSet{Availability: availability, Pricing: pricing}
}

func (rs *RuleSet) Version() uint64 { return rs.version }

func (rs *RuleSet) AddAvailability(rule AvailabilityRule) {
	rs.Availability = append(rs.Availability, rule)
	rs.version++
}

func (rs *RuleSet) RemoveAvailability(id string) bool {
	for i, rule := range rs.Availability {
		if rule.ID == id {
			rs.Availability = append(rs.Availability[:i], rs.Availability[i+1:]...)
			rs.version++
			return true
		}
	}
	return false
}

// UpdateAvailability replaces the rule with the same ID.
func (rs *RuleSet) UpdateAvailability(rule AvailabilityRule) bool {
	for i := range rs.Availability {
		if rs.Availability[i].ID == rule.ID {
			rs.Availability[i] = rule
			rs.version++
			return true
		}
	}
	return false
}

func (rs *RuleSet) SetAvailabilityActive(id string, active bool) bool {
	for i := range rs.Availability {
		if rs.Availability[i].ID == id {
			rs.Availability[i].Active = active
			rs.version++
			return true
		}
	}
	return false
}

func (rs *RuleSet) AddPricing(rule PricingRule) {
	rs.Pricing = append(rs.Pricing, rule)
	rs.version++
}

func (rs *RuleSet) RemovePricing(id string) bool {
	for i, rule := range rs.Pricing {
		if rule.ID == id {
			rs.Pricing = append(rs.Pricing[:i], rs.Pricing[i+1:]...)
			rs.version++
			return true
		}
	}
	return false
}

// UpdatePricing replaces the rule with the same ID.
func (rs *RuleSet) UpdatePricing(rule PricingRule) bool {
	for i := range rs.Pricing {
		if rs.Pricing[i].ID == rule.ID {
			rs.Pricing[i] = rule
			rs.version++
			return true
		}
	}
	return false
}

func (rs *RuleSet) SetPricingActive(id string, active bool) bool {
	for i := range rs.Pricing {
		if rs.Pricing[i].ID == id {
			rs.Pricing[i].Active = active
			rs.version++
			return true
		}
	}
	return false
}
