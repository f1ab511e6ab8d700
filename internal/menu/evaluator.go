package menu

import (
	"math"
	"time"

	"github.com/ergowatches/served/internal/models"
)

// Evaluator decides which categories are on offer and what price an item
// should display at a given instant. It is a pure function of the catalog,
// the rule set and wall-clock time; results are cached per (weekday,
// minute-of-day) since that is the comparison granularity. Rule set edits
// bump the version and drop the cache.
type Evaluator struct {
	catalog *models.Catalog
	rules   *models.RuleSet

	cache        map[cacheKey][]int
	cacheVersion uint64
}

type cacheKey struct {
	day   string
	clock string
}

func NewEvaluator(catalog *models.Catalog, rules *models.RuleSet) *Evaluator {
	return &Evaluator{
		catalog: catalog,
		rules:   rules,
		cache:   make(map[cacheKey][]int),
	}
}

// ruleMatches is the shared activity/day/window predicate of both rule kinds.
func ruleMatches(active bool, days []string, window models.TimeWindow, day, clock string) bool {
	return active && matchesDay(days, day) && windowContains(window, clock)
}

func (e *Evaluator) activeIndices(day, clock string) []int {
	if v := e.rules.Version(); v != e.cacheVersion {
		e.cache = make(map[cacheKey][]int)
		e.cacheVersion = v
	}
	key := cacheKey{day: day, clock: clock}
	if indices, ok := e.cache[key]; ok {
		return indices
	}
	indices := make([]int, 0)
	for i, rule := range e.rules.Availability {
		if ruleMatches(rule.Active, rule.Days, rule.Window, day, clock) {
			indices = append(indices, i)
		}
	}
	e.cache[key] = indices
	return indices
}

// ActiveMenus returns every availability rule matching now, in catalog
// order. An empty result is a valid state: no menu is currently active.
func (e *Evaluator) ActiveMenus(now time.Time) []models.AvailabilityRule {
	day, clock := DayKey(now), ClockString(now)
	indices := e.activeIndices(day, clock)
	menus := make([]models.AvailabilityRule, 0, len(indices))
	for _, i := range indices {
		menus = append(menus, e.rules.Availability[i])
	}
	return menus
}

// VisibleCategories returns the IDs of the categories offered at now,
// deduplicated, in catalog order. Category IDs a rule names but the
// catalog does not contain stay hidden.
func (e *Evaluator) VisibleCategories(now time.Time) []string {
	day, clock := DayKey(now), ClockString(now)
	offered := make(map[string]bool)
	for _, i := range e.activeIndices(day, clock) {
		for _, id := range e.rules.Availability[i].CategoryIDs {
			offered[id] = true
		}
	}

	visible := make([]string, 0, len(offered))
	for _, cat := range e.catalog.Categories {
		if offered[cat.ID] {
			visible = append(visible, cat.ID)
		}
	}
	return visible
}

// PriceAdjustment returns the signed percentage applied to an item at now.
// Of all matching pricing rules the largest absolute adjustment wins;
// equal magnitudes keep catalog order. Zero when nothing matches.
func (e *Evaluator) PriceAdjustment(itemID, categoryID string, now time.Time) float64 {
	day, clock := DayKey(now), ClockString(now)
	var best float64
	for _, rule := range e.rules.Pricing {
		if !ruleMatches(rule.Active, rule.Days, rule.Window, day, clock) {
			continue
		}
		if rule.Target == nil || !rule.Target.Matches(itemID, categoryID) {
			continue
		}
		if math.Abs(rule.AdjustmentPct) > math.Abs(best) {
			best = rule.AdjustmentPct
		}
	}
	return best
}

// AdjustedPrice returns the display price of an item at now, rounded to
// two minor-unit decimals. The stored base price is never mutated.
func (e *Evaluator) AdjustedPrice(basePrice float64, itemID, categoryID string, now time.Time) float64 {
	adj := e.PriceAdjustment(itemID, categoryID, now)
	return RoundPrice(basePrice * (1 + adj/100))
}

// RoundPrice rounds to the currency's minor-unit precision for display.
func RoundPrice(amount float64) float64 {
	return math.Round(amount*100) / 100
}
