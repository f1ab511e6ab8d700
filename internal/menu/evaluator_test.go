package menu

import (
	"testing"
	"time"

	"github.com/ergowatches/served/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// 2026-03-02 is a Monday, 2026-03-07 a Saturday.
	mondayBrunch   = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	mondayEleven   = time.Date(2026, 3, 2, 11, 0, 0, 0, time.UTC)
	mondayEvening  = time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	saturdayBrunch = time.Date(2026, 3, 7, 9, 30, 0, 0, time.UTC)
)

func testCatalog() *models.Catalog {
	categories := []models.Category{
		{ID: "cat-breakfast", Name: "Breakfast"},
		{ID: "cat-mains", Name: "Mains"},
		{ID: "cat-drinks", Name: "Drinks"},
	}
	items := []models.MenuItem{
		{ID: "item-omelette", CategoryID: "cat-breakfast", Price: 8.50, Name: models.LocalizedText{"en": "Omelette"}},
		{ID: "item-burger", CategoryID: "cat-mains", Price: 14.00, Name: models.LocalizedText{"en": "Burger"}},
		{ID: "item-lager", CategoryID: "cat-drinks", Price: 6.00, Name: models.LocalizedText{"en": "Lager"}},
	}
	return models.NewCatalog(categories, items)
}

func testRuleSet() *models.RuleSet {
	availability := []models.AvailabilityRule{
		{
			ID:          "avail-breakfast",
			Name:        "Breakfast",
			Window:      models.TimeWindow{Start: "07:00", End: "11:00"},
			Days:        []string{"mon", "tue", "wed", "thu", "fri"},
			CategoryIDs: []string{"cat-breakfast", "cat-drinks"},
			Active:      true,
		},
		{
			ID:          "avail-all-day",
			Name:        "All Day",
			Window:      models.TimeWindow{Start: "11:00", End: "22:00"},
			Days:        []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
			CategoryIDs: []string{"cat-mains", "cat-drinks", "cat-ghost"},
			Active:      true,
		},
	}
	return models.NewRuleSet(availability, nil)
}

func TestActiveMenusWindowBoundaries(t *testing.T) {
	e := NewEvaluator(testCatalog(), testRuleSet())

	tests := []struct {
		name string
		now  time.Time
		want []string
	}{
		{"mid-morning weekday hits breakfast", mondayBrunch, []string{"avail-breakfast"}},
		{"window end rolls over to all day", mondayEleven, []string{"avail-all-day"}},
		{"evening hits all day", mondayEvening, []string{"avail-all-day"}},
		{"weekday-only rule skips saturday", saturdayBrunch, nil},
		{"small hours match nothing", time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menus := e.ActiveMenus(tt.now)
			ids := make([]string, 0, len(menus))
			for _, m := range menus {
				ids = append(ids, m.ID)
			}
			if tt.want == nil {
				assert.Empty(t, ids)
			} else {
				assert.Equal(t, tt.want, ids)
			}
		})
	}
}

func TestActiveMenusSkipsInactiveRules(t *testing.T) {
	rules := testRuleSet()
	e := NewEvaluator(testCatalog(), rules)

	require.True(t, rules.SetAvailabilityActive("avail-breakfast", false))
	assert.Empty(t, e.ActiveMenus(mondayBrunch))

	require.True(t, rules.SetAvailabilityActive("avail-breakfast", true))
	menus := e.ActiveMenus(mondayBrunch)
	require.Len(t, menus, 1)
	assert.Equal(t, "avail-breakfast", menus[0].ID)
}

func TestVisibleCategories(t *testing.T) {
	rules := testRuleSet()
	// overlapping rule so drinks is offered twice at 18:00
	rules.AddAvailability(models.AvailabilityRule{
		ID:          "avail-evening-drinks",
		Name:        "Evening Drinks",
		Window:      models.TimeWindow{Start: "17:00", End: "22:00"},
		Days:        []string{"mon", "tue", "wed", "thu", "fri"},
		CategoryIDs: []string{"cat-drinks"},
		Active:      true,
	})
	e := NewEvaluator(testCatalog(), rules)

	t.Run("deduplicated in catalog order", func(t *testing.T) {
		assert.Equal(t, []string{"cat-mains", "cat-drinks"}, e.VisibleCategories(mondayEvening))
	})

	t.Run("unknown category IDs stay hidden", func(t *testing.T) {
		// avail-all-day names cat-ghost, which the catalog does not contain
		for _, id := range e.VisibleCategories(mondayEvening) {
			assert.NotEqual(t, "cat-ghost", id)
		}
	})

	t.Run("no active rules means empty menu", func(t *testing.T) {
		assert.Empty(t, e.VisibleCategories(saturdayBrunch))
	})
}

func pricingRule(id string, pct float64, target models.PricingTarget) models.PricingRule {
	return models.PricingRule{
		ID:            id,
		Name:          id,
		AdjustmentPct: pct,
		Window:        models.TimeWindow{Start: "00:00", End: "23:59"},
		Days:          []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"},
		Active:        true,
		Target:        target,
	}
}

func TestPriceAdjustment(t *testing.T) {
	drinks := models.CategoryTarget{CategoryIDs: []string{"cat-drinks"}}
	lager := models.ItemTarget{ItemIDs: []string{"item-lager"}}

	tests := []struct {
		name  string
		rules []models.PricingRule
		want  float64
	}{
		{
			name:  "no matching rule leaves price untouched",
			rules: nil,
			want:  0,
		},
		{
			name:  "single category rule",
			rules: []models.PricingRule{pricingRule("pr-happy-hour", -15, drinks)},
			want:  -15,
		},
		{
			name: "largest absolute adjustment wins",
			rules: []models.PricingRule{
				pricingRule("pr-small", -5, drinks),
				pricingRule("pr-big", 20, lager),
			},
			want: 20,
		},
		{
			name: "surcharge can outrank a discount",
			rules: []models.PricingRule{
				pricingRule("pr-discount", -10, drinks),
				pricingRule("pr-surcharge", 12, lager),
			},
			want: 12,
		},
		{
			name: "equal magnitudes keep the earlier rule",
			rules: []models.PricingRule{
				pricingRule("pr-first", -10, drinks),
				pricingRule("pr-second", 10, lager),
			},
			want: -10,
		},
		{
			name: "inactive rules are skipped",
			rules: []models.PricingRule{
				func() models.PricingRule {
					r := pricingRule("pr-off", -50, drinks)
					r.Active = false
					return r
				}(),
				pricingRule("pr-on", -5, drinks),
			},
			want: -5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEvaluator(testCatalog(), models.NewRuleSet(nil, tt.rules))
			got := e.PriceAdjustment("item-lager", "cat-drinks", mondayBrunch)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestAdjustedPriceRounding(t *testing.T) {
	drinks := models.CategoryTarget{CategoryIDs: []string{"cat-drinks"}}
	rules := models.NewRuleSet(nil, []models.PricingRule{pricingRule("pr-happy-hour", -15, drinks)})
	e := NewEvaluator(testCatalog(), rules)

	// 6.00 * 0.85 = 5.10
	assert.InDelta(t, 5.10, e.AdjustedPrice(6.00, "item-lager", "cat-drinks", mondayBrunch), 1e-9)
	// 9.99 * 0.85 = 8.4915, displayed as 8.49
	assert.InDelta(t, 8.49, e.AdjustedPrice(9.99, "item-lager", "cat-drinks", mondayBrunch), 1e-9)
	// untargeted item keeps its base price
	assert.InDelta(t, 14.00, e.AdjustedPrice(14.00, "item-burger", "cat-mains", mondayBrunch), 1e-9)
}

func TestEvaluatorCacheInvalidatesOnRuleEdits(t *testing.T) {
	rules := testRuleSet()
	e := NewEvaluator(testCatalog(), rules)

	// prime the cache
	assert.Equal(t, []string{"cat-breakfast", "cat-drinks"}, e.VisibleCategories(mondayBrunch))

	rules.AddAvailability(models.AvailabilityRule{
		ID:          "avail-specials",
		Name:        "Specials",
		Window:      models.TimeWindow{Start: "09:00", End: "10:00"},
		Days:        []string{"mon"},
		CategoryIDs: []string{"cat-mains"},
		Active:      true,
	})
	assert.Equal(t, []string{"cat-breakfast", "cat-mains", "cat-drinks"}, e.VisibleCategories(mondayBrunch))

	require.True(t, rules.RemoveAvailability("avail-specials"))
	assert.Equal(t, []string{"cat-breakfast", "cat-drinks"}, e.VisibleCategories(mondayBrunch))
}

func TestRoundPrice(t *testing.T) {
	assert.InDelta(t, 8.49, RoundPrice(8.4915), 1e-9)
	assert.InDelta(t, 8.50, RoundPrice(8.496), 1e-9)
	assert.InDelta(t, 0, RoundPrice(0), 1e-9)
}
