package factories

import (
	"math/rand"

	"github.com/ergowatches/served/internal/models"

	"github.com/lucsky/cuid"
)

type RuleFactory struct{}

var weekdays = []string{"mon", "tue", "wed", "thu", "fri"}
var weekend = []string{"sat", "sun"}
var allDays = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// CreateRuleSet fabricates a menu rotation and dynamic pricing setup for a
// generated catalog: breakfast and all-day rotations plus a happy hour,
// a weekday lunch special and a weekend surcharge.
func (rf *RuleFactory) CreateRuleSet(catalog *models.Catalog) *models.RuleSet {
	availability := []models.AvailabilityRule{
		{
			ID:          cuid.New(),
			Name:        "Breakfast",
			Window:      models.TimeWindow{Start: "07:00", End: "11:00"},
			Days:        weekdays,
			CategoryIDs: []string{"breakfast", "drinks"},
			Active:      true,
		},
		{
			ID:          cuid.New(),
			Name:        "Weekend Brunch",
			Window:      models.TimeWindow{Start: "08:00", End: "13:00"},
			Days:        weekend,
			CategoryIDs: []string{"breakfast", "salads", "drinks"},
			Active:      true,
		},
		{
			ID:          cuid.New(),
			Name:        "All Day",
			Window:      models.TimeWindow{Start: "11:00", End: "22:00"},
			Days:        allDays,
			CategoryIDs: []string{"mains", "pizza", "salads", "drinks"},
			Active:      true,
		},
		{
			ID:          cuid.New(),
			Name:        "Dinner",
			Window:      models.TimeWindow{Start: "17:00", End: "22:00"},
			Days:        allDays,
			CategoryIDs: []string{"desserts"},
			Active:      true,
		},
	}

	pricing := []models.PricingRule{
		{
			ID:            cuid.New(),
			Name:          "Happy Hour",
			AdjustmentPct: -15,
			Window:        models.TimeWindow{Start: "16:00", End: "18:00"},
			Days:          weekdays,
			Active:        true,
			Target:        models.CategoryTarget{CategoryIDs: []string{"drinks"}},
		},
		{
			ID:            cuid.New(),
			Name:          "Weekend Pizza",
			AdjustmentPct: 10,
			Window:        models.TimeWindow{Start: "11:00", End: "22:00"},
			Days:          weekend,
			Active:        true,
			Target:        models.CategoryTarget{CategoryIDs: []string{"pizza"}},
		},
		{
			ID:            cuid.New(),
			Name:          "Lunch Special",
			AdjustmentPct: -10,
			Window:        models.TimeWindow{Start: "11:30", End: "14:00"},
			Days:          weekdays,
			Active:        true,
			Target:        models.ItemTarget{ItemIDs: pickItemIDs(catalog, "mains", 3)},
		},
	}

	return models.NewRuleSet(availability, pricing)
}

// CreatePromoCodes returns the demo promo code table.
func (rf *RuleFactory) CreatePromoCodes() []models.Discount {
	return []models.Discount{
		{Code: "WELCOME10", Kind: models.DiscountPercent, Value: 10},
		{Code: "REGULAR5", Kind: models.DiscountFixed, Value: 5},
	}
}

func pickItemIDs(catalog *models.Catalog, categoryID string, count int) []string {
	items := catalog.CategoryItems(categoryID)
	if len(items) == 0 {
		return nil
	}
	if count > len(items) {
		count = len(items)
	}
	perm := rand.Perm(len(items))
	ids := make([]string, 0, count)
	for _, i := range perm[:count] {
		ids = append(ids, items[i].ID)
	}
	return ids
}
