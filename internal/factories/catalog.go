package factories

import (
	"math/rand"

	"github.com/ergowatches/served/internal/models"

	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

var fake = faker.New()

type CatalogFactory struct{}

type categorySeed struct {
	id     string
	name   string
	dishes []string
	minIdx float64 // price band within [MinItemPrice, MaxItemPrice], 0..1
	maxIdx float64
}

var categorySeeds = []categorySeed{
	{"breakfast", "Breakfast", []string{"Eggs Benedict", "Shakshuka", "French Toast", "Granola Bowl", "Full English", "Avocado Toast"}, 0.2, 0.5},
	{"mains", "Mains", []string{"Grilled Salmon", "Ribeye Steak", "Chicken Milanese", "Mushroom Risotto", "Lamb Shank", "Seafood Linguine"}, 0.5, 1.0},
	{"pizza", "Pizza", []string{"Margherita", "Pepperoni", "Quattro Formaggi", "Diavola", "Prosciutto e Rucola"}, 0.3, 0.7},
	{"salads", "Salads", []string{"Caesar Salad", "Greek Salad", "Burrata Caprese", "Quinoa Salad"}, 0.2, 0.5},
	{"desserts", "Desserts", []string{"Tiramisu", "Panna Cotta", "Chocolate Fondant", "Baklava", "Affogato"}, 0.1, 0.3},
	{"drinks", "Drinks", []string{"House Lemonade", "Espresso", "Negroni", "Aperol Spritz", "Craft IPA", "Fresh Orange Juice"}, 0.0, 0.3},
}

var allergenTags = []string{"gluten", "dairy", "egg", "nuts", "fish", "shellfish", "soy", "sesame"}

// CreateCatalog fabricates a demo catalog within the configured price and
// size bounds. IDs are cuids so generated catalogs can be bulk-loaded
// without collisions.
func (cf *CatalogFactory) CreateCatalog(config *models.Config) *models.Catalog {
	minItems, maxItems := config.MinItemsPerCategory, config.MaxItemsPerCategory
	if minItems <= 0 {
		minItems = 3
	}
	if maxItems < minItems {
		maxItems = minItems + 3
	}
	minPrice, maxPrice := config.MinItemPrice, config.MaxItemPrice
	if maxPrice <= minPrice {
		minPrice, maxPrice = 4, 42
	}

	var categories []models.Category
	var items []models.MenuItem
	for _, seed := range categorySeeds {
		categories = append(categories, models.Category{ID: seed.id, Name: seed.name})

		count := minItems + rand.Intn(maxItems-minItems+1)
		if count > len(seed.dishes) {
			count = len(seed.dishes)
		}
		for i := 0; i < count; i++ {
			lo := minPrice + seed.minIdx*(maxPrice-minPrice)
			hi := minPrice + seed.maxIdx*(maxPrice-minPrice)
			items = append(items, models.MenuItem{
				ID:         cuid.New(),
				CategoryID: seed.id,
				Price:      roundToCents(lo + rand.Float64()*(hi-lo)),
				Name: models.LocalizedText{
					"en": seed.dishes[i],
					"es": seed.dishes[i],
				},
				Description: models.LocalizedText{
					"en": fake.Lorem().Sentence(8),
					"es": fake.Lorem().Sentence(8),
				},
				Allergens: randomAllergens(),
			})
		}
	}

	return models.NewCatalog(categories, items)
}

func randomAllergens() []string {
	count := rand.Intn(3) // 0 to 2 tags
	tags := make([]string, 0, count)
	for i := 0; i < count; i++ {
		tags = append(tags, allergenTags[rand.Intn(len(allergenTags))])
	}
	return tags
}

func roundToCents(amount float64) float64 {
	return float64(int(amount*100+0.5)) / 100
}
