package simulator

import (
	"time"

	"github.com/ergowatches/served/internal/models"
	"github.com/ergowatches/served/internal/split"
)

// seatingPattern is the relative arrival intensity per hour of day,
// peaking at lunch and dinner service.
var seatingPattern = map[int]float64{
	7: 0.2, 8: 0.3, 9: 0.2, 10: 0.1,
	11: 0.4, 12: 1.0, 13: 0.9, 14: 0.4,
	15: 0.2, 16: 0.3, 17: 0.5, 18: 0.8,
	19: 1.0, 20: 0.9, 21: 0.5, 22: 0.2,
}

// weekend evenings run hotter than weekdays
var weekendBoost = map[time.Weekday]float64{
	time.Friday:   1.3,
	time.Saturday: 1.4,
	time.Sunday:   1.1,
}

func seatingFactor(t time.Time) float64 {
	factor := seatingPattern[t.Hour()]
	if boost, ok := weekendBoost[t.Weekday()]; ok {
		factor *= boost
	}
	return factor
}

func (s *Simulator) jitterMinutes(min, max int) time.Duration {
	if max <= min {
		return time.Duration(min) * time.Minute
	}
	return time.Duration(min+s.Rng.Intn(max-min)) * time.Minute
}

// buildCart assembles an order from what the menu currently offers, at
// the prices the evaluator displays right now. Repeat picks of the same
// item merge into one line with a higher quantity.
func (s *Simulator) buildCart(guestCount int) []models.CartLine {
	var candidates []*models.MenuItem
	for _, categoryID := range s.Evaluator.VisibleCategories(s.CurrentTime) {
		candidates = append(candidates, s.Catalog.CategoryItems(categoryID)...)
	}
	if len(candidates) == 0 {
		return nil
	}

	var favorites []*models.MenuItem
	for _, item := range candidates {
		if s.Profile.HasFavorite(item.ID) {
			favorites = append(favorites, item)
		}
	}

	picks := guestCount + s.Rng.Intn(guestCount+1)
	var lines []models.CartLine
	index := make(map[string]int)
	for i := 0; i < picks; i++ {
		var item *models.MenuItem
		if len(favorites) > 0 && s.Rng.Float64() < 0.3 {
			item = favorites[s.Rng.Intn(len(favorites))]
		} else {
			item = candidates[s.Rng.Intn(len(candidates))]
		}

		if li, ok := index[item.ID]; ok {
			lines[li].Quantity++
			continue
		}
		index[item.ID] = len(lines)
		lines = append(lines, models.CartLine{
			ItemID:    item.ID,
			Name:      item.DisplayName(s.Config.DefaultLocale),
			UnitPrice: s.Evaluator.AdjustedPrice(item.Price, item.ID, item.CategoryID, s.CurrentTime),
			Quantity:  1,
		})
	}
	return lines
}

// randomSplitOp plays one guest interaction against the split: nudging a
// share, a latecomer joining, or someone leaving early. Rejected
// mutations are reported as such; the split state is untouched then.
func (s *Simulator) randomSplitOp(sess *activeSession) (string, bool) {
	participants := sess.split.Participants()
	lines := sess.split.Lines()

	switch s.Rng.Intn(4) {
	case 0:
		if len(participants) >= s.Config.MaxGuests {
			return "add_participant", false
		}
		sess.split.AddParticipant(s.guestFactory.GuestName())
		sess.GuestCount++
		return "add_participant", true
	case 1:
		p := participants[s.Rng.Intn(len(participants))]
		err := sess.split.RemoveParticipant(p.ID)
		return "remove_participant", err == nil
	default:
		line := lines[s.Rng.Intn(len(lines))]
		p := participants[s.Rng.Intn(len(participants))]
		dir := split.Up
		if s.Rng.Intn(2) == 0 {
			dir = split.Down
		}
		err := sess.split.AdjustShare(line.ItemID, p.ID, dir)
		return "adjust_share", err == nil
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
