package factories

import "math/rand"

type GuestFactory struct{}

// GuestName returns a display name for a split participant.
func (gf *GuestFactory) GuestName() string {
	return fake.Person().FirstName()
}

// PartySize draws a party size within the configured bounds, biased
// towards couples and four-tops.
func (gf *GuestFactory) PartySize(min, max int) int {
	if min < 2 {
		min = 2
	}
	if max < min {
		max = min
	}
	common := []int{2, 2, 2, 3, 4, 4}
	size := common[rand.Intn(len(common))]
	if size < min {
		size = min
	}
	if size > max {
		size = max
	}
	return size
}
