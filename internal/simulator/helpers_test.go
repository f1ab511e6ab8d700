package simulator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSeatingFactorFollowsServicePeaks(t *testing.T) {
	monday := func(hour int) time.Time {
		return time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	}

	assert.Zero(t, seatingFactor(monday(3)), "closed hours draw nobody")
	assert.Greater(t, seatingFactor(monday(12)), seatingFactor(monday(15)), "lunch beats mid-afternoon")
	assert.Greater(t, seatingFactor(monday(19)), seatingFactor(monday(22)), "dinner beats closing time")

	saturdayDinner := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)
	assert.Greater(t, seatingFactor(saturdayDinner), seatingFactor(monday(19)), "weekend boost applies")
}

func TestEqualStrings(t *testing.T) {
	assert.True(t, equalStrings(nil, nil))
	assert.True(t, equalStrings([]string{"a", "b"}, []string{"a", "b"}))
	assert.False(t, equalStrings([]string{"a"}, []string{"a", "b"}))
	assert.False(t, equalStrings([]string{"a", "b"}, []string{"b", "a"}))
}
