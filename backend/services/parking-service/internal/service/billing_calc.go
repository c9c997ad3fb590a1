package service

import (
	"math"
	"time"

	"parkinglot/backend/services/parking-service/internal/models"
)

// DefaultGracePeriod is how long a session may last before it is billed at all.
const DefaultGracePeriod = 3 * time.Minute

const billingDay = 24 * time.Hour

// Quote is the result of pricing an elapsed duration.
// Days counts whole 24h windows, Hours the started hours of the trailing partial window.
type Quote struct {
	Days   int
	Hours  int
	Amount float64
}

// Calculator prices parking time: started hours at the hourly rate, each 24h window capped at
// the daily rate, nothing at all within the grace period.
type Calculator struct {
	grace time.Duration
}

// NewCalculator returns calculator with the given grace period; negative values mean none.
func NewCalculator(grace time.Duration) *Calculator {
	if grace < 0 {
		grace = 0
	}
	return &Calculator{grace: grace}
}

// GracePeriod returns configured free period.
func (c *Calculator) GracePeriod() time.Duration {
	return c.grace
}

// Quote prices elapsed against tariff. A daily tariff <= 0 means no daily cap.
func (c *Calculator) Quote(elapsed time.Duration, tariff models.Tariff) Quote {
	if elapsed < 0 {
		elapsed = 0
	}
	days := int(elapsed / billingDay)
	rest := elapsed - time.Duration(days)*billingDay
	hours := int(rest / time.Hour)
	if rest%time.Hour != 0 {
		hours++
	}

	q := Quote{Days: days, Hours: hours}
	if elapsed <= c.grace {
		return q
	}

	hourly := math.Max(tariff.Hourly, 0)
	daily := math.Max(tariff.Daily, 0)

	dayPrice := 24 * hourly
	if daily > 0 && daily < dayPrice {
		dayPrice = daily
	}
	partial := float64(hours) * hourly
	if daily > 0 && partial > daily {
		partial = daily
	}

	q.Amount = roundCents(float64(days)*dayPrice + partial)
	return q
}

// DurationMinutes truncates elapsed to whole minutes, never negative.
func DurationMinutes(elapsed time.Duration) int {
	if elapsed < 0 {
		return 0
	}
	return int(elapsed / time.Minute)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
