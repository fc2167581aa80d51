package stock

import "time"

// Projection is the derived stock state of a consumable at a point in time.
type Projection struct {
	DaysPassed   int     `json:"days_passed"`
	QuantityLeft float64 `json:"quantity_left"`
	Percent      float64 `json:"stock_percentage"`
}

// Project computes remaining stock under a linear consumption model:
// usePerDay units disappear for every full day since dateAdded.
func Project(quantity, usePerDay float64, dateAdded, now time.Time) Projection {
	days := int(now.Sub(dateAdded).Hours() / 24)
	if days < 0 {
		days = 0
	}

	left := quantity - usePerDay*float64(days)
	if left < 0 {
		left = 0
	}

	var pct float64
	if quantity > 0 {
		pct = left / quantity * 100
	}

	return Projection{DaysPassed: days, QuantityLeft: left, Percent: pct}
}

// Policy decides whether a projection counts as low stock. The dashboard
// and the medicine list use different thresholds; both are kept as
// explicit configurations rather than unified.
type Policy struct {
	Threshold float64
}

// The two thresholds in use. The divergence is historical and preserved
// on purpose.
var (
	DashboardPolicy = Policy{Threshold: 20}
	ListPolicy      = Policy{Threshold: 10}
)

// Low reports whether the projection is at or below the policy threshold.
func (p Policy) Low(proj Projection) bool {
	return proj.Percent <= p.Threshold
}
