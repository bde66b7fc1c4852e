// internal/domain/reorder/planner.go
package reorder

import "math"

// Demand windows in days
const (
	VelocityWindowDays     = 30
	VariabilityWindowDays  = 60
	AnnualDemandWindowDays = 90
)

const (
	// minSaleDays is the fewest days with sales needed to measure variability
	minSaleDays = 7

	DefaultSafetyStock  = 10.0
	DefaultLeadTimeDays = 7
	DefaultOrderQty     = 10
)

var zScores = map[float64]float64{
	0.90: 1.28,
	0.95: 1.65,
	0.99: 2.33,
}

// ZScore returns the normal quantile for a service level. Levels other
// than 90, 95 and 99 percent fall back to 95.
func ZScore(serviceLevel float64) float64 {
	if z, ok := zScores[serviceLevel]; ok {
		return z
	}
	return zScores[0.95]
}

// SafetyStock is z × sample σ of daily sales × √lead time. Fewer than seven
// sale days give DefaultSafetyStock.
func SafetyStock(dailySales []float64, leadTimeDays int, z float64) float64 {
	if len(dailySales) < minSaleDays {
		return DefaultSafetyStock
	}
	return round2(z * sampleStdDev(dailySales) * math.Sqrt(float64(leadTimeDays)))
}

// ReorderPoint is average daily sales over the velocity window times lead
// time, plus safety stock.
func ReorderPoint(unitsInWindow float64, leadTimeDays int, safetyStock float64) float64 {
	avgDaily := unitsInWindow / VelocityWindowDays
	return round2(avgDaily*float64(leadTimeDays) + safetyStock)
}

// EconomicOrderQty is √(2 × annual demand × order cost / holding cost per
// unit), with annual demand extrapolated from the last 90 days. Without
// sales it returns DefaultOrderQty; without a holding cost, a month of demand.
func EconomicOrderQty(unitsInWindow, unitCost, orderCost, holdingCostPct float64) int {
	annualDemand := unitsInWindow / AnnualDemandWindowDays * 365
	if annualDemand == 0 {
		return DefaultOrderQty
	}

	var eoq float64
	if holding := unitCost * holdingCostPct; holding > 0 {
		eoq = math.Sqrt(2 * annualDemand * orderCost / holding)
	} else {
		eoq = annualDemand / 12
	}
	return max(int(math.RoundToEven(eoq)), 1)
}

// SuggestedQty orders enough to reach twice the reorder point, and never
// less than the economic order quantity or one unit.
func SuggestedQty(reorderPoint float64, currentStock, eoq int) int {
	qty := max(int(reorderPoint*2-float64(currentStock)), eoq)
	return max(qty, 1)
}

func sampleStdDev(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	mean := sum / float64(len(xs))

	var sq float64
	for _, x := range xs {
		sq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sq / float64(len(xs)-1))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
