// Package forecast projects daily demand for a product from its sales history.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// Alpha is the smoothing factor applied to the last observation
	Alpha = 0.3

	// ConfidenceLevel is the coverage of the emitted band
	ConfidenceLevel = 0.95

	// MaxHorizonDays caps how far ahead a forecast may reach
	MaxHorizonDays = 365

	zScore            = 1.96
	singlePointSpread = 0.2
	dateLayout        = "2006-01-02"
)

// ErrInvalidHorizon is returned for horizons outside [1, MaxHorizonDays]
var ErrInvalidHorizon = errors.New("invalid forecast horizon")

// DemandPoint is the quantity of a product sold on one calendar day
type DemandPoint struct {
	Date     time.Time `json:"date"`
	Quantity float64   `json:"quantity"`
}

// Point is one forecast day
type Point struct {
	Date       string  `json:"date"`
	Value      float64 `json:"predicted_demand"`
	LowerBound float64 `json:"lower_bound"`
	UpperBound float64 `json:"upper_bound"`
}

// Forecast projects horizonDays days past the last point of history, which
// must be in ascending date order. Empty history yields an empty forecast.
//
// The recurrence feeds the last observed quantity back in every step and the
// trend is the first-to-last change divided by the number of observations,
// not by elapsed days.
func Forecast(history []DemandPoint, horizonDays int) ([]Point, error) {
	if horizonDays < 1 || horizonDays > MaxHorizonDays {
		return nil, fmt.Errorf("%w: %d days, must be between 1 and %d", ErrInvalidHorizon, horizonDays, MaxHorizonDays)
	}

	n := len(history)
	if n == 0 {
		return []Point{}, nil
	}

	q := make([]float64, n)
	for i, p := range history {
		q[i] = p.Quantity
	}

	baseline := Mean(q)
	stdDev := baseline * singlePointSpread
	if n > 1 {
		stdDev = StdDev(q)
	}

	last := q[n-1]
	trend := (last - q[0]) / float64(n)
	lastDate := history[n-1].Date

	points := make([]Point, 0, horizonDays)
	smoothed := last
	for d := 1; d <= horizonDays; d++ {
		smoothed = Alpha*last + (1-Alpha)*(smoothed+trend)
		margin := zScore * stdDev * math.Sqrt(float64(d))

		points = append(points, Point{
			Date:       lastDate.AddDate(0, 0, d).Format(dateLayout),
			Value:      round2(math.Max(0, smoothed)),
			LowerBound: round2(math.Max(0, smoothed-margin)),
			UpperBound: round2(smoothed + margin),
		})
	}

	return points, nil
}

// Mean is the arithmetic mean of xs, 0 when empty
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev is the population standard deviation of xs
func StdDev(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := Mean(xs)
	sumSq := 0.0
	for _, x := range xs {
		sumSq += (x - mean) * (x - mean)
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
