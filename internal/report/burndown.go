package report

import "time"

// BurndownPoint is one calendar day of a sprint burndown: the actual
// remaining count and the ideal linear decline for that day.
type BurndownPoint struct {
	Date   time.Time
	Actual int
	Ideal  float64
}

// BuildBurndown produces one point per calendar day from start to end
// inclusive. The actual line is flat: completion is snapshotted once per
// run, not reconstructed per day, so every point carries total-completed.
// The ideal line interpolates linearly from the initial total down toward
// zero across the series.
func BuildBurndown(start, end time.Time, total, completed int) []BurndownPoint {
	startDay := truncateToDay(start)
	endDay := truncateToDay(end)
	if endDay.Before(startDay) {
		return nil
	}

	remaining := total - completed
	days := int(endDay.Sub(startDay).Hours()/24) + 1

	points := make([]BurndownPoint, 0, days)
	for i := 0; i < days; i++ {
		points = append(points, BurndownPoint{
			Date:   startDay.AddDate(0, 0, i),
			Actual: remaining,
			Ideal:  float64(total) - float64(total)/float64(days)*float64(i),
		})
	}
	return points
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
