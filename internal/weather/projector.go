package weather

// ForecastWindow is the number of forecast points shown.
const ForecastWindow = 5

// ProjectForecast returns the first ForecastWindow points of the list, in
// their original order. It is a plain prefix: no per-day selection or
// aggregation happens, so with 3-hour steps the window covers about 15 hours.
func ProjectForecast(points []ForecastPoint) []ForecastPoint {
	n := len(points)
	if n > ForecastWindow {
		n = ForecastWindow
	}
	out := make([]ForecastPoint, n)
	copy(out, points[:n])
	return out
}
