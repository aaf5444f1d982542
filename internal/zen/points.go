package zen

import "sort"

// minPointGap is the minimum spacing between retained rhythm points, in
// seconds. Near-duplicates collapse to the earlier point.
const minPointGap = 0.15

// MergePoints builds the working rhythm grid from beat and onset times (both
// in seconds): sorted union with close neighbours dropped.
func MergePoints(beats, onsets []float64) []float64 {
	combined := make([]float64, 0, len(beats)+len(onsets))
	combined = append(combined, beats...)
	combined = append(combined, onsets...)
	sort.Float64s(combined)

	points := make([]float64, 0, len(combined))
	last := -1.0
	for _, t := range combined {
		if t-last > minPointGap {
			points = append(points, t)
			last = t
		}
	}
	return points
}
