package reporting

import "sort"

// PlaceholderLabel is emitted when an aggregate has no qualifying records,
// so chart consumers never receive an empty series.
const PlaceholderLabel = "no data"

// Series is the common chart-feeding output shape: parallel labels/values
// plus a scaling maximum that is never below the true maximum and never zero.
type Series struct {
	Labels   []string  `json:"labels"`
	Values   []float64 `json:"values"`
	MaxValue float64   `json:"maxValue"`
}

func placeholderSeries() Series {
	return Series{Labels: []string{PlaceholderLabel}, Values: []float64{0}, MaxValue: 1}
}

// rank tallies records by keyFn, weighting each occurrence by countFn, then
// returns the top entries sorted by count descending. Ties keep first-seen
// scan order, so the output is deterministic for any permutation-producing
// map iteration. Entries with an empty key are skipped.
func rank[T any](records []T, keyFn func(T) string, countFn func(T) float64, limit int) Series {
	counts := make(map[string]float64)
	order := make([]string, 0)

	for _, record := range records {
		key := keyFn(record)
		if key == "" {
			continue
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key] += countFn(record)
	}

	if len(order) == 0 {
		return placeholderSeries()
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if limit > 0 && len(order) > limit {
		order = order[:limit]
	}

	series := Series{
		Labels: make([]string, 0, len(order)),
		Values: make([]float64, 0, len(order)),
	}
	for _, key := range order {
		series.Labels = append(series.Labels, key)
		series.Values = append(series.Values, counts[key])
		if counts[key] > series.MaxValue {
			series.MaxValue = counts[key]
		}
	}
	if series.MaxValue <= 0 {
		series.MaxValue = 1
	}
	return series
}
