// Package analytics derives dashboard metrics from cached collections.
// Every function is pure and tolerates empty input; percentages and means
// over nothing are 0, never NaN.
package analytics

import (
	"cmp"
	"slices"
)

// Bucket is the count of records sharing one status or stage
type Bucket[K ~string] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// Share is one entry of a distribution
type Share struct {
	Key     string  `json:"key"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// CountBy counts items per key. Buckets follow order and include zero
// counts. Keys outside order are appended in lexical order; empty keys are
// not counted.
func CountBy[T any, K ~string](items []T, key func(T) K, order []K) []Bucket[K] {
	counts := make(map[K]int, len(order))
	for _, item := range items {
		if k := key(item); k != "" {
			counts[k]++
		}
	}

	buckets := make([]Bucket[K], 0, len(order))
	for _, k := range order {
		buckets = append(buckets, Bucket[K]{Key: k, Count: counts[k]})
		delete(counts, k)
	}

	extra := make([]K, 0, len(counts))
	for k := range counts {
		extra = append(extra, k)
	}
	slices.Sort(extra)
	for _, k := range extra {
		buckets = append(buckets, Bucket[K]{Key: k, Count: counts[k]})
	}
	return buckets
}

// CountWhere counts items matching pred
func CountWhere[T any](items []T, pred func(T) bool) int {
	n := 0
	for _, item := range items {
		if pred(item) {
			n++
		}
	}
	return n
}

// Filter returns the items matching pred, order preserved
func Filter[T any](items []T, pred func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if pred(item) {
			out = append(out, item)
		}
	}
	return out
}

// Sum adds value over items
func Sum[T any](items []T, value func(T) float64) float64 {
	var total float64
	for _, item := range items {
		total += value(item)
	}
	return total
}

// PipelineValue sums value over items whose status is not in exclude
func PipelineValue[T any, K comparable](items []T, value func(T) float64, status func(T) K, exclude ...K) float64 {
	return Sum(items, func(item T) float64 {
		if slices.Contains(exclude, status(item)) {
			return 0
		}
		return value(item)
	})
}

// Distribution returns count and percent of total per distinct non-empty
// key, sorted by count descending then key
func Distribution[T any](items []T, key func(T) string) []Share {
	counts := make(map[string]int)
	total := 0
	for _, item := range items {
		if k := key(item); k != "" {
			counts[k]++
			total++
		}
	}

	shares := make([]Share, 0, len(counts))
	for k, n := range counts {
		shares = append(shares, Share{Key: k, Count: n, Percent: Percent(n, total)})
	}
	slices.SortFunc(shares, func(a, b Share) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Key, b.Key)
	})
	return shares
}

// Percent returns part/total*100, or 0 when total is not positive
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Ratio returns num/den, or 0 when den is 0
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// Mean returns the arithmetic mean, or 0 for no values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}
