// Bookgraph - Book Recommendation Catalog and Discovery Engine
// Copyright 2026 Bookgraph Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/bookgraph/bookgraph

// Package rank computes rank-based percentiles over recommendation-count
// distributions and discretizes them into display buckets.
//
// Percentiles here are rank-based (fraction of the population strictly
// below), not count/max. A single runaway bestseller therefore does not
// compress everyone else's spread.
package rank

import "sort"

// DefaultThresholds are the bucket boundaries used by the catalog view for
// background-intensity tiers, producing 6 buckets (0..5).
var DefaultThresholds = []float64{0.50, 0.80, 0.90, 0.95, 0.98}

// ComputePercentiles returns, for each id, the fraction of other ids whose
// count is strictly lower: (ids with lower count) / (total - 1). Ids sharing
// a count share a percentile. A single-id distribution yields 0 rather than
// dividing by zero.
func ComputePercentiles(counts map[string]int) map[string]float64 {
	percentiles := make(map[string]float64, len(counts))
	if len(counts) == 0 {
		return percentiles
	}
	if len(counts) == 1 {
		for id := range counts {
			percentiles[id] = 0
		}
		return percentiles
	}

	sorted := make([]int, 0, len(counts))
	for _, c := range counts {
		sorted = append(sorted, c)
	}
	sort.Ints(sorted)

	total := float64(len(counts) - 1)
	for id, c := range counts {
		// Index of the first occurrence of c == number of strictly
		// lower counts.
		below := sort.SearchInts(sorted, c)
		percentiles[id] = float64(below) / total
	}
	return percentiles
}

// Bucket returns the index of the bucket the percentile falls into, given
// ordered ascending thresholds. A percentile exactly equal to a threshold
// belongs to the higher bucket: the threshold is an exclusive lower bound of
// the next bucket.
func Bucket(percentile float64, thresholds []float64) int {
	for i, t := range thresholds {
		if percentile < t {
			return i
		}
	}
	return len(thresholds)
}
