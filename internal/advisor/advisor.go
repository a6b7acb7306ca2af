// Package advisor computes pairwise fingerprint distances for a set of
// images and derives a suggested similarity threshold. It is a
// read-only analysis; it never groups or deletes anything.
package advisor

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"dupfinder/internal/hash"
	"dupfinder/internal/models"
)

// ErrNotEnoughImages is returned when fewer than 2 valid images are
// available for pairwise comparison. This is a defined condition, not
// the same as "no close pairs found".
var ErrNotEnoughImages = errors.New("not enough images to compare (need at least 2)")

// topPairCount limits the always-shown closest pairs for readability.
const topPairCount = 10

// bufferBits widens the suggested cutoff past the closest observed
// non-identical pair. 2 is tighter, 4-6 more forgiving.
const bufferBits = 3

// histogramBounds are the cumulative bucket boundaries in bits.
var histogramBounds = []int{0, 5, 10, 15, 20, 25, 30}

// Pair is one pairwise comparison, rendered with its normalized
// similarity.
type Pair struct {
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
	PathA      string  `json:"path_a"`
	PathB      string  `json:"path_b"`
}

// Bucket is one histogram bucket. Each pair is counted in exactly one
// bucket, so bucket counts sum to the total pair count.
type Bucket struct {
	Label   string  `json:"label"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Report is the structured advisor output. Rendering is the caller's
// concern.
type Report struct {
	Images              int      `json:"images"`
	TotalPairs          int      `json:"total_pairs"`
	TopPairs            []Pair   `json:"top_pairs"`
	SuggestedSimilarity float64  `json:"suggested_similarity"`
	AllPairs            []Pair   `json:"all_pairs,omitempty"`
	Histogram           []Bucket `json:"histogram,omitempty"`
}

// Analyze computes all pairwise distances between the given image
// fingerprints and derives the threshold suggestion. With verbose set,
// the report also carries the full sorted pair list and the distance
// histogram.
func Analyze(images []*models.FileInfo, verbose bool) (*Report, error) {
	n := len(images)
	if n < 2 {
		return nil, ErrNotEnoughImages
	}

	pairs := make([]Pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dist := hash.HammingDistance(images[i].Hash, images[j].Hash)
			pairs = append(pairs, Pair{
				Distance:   dist,
				Similarity: hash.Similarity(dist),
				PathA:      images[i].Path,
				PathB:      images[j].Path,
			})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].Distance < pairs[j].Distance
	})

	report := &Report{
		Images:              n,
		TotalPairs:          len(pairs),
		SuggestedSimilarity: suggestThreshold(pairs),
	}

	top := topPairCount
	if top > len(pairs) {
		top = len(pairs)
	}
	report.TopPairs = pairs[:top]

	if verbose {
		report.AllPairs = pairs
		report.Histogram = buildHistogram(pairs)
	}

	return report, nil
}

// suggestThreshold derives a similarity cutoff from the smallest
// strictly-positive distance observed, plus a fixed buffer. When every
// pair is identical there is nothing to calibrate against and 0.95 is
// suggested directly.
func suggestThreshold(pairs []Pair) float64 {
	minNonZero := 0
	for _, p := range pairs {
		if p.Distance > 0 && (minNonZero == 0 || p.Distance < minNonZero) {
			minNonZero = p.Distance
		}
	}
	if minNonZero == 0 {
		return 0.95
	}

	suggested := hash.Similarity(minNonZero + bufferBits)
	suggested = math.Round(suggested*100) / 100
	if suggested < 0.70 {
		suggested = 0.70
	}
	if suggested > 0.90 {
		suggested = 0.90
	}
	return suggested
}

// buildHistogram assigns each pair to the smallest boundary covering
// its distance, with a separate overflow bucket past the last boundary.
func buildHistogram(pairs []Pair) []Bucket {
	counts := make([]int, len(histogramBounds)+1)
	for _, p := range pairs {
		placed := false
		for i, bound := range histogramBounds {
			if p.Distance <= bound {
				counts[i]++
				placed = true
				break
			}
		}
		if !placed {
			counts[len(histogramBounds)]++
		}
	}

	total := len(pairs)
	buckets := make([]Bucket, 0, len(counts))
	for i, count := range counts {
		var label string
		if i < len(histogramBounds) {
			label = fmt.Sprintf("≤ %2d bits", histogramBounds[i])
		} else {
			label = fmt.Sprintf("> %2d bits", histogramBounds[len(histogramBounds)-1])
		}
		buckets = append(buckets, Bucket{
			Label:   label,
			Count:   count,
			Percent: float64(count) / float64(total) * 100,
		})
	}
	return buckets
}
