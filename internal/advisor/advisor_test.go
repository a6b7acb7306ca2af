package advisor

import (
	"errors"
	"math"
	"testing"

	"dupfinder/internal/models"
)

func image(fingerprint uint64) *models.FileInfo {
	return &models.FileInfo{Path: "img", Hash: fingerprint}
}

// lowBits returns a fingerprint with the n lowest bits set, so two
// such fingerprints have Hamming distance |a-b|.
func lowBits(n int) uint64 {
	return (uint64(1) << n) - 1
}

func TestAnalyze_NotEnoughImages(t *testing.T) {
	if _, err := Analyze(nil, false); !errors.Is(err, ErrNotEnoughImages) {
		t.Errorf("expected ErrNotEnoughImages for no images, got %v", err)
	}
	if _, err := Analyze([]*models.FileInfo{image(0)}, false); !errors.Is(err, ErrNotEnoughImages) {
		t.Errorf("expected ErrNotEnoughImages for one image, got %v", err)
	}
}

func TestAnalyze_AllIdentical(t *testing.T) {
	images := []*models.FileInfo{image(42), image(42), image(42)}

	report, err := Analyze(images, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.SuggestedSimilarity != 0.95 {
		t.Errorf("all-zero distances should suggest 0.95, got %g", report.SuggestedSimilarity)
	}
	if report.TotalPairs != 3 {
		t.Errorf("expected 3 pairs, got %d", report.TotalPairs)
	}
	for _, p := range report.TopPairs {
		if p.Distance != 0 || p.Similarity != 1.0 {
			t.Errorf("pair dist=%d sim=%g, want 0 and 1.0", p.Distance, p.Similarity)
		}
	}
}

func TestAnalyze_Suggestion(t *testing.T) {
	tests := []struct {
		name       string
		minNonZero int
		expected   float64
	}{
		// 1-(2+3)/64 = 0.921875 -> 0.92, clamped to the 0.90 ceiling
		{"clamped high", 2, 0.90},
		// 1-(10+3)/64 = 0.796875 -> 0.80
		{"in range", 10, 0.80},
		// 1-(32+3)/64 = 0.453125 -> 0.45, clamped to the 0.70 floor
		{"clamped low", 32, 0.70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images := []*models.FileInfo{image(0), image(lowBits(tt.minNonZero))}
			report, err := Analyze(images, false)
			if err != nil {
				t.Fatalf("Analyze failed: %v", err)
			}
			if report.SuggestedSimilarity != tt.expected {
				t.Errorf("suggestion = %g, want %g", report.SuggestedSimilarity, tt.expected)
			}
		})
	}
}

func TestAnalyze_SuggestionAlwaysInRange(t *testing.T) {
	// Across a spread of minimum distances the suggestion stays inside
	// [0.70, 0.90] (identical-only sets are the 0.95 exception).
	for dist := 1; dist <= 64; dist++ {
		images := []*models.FileInfo{image(0), image(lowBits(dist))}
		report, err := Analyze(images, false)
		if err != nil {
			t.Fatalf("Analyze failed at distance %d: %v", dist, err)
		}
		if report.SuggestedSimilarity < 0.70 || report.SuggestedSimilarity > 0.90 {
			t.Errorf("distance %d: suggestion %g outside [0.70, 0.90]",
				dist, report.SuggestedSimilarity)
		}
	}
}

func TestAnalyze_TopPairs(t *testing.T) {
	// 6 images with pairwise-distinct distances: 15 pairs, top list
	// capped at 10 and sorted ascending.
	var images []*models.FileInfo
	for i := 0; i < 6; i++ {
		images = append(images, image(lowBits(i * 4)))
	}

	report, err := Analyze(images, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if report.TotalPairs != 15 {
		t.Errorf("expected 15 pairs, got %d", report.TotalPairs)
	}
	if len(report.TopPairs) != 10 {
		t.Errorf("expected 10 top pairs, got %d", len(report.TopPairs))
	}
	for i := 1; i < len(report.TopPairs); i++ {
		if report.TopPairs[i].Distance < report.TopPairs[i-1].Distance {
			t.Errorf("top pairs not ascending at %d: %d < %d",
				i, report.TopPairs[i].Distance, report.TopPairs[i-1].Distance)
		}
	}
	for _, p := range report.TopPairs {
		want := 1 - float64(p.Distance)/64
		if math.Abs(p.Similarity-want) > 1e-9 {
			t.Errorf("pair similarity %g does not match distance %d", p.Similarity, p.Distance)
		}
	}
}

func TestAnalyze_VerboseGating(t *testing.T) {
	images := []*models.FileInfo{image(0), image(3), image(lowBits(40))}

	terse, err := Analyze(images, false)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if terse.AllPairs != nil || terse.Histogram != nil {
		t.Error("non-verbose report should omit all-pairs and histogram")
	}

	verbose, err := Analyze(images, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if len(verbose.AllPairs) != verbose.TotalPairs {
		t.Errorf("verbose all-pairs length %d, want %d", len(verbose.AllPairs), verbose.TotalPairs)
	}
	if len(verbose.Histogram) != 8 {
		t.Errorf("expected 8 histogram buckets, got %d", len(verbose.Histogram))
	}
}

func TestAnalyze_HistogramSumsToTotal(t *testing.T) {
	// Distances spanning several buckets including the overflow one
	images := []*models.FileInfo{
		image(0),
		image(lowBits(2)),  // dist 2 to first
		image(lowBits(12)), // 12 and 10
		image(lowBits(28)), // 28, 26, 16
		image(lowBits(63)), // 63, 61, 51, 35
	}

	report, err := Analyze(images, true)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	sum := 0
	var pctSum float64
	for _, bucket := range report.Histogram {
		sum += bucket.Count
		pctSum += bucket.Percent
	}
	if sum != report.TotalPairs {
		t.Errorf("histogram counts sum to %d, want %d", sum, report.TotalPairs)
	}
	if math.Abs(pctSum-100) > 1e-6 {
		t.Errorf("histogram percentages sum to %g, want 100", pctSum)
	}

	// Overflow bucket catches the >30 distances (35, 51, 61, 63)
	overflow := report.Histogram[len(report.Histogram)-1]
	if overflow.Count != 4 {
		t.Errorf("overflow bucket count = %d, want 4", overflow.Count)
	}
}
