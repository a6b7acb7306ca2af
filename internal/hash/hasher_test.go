package hash

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"dupfinder/internal/models"
)

func TestHammingDistance(t *testing.T) {
	tests := []struct {
		name     string
		hash1    uint64
		hash2    uint64
		expected int
	}{
		{"identical", 0, 0, 0},
		{"one bit", 1, 0, 1},
		{"two bits", 3, 0, 2},
		{"all bits", 0xFFFFFFFFFFFFFFFF, 0, 64},
		{"half bits", 0xAAAAAAAAAAAAAAAA, 0x5555555555555555, 64},
		{"similar", 0x8000000000000000, 0x8000000000000001, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HammingDistance(tt.hash1, tt.hash2)
			if got != tt.expected {
				t.Errorf("HammingDistance(%x, %x) = %d, want %d", tt.hash1, tt.hash2, got, tt.expected)
			}
			// Distance is symmetric
			if rev := HammingDistance(tt.hash2, tt.hash1); rev != got {
				t.Errorf("HammingDistance not symmetric: %d vs %d", got, rev)
			}
		})
	}
}

func TestIsImageCandidate(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"photo.jpg", true},
		{"photo.jpeg", true},
		{"photo.JPG", true},
		{"photo.png", true},
		{"photo.PNG", true},
		{"photo.gif", true},
		{"photo.bmp", true},
		{"photo.webp", false},
		{"photo.tiff", false},
		{"document.pdf", false},
		{"text.txt", false},
		{"noextension", false},
		{"/path/to/photo.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got := IsImageCandidate(tt.path)
			if got != tt.expected {
				t.Errorf("IsImageCandidate(%q) = %v, want %v", tt.path, got, tt.expected)
			}
		})
	}
}

func TestMaxDistance(t *testing.T) {
	tests := []struct {
		similarity float64
		expected   int
	}{
		{1.0, 0},
		{0.0, 64},
		{0.80, 12},
		{0.90, 6},
		{0.50, 32},
	}

	for _, tt := range tests {
		got := MaxDistance(tt.similarity)
		if got != tt.expected {
			t.Errorf("MaxDistance(%g) = %d, want %d", tt.similarity, got, tt.expected)
		}
	}
}

func TestSimilarity(t *testing.T) {
	if got := Similarity(0); got != 1.0 {
		t.Errorf("Similarity(0) = %g, want 1.0", got)
	}
	if got := Similarity(16); got != 0.75 {
		t.Errorf("Similarity(16) = %g, want 0.75", got)
	}
	if got := Similarity(64); got != 0.0 {
		t.Errorf("Similarity(64) = %g, want 0.0", got)
	}
}

func TestHashFile(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	if err := os.WriteFile(testFile, []byte("hello world"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	digest, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}

	// SHA-256 of "hello world"
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if digest != want {
		t.Errorf("HashFile = %s, want %s", digest, want)
	}
	if len(digest) != 64 {
		t.Errorf("digest length = %d, want 64", len(digest))
	}

	// Hashing again yields the same digest
	again, err := HashFile(testFile)
	if err != nil {
		t.Fatalf("second HashFile failed: %v", err)
	}
	if again != digest {
		t.Errorf("digest not deterministic: %s vs %s", digest, again)
	}
}

func TestHashFile_Missing(t *testing.T) {
	_, err := HashFile(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestPerceptualSupport(t *testing.T) {
	if err := PerceptualSupport(); err != nil {
		t.Fatalf("PerceptualSupport failed: %v", err)
	}
}

// writeTestPNG writes a small gradient PNG and returns its path.
func writeTestPNG(t *testing.T, dir, name string) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", name, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode %s: %v", name, err)
	}
	return path
}

func TestHashImage(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestPNG(t, tmpDir, "a.png")

	h := NewHasher()
	info, err := h.HashImage(path)
	if err != nil {
		t.Fatalf("HashImage failed: %v", err)
	}

	if info.Width != 64 || info.Height != 64 {
		t.Errorf("dimensions = %dx%d, want 64x64", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format = %s, want png", info.Format)
	}
	if info.FileSize == 0 {
		t.Error("file size should be set")
	}
	if info.Score == 0 {
		t.Error("score should be set")
	}
}

func TestHashImage_IdenticalContent(t *testing.T) {
	tmpDir := t.TempDir()
	pathA := writeTestPNG(t, tmpDir, "a.png")
	pathB := writeTestPNG(t, tmpDir, "b.png")

	h := NewHasher()
	infoA, err := h.HashImage(pathA)
	if err != nil {
		t.Fatalf("HashImage(a) failed: %v", err)
	}
	infoB, err := h.HashImage(pathB)
	if err != nil {
		t.Fatalf("HashImage(b) failed: %v", err)
	}

	if dist := HammingDistance(infoA.Hash, infoB.Hash); dist != 0 {
		t.Errorf("identical images should have distance 0, got %d", dist)
	}
}

func TestHashImage_DecodeFailure(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "broken.jpg")
	if err := os.WriteFile(path, []byte("not an image"), 0644); err != nil {
		t.Fatalf("failed to create file: %v", err)
	}

	h := NewHasher()
	if _, err := h.HashImage(path); err == nil {
		t.Fatal("expected decode error for non-image content")
	}
}

func TestCalculateScore(t *testing.T) {
	h := NewHasher()
	scoreOf := func(format string, hasExif bool) float64 {
		return h.CalculateScore(&models.FileInfo{Width: 1000, Height: 1000, Format: format, HasExif: hasExif})
	}

	base := scoreOf("jpeg", false)
	if base != 1000*1000 {
		t.Errorf("jpeg score = %g, want %d", base, 1000*1000)
	}
	if scoreOf("png", false) <= base {
		t.Error("lossless format should score above jpeg at equal resolution")
	}
	if scoreOf("jpeg", true) <= base {
		t.Error("EXIF presence should raise the score")
	}
}
