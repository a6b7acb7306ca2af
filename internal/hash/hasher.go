package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/corona10/goimagehash"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"

	"dupfinder/internal/models"
)

// FingerprintBits is the length of a perceptual fingerprint in bits.
const FingerprintBits = 64

// chunkSize bounds memory use while streaming file content into the
// digest accumulator.
const chunkSize = 4096

// ErrPerceptualUnavailable indicates the perceptual hashing pipeline
// cannot be used. Exact matching is unaffected by this condition.
var ErrPerceptualUnavailable = errors.New("perceptual hashing is unavailable")

var (
	perceptualOnce sync.Once
	perceptualErr  error
)

// PerceptualSupport verifies once that the perceptual hashing pipeline
// works, by fingerprinting a small synthetic image. Fuzzy matching and
// threshold analysis call this before doing any work.
func PerceptualSupport() error {
	perceptualOnce.Do(func() {
		probe := image.NewGray(image.Rect(0, 0, 8, 8))
		if _, err := goimagehash.PerceptionHash(probe); err != nil {
			perceptualErr = fmt.Errorf("%w: %v", ErrPerceptualUnavailable, err)
		}
	})
	return perceptualErr
}

// HashFile computes the SHA-256 digest of a file's content, reading in
// bounded-size chunks. Returns the digest as a 64-character hex string.
func HashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsImageCandidate reports whether a file is a candidate for perceptual
// hashing. The check is filename-based only, no content sniffing.
func IsImageCandidate(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp":
		return true
	default:
		return false
	}
}

// HammingDistance calculates the Hamming distance between two fingerprints
func HammingDistance(hash1, hash2 uint64) int {
	xor := hash1 ^ hash2
	count := 0
	for xor != 0 {
		count++
		xor &= xor - 1
	}
	return count
}

// MaxDistance converts a similarity threshold in [0,1] to the maximum
// Hamming distance two fingerprints may have to count as duplicates.
func MaxDistance(similarity float64) int {
	return int(math.Floor((1 - similarity) * FingerprintBits))
}

// Similarity converts a Hamming distance back to a normalized
// similarity in [0,1].
func Similarity(distance int) float64 {
	return 1 - float64(distance)/FingerprintBits
}

// Hasher computes perceptual fingerprints for images
type Hasher struct{}

// NewHasher creates a new Hasher
func NewHasher() *Hasher {
	return &Hasher{}
}

// HashImage decodes an image, computes its perceptual fingerprint and
// extracts the metadata used for quality scoring.
func (h *Hasher) HashImage(path string) (*models.FileInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	// Check for EXIF data before decoding, as Decode consumes the reader
	hasExif := checkExif(path)

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	fp, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("failed to compute fingerprint: %w", err)
	}

	bounds := img.Bounds()
	info := &models.FileInfo{
		Path:     path,
		Hash:     fp.GetHash(),
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Format:   strings.ToLower(format),
		FileSize: stat.Size(),
		ModTime:  stat.ModTime(),
		HasExif:  hasExif,
	}
	info.Score = h.CalculateScore(info)

	return info, nil
}

// checkExif checks if an image file contains EXIF data
func checkExif(path string) bool {
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	_, err = exif.Decode(file)
	return err == nil
}

// CalculateScore computes the quality score for an image: resolution
// weighted by format and metadata presence.
func (h *Hasher) CalculateScore(info *models.FileInfo) float64 {
	resolution := float64(info.Width * info.Height)
	return resolution *
		models.FormatQualityMultiplier(info.Format) *
		models.MetadataMultiplier(info.HasExif)
}
