package models

import "time"

// FileInfo holds metadata and hash information for a scanned file.
// FileHash is populated by the exact path, Hash by the fuzzy path;
// the image fields (Width, Height, Format, HasExif, Score) are only
// meaningful for fuzzy scans.
type FileInfo struct {
	Path     string    `json:"path"`
	Index    int       `json:"-"` // discovery order within the scan
	FileHash string    `json:"file_hash,omitempty"`
	Hash     uint64    `json:"hash,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Format   string    `json:"format,omitempty"`
	FileSize int64     `json:"file_size"`
	ModTime  time.Time `json:"mod_time"`
	HasExif  bool      `json:"has_exif,omitempty"`
	Score    float64   `json:"score,omitempty"`
	GroupID  int       `json:"group_id,omitempty"`
}

// DuplicateGroup represents a set of files considered equivalent under
// the active matching mode. Files are ordered by discovery order; Keep
// is only a suggestion (highest quality score), the user decides what
// is actually kept.
type DuplicateGroup struct {
	ID    int         `json:"id"`
	Files []*FileInfo `json:"files"`
	Keep  *FileInfo   `json:"keep"`
}

// ScanResult holds the outcome of a scan for structured output.
type ScanResult struct {
	TotalScanned    int               `json:"total_scanned"`
	TotalGroups     int               `json:"total_groups"`
	TotalDuplicates int               `json:"total_duplicates"`
	Groups          []*DuplicateGroup `json:"groups"`
}

// FormatQualityMultiplier returns the quality multiplier for an image format
func FormatQualityMultiplier(format string) float64 {
	switch format {
	case "png", "bmp":
		return 1.2 // Lossless formats
	case "jpeg", "jpg":
		return 1.0 // Lossy
	case "gif":
		return 0.9 // Limited colors
	default:
		return 1.0
	}
}

// MetadataMultiplier returns the quality multiplier based on metadata presence
func MetadataMultiplier(hasExif bool) float64 {
	if hasExif {
		return 1.1 // Prefer images with metadata
	}
	return 1.0
}
