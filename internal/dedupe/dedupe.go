// Package dedupe removes redundant copies from a duplicate group while
// protecting the file the caller chose to keep.
package dedupe

import (
	"errors"
	"os"

	"dupfinder/internal/fileutil"
	"dupfinder/internal/models"
)

// ErrInvalidChoice is returned when the keep index does not address a
// member of the group. The group is left untouched in that case.
var ErrInvalidChoice = errors.New("invalid choice: keep index out of range")

// Options control how redundant copies are disposed of.
type Options struct {
	DryRun   bool   // report what would be removed, touch nothing
	UseTrash bool   // move to the system trash instead of deleting
	MoveTo   string // move to this folder instead of deleting
}

// Removal reports the outcome for one group member.
type Removal struct {
	Path      string `json:"path"`
	Simulated bool   `json:"simulated,omitempty"`
	Err       error  `json:"-"`
}

// Prune removes every member of the group except the one at keepIdx,
// reporting each removal individually. An out-of-range keepIdx leaves
// the whole group untouched and returns ErrInvalidChoice. The kept
// file is never touched; a failure on one member does not stop the
// others.
func Prune(group *models.DuplicateGroup, keepIdx int, opts Options) ([]Removal, error) {
	if keepIdx < 0 || keepIdx >= len(group.Files) {
		return nil, ErrInvalidChoice
	}

	removals := make([]Removal, 0, len(group.Files)-1)
	for i, f := range group.Files {
		if i == keepIdx {
			continue
		}
		r := Removal{Path: f.Path, Simulated: opts.DryRun}
		if !opts.DryRun {
			r.Err = remove(f.Path, opts)
		}
		removals = append(removals, r)
	}
	return removals, nil
}

func remove(path string, opts Options) error {
	switch {
	case opts.MoveTo != "":
		return fileutil.MoveFile(path, opts.MoveTo)
	case opts.UseTrash:
		return fileutil.MoveToTrash(path)
	default:
		return os.Remove(path)
	}
}
