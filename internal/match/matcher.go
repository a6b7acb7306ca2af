package match

import (
	"sort"

	"dupfinder/internal/models"
)

// Matcher is the interface for duplicate detection strategies
type Matcher interface {
	FindGroups(files []*models.FileInfo) []*models.DuplicateGroup
}

// buildGroups assembles DuplicateGroups from raw member sets. Sets with
// fewer than 2 members are dropped. Files within a group are ordered by
// discovery index, and groups are ordered by their lowest-index member.
func buildGroups(sets [][]*models.FileInfo) []*models.DuplicateGroup {
	var groups []*models.DuplicateGroup
	for _, files := range sets {
		if len(files) < 2 {
			continue
		}
		sort.Slice(files, func(i, j int) bool {
			return files[i].Index < files[j].Index
		})
		groups = append(groups, &models.DuplicateGroup{Files: files})
	}

	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Files[0].Index < groups[j].Files[0].Index
	})

	for i, group := range groups {
		group.ID = i + 1
		group.Keep = suggestKeep(group.Files)
		for _, f := range group.Files {
			f.GroupID = group.ID
		}
	}
	return groups
}

// suggestKeep picks the group member a user would most likely want to
// keep: highest quality score, then larger file, then newer, then
// alphabetical path as the final tiebreak.
func suggestKeep(files []*models.FileInfo) *models.FileInfo {
	best := files[0]
	for _, f := range files[1:] {
		if better(f, best) {
			best = f
		}
	}
	return best
}

func better(a, b *models.FileInfo) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.FileSize != b.FileSize {
		return a.FileSize > b.FileSize
	}
	if !a.ModTime.Equal(b.ModTime) {
		return a.ModTime.After(b.ModTime)
	}
	return a.Path < b.Path
}
