package match

import "dupfinder/internal/models"

// ExactMatcher groups files whose content digests are identical
type ExactMatcher struct{}

// NewExactMatcher creates a new ExactMatcher
func NewExactMatcher() *ExactMatcher {
	return &ExactMatcher{}
}

// FindGroups buckets files by content digest and returns every bucket
// with 2 or more members. Files that carry no digest (hashing failed)
// never enter a bucket.
func (m *ExactMatcher) FindGroups(files []*models.FileInfo) []*models.DuplicateGroup {
	if len(files) < 2 {
		return nil
	}

	buckets := make(map[string][]*models.FileInfo)
	var order []string
	for _, f := range files {
		if f.FileHash == "" {
			continue
		}
		if _, seen := buckets[f.FileHash]; !seen {
			order = append(order, f.FileHash)
		}
		buckets[f.FileHash] = append(buckets[f.FileHash], f)
	}

	sets := make([][]*models.FileInfo, 0, len(order))
	for _, digest := range order {
		sets = append(sets, buckets[digest])
	}
	return buildGroups(sets)
}
