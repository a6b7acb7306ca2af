package match

import (
	"dupfinder/internal/hash"
	"dupfinder/internal/models"
)

// PerceptualMatcher clusters images whose perceptual fingerprints are
// within maxDistance bits of each other. Clustering is transitively
// closed: a chain of pairwise-similar images merges into one group even
// when its endpoints exceed maxDistance. That matches the reference
// behavior and is intentional.
type PerceptualMatcher struct {
	maxDistance int
}

// NewPerceptualMatcher creates a matcher for the given maximum Hamming
// distance (see hash.MaxDistance for the similarity conversion).
func NewPerceptualMatcher(maxDistance int) *PerceptualMatcher {
	if maxDistance < 0 {
		maxDistance = 0
	}
	return &PerceptualMatcher{maxDistance: maxDistance}
}

// MaxDistance returns the configured distance cutoff
func (m *PerceptualMatcher) MaxDistance() int {
	return m.maxDistance
}

// FindGroups partitions images into clusters of similar fingerprints.
// A BK-tree prunes the pairwise search; for every image it yields
// exactly the set of earlier images within maxDistance, so the
// resulting union-find partition is identical to comparing all pairs.
func (m *PerceptualMatcher) FindGroups(files []*models.FileInfo) []*models.DuplicateGroup {
	n := len(files)
	if n < 2 {
		return nil
	}

	uf := newUnionFind(n)
	tree := newBKTree(hash.HammingDistance)

	for i, f := range files {
		for _, j := range tree.findWithinDistance(f.Hash, m.maxDistance) {
			uf.union(i, j)
		}
		tree.insert(f.Hash, i)
	}

	members := make(map[int][]*models.FileInfo)
	var roots []int
	for i, f := range files {
		root := uf.find(i)
		if _, seen := members[root]; !seen {
			roots = append(roots, root)
		}
		members[root] = append(members[root], f)
	}

	sets := make([][]*models.FileInfo, 0, len(roots))
	for _, root := range roots {
		sets = append(sets, members[root])
	}
	return buildGroups(sets)
}

// Union-Find over dense indices 0..n-1, with path compression and
// union by rank.
type unionFind struct {
	parent []int
	rank   []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	rank := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: rank}
}

func (uf *unionFind) find(x int) int {
	if uf.parent[x] != x {
		uf.parent[x] = uf.find(uf.parent[x]) // Path compression
	}
	return uf.parent[x]
}

func (uf *unionFind) union(x, y int) {
	px, py := uf.find(x), uf.find(y)
	if px == py {
		return
	}
	if uf.rank[px] < uf.rank[py] {
		px, py = py, px
	}
	uf.parent[py] = px
	if uf.rank[px] == uf.rank[py] {
		uf.rank[px]++
	}
}

// bkTree is a BK-tree over fingerprints for metric-pruned similarity
// search.
type bkTree struct {
	root     *bkNode
	distance func(a, b uint64) int
}

type bkNode struct {
	hash     uint64
	index    int
	children map[int]*bkNode // distance -> child node
}

func newBKTree(distanceFn func(a, b uint64) int) *bkTree {
	return &bkTree{distance: distanceFn}
}

// insert adds a fingerprint with its associated index to the tree.
func (t *bkTree) insert(hash uint64, index int) {
	node := &bkNode{
		hash:     hash,
		index:    index,
		children: make(map[int]*bkNode),
	}

	if t.root == nil {
		t.root = node
		return
	}

	current := t.root
	for {
		dist := t.distance(hash, current.hash)
		if child, exists := current.children[dist]; exists {
			current = child
		} else {
			current.children[dist] = node
			return
		}
	}
}

// findWithinDistance returns the indices of all elements within the
// given distance of the query fingerprint.
func (t *bkTree) findWithinDistance(hash uint64, threshold int) []int {
	if t.root == nil {
		return nil
	}

	var results []int
	t.searchNode(t.root, hash, threshold, &results)
	return results
}

func (t *bkTree) searchNode(node *bkNode, hash uint64, threshold int, results *[]int) {
	dist := t.distance(hash, node.hash)

	if dist <= threshold {
		*results = append(*results, node.index)
	}

	// Triangle inequality: only children with distance in
	// [dist - threshold, dist + threshold] can match
	minDist := dist - threshold
	if minDist < 0 {
		minDist = 0
	}
	maxDist := dist + threshold

	for childDist, child := range node.children {
		if childDist >= minDist && childDist <= maxDist {
			t.searchNode(child, hash, threshold, results)
		}
	}
}
