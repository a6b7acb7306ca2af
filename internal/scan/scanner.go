package scan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"dupfinder/internal/hash"
	"dupfinder/internal/models"
)

// Scanner walks directory trees and hashes files with a bounded worker
// pool. Per-file failures are reported through the logger and the file
// is excluded from results; a failure never aborts the scan.
type Scanner struct {
	hasher     *hash.Hasher
	workers    int
	logger     *slog.Logger
	progressFn func(done, total int, current string)
}

// Option configures a Scanner
type Option func(*Scanner)

// WithWorkers sets the number of parallel hashing workers
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for per-file failure reports
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithProgress sets a progress callback
func WithProgress(fn func(done, total int, current string)) Option {
	return func(s *Scanner) {
		s.progressFn = fn
	}
}

// NewScanner creates a new Scanner
func NewScanner(opts ...Option) *Scanner {
	s := &Scanner{
		hasher:  hash.NewHasher(),
		workers: 8,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CollectFiles returns every regular file under root in walk-discovery
// order. Entries that cannot be visited are reported and skipped.
func (s *Scanner) CollectFiles(root string) ([]string, error) {
	return s.collect(root, func(string) bool { return true })
}

// CollectImages returns every image-candidate file under root in
// walk-discovery order, filtered by filename extension.
func (s *Scanner) CollectImages(root string) ([]string, error) {
	return s.collect(root, hash.IsImageCandidate)
}

func (s *Scanner) collect(root string, keep func(path string) bool) ([]string, error) {
	var paths []string
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			s.logger.Warn("cannot access path", "path", path, "error", err)
			return nil
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		if keep(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk folder: %w", err)
	}
	return paths, nil
}

// HashFiles computes content digests for the given paths. The returned
// slice preserves the order of paths; files that failed to hash are
// reported and omitted.
func (s *Scanner) HashFiles(paths []string) []*models.FileInfo {
	return s.hashAll(paths, func(path string) (*models.FileInfo, error) {
		digest, err := hash.HashFile(path)
		if err != nil {
			return nil, err
		}
		info := &models.FileInfo{Path: path, FileHash: digest}
		if stat, err := os.Stat(path); err == nil {
			info.FileSize = stat.Size()
			info.ModTime = stat.ModTime()
		}
		return info, nil
	})
}

// HashImages computes perceptual fingerprints for the given paths. The
// returned slice preserves the order of paths; images that failed to
// decode or hash are reported and omitted.
func (s *Scanner) HashImages(paths []string) []*models.FileInfo {
	return s.hashAll(paths, s.hasher.HashImage)
}

func (s *Scanner) hashAll(paths []string, hashFn func(path string) (*models.FileInfo, error)) []*models.FileInfo {
	if len(paths) == 0 {
		return nil
	}

	// Results land in a slot per input path so that discovery order
	// survives the parallel pool.
	slots := make([]*models.FileInfo, len(paths))

	type job struct {
		idx  int
		path string
	}
	work := make(chan job, len(paths))
	for i, p := range paths {
		work <- job{idx: i, path: p}
	}
	close(work)

	var (
		wg    sync.WaitGroup
		done  int64
		total = len(paths)
	)
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range work {
				info, err := hashFn(j.path)
				if err != nil {
					s.logger.Warn("skipping file", "path", j.path, "error", err)
				} else {
					slots[j.idx] = info
				}
				n := atomic.AddInt64(&done, 1)
				if s.progressFn != nil {
					s.progressFn(int(n), total, j.path)
				}
			}
		}()
	}
	wg.Wait()

	results := make([]*models.FileInfo, 0, len(paths))
	for _, info := range slots {
		if info == nil {
			continue
		}
		info.Index = len(results)
		results = append(results, info)
	}
	return results
}
