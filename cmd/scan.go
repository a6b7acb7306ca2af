package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dupfinder/internal/dedupe"
	"dupfinder/internal/hash"
	"dupfinder/internal/match"
	"dupfinder/internal/models"
	"dupfinder/internal/scan"
)

var (
	fuzzyImages  bool
	simThreshold float64
	deleteDupes  bool
	dryRun       bool
	useTrash     bool
	moveTo       string
	noConfirm    bool
	jsonOut      bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a directory tree for duplicate files",
	Long: `Scan a directory recursively and report groups of duplicate files.

By default every regular file is compared by exact content (SHA-256).
With --fuzzy-images, only images (jpg, jpeg, png, gif, bmp) are
considered and grouped by perceptual similarity instead, so resized or
recompressed copies are found too.

Example:
  dupfinder scan ./photos
  dupfinder scan ./photos --fuzzy-images --similarity-threshold 0.85
  dupfinder scan ./photos --delete --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&fuzzyImages, "fuzzy-images", false, "Perceptual (fuzzy) duplicate detection for images instead of exact hashing")
	scanCmd.Flags().Float64Var(&simThreshold, "similarity-threshold", 0.80, "Similarity threshold for fuzzy detection (0.0 to 1.0; try 0.75-0.85 for resized photos)")
	scanCmd.Flags().BoolVarP(&deleteDupes, "delete", "d", false, "After listing duplicates, ask which copy of each group to keep")
	scanCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Simulate deletion: show what would be removed without touching anything")
	scanCmd.Flags().BoolVar(&useTrash, "trash", false, "Move removed files to the system trash instead of deleting")
	scanCmd.Flags().StringVar(&moveTo, "move-to", "", "Move removed files to this folder instead of deleting")
	scanCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip the deletion confirmation prompt")
	scanCmd.Flags().BoolVar(&jsonOut, "json", false, "Output scan result as JSON")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("similarity-threshold") {
		simThreshold = cfg.SimilarityThreshold
	}
	if simThreshold < 0 || simThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0,1], got %g", simThreshold)
	}
	if !cmd.Flags().Changed("trash") {
		useTrash = cfg.UseTrash
	}

	if !quiet {
		fmt.Printf("Scanning: %s ...\n", dir)
	}

	var groups []*models.DuplicateGroup
	var files []*models.FileInfo
	if fuzzyImages {
		if err := hash.PerceptualSupport(); err != nil {
			return fmt.Errorf("fuzzy image matching needs the perceptual hashing pipeline: %w", err)
		}
		files, err = hashTree(dir, true)
		if err != nil {
			return err
		}
		matcher := match.NewPerceptualMatcher(hash.MaxDistance(simThreshold))
		groups = matcher.FindGroups(files)
	} else {
		files, err = hashTree(dir, false)
		if err != nil {
			return err
		}
		groups = match.NewExactMatcher().FindGroups(files)
	}

	if jsonOut {
		return writeJSON(files, groups)
	}

	if len(groups) == 0 {
		// Too few valid images is a distinct condition from a clean
		// scan that simply found nothing
		if fuzzyImages && len(files) < 2 {
			fmt.Println("Not enough images to compare (need at least 2)")
		} else {
			fmt.Println("No duplicates found")
		}
		return nil
	}

	printGroups(groups, fuzzyImages)

	if deleteDupes {
		return deleteInteractive(groups)
	}
	return nil
}

// hashTree walks dir and hashes its files: content digests for the
// exact path, perceptual fingerprints (image candidates only) for the
// fuzzy path.
func hashTree(dir string, fuzzy bool) ([]*models.FileInfo, error) {
	collector := scan.NewScanner(scan.WithLogger(logger))

	var paths []string
	var err error
	if fuzzy {
		paths, err = collector.CollectImages(dir)
	} else {
		paths, err = collector.CollectFiles(dir)
	}
	if err != nil {
		return nil, err
	}

	opts := []scan.Option{
		scan.WithWorkers(cfg.Workers),
		scan.WithLogger(logger),
	}
	if !quiet && len(paths) > 0 {
		bar := newProgressBar(len(paths), "hashing")
		opts = append(opts, scan.WithProgress(func(done, total int, current string) {
			_ = bar.Set(done)
		}))
	}

	s := scan.NewScanner(opts...)
	if fuzzy {
		return s.HashImages(paths), nil
	}
	return s.HashFiles(paths), nil
}

func writeJSON(files []*models.FileInfo, groups []*models.DuplicateGroup) error {
	totalDuplicates := 0
	for _, group := range groups {
		totalDuplicates += len(group.Files) - 1
	}
	result := models.ScanResult{
		TotalScanned:    len(files),
		TotalGroups:     len(groups),
		TotalDuplicates: totalDuplicates,
		Groups:          groups,
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// deleteInteractive walks the groups one by one, asking which member
// to keep. Invalid or non-numeric input skips the group; removal
// failures are reported per file and never stop the loop.
func deleteInteractive(groups []*models.DuplicateGroup) error {
	reader := bufio.NewReader(os.Stdin)

	if !noConfirm && !dryRun {
		fmt.Print("Proceed with deletion? [y/N]: ")
		response, _ := reader.ReadString('\n')
		response = strings.TrimSpace(strings.ToLower(response))
		if response != "y" && response != "yes" {
			fmt.Println("Cancelled")
			return nil
		}
	}

	opts := dedupe.Options{
		DryRun:   dryRun,
		UseTrash: useTrash,
		MoveTo:   moveTo,
	}

	removedAny := false
	for _, group := range groups {
		fmt.Printf("\nGroup #%d:\n", group.ID)
		for i, f := range group.Files {
			marker := " "
			if f == group.Keep {
				marker = "*"
			}
			fmt.Printf(" %s%d. %s\n", marker, i+1, f.Path)
		}

		fmt.Print("Enter number to keep (or 'skip' to keep all): ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		choice := strings.TrimSpace(line)
		if choice == "" || strings.EqualFold(choice, "skip") {
			continue
		}

		keep, err := strconv.Atoi(choice)
		if err != nil {
			fmt.Println("Invalid input; skipping group")
			continue
		}

		removals, err := dedupe.Prune(group, keep-1, opts)
		if errors.Is(err, dedupe.ErrInvalidChoice) {
			fmt.Println("Invalid choice; skipping group")
			continue
		}
		if err != nil {
			return err
		}

		for _, r := range removals {
			switch {
			case r.Err != nil:
				logger.Warn("failed to remove file", "path", r.Path, "error", r.Err)
			case r.Simulated:
				fmt.Printf("Would remove: %s\n", r.Path)
			default:
				fmt.Printf("Removed: %s\n", r.Path)
				removedAny = true
			}
		}
	}

	fmt.Println()
	switch {
	case dryRun:
		fmt.Println("Dry run complete - no files were actually deleted.")
	case removedAny:
		fmt.Println("Selected duplicates removed")
	default:
		fmt.Println("No files deleted (all groups skipped or invalid choices)")
	}
	return nil
}
