package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dupfinder/internal/advisor"
	"dupfinder/internal/hash"
	"dupfinder/internal/scan"
)

var (
	maxImages        int
	thresholdVerbose bool
)

var thresholdCmd = &cobra.Command{
	Use:   "threshold <directory>",
	Short: "Analyze image similarities to help choose a threshold",
	Long: `Compare every pair of images under a directory and report their
perceptual distances, with a suggested value for
'scan --fuzzy-images --similarity-threshold'.

Example:
  dupfinder threshold ./photos
  dupfinder threshold ./photos --max-images 0 --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runThreshold,
}

func init() {
	thresholdCmd.Flags().IntVar(&maxImages, "max-images", 300, "Maximum number of images to process, in discovery order (0 = no limit)")
	thresholdCmd.Flags().BoolVarP(&thresholdVerbose, "verbose", "v", false, "Show all pairs and the full distance distribution")
	rootCmd.AddCommand(thresholdCmd)
}

func runThreshold(cmd *cobra.Command, args []string) error {
	dir, err := resolveDir(args[0])
	if err != nil {
		return err
	}

	if !cmd.Flags().Changed("max-images") {
		maxImages = cfg.MaxImages
	}
	if maxImages < 0 {
		return fmt.Errorf("max-images must not be negative, got %d", maxImages)
	}

	if err := hash.PerceptualSupport(); err != nil {
		return fmt.Errorf("threshold analysis needs the perceptual hashing pipeline: %w", err)
	}

	if !quiet {
		fmt.Printf("Analyzing images in: %s ...\n", dir)
	}

	collector := scan.NewScanner(scan.WithLogger(logger))
	paths, err := collector.CollectImages(dir)
	if err != nil {
		return err
	}
	// The cap applies in walk-discovery order, before hashing
	if maxImages > 0 && len(paths) > maxImages {
		paths = paths[:maxImages]
	}
	if len(paths) < 2 {
		return advisor.ErrNotEnoughImages
	}

	if !quiet {
		fmt.Printf("Processing %d images...\n", len(paths))
	}

	opts := []scan.Option{
		scan.WithWorkers(cfg.Workers),
		scan.WithLogger(logger),
	}
	if !quiet {
		bar := newProgressBar(len(paths), "hashing")
		opts = append(opts, scan.WithProgress(func(done, total int, current string) {
			_ = bar.Set(done)
		}))
	}
	images := scan.NewScanner(opts...).HashImages(paths)

	report, err := advisor.Analyze(images, thresholdVerbose)
	if err != nil {
		return err
	}

	printReport(report)
	return nil
}

func printReport(report *advisor.Report) {
	fmt.Println()
	fmt.Println("Most similar pairs:")
	fmt.Println(pairsTable(report.TopPairs))

	fmt.Printf("\nQuick suggestion: try --similarity-threshold %.2f to catch resized or edited copies.\n",
		report.SuggestedSimilarity)

	if report.AllPairs == nil {
		return
	}

	fmt.Println()
	fmt.Println("All pairs (sorted by distance):")
	fmt.Println(pairsTable(report.AllPairs))

	fmt.Println()
	fmt.Println("Distance distribution (cumulative):")
	rows := make([][]string, 0, len(report.Histogram))
	for _, bucket := range report.Histogram {
		rows = append(rows, []string{
			bucket.Label,
			fmt.Sprintf("%d", bucket.Count),
			fmt.Sprintf("%.1f%%", bucket.Percent),
		})
	}
	fmt.Println(renderTable([]string{"Distance", "Pairs", "Share"}, rows))

	fmt.Println()
	fmt.Println("Guidance:")
	fmt.Println("  Very strict (near-exact):   0.90 to 0.95 (up to 3-6 bits)")
	fmt.Println("  Good for resized/cropped:   0.75 to 0.85 (up to 10-16 bits)")
	fmt.Println("  Lenient:                    0.65 to 0.74 (up to 17-22 bits)")
}

func pairsTable(pairs []advisor.Pair) string {
	rows := make([][]string, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, []string{
			fmt.Sprintf("%d", p.Distance),
			fmt.Sprintf("%.3f", p.Similarity),
			filepath.Base(p.PathA),
			filepath.Base(p.PathB),
		})
	}
	return renderTable([]string{"Dist", "Sim", "File A", "File B"}, rows)
}
