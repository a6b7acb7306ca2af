package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/schollz/progressbar/v3"

	"dupfinder/internal/models"
)

// resolveDir resolves and validates the scan root: it must exist and
// be a directory.
func resolveDir(arg string) (string, error) {
	dir, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("folder not found: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", dir)
	}
	return dir, nil
}

// renderTable renders rows with go-pretty using the house style.
func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}

// newProgressBar builds a stderr progress bar so stdout stays clean.
func newProgressBar(total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

// printGroups renders each duplicate group as a table. The suggested
// keep is marked; reclaimable space counts everything else.
func printGroups(groups []*models.DuplicateGroup, fuzzy bool) {
	totalRedundant := 0
	var totalSize int64
	for _, group := range groups {
		for _, f := range group.Files {
			if f != group.Keep {
				totalRedundant++
				totalSize += f.FileSize
			}
		}
	}

	fmt.Printf("Found %d duplicate groups (%d redundant files, %s reclaimable)\n\n",
		len(groups), totalRedundant, humanize.Bytes(uint64(totalSize)))

	for _, group := range groups {
		fmt.Printf("Group #%d (%d files)\n", group.ID, len(group.Files))

		headers := []string{"", "#", "File", "Size"}
		if fuzzy {
			headers = append(headers, "Resolution", "Score")
		}

		rows := make([][]string, 0, len(group.Files))
		for i, f := range group.Files {
			marker := ""
			if f == group.Keep {
				marker = "✓"
			}
			row := []string{
				marker,
				fmt.Sprintf("%d", i+1),
				f.Path,
				humanize.Bytes(uint64(f.FileSize)),
			}
			if fuzzy {
				row = append(row,
					fmt.Sprintf("%dx%d", f.Width, f.Height),
					fmt.Sprintf("%.0f", f.Score),
				)
			}
			rows = append(rows, row)
		}

		fmt.Println(renderTable(headers, rows))
		fmt.Println()
	}
}
