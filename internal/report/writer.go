package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
)

// shortHash is the number of hex digits shown per digest in text output.
const shortHash = 12

func WriteText(w io.Writer, r *Report) error {
	if len(r.Groups) == 0 {
		_, err := fmt.Fprintln(w, "No duplicates found.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Size", "Hash", "Path"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for _, g := range r.Groups {
		digest := g.Hash
		if len(digest) > shortHash {
			digest = digest[:shortHash]
		}
		for i, path := range g.Files {
			if i == 0 {
				table.Append([]string{formatSize(g.Size), digest, path})
				continue
			}
			table.Append([]string{"", "", path})
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("%d groups", len(r.Groups)),
		fmt.Sprintf("%d duplicates", r.Duplicates()),
		formatSize(r.Wasted) + " reclaimable",
	})
	table.Render()

	if len(r.Skipped) > 0 {
		if _, err := fmt.Fprintf(w, "\nSkipped %d files due to errors\n", len(r.Skipped)); err != nil {
			return err
		}
	}
	return nil
}

func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Write renders r in the named format ("text" or "json").
func Write(w io.Writer, r *Report, format string) error {
	switch format {
	case "", "text":
		return WriteText(w, r)
	case "json":
		return WriteJSON(w, r)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

func Save(r *Report, path, format string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, r, format); err != nil {
		file.Close()
		return err
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Load reads a report previously saved as JSON.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	if r.Generator != generator {
		return nil, fmt.Errorf("%s is not a %s report", path, generator)
	}
	return &r, nil
}
