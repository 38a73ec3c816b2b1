package compare

import (
	"fmt"
	"sort"
	"strings"

	"dupetree/internal/report"
)

type ChangeType string

const (
	Added    ChangeType = "ADDED"
	Modified ChangeType = "MODIFIED"
	Removed  ChangeType = "REMOVED"
)

// Change describes one duplicate group, keyed by digest, that differs
// between two reports.
type Change struct {
	Type     ChangeType
	Hash     string
	OldGroup *report.Group
	NewGroup *report.Group
}

type CompareResult struct {
	Added    []Change
	Modified []Change
	Removed  []Change
}

func (r *CompareResult) HasChanges() bool {
	return len(r.Added) > 0 || len(r.Modified) > 0 || len(r.Removed) > 0
}

// Compare reports duplicate groups that appeared, disappeared or changed
// membership between oldReport and newReport.
func Compare(oldReport, newReport *report.Report) *CompareResult {
	result := &CompareResult{
		Added:    make([]Change, 0),
		Modified: make([]Change, 0),
		Removed:  make([]Change, 0),
	}

	oldGroups := indexGroups(oldReport)
	newGroups := indexGroups(newReport)

	for hash, newGroup := range newGroups {
		oldGroup, exists := oldGroups[hash]
		if !exists {
			result.Added = append(result.Added, Change{
				Type:     Added,
				Hash:     hash,
				NewGroup: newGroup,
			})
			continue
		}
		if !sameFiles(oldGroup.Files, newGroup.Files) {
			result.Modified = append(result.Modified, Change{
				Type:     Modified,
				Hash:     hash,
				OldGroup: oldGroup,
				NewGroup: newGroup,
			})
		}
	}

	for hash, oldGroup := range oldGroups {
		if _, exists := newGroups[hash]; !exists {
			result.Removed = append(result.Removed, Change{
				Type:     Removed,
				Hash:     hash,
				OldGroup: oldGroup,
			})
		}
	}

	// Sort for deterministic output
	for _, changes := range [][]Change{result.Added, result.Modified, result.Removed} {
		sort.Slice(changes, func(i, j int) bool {
			return changes[i].Hash < changes[j].Hash
		})
	}

	return result
}

func indexGroups(r *report.Report) map[string]*report.Group {
	groups := make(map[string]*report.Group, len(r.Groups))
	for i := range r.Groups {
		groups[r.Groups[i].Hash] = &r.Groups[i]
	}
	return groups
}

func sameFiles(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, path := range a {
		seen[path]++
	}
	for _, path := range b {
		if seen[path] == 0 {
			return false
		}
		seen[path]--
	}
	return true
}

func shortHash(hash string) string {
	if len(hash) > 16 {
		return hash[:16] + "..."
	}
	return hash
}

func FormatReport(result *CompareResult) string {
	if !result.HasChanges() {
		return "No changes detected."
	}

	var b strings.Builder
	b.WriteString("Changes detected:\n\n")

	if len(result.Added) > 0 {
		fmt.Fprintf(&b, "ADDED (%d groups):\n", len(result.Added))
		for _, change := range result.Added {
			fmt.Fprintf(&b, "  + %s (size: %d bytes, %d files)\n",
				shortHash(change.Hash), change.NewGroup.Size, len(change.NewGroup.Files))
			for _, path := range change.NewGroup.Files {
				fmt.Fprintf(&b, "    %s\n", path)
			}
		}
		b.WriteString("\n")
	}

	if len(result.Modified) > 0 {
		fmt.Fprintf(&b, "MODIFIED (%d groups):\n", len(result.Modified))
		for _, change := range result.Modified {
			fmt.Fprintf(&b, "  ~ %s (size: %d bytes)\n", shortHash(change.Hash), change.NewGroup.Size)
			fmt.Fprintf(&b, "    Old: %s\n", strings.Join(change.OldGroup.Files, ", "))
			fmt.Fprintf(&b, "    New: %s\n", strings.Join(change.NewGroup.Files, ", "))
		}
		b.WriteString("\n")
	}

	if len(result.Removed) > 0 {
		fmt.Fprintf(&b, "REMOVED (%d groups):\n", len(result.Removed))
		for _, change := range result.Removed {
			fmt.Fprintf(&b, "  - %s (size: %d bytes, %d files)\n",
				shortHash(change.Hash), change.OldGroup.Size, len(change.OldGroup.Files))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Summary: %d added, %d modified, %d removed\n",
		len(result.Added), len(result.Modified), len(result.Removed))

	return b.String()
}
