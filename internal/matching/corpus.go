package matching

import (
	"regexp"
	"strings"
)

var blockSeparator = regexp.MustCompile(`\n\s*(?:-{3,}|={3,}|\*{3,})\s*\n|\n\s*\n\s*\n`)

// SplitCorpus breaks the raw candidate corpus into per-person blocks. Blocks
// are separated by horizontal rules or by two or more blank lines; the block
// ordinal is the candidate's stable shortlisted index for the whole run.
func SplitCorpus(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	parts := blockSeparator.Split(raw, -1)
	blocks := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			blocks = append(blocks, trimmed)
		}
	}

	return blocks
}
