package bot

import "strings"

const (
	// maxBatchChars bounds the character budget per reply message.
	maxBatchChars = 3500
	// maxBatchLines bounds the line count per reply message.
	maxBatchLines = 40
)

// BatchLines greedily packs non-empty trimmed lines into newline-joined
// batches within the character and line-count bounds. Empty input yields no
// batches, so no empty reply is ever sent.
func BatchLines(lines []string) []string {
	var batches []string
	var batch []string
	chars := 0

	flush := func() {
		if len(batch) > 0 {
			batches = append(batches, strings.Join(batch, "\n"))
			batch = nil
			chars = 0
		}
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if chars+len(line)+1 > maxBatchChars || len(batch) >= maxBatchLines {
			flush()
		}
		batch = append(batch, line)
		chars += len(line) + 1
	}
	flush()

	return batches
}
