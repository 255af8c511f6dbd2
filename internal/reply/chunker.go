// Package reply turns a complete model answer into the ordered list of chat
// messages that carry it.
package reply

import (
	"strings"
	"unicode/utf16"
)

// DefaultLimit leaves headroom under Telegram's 4096 unit cap for the
// characters added by MarkdownV2 escaping.
const DefaultLimit = 3900

// Split breaks answer into chunks on newline boundaries. Lines are added
// greedily while the joined chunk stays within limit; a line that would
// overflow closes the current chunk and starts the next one. A single line
// longer than limit is never cut and becomes its own oversized chunk.
//
// Joining the result with "\n" always reproduces answer.
func Split(answer string, limit int) []string {
	var (
		chunks  []string
		current []string
		size    int
	)

	for _, line := range strings.Split(answer, "\n") {
		lineSize := TextLength(line)

		candidate := lineSize
		if len(current) > 0 {
			candidate = size + 1 + lineSize
		}

		if candidate > limit && len(current) > 0 {
			chunks = append(chunks, strings.Join(current, "\n"))
			current = []string{line}
			size = lineSize
			continue
		}

		current = append(current, line)
		size = candidate
	}

	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, "\n"))
	}

	return chunks
}

// TextLength measures s the way Telegram does: in UTF-16 code units.
func TextLength(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
