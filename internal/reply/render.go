package reply

import "strings"

// Formatter rewrites one chunk into the chat platform's markup.
type Formatter interface {
	Format(text string) string
}

// FormatterFunc adapts a plain function to Formatter.
type FormatterFunc func(string) string

func (f FormatterFunc) Format(text string) string {
	return f(text)
}

// Prepare splits answer and formats every chunk on its own. Formatting runs
// after splitting because escaping changes lengths and is not safe to cut
// through. Chunks that format to blank text are dropped since they cannot be
// sent.
func Prepare(answer string, limit int, f Formatter) []string {
	chunks := Split(answer, limit)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		formatted := chunk
		if f != nil {
			formatted = f.Format(chunk)
		}
		if strings.TrimSpace(formatted) == "" {
			continue
		}
		out = append(out, formatted)
	}
	return out
}
