package splitter

import (
	"strings"
	"unicode/utf8"
)

// DiscordLimit is the maximum message length accepted by Discord.
const DiscordLimit = 2000

// Split breaks text into chunks of at most limit characters. Chunks end
// at line boundaries, so joining them with "\n" restores the text. A
// single line longer than limit is cut into limit sized pieces.
func Split(text string, limit int) []string {
	if text == "" {
		return nil
	}
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		current strings.Builder
		size    int
		started bool
	)
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
		}
		current.Reset()
		size = 0
		started = false
	}

	for _, line := range strings.Split(text, "\n") {
		n := utf8.RuneCountInString(line)
		if started && size+1+n > limit {
			flush()
		}
		if n > limit {
			runes := []rune(line)
			for len(runes) > limit {
				chunks = append(chunks, string(runes[:limit]))
				runes = runes[limit:]
			}
			line, n = string(runes), len(runes)
		}
		if started {
			current.WriteByte('\n')
			size++
		}
		current.WriteString(line)
		size += n
		started = true
	}
	flush()

	return chunks
}
