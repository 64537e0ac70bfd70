package slack

import "strings"

// MaxMessageLen keeps replies under Slack's text limit with room for
// formatting.
const MaxMessageLen = 3500

const fence = "```"

// fenceOverhead is the closing "\n```" plus the reopening "```\n".
const fenceOverhead = 2*len(fence) + 2

// Split breaks text into chunks of at most max bytes, cutting at line breaks.
// A single line longer than max is cut at the limit, backing off to a rune
// boundary. A code block cut across chunks is closed at the end of each
// chunk and reopened at the start of the next.
func Split(text string, max int) []string {
	if len(text) <= max {
		return []string{text}
	}
	if !strings.Contains(text, fence) || max <= fenceOverhead {
		return splitLines(text, max)
	}
	return balanceFences(splitLines(text, max-fenceOverhead))
}

func balanceFences(chunks []string) []string {
	open := false
	for i, c := range chunks {
		out := c
		if open {
			out = fence + "\n" + out
		}
		if strings.Count(c, fence)%2 == 1 {
			open = !open
		}
		if open {
			out += "\n" + fence
		}
		chunks[i] = out
	}
	return chunks
}

func splitLines(text string, max int) []string {
	var chunks []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			chunks = append(chunks, strings.TrimRight(cur.String(), "\n"))
			cur.Reset()
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		for len(line) > max {
			flush()
			cut := max
			for cut > 0 && !isRuneStart(line[cut]) {
				cut--
			}
			if cut == 0 {
				cut = max
			}
			chunks = append(chunks, line[:cut])
			line = line[cut:]
		}
		if cur.Len()+len(line) > max {
			flush()
		}
		cur.WriteString(line)
	}
	flush()
	return chunks
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
