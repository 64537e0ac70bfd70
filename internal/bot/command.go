package bot

import (
	"strings"
)

// Command names.
const (
	CmdSubmit = "aktivasi"
	CmdReport = "laporan"
	CmdTop    = "top"
	CmdMine   = "saya"
	CmdExport = "export"
	CmdDedupe = "dedupe"
	CmdHelp   = "help"
)

// Command is a parsed chat command. Body is the raw text after the command
// word; Args is Body split on whitespace.
type Command struct {
	Name string
	Body string
	Args []string
}

// ParseCommand recognizes "/name args..." and bare activation pastes, which
// are treated as /aktivasi. ok is false for ordinary chatter.
func ParseCommand(text string) (cmd Command, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}, false
	}

	if !strings.HasPrefix(text, "/") {
		if strings.Contains(strings.ToUpper(text), "SN ONT") {
			return Command{Name: CmdSubmit, Body: text, Args: strings.Fields(text)}, true
		}
		return Command{}, false
	}

	word, body := text[1:], ""
	if i := strings.IndexAny(word, " \t\r\n"); i >= 0 {
		word, body = word[:i], strings.TrimSpace(word[i+1:])
	}
	// "/laporan@aktivasi_bot" addresses a specific bot in group chats.
	if i := strings.IndexByte(word, '@'); i >= 0 {
		word = word[:i]
	}

	name := strings.ToLower(word)
	if alias, ok := aliases[name]; ok {
		name = alias
	}
	return Command{Name: name, Body: body, Args: strings.Fields(body)}, true
}

var aliases = map[string]string{
	"report":  CmdReport,
	"ranking": CmdTop,
	"me":      CmdMine,
	"start":   CmdHelp,
	"bantuan": CmdHelp,
}
