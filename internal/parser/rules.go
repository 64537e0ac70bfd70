package parser

import (
	"regexp"
	"strings"
)

// input is a submission prepared once and shared by every rule.
type input struct {
	raw        string
	upper      string
	lines      []string
	upperLines []string
}

func newInput(raw string) *input {
	in := &input{raw: raw, upper: strings.ToUpper(raw)}
	for _, l := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		in.lines = append(in.lines, l)
		in.upperLines = append(in.upperLines, strings.ToUpper(l))
	}
	return in
}

// rule extracts one candidate value. An empty result means the rule did not
// apply and the next rule for the field is tried.
type rule func(in *input) string

// firstOf evaluates rules in order and returns the first non-empty result.
func firstOf(in *input, rules []rule) string {
	for _, r := range rules {
		if v := strings.TrimSpace(r(in)); v != "" {
			return v
		}
	}
	return ""
}

// label matches the first line starting with "<LABEL> :" (or "<LABEL>:")
// for any of the given labels and returns the text after the first colon.
// Leading list bullets are ignored.
func label(labels ...string) rule {
	return func(in *input) string {
		for i, ul := range in.upperLines {
			ul = strings.TrimLeft(ul, "-*•· ")
			for _, l := range labels {
				if !strings.HasPrefix(ul, l+" :") && !strings.HasPrefix(ul, l+":") {
					continue
				}
				line := in.lines[i]
				idx := strings.Index(line, ":")
				return strings.TrimSpace(line[idx+1:])
			}
		}
		return ""
	}
}

// pattern returns capture group of the first match of re in the raw text.
func pattern(re *regexp.Regexp, group int) rule {
	return func(in *input) string {
		m := re.FindStringSubmatch(in.raw)
		if len(m) <= group {
			return ""
		}
		return m[group]
	}
}

// lastPattern returns capture group of the last match of re in the raw text.
// Used for identifiers that repeat in pasted logs where the latest one is
// authoritative.
func lastPattern(re *regexp.Regexp, group int) rule {
	return func(in *input) string {
		all := re.FindAllStringSubmatch(in.raw, -1)
		if len(all) == 0 {
			return ""
		}
		m := all[len(all)-1]
		if len(m) <= group {
			return ""
		}
		return m[group]
	}
}

// lineAfter returns the line offset positions after the first line whose
// uppercased text matches marker.
func lineAfter(marker *regexp.Regexp, offset int) rule {
	return func(in *input) string {
		for i, ul := range in.upperLines {
			if !marker.MatchString(ul) {
				continue
			}
			if j := i + offset; j < len(in.lines) {
				return in.lines[j]
			}
			return ""
		}
		return ""
	}
}

// constant always yields v.
func constant(v string) rule {
	return func(*input) string { return v }
}
