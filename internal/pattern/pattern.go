package pattern

import "strings"

// Matcher tests text against an alternation of literal substrings such as
// "friends|family|staff", ignoring case.
type Matcher struct {
	expr string
	alts []string
}

func Compile(expr string) Matcher {
	m := Matcher{expr: expr}
	for _, a := range strings.Split(expr, "|") {
		a = strings.ToLower(strings.TrimSpace(a))
		if a != "" {
			m.alts = append(m.alts, a)
		}
	}
	return m
}

// Match reports whether text contains any alternative. Empty text never matches.
func (m Matcher) Match(text string) bool {
	if text == "" {
		return false
	}
	lower := strings.ToLower(text)
	for _, a := range m.alts {
		if strings.Contains(lower, a) {
			return true
		}
	}
	return false
}

func (m Matcher) String() string { return m.expr }

// Matches is a one-shot Compile(expr).Match(text).
func Matches(text, expr string) bool { return Compile(expr).Match(text) }
