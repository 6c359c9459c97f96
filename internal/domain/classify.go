package domain

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

const maxGreetingRunes = 25

var greetings = map[string]struct{}{
	"hola":             {},
	"buenas":           {},
	"buenas tardes":    {},
	"buenas noches":    {},
	"buen dia":         {},
	"buen día":         {},
	"que tal":          {},
	"qué tal":          {},
	"gracias":          {},
	"ok":               {},
	"hola buen dia":    {},
	"hola buen día":    {},
	"hola buenos dias": {},
	"hola buenos días": {},
}

var helpdeskContactPattern = regexp.MustCompile(
	`(?i)(helpdesk|mesa\s+de\s+ayuda|soporte\s+ti|soporte\s+t[ée]cnico|it\s*helpdesk|contact(o|ar)|tel[eé]fono|n[uú]mero|correo)`,
)

var spanishLower = cases.Lower(language.Spanish)

// IsPureGreeting reports whether text is nothing more than a short
// salutation that can be answered without contacting the assistant.
func IsPureGreeting(text string) bool {
	line, ok := singleLine(text)
	if !ok {
		return false
	}
	if utf8.RuneCountInString(line) > maxGreetingRunes || strings.ContainsAny(line, "?:") {
		return false
	}

	_, found := greetings[normalizeGreeting(line)]
	return found
}

// IsHelpdeskContactRequest reports whether the question asks how to reach
// the help desk.
func IsHelpdeskContactRequest(text string) bool {
	return helpdeskContactPattern.MatchString(text)
}

func singleLine(text string) (string, bool) {
	var found string
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if found != "" {
			return "", false
		}
		found = line
	}
	return found, found != ""
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

func normalizeGreeting(line string) string {
	kept := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '_' || r == '\'' {
			return r
		}
		return -1
	}, norm.NFC.String(line))

	return strings.Join(strings.Fields(spanishLower.String(kept)), " ")
}
