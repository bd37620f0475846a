// Package langdetect names the language of a fenced code block, from its info
// string when present and from the body otherwise.
package langdetect

import (
	"regexp"
	"strings"

	"github.com/go-enry/go-enry/v2"
)

// Text is returned when no language can be determined.
const Text = "text"

// rule recognises a language from distinctive content.
type rule struct {
	lang  string
	match func(body string) bool
}

//nolint:gochecknoglobals // Read-only lookup tables.
var (
	yamlKey = regexp.MustCompile(`(?m)^\s*(- |[\w.-]+: )`)

	rules = []rule{
		{"go", func(s string) bool { return strings.HasPrefix(strings.TrimSpace(s), "package ") }},
		{"python", func(s string) bool {
			return (strings.Contains(s, "def ") && strings.Contains(s, "):")) ||
				strings.Contains(s, "__name__") ||
				(strings.HasPrefix(strings.TrimSpace(s), "import ") && !strings.Contains(s, "import ("))
		}},
		{"html", func(s string) bool {
			lower := strings.ToLower(s)
			return strings.Contains(lower, "<!doctype html") || strings.Contains(lower, "<html")
		}},
		{"json", func(s string) bool {
			trimmed := strings.TrimSpace(s)
			return strings.HasPrefix(trimmed, "{") && strings.Contains(trimmed, `":`)
		}},
		{"dockerfile", func(s string) bool {
			return strings.HasPrefix(strings.TrimSpace(s), "FROM ") && strings.Contains(s, "\nRUN ")
		}},
		{"sql", func(s string) bool {
			upper := strings.ToUpper(strings.TrimSpace(s))
			for _, verb := range []string{"SELECT ", "INSERT ", "UPDATE ", "DELETE ", "CREATE "} {
				if strings.HasPrefix(upper, verb) {
					return true
				}
			}
			return false
		}},
		{"rust", func(s string) bool { return strings.Contains(s, "fn main()") || strings.Contains(s, "println!") }},
		{"javascript", func(s string) bool { return strings.Contains(s, "=>") || strings.Contains(s, "console.log") }},
		{"yaml", func(s string) bool { return len(yamlKey.FindAllStringIndex(s, 3)) >= 2 && !strings.Contains(s, "{") }},
	}

	candidates = []string{
		"Go", "Python", "Shell", "JavaScript", "TypeScript", "Ruby", "Rust",
		"Java", "C", "C++", "SQL", "JSON", "YAML", "HTML", "CSS", "Dockerfile",
	}
)

// FenceLanguage returns the language of a code block. The first word of info
// wins; an empty info string falls back to Detect.
func FenceLanguage(info, body string) string {
	if fields := strings.Fields(info); len(fields) > 0 {
		return strings.ToLower(strings.Trim(fields[0], "{.}"))
	}
	return Detect(body)
}

// Detect guesses the language of body, returning Text when unsure.
func Detect(body string) string {
	if strings.TrimSpace(body) == "" {
		return Text
	}

	if lang, safe := enry.GetLanguageByShebang([]byte(body)); safe {
		return normalize(lang)
	}

	for _, r := range rules {
		if r.match(body) {
			return r.lang
		}
	}

	if lang, safe := enry.GetLanguageByClassifier([]byte(body), candidates); safe && lang != "" {
		return normalize(lang)
	}

	return Text
}

// normalize converts go-enry language names to fence tags.
func normalize(lang string) string {
	if lang == "Shell" {
		return "bash"
	}
	return strings.ToLower(lang)
}
