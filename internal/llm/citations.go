package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrCitationLeak matches any CitationLeakError via errors.Is
var ErrCitationLeak = errors.New("citation leak")

// CitationLeakError rejects a reply citing URLs outside the allowlist
type CitationLeakError struct {
	URLs []string
}

func (e *CitationLeakError) Error() string {
	return fmt.Sprintf("citation leak: LLM cited disallowed URL(s): %s", strings.Join(e.URLs, ", "))
}

func (e *CitationLeakError) Is(target error) bool {
	return target == ErrCitationLeak
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"']+`)

// extractURLs returns the distinct URLs in text, stripped of trailing punctuation
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}

// disallowed returns the cited URLs missing from allowed.
// A trailing slash does not distinguish two URLs.
func disallowed(cited, allowed []string) []string {
	set := make(map[string]bool, len(allowed))
	for _, u := range allowed {
		set[strings.TrimSuffix(u, "/")] = true
	}

	var leaked []string
	for _, u := range cited {
		if !set[strings.TrimSuffix(u, "/")] {
			leaked = append(leaked, u)
		}
	}
	return leaked
}
