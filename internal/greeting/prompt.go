// Package greeting builds deterministic prompt text for external greeting
// generation. The application never calls a generation API itself: it
// prepares the prompt, and stores whichever generated drafts the user decides
// to keep on the birthday event.
package greeting

import "strings"

// Styles are the supported greeting registers, first one is the default.
var Styles = []string{"informal", "formal", "humorous", "heartfelt", "short", "strict"}

// Keywords is the canonical relationship vocabulary. Contact tags matching an
// entry (case-insensitively) are preselected into the prompt.
var Keywords = []string{"friend", "colleague", "relative", "classmate", "neighbor", "mentor"}

// DefaultStyle returns the style used when the caller specifies none.
func DefaultStyle() string { return Styles[0] }

// ValidStyle reports whether s is one of the supported styles.
func ValidStyle(s string) bool {
	for _, v := range Styles {
		if v == s {
			return true
		}
	}
	return false
}

// PreselectKeywords maps a contact's free-form tags onto the canonical
// keyword list, keeping canonical spelling and list order. Unknown tags are
// ignored.
func PreselectKeywords(tags []string) []string {
	var out []string
	for _, kw := range Keywords {
		for _, tag := range tags {
			if strings.EqualFold(kw, strings.TrimSpace(tag)) {
				out = append(out, kw)
				break
			}
		}
	}
	return out
}

// BuildPrompt renders the prompt template for a birthday greeting. The same
// inputs always yield the same text, so prompts can be regenerated and
// compared across sessions.
func BuildPrompt(name, style string, keywords []string) string {
	if strings.TrimSpace(name) == "" {
		name = "a person dear to me"
	}
	if !ValidStyle(style) {
		style = DefaultStyle()
	}

	var b strings.Builder
	b.WriteString("Write a birthday greeting for " + name + ".")
	b.WriteString("\nGreeting style: " + style + ".")
	for _, kw := range keywords {
		b.WriteString("\nKeep in mind that this is my " + kw + ".")
	}
	b.WriteString("\n\n[Add your own wishes, shared interests, memories, or details the AI should take into account.]")
	b.WriteString("\n\nSuggest one or two complete greeting variants.")
	return b.String()
}
