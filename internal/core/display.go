package core

import "strings"

// DisplayIDPrefix is prepended to every human-facing student ID.
const DisplayIDPrefix = "AI4B-"

// DisplayID derives the human-facing student ID from an internal id:
// the prefix plus the last six characters (runes) of id, upper-cased.
// It is never persisted; list responses and both export renderers use it.
func DisplayID(id string) string {
	tail := []rune(id)
	if len(tail) > 6 {
		tail = tail[len(tail)-6:]
	}
	return DisplayIDPrefix + strings.ToUpper(string(tail))
}
