package workflow

import (
	"path"
	"regexp"
	"strings"
)

// unsafeNameChars matches everything outside word characters, whitespace
// and - [ ] ( ) . : /
var unsafeNameChars = regexp.MustCompile(`[^\p{L}\p{N}_\s\-\[\]\(\)\.:/]`)

// SanitizeName collapses whitespace, strips unsafe characters and caps the
// length of a display name. Empty results become DefaultName.
func SanitizeName(name string) string {
	cleaned := strings.Join(strings.Fields(name), " ")
	cleaned = unsafeNameChars.ReplaceAllString(cleaned, "")
	if cleaned == "" {
		return DefaultName
	}

	runes := []rune(cleaned)
	if len(runes) > MaxNameLength {
		cleaned = string(runes[:MaxNameLength])
	}
	return cleaned
}

// NameFromSource derives a display name from a source identifier's file stem
func NameFromSource(source string) string {
	base := path.Base(strings.ReplaceAll(source, `\`, "/"))
	if base == "." || base == "/" {
		return ""
	}
	if ext := path.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
