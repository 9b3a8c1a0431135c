package util

import (
	"strings"
	"unicode"
)

const maxFileNameRunes = 255

// CleanFileName reduces a client-supplied name to its final path element,
// dropping control characters and capping the length. The extension survives
// the cap so type checks still see it.
func CleanFileName(name string) string {
	s := strings.TrimSpace(name)
	if i := strings.LastIndexAny(s, `/\`); i >= 0 {
		s = s[i+1:]
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "." || s == ".." {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxFileNameRunes {
		return s
	}
	ext := []rune("")
	if dot := strings.LastIndex(s, "."); dot > 0 {
		ext = []rune(s[dot:])
		if len(ext) > 16 {
			ext = nil
		}
	}
	head := runes[:maxFileNameRunes-len(ext)]
	return string(head) + string(ext)
}
