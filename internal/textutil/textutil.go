// Package textutil normalises player-supplied text: usernames, chat and
// the base37 name hashes used by social lists.
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxNameLength is the longest username that fits a base37 hash.
const MaxNameLength = 12

var (
	lower = cases.Lower(language.Und)
	title = cases.Title(language.Und)
)

// stripMarks decomposes, drops combining marks and recomposes, so "é" folds to "e".
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// CanonicalName folds a username to its stored form: accents stripped,
// lowercase, underscores as spaces, trimmed.
func CanonicalName(name string) string {
	name = lower.String(stripMarks(name))
	name = strings.ReplaceAll(name, "_", " ")
	return strings.TrimSpace(name)
}

// ValidName reports whether name, already canonical, is 1-12 characters of
// [a-z0-9 ].
func ValidName(name string) bool {
	if name == "" || len(name) > MaxNameLength {
		return false
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == ' ':
		default:
			return false
		}
	}
	return true
}

// DisplayName capitalises each word of a canonical name.
func DisplayName(name string) string {
	return title.String(name)
}

// SanitizeChat normalises a chat line and drops control characters.
func SanitizeChat(text string, maxLen int) string {
	text = norm.NFC.String(text)
	var b strings.Builder
	for _, c := range text {
		if unicode.IsControl(c) {
			continue
		}
		b.WriteRune(c)
	}
	out := strings.TrimSpace(b.String())
	if r := []rune(out); len(r) > maxLen {
		out = string(r[:maxLen])
	}
	return out
}

// ToBase37 hashes a name to the 64-bit form used in friend and ignore lists.
// Invalid characters encode as spaces.
func ToBase37(name string) int64 {
	var h int64
	for i := 0; i < len(name) && i < MaxNameLength; i++ {
		c := name[i]
		h *= 37
		switch {
		case c >= 'A' && c <= 'Z':
			h += int64(c-'A') + 1
		case c >= 'a' && c <= 'z':
			h += int64(c-'a') + 1
		case c >= '0' && c <= '9':
			h += int64(c-'0') + 27
		}
	}
	for h%37 == 0 && h != 0 {
		h /= 37
	}
	return h
}

// FromBase37 decodes a base37 hash back to a lowercase name with spaces
// for underscores.
func FromBase37(h int64) string {
	if h <= 0 {
		return ""
	}
	var buf [MaxNameLength]byte
	i := len(buf)
	for h != 0 && i > 0 {
		d := h % 37
		h /= 37
		i--
		switch {
		case d == 0:
			buf[i] = ' '
		case d <= 26:
			buf[i] = byte('a' + d - 1)
		default:
			buf[i] = byte('0' + d - 27)
		}
	}
	return string(buf[i:])
}
