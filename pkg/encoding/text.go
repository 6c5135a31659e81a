package encoding

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// NormalizeText prepares user-entered free text for storage.
// Input that is not valid UTF-8 is assumed to come from a Windows-1252 keyboard
// layout or export and is decoded first; the result is trimmed and NFC-composed
// so that the same species name always serializes to the same bytes
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	if !utf8.ValidString(s) {
		decoded, err := charmap.Windows1252.NewDecoder().String(s)
		if err == nil {
			s = decoded
		}
	}

	return norm.NFC.String(strings.TrimSpace(s))
}

// NormalizeToken lowercases a short identifier and folds spaces and dashes to
// underscores, e.g. "Pest Control" -> "pest_control"
func NormalizeToken(s string) string {
	s = strings.ToLower(NormalizeText(s))
	return strings.Join(strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == '-' || r == '_'
	}), "_")
}
