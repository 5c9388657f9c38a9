package detector

import (
	"path/filepath"
	"strings"
)

// minNameTokenLength guards against stripping short name particles that
// would also match unrelated parts of a filename.
const minNameTokenLength = 3

// NormalizeFileName reduces a user-supplied filename to a comparable
// signature: lowercase, extension dropped, and the student's own register
// number and name tokens removed, since those are expected to differ between
// copies of the same file.
func NormalizeFileName(fileName, studentName, registerNumber string) string {
	name := strings.ToLower(strings.TrimSpace(fileName))
	if name == "" {
		return ""
	}

	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}

	if rn := strings.ToLower(strings.TrimSpace(registerNumber)); rn != "" {
		name = strings.ReplaceAll(name, rn, "")
	}

	for _, token := range strings.Fields(strings.ToLower(studentName)) {
		if len(token) >= minNameTokenLength {
			name = strings.ReplaceAll(name, token, "")
		}
	}

	return collapseSeparators(name)
}

// collapseSeparators squeezes runs of separator characters into single
// underscores and trims them from both ends, so "hw1__" and "hw1 -"
// normalize identically.
func collapseSeparators(name string) string {
	var b strings.Builder
	prevSep := false

	for _, r := range name {
		switch r {
		case '-', '_', ' ', '.', '(', ')':
			prevSep = true
		default:
			if prevSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			prevSep = false
		}
	}

	return b.String()
}
