package logger

import "strings"

// stripAnsiCodes removes CSI escape sequences (ESC '[' ... final-letter)
// from s, used before writing attribute values to the JSON/file handlers
// so colour codes picked up from a styled string don't leak into
// structured log output.
func stripAnsiCodes(s string) string {
	var out strings.Builder
	out.Grow(len(s))

	const esc = '\x1b'
	inSeq := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inSeq:
			if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') {
				inSeq = false
			}
		case c == esc && i+1 < len(s) && s[i+1] == '[':
			inSeq = true
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
