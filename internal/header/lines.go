// Package header locates and rewrites the Version/LastUpdated header that
// sits near the top of a corpus document.
package header

import "strings"

// Line is one line of a document. EOL is "\n", "\r\n", or empty for a final
// line without a terminator; joining lines reproduces the document exactly.
type Line struct {
	Text string
	EOL  string
}

// Split breaks content into lines, keeping each line ending.
func Split(content []byte) []Line {
	var lines []Line
	s := string(content)
	for len(s) > 0 {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			lines = append(lines, Line{Text: s})
			break
		}
		text, eol := s[:i], "\n"
		if strings.HasSuffix(text, "\r") {
			text, eol = text[:len(text)-1], "\r\n"
		}
		lines = append(lines, Line{Text: text, EOL: eol})
		s = s[i+1:]
	}
	return lines
}

// Join is the inverse of Split.
func Join(lines []Line) []byte {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Text)
		sb.WriteString(l.EOL)
	}
	return []byte(sb.String())
}

// Texts returns the line texts without their endings.
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// documentEOL is the ending of the first terminated line, "\n" otherwise.
func documentEOL(lines []Line) string {
	for _, l := range lines {
		if l.EOL != "" {
			return l.EOL
		}
	}
	return "\n"
}
