package panel

import (
	"regexp"
	"strings"
)

var imageMarker = regexp.MustCompile(`\[IMAGE:([^\]]+)\]`)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
	"\n", "<br>",
)

// EscapeHTML escapes markup characters and turns newlines into <br>
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// FullText renders item text for the modal: image markers become <img>
// elements and everything else is escaped.
func FullText(text string) string {
	var sb strings.Builder
	last := 0
	for _, m := range imageMarker.FindAllStringSubmatchIndex(text, -1) {
		sb.WriteString(EscapeHTML(text[last:m[0]]))
		src := text[m[2]:m[3]]
		sb.WriteString(`<img src="`)
		sb.WriteString(strings.ReplaceAll(src, `"`, "&quot;"))
		sb.WriteString(`" style="max-width: 100%; height: auto; margin: 10px 0;">`)
		last = m[1]
	}
	sb.WriteString(EscapeHTML(text[last:]))
	return sb.String()
}

// PlainText drops image markers, leaving what the modal shows as text
func PlainText(text string) string {
	return imageMarker.ReplaceAllString(text, "")
}

// WrapLongLines breaks lines longer than max at the last space before the
// limit, or at the limit when the line has no space there
func WrapLongLines(text string, max int) string {
	if max <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine([]rune(line), max)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line []rune, max int) string {
	var sb strings.Builder
	for len(line) > max {
		split := lastSpace(line[:max+1])
		if split <= 0 {
			sb.WriteString(string(line[:max]))
			sb.WriteByte('\n')
			line = line[max:]
			continue
		}
		sb.WriteString(string(line[:split]))
		sb.WriteByte('\n')
		line = line[split+1:]
	}
	sb.WriteString(string(line))
	return sb.String()
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}
