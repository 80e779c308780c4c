package scala

import "strings"

// commentEscaper keeps doc text from closing or nesting a Scala block comment.
var commentEscaper = strings.NewReplacer("*/", "*&#47;", "/*", "/&#42;")

// scaladoc formats WIT documentation as a Scaladoc block, each line prefixed
// with indent spaces. It returns "" for empty docs.
func scaladoc(docs string, indent int) string {
	content := strings.TrimSpace(commentEscaper.Replace(docs))
	if content == "" {
		return ""
	}
	pad := strings.Repeat(" ", indent)
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	var b strings.Builder
	b.WriteString(pad + "/** " + lines[0] + "\n")
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			b.WriteString(pad + " *\n")
		} else {
			b.WriteString(pad + " *  " + line + "\n")
		}
	}
	b.WriteString(pad + " */\n")
	return b.String()
}

// indent prefixes every non-empty line of s with n spaces.
func indent(s string, n int) string {
	if s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.SplitAfter(s, "\n")
	var b strings.Builder
	for _, line := range lines {
		if line != "" && line != "\n" {
			b.WriteString(pad)
		}
		b.WriteString(line)
	}
	return b.String()
}
