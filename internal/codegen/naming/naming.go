// Package naming derives target-language identifiers from kebab-case WIT
// names and detects collisions between them.
package naming

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Convention selects the casing applied to a source identifier.
type Convention uint8

const (
	TypeCase   Convention = iota // KebabCaseName
	MemberCase                   // kebabCaseName
	ModuleCase                   // kebab_case_name
)

func (c Convention) String() string {
	switch c {
	case TypeCase:
		return "type"
	case MemberCase:
		return "member"
	default:
		return "module"
	}
}

// Tokens splits a source identifier into its words.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || unicode.IsSpace(r)
	})
}

func ToPascalCase(s string) string {
	words := Tokens(s)
	if len(words) == 0 {
		return ""
	}
	caser := cases.Title(language.Und)

	var result strings.Builder
	for _, word := range words {
		result.WriteString(caser.String(word))
	}
	return result.String()
}

func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if len(pascal) == 0 {
		return ""
	}
	r := []rune(pascal)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

func ToSnakeCase(s string) string {
	words := Tokens(s)
	for i, w := range words {
		words[i] = strings.ToLower(w)
	}
	return strings.Join(words, "_")
}

// Namer applies a convention and escapes reserved words.
type Namer struct {
	isReserved func(string) bool
	escape     func(string) string
}

// New returns a Namer for a target language. isReserved reports words that
// must be escaped; escape wraps such a word.
func New(isReserved func(string) bool, escape func(string) string) *Namer {
	return &Namer{isReserved: isReserved, escape: escape}
}

// Case converts raw without escaping. File paths use this spelling.
func (n *Namer) Case(raw string, c Convention) string {
	switch c {
	case TypeCase:
		return ToPascalCase(raw)
	case MemberCase:
		return ToCamelCase(raw)
	default:
		return ToSnakeCase(raw)
	}
}

// Derive converts raw and escapes the result if it is reserved.
func (n *Namer) Derive(raw string, c Convention) string {
	return n.Escape(n.Case(raw, c))
}

// Escape wraps ident when it is a reserved word.
func (n *Namer) Escape(ident string) string {
	if n.isReserved != nil && n.isReserved(ident) {
		return n.escape(ident)
	}
	return ident
}
