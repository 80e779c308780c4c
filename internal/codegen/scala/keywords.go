package scala

import "github.com/Alia5/wit-bindgen-scala/internal/codegen/naming"

var scalaKeywords = map[string]bool{
	// Scala 2
	"abstract": true, "case": true, "catch": true, "class": true, "def": true,
	"do": true, "else": true, "extends": true, "false": true, "final": true,
	"finally": true, "for": true, "forSome": true, "if": true, "implicit": true,
	"import": true, "lazy": true, "match": true, "new": true, "null": true,
	"object": true, "override": true, "package": true, "private": true,
	"protected": true, "return": true, "sealed": true, "super": true,
	"this": true, "throw": true, "trait": true, "true": true, "try": true,
	"type": true, "val": true, "var": true, "while": true, "with": true,
	"yield": true,
	// Scala 3
	"enum": true, "export": true, "given": true, "then": true,
	// soft keywords
	"as": true, "derives": true, "end": true, "extension": true, "infix": true,
	"inline": true, "opaque": true, "open": true, "transparent": true,
	"using": true,
	// reserved symbols
	"_": true, ":": true, "=": true, "=>": true, "<-": true, "<:": true,
	"<%": true, ">:": true, "#": true, "@": true,
	// java.lang.Object members
	"equals": true, "hashCode": true, "toString": true, "wait": true,
	"notify": true, "notifyAll": true, "clone": true, "finalize": true,
	"getClass": true,
}

func isScalaKeyword(s string) bool {
	return scalaKeywords[s]
}

func escapeScala(s string) string {
	return "`" + s + "`"
}

// NewNamer returns a Namer that escapes Scala reserved words with backticks.
func NewNamer() *naming.Namer {
	return naming.New(isScalaKeyword, escapeScala)
}
