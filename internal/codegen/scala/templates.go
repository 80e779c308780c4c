package scala

import (
	"strings"
	"text/template"
)

const recordTemplate = `{{.Docs}}` + `{{annotation "WitRecord"}}
final case class {{.Name}}({{params .Fields}})
`

const variantTemplate = `{{.Docs}}` + `{{annotation "WitVariant"}}
sealed trait {{.Name}}
object {{.Name}} {
{{- range .Cases}}
{{.Docs}}  {{if .Payload}}final case class {{.Name}}(value: {{.Payload}}) extends {{$.Name}}{{else}}case object {{.Name}} extends {{$.Name}}{{end}}
{{- end}}
}
`

const flagsTemplate = `{{.Docs}}{{.Annotation}}
final case class {{.Name}}(value: {{.Repr}}) {
  def |(other: {{.Name}}): {{.Name}} = {{.Name}}({{.Or}})
  def &(other: {{.Name}}): {{.Name}} = {{.Name}}({{.And}})
  def ^(other: {{.Name}}): {{.Name}} = {{.Name}}({{.Xor}})
  def unary_~ : {{.Name}} = {{.Name}}({{.Not}})
  def contains(other: {{.Name}}): Boolean = (value & other.value) == other.value
}
object {{.Name}} {
{{- range .Flags}}
{{.Docs}}  val {{.Name}} = {{$.Name}}({{.Value}})
{{- end}}
}
`

const aliasTemplate = `{{.Docs}}type {{.Name}} = {{.Type}}
`

const defTemplate = `{{.Docs}}{{.Annotation}}
def {{.Name}}({{params .Params}}): {{.Result}}{{if .Native}} = ` + nativeMarker + `{{end}}
`

const resourceTemplate = `{{.Docs}}{{.Annotation}}
trait {{.Name}} {
{{- range .Methods}}
{{.}}
{{- end}}
  {{annotation "WitResourceDrop"}}
  def close(): Unit = ` + nativeMarker + `
}
object {{.Name}} {
{{- range .Companion}}
{{.}}
{{- end}}
}
`

const moduleTemplate = `{{if .Package}}package {{.Package}}

{{end}}{{.Docs}}{{if .Export}}{{annotation "WitExportInterface"}}
trait {{.Object}} {
{{else}}package object {{.Object}} {
{{end}}
{{range .Sections}}  // {{.Title}}
{{range .Blocks}}{{.}}
{{end}}{{end}}}
{{- if .Companion}}

object {{.Object}} {

{{range .Companion}}  // {{.Title}}
{{range .Blocks}}{{.}}
{{end}}{{end}}}
{{- end}}
`

var funcMap = template.FuncMap{
	"annotation": annotation,
	"params": func(ps []paramView) string {
		parts := make([]string, len(ps))
		for i, p := range ps {
			parts[i] = p.Name + ": " + p.Type
		}
		return strings.Join(parts, ", ")
	},
}

var templates = template.Must(func() (*template.Template, error) {
	root := template.New("scala").Funcs(funcMap)
	for name, text := range map[string]string{
		"record":   recordTemplate,
		"variant":  variantTemplate,
		"flags":    flagsTemplate,
		"alias":    aliasTemplate,
		"def":      defTemplate,
		"resource": resourceTemplate,
		"module":   moduleTemplate,
	} {
		if _, err := root.New(name).Parse(text); err != nil {
			return nil, err
		}
	}
	return root, nil
}())

func execute(name string, data any) (string, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
