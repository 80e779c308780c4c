package loader

// Document is the interchange form of a resolved WIT graph as handed over by
// the external resolver. The same shape decodes from JSON, YAML and TOML.
type Document struct {
	Packages []PackageDoc `json:"packages" yaml:"packages" toml:"packages"`
	// Interfaces lists interfaces that belong to no package, such as those
	// declared inline in a world.
	Interfaces []InterfaceDoc `json:"interfaces,omitempty" yaml:"interfaces,omitempty" toml:"interfaces,omitempty"`
	Worlds     []WorldDoc     `json:"worlds" yaml:"worlds" toml:"worlds"`
}

type PackageDoc struct {
	Namespace  string         `json:"namespace" yaml:"namespace" toml:"namespace"`
	Name       string         `json:"name" yaml:"name" toml:"name"`
	Version    string         `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	Docs       string         `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
	Interfaces []InterfaceDoc `json:"interfaces" yaml:"interfaces" toml:"interfaces"`
}

type InterfaceDoc struct {
	Name      string        `json:"name" yaml:"name" toml:"name"`
	Docs      string        `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
	Types     []TypeDoc     `json:"types,omitempty" yaml:"types,omitempty" toml:"types,omitempty"`
	Functions []FunctionDoc `json:"functions,omitempty" yaml:"functions,omitempty" toml:"functions,omitempty"`
}

// TypeDoc declares a named type. Exactly one of Type, Record, Variant, Enum,
// Flags and Resource is set.
type TypeDoc struct {
	Name     string       `json:"name" yaml:"name" toml:"name"`
	Docs     string       `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
	Type     string       `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Record   *RecordDoc   `json:"record,omitempty" yaml:"record,omitempty" toml:"record,omitempty"`
	Variant  []CaseDoc    `json:"variant,omitempty" yaml:"variant,omitempty" toml:"variant,omitempty"`
	Enum     []string     `json:"enum,omitempty" yaml:"enum,omitempty" toml:"enum,omitempty"`
	Flags    []string     `json:"flags,omitempty" yaml:"flags,omitempty" toml:"flags,omitempty"`
	Resource *ResourceDoc `json:"resource,omitempty" yaml:"resource,omitempty" toml:"resource,omitempty"`
}

type RecordDoc struct {
	Fields []FieldDoc `json:"fields" yaml:"fields" toml:"fields"`
}

type FieldDoc struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type" yaml:"type" toml:"type"`
	Docs string `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
}

// CaseDoc is a variant case; Type is empty for payload-less cases.
type CaseDoc struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	Type string `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
	Docs string `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
}

type ResourceDoc struct {
	Constructors []FunctionDoc `json:"constructors,omitempty" yaml:"constructors,omitempty" toml:"constructors,omitempty"`
	Methods      []FunctionDoc `json:"methods,omitempty" yaml:"methods,omitempty" toml:"methods,omitempty"`
	Statics      []FunctionDoc `json:"statics,omitempty" yaml:"statics,omitempty" toml:"statics,omitempty"`
}

type FunctionDoc struct {
	Name    string     `json:"name" yaml:"name" toml:"name"`
	Docs    string     `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
	Params  []ParamDoc `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Results []ParamDoc `json:"results,omitempty" yaml:"results,omitempty" toml:"results,omitempty"`
}

// ParamDoc is a parameter or result. Results may leave Name empty.
type ParamDoc struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Type string `json:"type" yaml:"type" toml:"type"`
}

type WorldDoc struct {
	Name string `json:"name" yaml:"name" toml:"name"`
	// Package is `ns:name`, optionally followed by `@version`.
	Package string    `json:"package,omitempty" yaml:"package,omitempty" toml:"package,omitempty"`
	Docs    string    `json:"docs,omitempty" yaml:"docs,omitempty" toml:"docs,omitempty"`
	Imports []ItemDoc `json:"imports,omitempty" yaml:"imports,omitempty" toml:"imports,omitempty"`
	Exports []ItemDoc `json:"exports,omitempty" yaml:"exports,omitempty" toml:"exports,omitempty"`
}

// ItemDoc is one world import or export. Exactly one field is set.
type ItemDoc struct {
	Interface string       `json:"interface,omitempty" yaml:"interface,omitempty" toml:"interface,omitempty"`
	Function  *FunctionDoc `json:"function,omitempty" yaml:"function,omitempty" toml:"function,omitempty"`
	Type      *TypeDoc     `json:"type,omitempty" yaml:"type,omitempty" toml:"type,omitempty"`
}
