package witgraph

import "github.com/Masterminds/semver/v3"

// Builder assembles a Graph. Definitions are allocated before their bodies
// are filled in, so recursive types can reference themselves.
type Builder struct {
	g *Graph
}

func NewBuilder() *Builder {
	return &Builder{g: &Graph{}}
}

// Graph returns the graph under construction.
func (b *Builder) Graph() *Graph { return b.g }

func (b *Builder) Package(namespace, name string, version *semver.Version) *Package {
	p := &Package{Namespace: namespace, Name: name, Version: version}
	b.g.Packages = append(b.g.Packages, p)
	return p
}

// Interface declares an interface; pkg may be nil for world-inline interfaces.
func (b *Builder) Interface(pkg *Package, name string) *Interface {
	i := &Interface{ID: InterfaceID(len(b.g.Interfaces)), Name: name, Package: pkg}
	b.g.Interfaces = append(b.g.Interfaces, i)
	return i
}

func (b *Builder) World(pkg *Package, name string) *World {
	w := &World{ID: WorldID(len(b.g.Worlds)), Name: name, Package: pkg}
	b.g.Worlds = append(b.g.Worlds, w)
	return w
}

// Declare allocates a named TypeDef of the given kind with an empty body.
// Interface-owned definitions are appended to the interface's type list.
func (b *Builder) Declare(owner Owner, name string, kind Kind) *TypeDef {
	td := &TypeDef{ID: TypeID(len(b.g.Types)), Name: name, Owner: owner, Kind: kind}
	switch kind {
	case KindRecord:
		td.Record = &Record{}
	case KindVariant:
		td.Variant = &Variant{}
	case KindEnum:
		td.Enum = &Enum{}
	case KindFlags:
		td.Flags = &Flags{}
	case KindResource:
		td.Resource = &Resource{}
	}
	b.g.Types = append(b.g.Types, td)
	if owner.Kind == OwnerInterface {
		if iface, ok := b.g.Interface(owner.Interface); ok {
			iface.Types = append(iface.Types, td.ID)
		}
	}
	return td
}

// Anonymous allocates an unnamed structural TypeDef for t.
func (b *Builder) Anonymous(t TypeRef) *TypeDef {
	td := b.Declare(Owner{}, "", KindOf(t))
	td.Type = t
	return td
}

// Alias declares `type name = t`. The kind follows the shape of t.
func (b *Builder) Alias(owner Owner, name string, t TypeRef) *TypeDef {
	td := b.Declare(owner, name, KindOf(t))
	td.Type = t
	return td
}

func (b *Builder) Record(owner Owner, name string, fields ...Field) *TypeDef {
	td := b.Declare(owner, name, KindRecord)
	td.Record.Fields = fields
	return td
}

func (b *Builder) Variant(owner Owner, name string, cases ...Case) *TypeDef {
	td := b.Declare(owner, name, KindVariant)
	td.Variant.Cases = cases
	return td
}

func (b *Builder) Enum(owner Owner, name string, cases ...string) *TypeDef {
	td := b.Declare(owner, name, KindEnum)
	for _, c := range cases {
		td.Enum.Cases = append(td.Enum.Cases, EnumCase{Name: c})
	}
	return td
}

func (b *Builder) Flags(owner Owner, name string, flags ...string) *TypeDef {
	td := b.Declare(owner, name, KindFlags)
	for _, f := range flags {
		td.Flags.Flags = append(td.Flags.Flags, Flag{Name: f})
	}
	return td
}

func (b *Builder) Resource(owner Owner, name string) *TypeDef {
	return b.Declare(owner, name, KindResource)
}

// Function appends a freestanding function to iface.
func (b *Builder) Function(iface *Interface, name string, params []Param, results ...TypeRef) *Function {
	f := NewFunction(name, params, results...)
	iface.Functions = append(iface.Functions, f)
	return f
}

func (b *Builder) Constructor(res *TypeDef, params ...Param) *Function {
	f := &Function{Name: res.Name, Kind: Constructor, Resource: res.ID, Params: params}
	res.Resource.Constructors = append(res.Resource.Constructors, f)
	return f
}

func (b *Builder) Method(res *TypeDef, name string, params []Param, results ...TypeRef) *Function {
	f := NewFunction(name, params, results...)
	f.Kind, f.Resource = Method, res.ID
	res.Resource.Methods = append(res.Resource.Methods, f)
	return f
}

func (b *Builder) Static(res *TypeDef, name string, params []Param, results ...TypeRef) *Function {
	f := NewFunction(name, params, results...)
	f.Kind, f.Resource = Static, res.ID
	res.Resource.Statics = append(res.Resource.Statics, f)
	return f
}

// NewFunction builds a freestanding function with anonymous results.
func NewFunction(name string, params []Param, results ...TypeRef) *Function {
	f := &Function{Name: name, Params: params}
	for _, r := range results {
		f.Results = append(f.Results, Param{Type: r})
	}
	return f
}

// P is shorthand for a named parameter.
func P(name string, t TypeRef) Param { return Param{Name: name, Type: t} }

// F is shorthand for a record field.
func F(name string, t TypeRef) Field { return Field{Name: name, Type: t} }

// C is shorthand for a variant case; pass nil for a payload-less case.
func C(name string, payload *TypeRef) Case { return Case{Name: name, Type: payload} }
