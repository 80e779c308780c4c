package scala

import (
	"fmt"
	"strconv"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/naming"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// Module is one generated Scala source file.
type Module struct {
	Path      string
	Package   string
	Direction witgraph.Direction
	Content   string
}

// Target holds the per-run Scala generation state shared by every module:
// the name tables and the instantiation cache.
type Target struct {
	graph  *witgraph.Graph
	namer  *naming.Namer
	names  *naming.Table
	layout *Layout
	types  *TypeMapper
}

// NewTarget prepares a generation run over g. world names the selected world.
func NewTarget(g *witgraph.Graph, basePackage, world string) *Target {
	namer := NewNamer()
	layout := NewLayout(namer, basePackage, world)
	return &Target{
		graph:  g,
		namer:  namer,
		names:  namer.NewTable(),
		layout: layout,
		types:  NewTypeMapper(g, namer, layout),
	}
}

// SetTypeHomes tells the TypeMapper which module declares the types of each
// interface. It must be called before any module is prepared.
func (t *Target) SetTypeHomes(home func(witgraph.InterfaceID) witgraph.Direction) {
	t.types.home = home
}

func (t *Target) Layout() *Layout      { return t.layout }
func (t *Target) Types() *TypeMapper   { return t.types }
func (t *Target) Names() *naming.Table { return t.names }

// Unit is a prepared module. All names are claimed and all type expressions
// resolved; Render only executes templates and is safe to call concurrently.
type Unit struct {
	Location
	Direction witgraph.Direction

	docs      string
	types     []block
	resources []block
	functions []block
}

// Contents selects what an interface module declares.
type Contents uint8

const (
	DeclareTypes Contents = 1 << iota
	DeclareFunctions

	DeclareAll = DeclareTypes | DeclareFunctions
)

type block func() (string, error)

type section struct {
	Title  string
	Blocks []string
}

type group struct {
	title  string
	blocks []block
}

func (u *Unit) sections(groups ...group) ([]section, error) {
	var sections []section
	for _, g := range groups {
		if len(g.blocks) == 0 {
			continue
		}
		s := section{Title: g.title}
		for _, render := range g.blocks {
			text, err := render()
			if err != nil {
				return nil, err
			}
			s.Blocks = append(s.Blocks, indent(text, 2))
		}
		sections = append(sections, s)
	}
	return sections, nil
}

// Render produces the module text. Export modules declare their types in the
// companion object of the trait so other modules can name them.
func (u *Unit) Render() (Module, error) {
	types := group{"Type definitions", u.types}
	body := []group{types, {"Resources", u.resources}, {"Functions", u.functions}}
	var companionGroups []group
	if u.Export {
		body = body[1:]
		companionGroups = []group{types}
	}
	sections, err := u.sections(body...)
	if err != nil {
		return Module{}, fmt.Errorf("render %s: %w", u.Path, err)
	}
	companion, err := u.sections(companionGroups...)
	if err != nil {
		return Module{}, fmt.Errorf("render %s: %w", u.Path, err)
	}

	content, err := execute("module", struct {
		Package   string
		Docs      string
		Export    bool
		Object    string
		Sections  []section
		Companion []section
	}{u.Package, u.docs, u.Export, u.Object, sections, companion})
	if err != nil {
		return Module{}, fmt.Errorf("render %s: %w", u.Path, err)
	}
	return Module{Path: u.Path, Package: u.Package, Direction: u.Direction, Content: content}, nil
}

// PrepareInterface plans the module for iface in direction dir. contents
// selects whether the interface's types, its functions or both are declared.
func (t *Target) PrepareInterface(iface *witgraph.Interface, dir witgraph.Direction, contents Contents) (*Unit, error) {
	loc := t.layout.Interface(iface, dir)
	if dir == witgraph.Export {
		for _, id := range iface.Types {
			if td, ok := t.graph.TypeDef(id); ok && td.Kind == witgraph.KindResource {
				return nil, diag.Unsupported(diag.PhasePlan, iface.Identity()+"."+td.Name, "resources cannot be exported from Scala bindings")
			}
		}
	}
	conv := naming.ModuleCase
	if dir == witgraph.Export {
		conv = naming.TypeCase
	}
	if _, err := t.names.Scope(loc.Package).Declare(iface.Name, conv); err != nil {
		return nil, err
	}

	local := func(id witgraph.TypeID) bool {
		if dir == witgraph.Export || contents&DeclareTypes == 0 {
			return false
		}
		td, ok := t.graph.TypeDef(id)
		return ok && td.Owner.Kind == witgraph.OwnerInterface && td.Owner.Interface == iface.ID
	}
	e := t.emitter(loc, dir, iface.Identity(), local)
	e.unit.docs = scaladoc(iface.Docs, 0)

	if contents&DeclareTypes != 0 {
		if err := e.typeDefs(iface.Identity(), iface.Types); err != nil {
			return nil, err
		}
	}
	if contents&DeclareFunctions == 0 {
		return e.unit, nil
	}
	for _, f := range iface.Functions {
		if err := e.function(f); err != nil {
			return nil, err
		}
	}
	return e.unit, nil
}

func (e *emitter) typeDefs(owner string, ids []witgraph.TypeID) error {
	for _, id := range ids {
		td, ok := e.t.graph.TypeDef(id)
		if !ok {
			return diag.DanglingReference(diag.PhasePlan, owner, fmt.Sprintf("type #%d does not exist", id))
		}
		if err := e.typeDef(td); err != nil {
			return err
		}
	}
	return nil
}

// PrepareWorld plans the module for world-level items of w. World-level
// types are only declared on the import side.
func (t *Target) PrepareWorld(w *witgraph.World, dir witgraph.Direction, types []witgraph.TypeID, funcs []*witgraph.Function) (*Unit, error) {
	loc := t.layout.World(w, dir)
	conv := naming.ModuleCase
	if dir == witgraph.Export {
		conv = naming.TypeCase
	}
	if _, err := t.names.Scope(loc.Package).Declare(w.Name, conv); err != nil {
		return nil, err
	}

	local := make(map[witgraph.TypeID]bool, len(types))
	for _, id := range types {
		local[id] = true
	}
	e := t.emitter(loc, dir, rootNamespace, func(id witgraph.TypeID) bool { return local[id] })
	e.unit.docs = scaladoc(w.Docs, 0)

	if err := e.typeDefs(w.Name, types); err != nil {
		return nil, err
	}
	for _, f := range funcs {
		if err := e.function(f); err != nil {
			return nil, err
		}
	}
	return e.unit, nil
}

type emitter struct {
	t       *Target
	linkage string // interface identity used in annotations
	scope   *naming.Scope
	ctx     Context
	unit    *Unit
}

func (t *Target) emitter(loc Location, dir witgraph.Direction, linkage string, local func(witgraph.TypeID) bool) *emitter {
	return &emitter{
		t:       t,
		linkage: linkage,
		scope:   t.names.Scope(loc.Qualifier),
		ctx:     Context{Key: loc.Qualifier, Local: local},
		unit:    &Unit{Location: loc, Direction: dir},
	}
}

func (e *emitter) entity(name string) string {
	return e.linkage + "." + name
}

// memberScope holds instance members of the type name; companionScope holds
// members of its companion object.
func (e *emitter) memberScope(name string) *naming.Scope {
	return e.t.names.Scope(e.unit.Qualifier + "." + name + "#")
}

func (e *emitter) companionScope(name string) *naming.Scope {
	return e.t.names.Scope(e.unit.Qualifier + "." + name)
}

func (e *emitter) mapType(t witgraph.TypeRef, entity string) (string, error) {
	s, err := e.t.types.Map(t, e.ctx)
	if err != nil {
		return "", fmt.Errorf("%s: %w", entity, err)
	}
	return s, nil
}

func (e *emitter) typeDef(td *witgraph.TypeDef) error {
	if td.Name == "" {
		return nil
	}
	name, err := e.scope.Declare(td.Name, naming.TypeCase)
	if err != nil {
		return err
	}
	docs := scaladoc(td.Docs, 0)

	switch td.Kind {
	case witgraph.KindRecord:
		return e.record(td, name, docs)
	case witgraph.KindVariant:
		return e.variant(td, name, docs)
	case witgraph.KindEnum:
		return e.enum(td, name, docs)
	case witgraph.KindFlags:
		return e.flags(td, name, docs)
	case witgraph.KindResource:
		return e.resource(td, name, docs)
	}

	target, err := e.mapType(td.Type, e.entity(td.Name))
	if err != nil {
		return err
	}
	view := aliasView{Docs: docs, Name: name, Type: target}
	e.unit.types = append(e.unit.types, func() (string, error) { return execute("alias", view) })
	return nil
}

type aliasView struct {
	Docs string
	Name string
	Type string
}

type paramView struct {
	Name string
	Type string
}

type recordView struct {
	Docs   string
	Name   string
	Fields []paramView
}

func (e *emitter) record(td *witgraph.TypeDef, name, docs string) error {
	scope := e.memberScope(name)
	view := recordView{Docs: docs, Name: name}
	for _, f := range td.Record.Fields {
		fieldName, err := scope.Declare(f.Name, naming.MemberCase)
		if err != nil {
			return err
		}
		typ, err := e.mapType(f.Type, e.entity(td.Name+"."+f.Name))
		if err != nil {
			return err
		}
		view.Fields = append(view.Fields, paramView{Name: fieldName, Type: typ})
	}
	e.unit.types = append(e.unit.types, func() (string, error) { return execute("record", view) })
	return nil
}

type caseView struct {
	Docs    string
	Name    string
	Payload string
}

type variantView struct {
	Docs  string
	Name  string
	Cases []caseView
}

// caseScope is the companion scope of a variant or enum. Cases extend the
// enclosing trait by its simple name, so no case may take that name.
func (e *emitter) caseScope(name string) (*naming.Scope, error) {
	scope := e.companionScope(name)
	if err := scope.Reserve(name); err != nil {
		return nil, err
	}
	return scope, nil
}

func (e *emitter) variant(td *witgraph.TypeDef, name, docs string) error {
	scope, err := e.caseScope(name)
	if err != nil {
		return err
	}
	view := variantView{Docs: docs, Name: name}
	for _, c := range td.Variant.Cases {
		caseName, err := scope.Declare(c.Name, naming.TypeCase)
		if err != nil {
			return err
		}
		cv := caseView{Docs: scaladoc(c.Docs, 2), Name: caseName}
		if c.Type != nil {
			if cv.Payload, err = e.mapType(*c.Type, e.entity(td.Name+"."+c.Name)); err != nil {
				return err
			}
		}
		view.Cases = append(view.Cases, cv)
	}
	e.unit.types = append(e.unit.types, func() (string, error) { return execute("variant", view) })
	return nil
}

func (e *emitter) enum(td *witgraph.TypeDef, name, docs string) error {
	scope, err := e.caseScope(name)
	if err != nil {
		return err
	}
	view := variantView{Docs: docs, Name: name}
	for _, c := range td.Enum.Cases {
		caseName, err := scope.Declare(c.Name, naming.TypeCase)
		if err != nil {
			return err
		}
		view.Cases = append(view.Cases, caseView{Docs: scaladoc(c.Docs, 2), Name: caseName})
	}
	e.unit.types = append(e.unit.types, func() (string, error) { return execute("variant", view) })
	return nil
}

// FlagsRepr returns the bit width and backing Scala type for a flags type
// with n members: the smallest of 8, 16, 32 and 64 bits that fits.
func FlagsRepr(n int) (int, string, bool) {
	switch {
	case n <= 8:
		return 8, "Byte", true
	case n <= 16:
		return 16, "Short", true
	case n <= 32:
		return 32, "Int", true
	case n <= 64:
		return 64, "Long", true
	}
	return 0, "", false
}

type flagView struct {
	Docs  string
	Name  string
	Value string
}

type flagsView struct {
	Docs       string
	Annotation string
	Name       string
	Repr       string
	Or         string
	And        string
	Xor        string
	Not        string
	Flags      []flagView
}

func (e *emitter) flags(td *witgraph.TypeDef, name, docs string) error {
	count := len(td.Flags.Flags)
	bits, repr, ok := FlagsRepr(count)
	if !ok {
		return diag.FlagWidthOverflow(e.entity(td.Name), count)
	}

	// Scala widens Byte and Short operands to Int.
	narrow := func(expr string) string { return expr }
	shift := func(i int) string { return "1 << " + strconv.Itoa(i) }
	switch bits {
	case 8:
		narrow = func(expr string) string { return "(" + expr + ").toByte" }
	case 16:
		narrow = func(expr string) string { return "(" + expr + ").toShort" }
	case 64:
		shift = func(i int) string { return "1L << " + strconv.Itoa(i) }
	}

	view := flagsView{
		Docs:       docs,
		Annotation: witFlags(count),
		Name:       name,
		Repr:       repr,
		Or:         narrow("value | other.value"),
		And:        narrow("value & other.value"),
		Xor:        narrow("value ^ other.value"),
		Not:        narrow("~value"),
	}
	scope := e.companionScope(name)
	if err := scope.ReserveAll("apply", "unapply"); err != nil {
		return err
	}
	for i, f := range td.Flags.Flags {
		flagName, err := scope.Declare(f.Name, naming.MemberCase)
		if err != nil {
			return err
		}
		view.Flags = append(view.Flags, flagView{Docs: scaladoc(f.Docs, 2), Name: flagName, Value: narrow(shift(i))})
	}
	e.unit.types = append(e.unit.types, func() (string, error) { return execute("flags", view) })
	return nil
}

type defView struct {
	Docs       string
	Annotation string
	Name       string
	Params     []paramView
	Result     string
	Native     bool
}

type resourceView struct {
	Docs       string
	Annotation string
	Name       string
	Methods    []string
	Companion  []string
}

func (e *emitter) resource(td *witgraph.TypeDef, name, docs string) error {
	members := e.memberScope(name)
	if err := members.Reserve("close"); err != nil {
		return err
	}
	companion := e.companionScope(name)
	if err := companion.Reserve("apply"); err != nil {
		return err
	}

	var methods, statics []defView
	for _, f := range td.Resource.Methods {
		methodName, err := members.Declare(f.Name, naming.MemberCase)
		if err != nil {
			return err
		}
		v, err := e.signature(f, methodName, members.Namespace()+methodName+"()", e.entity(td.Name+"."+f.Name))
		if err != nil {
			return err
		}
		v.Annotation = witResourceMethod(f.Name)
		methods = append(methods, v)
	}
	for _, f := range td.Resource.Constructors {
		v, err := e.signature(f, "apply", companion.Namespace()+".apply()", e.entity(td.Name+".constructor"))
		if err != nil {
			return err
		}
		v.Result = name
		v.Annotation = annotation("WitResourceConstructor")
		statics = append(statics, v)
	}
	for _, f := range td.Resource.Statics {
		staticName, err := companion.Declare(f.Name, naming.MemberCase)
		if err != nil {
			return err
		}
		v, err := e.signature(f, staticName, companion.Namespace()+"."+staticName+"()", e.entity(td.Name+"."+f.Name))
		if err != nil {
			return err
		}
		v.Annotation = witResourceStaticMethod(f.Name)
		statics = append(statics, v)
	}

	annotationText := witResourceImport(e.linkage, td.Name)
	e.unit.resources = append(e.unit.resources, func() (string, error) {
		view := resourceView{Docs: docs, Annotation: annotationText, Name: name}
		for _, m := range methods {
			text, err := renderMember(m)
			if err != nil {
				return "", err
			}
			view.Methods = append(view.Methods, text)
		}
		for _, s := range statics {
			text, err := renderMember(s)
			if err != nil {
				return "", err
			}
			view.Companion = append(view.Companion, text)
		}
		return execute("resource", view)
	})
	return nil
}

// renderMember renders a def nested one level inside a trait or object.
func renderMember(v defView) (string, error) {
	text, err := execute("def", v)
	if err != nil {
		return "", err
	}
	return trimNewline(indent(text, 2)), nil
}

func trimNewline(s string) string {
	for len(s) > 0 && s[len(s)-1] == '\n' {
		s = s[:len(s)-1]
	}
	return s
}

// signature resolves the parameters and result of f. Parameter names are
// claimed in the namespace paramScope.
func (e *emitter) signature(f *witgraph.Function, name, paramScope, entity string) (defView, error) {
	v := defView{Docs: scaladoc(f.Docs, 0), Name: name, Native: !e.unit.Export}

	params := e.t.names.Scope(paramScope)
	for _, p := range f.Params {
		paramName, err := params.Declare(p.Name, naming.MemberCase)
		if err != nil {
			return defView{}, err
		}
		typ, err := e.mapType(p.Type, entity+"("+p.Name+")")
		if err != nil {
			return defView{}, err
		}
		v.Params = append(v.Params, paramView{Name: paramName, Type: typ})
	}

	result, err := e.t.types.Results(f.Results, e.ctx)
	if err != nil {
		return defView{}, fmt.Errorf("%s: %w", entity, err)
	}
	v.Result = result
	return v, nil
}

func (e *emitter) function(f *witgraph.Function) error {
	name, err := e.scope.Declare(f.Name, naming.MemberCase)
	if err != nil {
		return err
	}
	v, err := e.signature(f, name, e.scope.Namespace()+"."+name+"()", e.entity(f.Name))
	if err != nil {
		return err
	}
	if e.unit.Export {
		v.Annotation = witExport(e.linkage, f.Name)
	} else {
		v.Annotation = witImport(e.linkage, f.Name)
	}
	e.unit.functions = append(e.unit.functions, func() (string, error) { return execute("def", v) })
	return nil
}
