// Package witgraph models a resolved WIT component graph: packages,
// interfaces, worlds, type definitions and functions.
//
// Type definitions live in an arena indexed by TypeID so recursive and
// mutually recursive types are plain integer references. The graph is
// immutable once handed to the generator.
package witgraph

import (
	"sort"
	"strconv"

	"github.com/Masterminds/semver/v3"
)

type (
	TypeID      int
	InterfaceID int
	WorldID     int
)

// Direction is the side of a world boundary an item sits on.
type Direction uint8

const (
	Import Direction = iota
	Export
)

func (d Direction) String() string {
	if d == Export {
		return "export"
	}
	return "import"
}

// Package is a WIT package (`namespace:name@version`).
type Package struct {
	Namespace string
	Name      string
	Version   *semver.Version
	Docs      string
}

// String returns `ns:name` or `ns:name@version`.
func (p *Package) String() string {
	s := p.Namespace + ":" + p.Name
	if p.Version != nil {
		s += "@" + p.Version.Original()
	}
	return s
}

type Interface struct {
	ID        InterfaceID
	Name      string
	Package   *Package // nil for world-inline interfaces
	Types     []TypeID
	Functions []*Function
	Docs      string
}

// Identity is the string the runtime uses to link this interface:
// `ns:pkg/iface@version`, or the bare name for package-less interfaces.
func (i *Interface) Identity() string {
	if i.Package == nil {
		return i.Name
	}
	s := i.Package.Namespace + ":" + i.Package.Name + "/" + i.Name
	if i.Package.Version != nil {
		s += "@" + i.Package.Version.Original()
	}
	return s
}

// Kind is the shape of a TypeDef.
type Kind uint8

const (
	KindPrimitive Kind = iota + 1
	KindList
	KindOption
	KindResult
	KindTuple
	KindRecord
	KindVariant
	KindEnum
	KindFlags
	KindResource
	KindAlias
)

var kindNames = map[Kind]string{
	KindPrimitive: "primitive",
	KindList:      "list",
	KindOption:    "option",
	KindResult:    "result",
	KindTuple:     "tuple",
	KindRecord:    "record",
	KindVariant:   "variant",
	KindEnum:      "enum",
	KindFlags:     "flags",
	KindResource:  "resource",
	KindAlias:     "alias",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Structural reports whether the kind carries its shape in TypeDef.Type.
func (k Kind) Structural() bool {
	switch k {
	case KindPrimitive, KindList, KindOption, KindResult, KindTuple, KindAlias:
		return true
	}
	return false
}

type OwnerKind uint8

const (
	OwnerNone OwnerKind = iota
	OwnerInterface
	OwnerWorld
)

// Owner is the interface or world a TypeDef is declared in.
type Owner struct {
	Kind      OwnerKind
	Interface InterfaceID
	World     WorldID
}

// InInterface returns an Owner for a type declared in iface.
func InInterface(iface *Interface) Owner {
	return Owner{Kind: OwnerInterface, Interface: iface.ID}
}

// InWorld returns an Owner for a type declared at world level.
func InWorld(w *World) Owner {
	return Owner{Kind: OwnerWorld, World: w.ID}
}

type TypeDef struct {
	ID    TypeID
	Name  string // empty for anonymous structural types
	Owner Owner
	Kind  Kind
	Docs  string

	Type     TypeRef // structural kinds and aliases
	Record   *Record
	Variant  *Variant
	Enum     *Enum
	Flags    *Flags
	Resource *Resource
}

// Ref returns a reference to this definition.
func (t *TypeDef) Ref() TypeRef { return Ref(t.ID) }

type Field struct {
	Name string
	Type TypeRef
	Docs string
}

type Record struct {
	Fields []Field
}

type Case struct {
	Name string
	Type *TypeRef // nil for payload-less cases
	Docs string
}

type Variant struct {
	Cases []Case
}

type EnumCase struct {
	Name string
	Docs string
}

type Enum struct {
	Cases []EnumCase
}

type Flag struct {
	Name string
	Docs string
}

type Flags struct {
	Flags []Flag
}

// Resource holds the functions attached to a resource type. Disposal is
// implicit and never listed.
type Resource struct {
	Constructors []*Function
	Methods      []*Function
	Statics      []*Function
}

type FunctionKind uint8

const (
	Freestanding FunctionKind = iota
	Method
	Static
	Constructor
)

type Param struct {
	Name string // empty for an anonymous single result
	Type TypeRef
}

// Function is a freestanding or resource-attached function. Method params
// exclude the implicit self handle.
type Function struct {
	Name     string
	Kind     FunctionKind
	Resource TypeID // owning resource for Method, Static and Constructor
	Params   []Param
	Results  []Param
	Docs     string
}

type ItemKind uint8

const (
	ItemInterface ItemKind = iota
	ItemFunction
	ItemType
)

// WorldItem is one import or export of a world.
type WorldItem struct {
	Kind      ItemKind
	Interface InterfaceID
	Function  *Function
	Type      TypeID
}

type World struct {
	ID      WorldID
	Name    string
	Package *Package
	Imports []WorldItem
	Exports []WorldItem
	Docs    string
}

// Items returns the import or export list.
func (w *World) Items(dir Direction) []WorldItem {
	if dir == Export {
		return w.Exports
	}
	return w.Imports
}

func (w *World) add(dir Direction, item WorldItem) {
	if dir == Export {
		w.Exports = append(w.Exports, item)
		return
	}
	w.Imports = append(w.Imports, item)
}

func (w *World) ImportInterface(i *Interface) {
	w.add(Import, WorldItem{Kind: ItemInterface, Interface: i.ID})
}
func (w *World) ExportInterface(i *Interface) {
	w.add(Export, WorldItem{Kind: ItemInterface, Interface: i.ID})
}
func (w *World) ImportFunction(f *Function) {
	w.add(Import, WorldItem{Kind: ItemFunction, Function: f})
}
func (w *World) ExportFunction(f *Function) {
	w.add(Export, WorldItem{Kind: ItemFunction, Function: f})
}
func (w *World) ImportType(t *TypeDef) { w.add(Import, WorldItem{Kind: ItemType, Type: t.ID}) }
func (w *World) ExportType(t *TypeDef) { w.add(Export, WorldItem{Kind: ItemType, Type: t.ID}) }

// Graph is the resolved component graph. Interfaces, Types and Worlds are
// indexed by their IDs.
type Graph struct {
	Packages   []*Package
	Interfaces []*Interface
	Types      []*TypeDef
	Worlds     []*World
}

func (g *Graph) TypeDef(id TypeID) (*TypeDef, bool) {
	if id < 0 || int(id) >= len(g.Types) || g.Types[id] == nil {
		return nil, false
	}
	return g.Types[id], true
}

func (g *Graph) Interface(id InterfaceID) (*Interface, bool) {
	if id < 0 || int(id) >= len(g.Interfaces) || g.Interfaces[id] == nil {
		return nil, false
	}
	return g.Interfaces[id], true
}

func (g *Graph) WorldByID(id WorldID) (*World, bool) {
	if id < 0 || int(id) >= len(g.Worlds) || g.Worlds[id] == nil {
		return nil, false
	}
	return g.Worlds[id], true
}

// World looks a world up by name.
func (g *Graph) World(name string) (*World, bool) {
	for _, w := range g.Worlds {
		if w != nil && w.Name == name {
			return w, true
		}
	}
	return nil, false
}

// WorldNames returns the sorted names of all worlds.
func (g *Graph) WorldNames() []string {
	names := make([]string, 0, len(g.Worlds))
	for _, w := range g.Worlds {
		if w != nil {
			names = append(names, w.Name)
		}
	}
	sort.Strings(names)
	return names
}

// Describe returns a human-readable path for a TypeDef, used in diagnostics.
func (g *Graph) Describe(id TypeID) string {
	td, ok := g.TypeDef(id)
	if !ok {
		return "#" + strconv.Itoa(int(id))
	}
	name := td.Name
	if name == "" {
		name = "<anonymous #" + strconv.Itoa(int(id)) + ">"
	}
	switch td.Owner.Kind {
	case OwnerInterface:
		if iface, ok := g.Interface(td.Owner.Interface); ok {
			return iface.Identity() + "." + name
		}
	case OwnerWorld:
		if w, ok := g.WorldByID(td.Owner.World); ok {
			return w.Name + "." + name
		}
	}
	return name
}
