package scala

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/naming"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

var primitiveTypes = map[witgraph.Primitive]string{
	witgraph.Bool:   "Boolean",
	witgraph.S8:     "Byte",
	witgraph.U8:     unsignedPkg + "UByte",
	witgraph.S16:    "Short",
	witgraph.U16:    unsignedPkg + "UShort",
	witgraph.S32:    "Int",
	witgraph.U32:    unsignedPkg + "UInt",
	witgraph.S64:    "Long",
	witgraph.U64:    unsignedPkg + "ULong",
	witgraph.F32:    "Float",
	witgraph.F64:    "Double",
	witgraph.Char:   "Char",
	witgraph.String: "String",
}

// Context identifies the module a type expression is rendered into.
type Context struct {
	// Key distinguishes modules in the instantiation cache.
	Key string
	// Local reports TypeDefs declared in the module itself; they are
	// referenced by simple name.
	Local func(witgraph.TypeID) bool
}

// TypeMapper renders WIT type references as Scala type expressions. Composite
// instantiations are cached by structural shape, so every occurrence of the
// same shape renders to the same text.
type TypeMapper struct {
	graph  *witgraph.Graph
	namer  *naming.Namer
	layout *Layout

	// home reports which direction's module declares the types of an
	// interface. Nil means the import side.
	home func(witgraph.InterfaceID) witgraph.Direction

	mu    sync.Mutex
	cache map[string]string
}

func NewTypeMapper(g *witgraph.Graph, namer *naming.Namer, layout *Layout) *TypeMapper {
	return &TypeMapper{graph: g, namer: namer, layout: layout, cache: map[string]string{}}
}

// Map renders t for use inside the module described by ctx.
func (m *TypeMapper) Map(t witgraph.TypeRef, ctx Context) (string, error) {
	return m.mapRef(t, ctx, map[witgraph.TypeID]bool{})
}

// Results renders a function's result list: Unit, the single type, or a tuple.
func (m *TypeMapper) Results(results []witgraph.Param, ctx Context) (string, error) {
	switch len(results) {
	case 0:
		return "Unit", nil
	case 1:
		return m.Map(results[0].Type, ctx)
	}
	elems := make([]witgraph.TypeRef, len(results))
	for i, r := range results {
		elems[i] = r.Type
	}
	return m.Map(witgraph.TupleOf(elems...), ctx)
}

// Named renders a reference to a named TypeDef. Types declared by an export
// module live in the companion object of its trait.
func (m *TypeMapper) Named(td *witgraph.TypeDef, ctx Context) (string, error) {
	name := m.namer.Derive(td.Name, naming.TypeCase)
	if ctx.Local != nil && ctx.Local(td.ID) {
		return name, nil
	}
	switch td.Owner.Kind {
	case witgraph.OwnerInterface:
		iface, ok := m.graph.Interface(td.Owner.Interface)
		if !ok {
			return "", diag.DanglingReference(diag.PhaseRender, td.Name, "owning interface does not exist")
		}
		dir := witgraph.Import
		if m.home != nil {
			dir = m.home(iface.ID)
		}
		return m.layout.Interface(iface, dir).Qualifier + "." + name, nil
	case witgraph.OwnerWorld:
		w, ok := m.graph.WorldByID(td.Owner.World)
		if !ok {
			return "", diag.DanglingReference(diag.PhaseRender, td.Name, "owning world does not exist")
		}
		return m.layout.World(w, witgraph.Import).Qualifier + "." + name, nil
	}
	return name, nil
}

// Instantiations returns a copy of the structural cache, keyed by shape.
func (m *TypeMapper) Instantiations() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.cache))
	for k, v := range m.cache {
		out[k] = v
	}
	return out
}

// InstantiationKeys returns the sorted cache keys.
func (m *TypeMapper) InstantiationKeys() []string {
	inst := m.Instantiations()
	keys := make([]string, 0, len(inst))
	for k := range inst {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *TypeMapper) mapRef(t witgraph.TypeRef, ctx Context, expanding map[witgraph.TypeID]bool) (string, error) {
	switch t.Kind {
	case witgraph.RefPrimitive:
		if s, ok := primitiveTypes[t.Primitive]; ok {
			return s, nil
		}
		return "", diag.New(diag.PhaseRender, diag.KindInvalidGraph).Detail("invalid primitive %d", t.Primitive).Build()
	case witgraph.RefDef:
		td, ok := m.graph.TypeDef(t.Def)
		if !ok {
			return "", diag.DanglingReference(diag.PhaseRender, t.String(), "type does not exist")
		}
		if td.Name != "" {
			return m.Named(td, ctx)
		}
		if !td.Kind.Structural() {
			return "", diag.Unsupported(diag.PhaseRender, m.graph.Describe(td.ID), fmt.Sprintf("anonymous %s has no Scala name", td.Kind))
		}
		if expanding[td.ID] {
			return "", diag.New(diag.PhaseRender, diag.KindInvalidGraph).
				Entity(m.graph.Describe(td.ID)).
				Detail("anonymous type refers to itself").
				Build()
		}
		expanding[td.ID] = true
		defer delete(expanding, td.ID)
		return m.mapRef(td.Type, ctx, expanding)
	case witgraph.RefOwn, witgraph.RefBorrow:
		td, ok := m.graph.TypeDef(t.Def)
		if !ok {
			return "", diag.DanglingReference(diag.PhaseRender, t.String(), "resource does not exist")
		}
		return m.Named(td, ctx)
	case witgraph.RefFuture:
		return "", diag.Unsupported(diag.PhaseRender, t.String(), "future types are not supported by the Scala bindings")
	case witgraph.RefStream:
		return "", diag.Unsupported(diag.PhaseRender, t.String(), "stream types are not supported by the Scala bindings")
	case witgraph.RefErrorContext:
		return "", diag.Unsupported(diag.PhaseRender, t.String(), "error-context is not supported by the Scala bindings")
	}

	key, named := m.shapeKey(t, map[witgraph.TypeID]bool{})
	if named {
		key += "@" + ctx.Key
	}

	m.mu.Lock()
	cached, ok := m.cache[key]
	m.mu.Unlock()
	if ok {
		return cached, nil
	}

	out, err := m.composite(t, ctx, expanding)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.cache[key] = out
	m.mu.Unlock()
	return out, nil
}

func (m *TypeMapper) composite(t witgraph.TypeRef, ctx Context, expanding map[witgraph.TypeID]bool) (string, error) {
	arg := func(r *witgraph.TypeRef) (string, error) {
		if r == nil {
			return "Unit", nil
		}
		return m.mapRef(*r, ctx, expanding)
	}

	switch t.Kind {
	case witgraph.RefList:
		elem, err := arg(t.Elem)
		if err != nil {
			return "", err
		}
		return "Array[" + elem + "]", nil
	case witgraph.RefOption:
		elem, err := arg(t.Elem)
		if err != nil {
			return "", err
		}
		return "java.util.Optional[" + elem + "]", nil
	case witgraph.RefResult:
		ok, err := arg(t.Ok)
		if err != nil {
			return "", err
		}
		e, err := arg(t.Err)
		if err != nil {
			return "", err
		}
		return witPkg + "Result[" + ok + ", " + e + "]", nil
	case witgraph.RefTuple:
		if len(t.Elems) == 0 {
			return "Unit", nil
		}
		elems := make([]string, len(t.Elems))
		for i := range t.Elems {
			s, err := m.mapRef(t.Elems[i], ctx, expanding)
			if err != nil {
				return "", err
			}
			elems[i] = s
		}
		return witPkg + "Tuple" + strconv.Itoa(len(elems)) + "[" + strings.Join(elems, ", ") + "]", nil
	}
	return "", diag.New(diag.PhaseRender, diag.KindInvalidGraph).Detail("type reference without kind").Build()
}

// shapeKey returns the structural identity of t and whether it mentions a
// named TypeDef. Anonymous definitions are keyed by their expansion.
func (m *TypeMapper) shapeKey(t witgraph.TypeRef, seen map[witgraph.TypeID]bool) (string, bool) {
	switch t.Kind {
	case witgraph.RefPrimitive:
		return t.Primitive.String(), false
	case witgraph.RefDef:
		td, ok := m.graph.TypeDef(t.Def)
		if ok && td.Name == "" && td.Kind.Structural() && !seen[td.ID] {
			seen[td.ID] = true
			defer delete(seen, td.ID)
			return m.shapeKey(td.Type, seen)
		}
		return "#" + strconv.Itoa(int(t.Def)), true
	case witgraph.RefOwn, witgraph.RefBorrow:
		return "#" + strconv.Itoa(int(t.Def)), true
	}

	var (
		b     strings.Builder
		named bool
	)
	part := func(r *witgraph.TypeRef) {
		if r == nil {
			b.WriteByte('_')
			return
		}
		k, n := m.shapeKey(*r, seen)
		named = named || n
		b.WriteString(k)
	}
	switch t.Kind {
	case witgraph.RefList:
		b.WriteString("list<")
		part(t.Elem)
	case witgraph.RefOption:
		b.WriteString("option<")
		part(t.Elem)
	case witgraph.RefResult:
		b.WriteString("result<")
		part(t.Ok)
		b.WriteByte(',')
		part(t.Err)
	case witgraph.RefTuple:
		b.WriteString("tuple<")
		for i := range t.Elems {
			if i > 0 {
				b.WriteByte(',')
			}
			part(&t.Elems[i])
		}
	default:
		return t.String(), false
	}
	b.WriteByte('>')
	return b.String(), named
}
