package witgraph

import (
	"fmt"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
)

// BodyRefs returns every TypeRef used directly by td, in declaration order.
func BodyRefs(td *TypeDef) []TypeRef {
	var refs []TypeRef
	switch {
	case td.Kind.Structural():
		refs = append(refs, td.Type)
	case td.Record != nil:
		for _, f := range td.Record.Fields {
			refs = append(refs, f.Type)
		}
	case td.Variant != nil:
		for _, c := range td.Variant.Cases {
			if c.Type != nil {
				refs = append(refs, *c.Type)
			}
		}
	case td.Resource != nil:
		for _, fns := range [][]*Function{td.Resource.Constructors, td.Resource.Methods, td.Resource.Statics} {
			for _, f := range fns {
				refs = append(refs, FunctionRefs(f)...)
			}
		}
	}
	return refs
}

// FunctionRefs returns the parameter and result types of f.
func FunctionRefs(f *Function) []TypeRef {
	refs := make([]TypeRef, 0, len(f.Params)+len(f.Results))
	for _, p := range f.Params {
		refs = append(refs, p.Type)
	}
	for _, r := range f.Results {
		refs = append(refs, r.Type)
	}
	return refs
}

// Children returns the TypeRefs nested inside a composite reference.
func (t TypeRef) Children() []TypeRef {
	switch t.Kind {
	case RefList, RefOption, RefFuture, RefStream:
		if t.Elem != nil {
			return []TypeRef{*t.Elem}
		}
	case RefResult:
		var out []TypeRef
		if t.Ok != nil {
			out = append(out, *t.Ok)
		}
		if t.Err != nil {
			out = append(out, *t.Err)
		}
		return out
	case RefTuple:
		return t.Elems
	}
	return nil
}

// VisitNamed calls visit for every named TypeDef reachable from t without
// passing through another named TypeDef. Anonymous definitions are expanded.
func (g *Graph) VisitNamed(t TypeRef, visit func(*TypeDef)) {
	g.visitNamed(t, visit, map[TypeID]bool{})
}

func (g *Graph) visitNamed(t TypeRef, visit func(*TypeDef), seen map[TypeID]bool) {
	switch t.Kind {
	case RefDef, RefOwn, RefBorrow:
		td, ok := g.TypeDef(t.Def)
		if !ok {
			return
		}
		if td.Name != "" {
			visit(td)
			return
		}
		if seen[td.ID] {
			return
		}
		seen[td.ID] = true
		for _, r := range BodyRefs(td) {
			g.visitNamed(r, visit, seen)
		}
		return
	}
	for _, c := range t.Children() {
		g.visitNamed(c, visit, seen)
	}
}

// Validate checks referential integrity. It reports DanglingReference for
// references to absent entities and InvalidGraph for malformed structure.
func (g *Graph) Validate() error {
	for i, td := range g.Types {
		if td == nil || int(td.ID) != i {
			return invalid(fmt.Sprintf("#%d", i), "type arena slot does not hold its own id")
		}
		if err := g.validateOwner(td); err != nil {
			return err
		}
		if err := g.validateBody(td); err != nil {
			return err
		}
	}
	for i, iface := range g.Interfaces {
		if iface == nil || int(iface.ID) != i {
			return invalid(fmt.Sprintf("interface #%d", i), "interface slot does not hold its own id")
		}
		for _, id := range iface.Types {
			if _, ok := g.TypeDef(id); !ok {
				return diag.DanglingReference(diag.PhaseValidate, iface.Identity(), fmt.Sprintf("type #%d does not exist", id))
			}
		}
		for _, f := range iface.Functions {
			if err := g.validateFunction(iface.Identity()+"."+f.Name, f); err != nil {
				return err
			}
		}
	}
	for i, w := range g.Worlds {
		if w == nil || int(w.ID) != i {
			return invalid(fmt.Sprintf("world #%d", i), "world slot does not hold its own id")
		}
		for _, items := range [][]WorldItem{w.Imports, w.Exports} {
			for _, item := range items {
				if err := g.validateItem(w, item); err != nil {
					return err
				}
			}
		}
	}
	return g.checkAnonymousCycles()
}

func (g *Graph) validateOwner(td *TypeDef) error {
	switch td.Owner.Kind {
	case OwnerInterface:
		if _, ok := g.Interface(td.Owner.Interface); !ok {
			return diag.DanglingReference(diag.PhaseValidate, g.Describe(td.ID), fmt.Sprintf("owning interface #%d does not exist", td.Owner.Interface))
		}
	case OwnerWorld:
		if _, ok := g.WorldByID(td.Owner.World); !ok {
			return diag.DanglingReference(diag.PhaseValidate, g.Describe(td.ID), fmt.Sprintf("owning world #%d does not exist", td.Owner.World))
		}
	case OwnerNone:
		if td.Name != "" {
			return invalid(g.Describe(td.ID), "named type has no owner")
		}
	}
	return nil
}

func (g *Graph) validateBody(td *TypeDef) error {
	entity := g.Describe(td.ID)
	switch {
	case td.Kind.Structural():
	case td.Kind == KindRecord && td.Record != nil:
	case td.Kind == KindVariant && td.Variant != nil:
	case td.Kind == KindEnum && td.Enum != nil:
	case td.Kind == KindFlags && td.Flags != nil:
	case td.Kind == KindResource && td.Resource != nil:
		for _, fns := range [][]*Function{td.Resource.Constructors, td.Resource.Methods, td.Resource.Statics} {
			for _, f := range fns {
				if f.Resource != td.ID {
					return invalid(entity+"."+f.Name, "resource function is attached to a different resource")
				}
			}
		}
	default:
		return invalid(entity, fmt.Sprintf("%s definition has no body", td.Kind))
	}
	if td.Kind == KindResource {
		for _, fns := range [][]*Function{td.Resource.Constructors, td.Resource.Methods, td.Resource.Statics} {
			for _, f := range fns {
				if err := g.validateFunction(entity+"."+f.Name, f); err != nil {
					return err
				}
			}
		}
		return nil
	}
	for _, r := range BodyRefs(td) {
		if err := g.validateRef(entity, r); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateFunction(entity string, f *Function) error {
	if f == nil {
		return invalid(entity, "nil function")
	}
	for _, r := range FunctionRefs(f) {
		if err := g.validateRef(entity, r); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateRef(entity string, t TypeRef) error {
	switch t.Kind {
	case RefPrimitive:
		if t.Primitive < Bool || t.Primitive > String {
			return invalid(entity, "invalid primitive")
		}
	case RefDef, RefOwn, RefBorrow:
		td, ok := g.TypeDef(t.Def)
		if !ok {
			return diag.DanglingReference(diag.PhaseValidate, entity, fmt.Sprintf("type #%d does not exist", t.Def))
		}
		if t.Kind != RefDef && td.Kind != KindResource {
			return invalid(entity, fmt.Sprintf("handle to %s, which is a %s and not a resource", g.Describe(td.ID), td.Kind))
		}
	case RefList, RefOption:
		if t.Elem == nil {
			return invalid(entity, "composite type without element type")
		}
	case RefResult, RefTuple, RefFuture, RefStream, RefErrorContext:
	default:
		return invalid(entity, "type reference without kind")
	}
	for _, c := range t.Children() {
		if err := g.validateRef(entity, c); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) validateItem(w *World, item WorldItem) error {
	switch item.Kind {
	case ItemInterface:
		if _, ok := g.Interface(item.Interface); !ok {
			return diag.DanglingReference(diag.PhaseValidate, w.Name, fmt.Sprintf("interface #%d does not exist", item.Interface))
		}
	case ItemFunction:
		if item.Function == nil {
			return invalid(w.Name, "function item without function")
		}
		return g.validateFunction(w.Name+"."+item.Function.Name, item.Function)
	case ItemType:
		if _, ok := g.TypeDef(item.Type); !ok {
			return diag.DanglingReference(diag.PhaseValidate, w.Name, fmt.Sprintf("type #%d does not exist", item.Type))
		}
	}
	return nil
}

// checkAnonymousCycles rejects anonymous definitions that reach themselves
// without passing through a named definition. Such types have no finite
// structural rendering.
func (g *Graph) checkAnonymousCycles() error {
	const (
		unvisited = iota
		active
		done
	)
	state := make([]int, len(g.Types))

	var visit func(id TypeID) error
	var visitRef func(t TypeRef) error
	visitRef = func(t TypeRef) error {
		if t.Kind == RefDef {
			if td, ok := g.TypeDef(t.Def); ok && td.Name == "" {
				return visit(td.ID)
			}
			return nil
		}
		for _, c := range t.Children() {
			if err := visitRef(c); err != nil {
				return err
			}
		}
		return nil
	}
	visit = func(id TypeID) error {
		switch state[id] {
		case active:
			return invalid(g.Describe(id), "anonymous type refers to itself")
		case done:
			return nil
		}
		state[id] = active
		if err := visitRef(g.Types[id].Type); err != nil {
			return err
		}
		state[id] = done
		return nil
	}

	for _, td := range g.Types {
		if td.Name == "" && td.Kind.Structural() {
			if err := visit(td.ID); err != nil {
				return err
			}
		}
	}
	return nil
}

func invalid(entity, detail string) error {
	return diag.New(diag.PhaseValidate, diag.KindInvalidGraph).Entity(entity).Detail("%s", detail).Build()
}
