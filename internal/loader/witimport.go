package loader

import (
	"fmt"

	"go.bytecodealliance.org/wit"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// WITImporter converts in-memory go.bytecodealliance.org/wit types, as
// produced by wasm runtimes, into graph references. Named definitions are
// declared in the importer's owner the first time they are seen.
type WITImporter struct {
	b     *witgraph.Builder
	owner witgraph.Owner
	defs  map[*wit.TypeDef]*witgraph.TypeDef

	// ownerOf overrides owner per definition when converting a whole
	// Resolve. It returns false for definitions it does not place.
	ownerOf func(*wit.TypeDef) (witgraph.Owner, bool)
}

func NewWITImporter(b *witgraph.Builder, owner witgraph.Owner) *WITImporter {
	return &WITImporter{b: b, owner: owner, defs: map[*wit.TypeDef]*witgraph.TypeDef{}}
}

// TypeFromWIT converts a single type, declaring named definitions in owner.
func TypeFromWIT(b *witgraph.Builder, owner witgraph.Owner, t wit.Type) (witgraph.TypeRef, error) {
	return NewWITImporter(b, owner).Type(t)
}

// Type converts t. Anonymous list, option, result, tuple and handle
// definitions become inline composites.
func (im *WITImporter) Type(t wit.Type) (witgraph.TypeRef, error) {
	if t == nil {
		return witgraph.TypeRef{}, invalid("wit", "nil type")
	}
	if prim, ok := primitiveOf(t); ok {
		return witgraph.Prim(prim), nil
	}
	td, ok := t.(*wit.TypeDef)
	if !ok || td == nil {
		return witgraph.TypeRef{}, diag.Unsupported(diag.PhaseLoad, fmt.Sprintf("%T", t), "type has no graph equivalent")
	}
	if def, ok := im.defs[td]; ok {
		return def.Ref(), nil
	}
	if td.Name != nil && *td.Name != "" {
		def, err := im.named(td, *td.Name)
		if err != nil {
			return witgraph.TypeRef{}, err
		}
		return def.Ref(), nil
	}
	return im.structural(td.Kind, "<anonymous>")
}

func (im *WITImporter) optional(t wit.Type) (*witgraph.TypeRef, error) {
	if t == nil {
		return nil, nil
	}
	r, err := im.Type(t)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// structural converts the kinds that may appear inline.
func (im *WITImporter) structural(kind wit.TypeDefKind, entity string) (witgraph.TypeRef, error) {
	switch k := kind.(type) {
	case *wit.List:
		elem, err := im.Type(k.Type)
		return witgraph.ListOf(elem), err
	case *wit.Option:
		elem, err := im.Type(k.Type)
		return witgraph.OptionOf(elem), err
	case *wit.Result:
		ok, err := im.optional(k.OK)
		if err != nil {
			return witgraph.TypeRef{}, err
		}
		e, err := im.optional(k.Err)
		if err != nil {
			return witgraph.TypeRef{}, err
		}
		return witgraph.ResultOf(ok, e), nil
	case *wit.Tuple:
		elems := make([]witgraph.TypeRef, len(k.Types))
		for i, t := range k.Types {
			r, err := im.Type(t)
			if err != nil {
				return witgraph.TypeRef{}, err
			}
			elems[i] = r
		}
		return witgraph.TupleOf(elems...), nil
	case *wit.Own:
		id, err := im.handle(k.Type, entity)
		return witgraph.OwnOf(id), err
	case *wit.Borrow:
		id, err := im.handle(k.Type, entity)
		return witgraph.BorrowOf(id), err
	case *wit.Future:
		elem, err := im.optional(k.Type)
		return witgraph.FutureOf(elem), err
	case *wit.Stream:
		elem, err := im.optional(k.Type)
		return witgraph.StreamOf(elem), err
	}
	if t, ok := kind.(wit.Type); ok {
		return im.Type(t)
	}
	return witgraph.TypeRef{}, diag.Unsupported(diag.PhaseLoad, entity, fmt.Sprintf("anonymous %T has no graph equivalent", kind))
}

func (im *WITImporter) handle(t wit.Type, entity string) (witgraph.TypeID, error) {
	td, ok := t.(*wit.TypeDef)
	if !ok || td == nil {
		return 0, invalid(entity, "handle without a resource")
	}
	r, err := im.Type(td)
	if err != nil {
		return 0, err
	}
	if r.Kind != witgraph.RefDef {
		return 0, invalid(entity, "handle to %s", r)
	}
	return r.Def, nil
}

// named declares td before converting its body so recursive references
// resolve to the new definition.
func (im *WITImporter) named(td *wit.TypeDef, name string) (*witgraph.TypeDef, error) {
	def := im.shell(td, name)
	if err := im.fill(td, def); err != nil {
		return nil, err
	}
	return def, nil
}

// shell declares td with an empty body.
func (im *WITImporter) shell(td *wit.TypeDef, name string) *witgraph.TypeDef {
	kind := witgraph.KindAlias
	switch td.Kind.(type) {
	case *wit.Record:
		kind = witgraph.KindRecord
	case *wit.Variant:
		kind = witgraph.KindVariant
	case *wit.Enum:
		kind = witgraph.KindEnum
	case *wit.Flags:
		kind = witgraph.KindFlags
	case *wit.Resource:
		kind = witgraph.KindResource
	}
	owner := im.owner
	if im.ownerOf != nil {
		if o, ok := im.ownerOf(td); ok {
			owner = o
		}
	}
	def := im.b.Declare(owner, name, kind)
	def.Docs = td.Docs.Contents
	im.defs[td] = def
	return def
}

// fill converts the body of td into def.
func (im *WITImporter) fill(td *wit.TypeDef, def *witgraph.TypeDef) error {
	entity := def.Name
	switch k := td.Kind.(type) {
	case *wit.Record:
		for _, f := range k.Fields {
			t, err := im.Type(f.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", entity, f.Name, err)
			}
			def.Record.Fields = append(def.Record.Fields, witgraph.Field{Name: f.Name, Type: t, Docs: f.Docs.Contents})
		}
		return nil
	case *wit.Variant:
		for _, c := range k.Cases {
			payload, err := im.optional(c.Type)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", entity, c.Name, err)
			}
			def.Variant.Cases = append(def.Variant.Cases, witgraph.Case{Name: c.Name, Type: payload, Docs: c.Docs.Contents})
		}
		return nil
	case *wit.Enum:
		for _, c := range k.Cases {
			def.Enum.Cases = append(def.Enum.Cases, witgraph.EnumCase{Name: c.Name, Docs: c.Docs.Contents})
		}
		return nil
	case *wit.Flags:
		for _, f := range k.Flags {
			def.Flags.Flags = append(def.Flags.Flags, witgraph.Flag{Name: f.Name, Docs: f.Docs.Contents})
		}
		return nil
	case *wit.Resource:
		return nil
	}

	t, err := im.structural(td.Kind, entity)
	if err != nil {
		return err
	}
	def.Type = t
	def.Kind = witgraph.KindOf(t)
	return nil
}
