package witgraph

import (
	"strconv"
	"strings"
)

// Primitive is a WIT scalar or string type.
type Primitive uint8

const (
	Bool Primitive = iota + 1
	S8
	U8
	S16
	U16
	S32
	U32
	S64
	U64
	F32
	F64
	Char
	String
)

var primitiveNames = [...]string{
	Bool:   "bool",
	S8:     "s8",
	U8:     "u8",
	S16:    "s16",
	U16:    "u16",
	S32:    "s32",
	U32:    "u32",
	S64:    "s64",
	U64:    "u64",
	F32:    "f32",
	F64:    "f64",
	Char:   "char",
	String: "string",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) && primitiveNames[p] != "" {
		return primitiveNames[p]
	}
	return "invalid"
}

// RefKind discriminates TypeRef.
type RefKind uint8

const (
	RefPrimitive RefKind = iota + 1
	RefDef
	RefList
	RefOption
	RefResult
	RefTuple
	RefOwn
	RefBorrow
	RefFuture
	RefStream
	RefErrorContext
)

// TypeRef is a use of a type: a primitive, a reference to a TypeDef, or an
// inline composite over further TypeRefs.
type TypeRef struct {
	Kind      RefKind
	Primitive Primitive // RefPrimitive
	Def       TypeID    // RefDef, RefOwn, RefBorrow
	Elem      *TypeRef  // RefList, RefOption; optional for RefFuture, RefStream
	Ok        *TypeRef  // RefResult, nil when the arm is absent
	Err       *TypeRef  // RefResult, nil when the arm is absent
	Elems     []TypeRef // RefTuple
}

func Prim(p Primitive) TypeRef { return TypeRef{Kind: RefPrimitive, Primitive: p} }

func Ref(id TypeID) TypeRef { return TypeRef{Kind: RefDef, Def: id} }

func ListOf(elem TypeRef) TypeRef { return TypeRef{Kind: RefList, Elem: &elem} }

func OptionOf(elem TypeRef) TypeRef { return TypeRef{Kind: RefOption, Elem: &elem} }

// ResultOf builds `result<ok, err>`; either arm may be nil.
func ResultOf(ok, err *TypeRef) TypeRef { return TypeRef{Kind: RefResult, Ok: ok, Err: err} }

func TupleOf(elems ...TypeRef) TypeRef { return TypeRef{Kind: RefTuple, Elems: elems} }

func OwnOf(resource TypeID) TypeRef { return TypeRef{Kind: RefOwn, Def: resource} }

func BorrowOf(resource TypeID) TypeRef { return TypeRef{Kind: RefBorrow, Def: resource} }

func FutureOf(elem *TypeRef) TypeRef { return TypeRef{Kind: RefFuture, Elem: elem} }

func StreamOf(elem *TypeRef) TypeRef { return TypeRef{Kind: RefStream, Elem: elem} }

func ErrorContext() TypeRef { return TypeRef{Kind: RefErrorContext} }

// Ptr returns a pointer to a copy of t, for optional result arms and case payloads.
func Ptr(t TypeRef) *TypeRef { return &t }

// String renders the reference in WIT syntax, with TypeDef references as `#id`.
func (t TypeRef) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t TypeRef) write(b *strings.Builder) {
	switch t.Kind {
	case RefPrimitive:
		b.WriteString(t.Primitive.String())
	case RefDef:
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(int(t.Def)))
	case RefList, RefOption:
		if t.Kind == RefList {
			b.WriteString("list<")
		} else {
			b.WriteString("option<")
		}
		if t.Elem != nil {
			t.Elem.write(b)
		}
		b.WriteByte('>')
	case RefResult:
		b.WriteString("result")
		if t.Ok == nil && t.Err == nil {
			return
		}
		b.WriteByte('<')
		if t.Ok != nil {
			t.Ok.write(b)
		} else {
			b.WriteByte('_')
		}
		if t.Err != nil {
			b.WriteString(", ")
			t.Err.write(b)
		}
		b.WriteByte('>')
	case RefTuple:
		b.WriteString("tuple<")
		for i, e := range t.Elems {
			if i > 0 {
				b.WriteString(", ")
			}
			e.write(b)
		}
		b.WriteByte('>')
	case RefOwn:
		b.WriteString("own<#" + strconv.Itoa(int(t.Def)) + ">")
	case RefBorrow:
		b.WriteString("borrow<#" + strconv.Itoa(int(t.Def)) + ">")
	case RefFuture, RefStream:
		if t.Kind == RefFuture {
			b.WriteString("future")
		} else {
			b.WriteString("stream")
		}
		if t.Elem != nil {
			b.WriteByte('<')
			t.Elem.write(b)
			b.WriteByte('>')
		}
	case RefErrorContext:
		b.WriteString("error-context")
	default:
		b.WriteString("invalid")
	}
}

// KindOf returns the TypeDef kind that a named definition of t would carry.
func KindOf(t TypeRef) Kind {
	switch t.Kind {
	case RefPrimitive:
		return KindPrimitive
	case RefList:
		return KindList
	case RefOption:
		return KindOption
	case RefResult:
		return KindResult
	case RefTuple:
		return KindTuple
	}
	return KindAlias
}
