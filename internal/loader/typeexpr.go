package loader

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// resolver maps a type name as written in a document to its definition.
type resolver func(name string) (witgraph.TypeID, error)

// exprParser is a recursive-descent parser for WIT type expressions such as
// `result<list<u8>, error-code>` or `own<wasi:io/streams.input-stream>`.
type exprParser struct {
	src     string
	pos     int
	resolve resolver
}

// ParseTypeExpr parses a complete type expression. Named types are looked up
// with resolve.
func ParseTypeExpr(src string, resolve resolver) (witgraph.TypeRef, error) {
	p := &exprParser{src: src, resolve: resolve}
	t, err := p.typ()
	if err != nil {
		return witgraph.TypeRef{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return witgraph.TypeRef{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

func (p *exprParser) errorf(format string, args ...any) error {
	return fmt.Errorf("type %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, args...))
}

func (p *exprParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *exprParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *exprParser) expect(c byte) error {
	if p.peek() != c {
		if p.pos >= len(p.src) {
			return p.errorf("expected %q, found end of input", c)
		}
		return p.errorf("expected %q, found %q", c, p.src[p.pos])
	}
	p.pos++
	return nil
}

// ident scans a name. Qualified names keep their `:`, `/`, `.` and `@`
// separators.
func (p *exprParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && !strings.ContainsRune("<>, \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
	return p.src[start:p.pos]
}

// optional parses `_` as an absent type or any type expression.
func (p *exprParser) optional() (*witgraph.TypeRef, error) {
	if p.peek() == '_' {
		p.pos++
		return nil, nil
	}
	t, err := p.typ()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (p *exprParser) single() (witgraph.TypeRef, error) {
	if err := p.expect('<'); err != nil {
		return witgraph.TypeRef{}, err
	}
	t, err := p.typ()
	if err != nil {
		return witgraph.TypeRef{}, err
	}
	return t, p.expect('>')
}

func (p *exprParser) typ() (witgraph.TypeRef, error) {
	name := p.ident()
	if name == "" {
		if p.pos >= len(p.src) {
			return witgraph.TypeRef{}, p.errorf("expected type, found end of input")
		}
		return witgraph.TypeRef{}, p.errorf("expected type, found %q", p.src[p.pos])
	}

	switch name {
	case "list":
		elem, err := p.single()
		return witgraph.ListOf(elem), err
	case "option":
		elem, err := p.single()
		return witgraph.OptionOf(elem), err
	case "own", "borrow":
		if err := p.expect('<'); err != nil {
			return witgraph.TypeRef{}, err
		}
		id, err := p.resolve(p.ident())
		if err != nil {
			return witgraph.TypeRef{}, err
		}
		if err := p.expect('>'); err != nil {
			return witgraph.TypeRef{}, err
		}
		if name == "own" {
			return witgraph.OwnOf(id), nil
		}
		return witgraph.BorrowOf(id), nil
	case "result":
		return p.result()
	case "tuple":
		return p.tuple()
	case "future", "stream":
		var elem *witgraph.TypeRef
		if p.peek() == '<' {
			t, err := p.single()
			if err != nil {
				return witgraph.TypeRef{}, err
			}
			elem = &t
		}
		if name == "future" {
			return witgraph.FutureOf(elem), nil
		}
		return witgraph.StreamOf(elem), nil
	case "error-context":
		return witgraph.ErrorContext(), nil
	}

	if prim, ok := primitive(name); ok {
		return witgraph.Prim(prim), nil
	}
	id, err := p.resolve(name)
	if err != nil {
		return witgraph.TypeRef{}, err
	}
	return witgraph.Ref(id), nil
}

// result parses `result`, `result<T>`, `result<_, E>` and `result<T, E>`.
func (p *exprParser) result() (witgraph.TypeRef, error) {
	if p.peek() != '<' {
		return witgraph.ResultOf(nil, nil), nil
	}
	p.pos++
	ok, err := p.optional()
	if err != nil {
		return witgraph.TypeRef{}, err
	}
	var errType *witgraph.TypeRef
	if p.peek() == ',' {
		p.pos++
		if errType, err = p.optional(); err != nil {
			return witgraph.TypeRef{}, err
		}
	}
	if err := p.expect('>'); err != nil {
		return witgraph.TypeRef{}, err
	}
	return witgraph.ResultOf(ok, errType), nil
}

func (p *exprParser) tuple() (witgraph.TypeRef, error) {
	if err := p.expect('<'); err != nil {
		return witgraph.TypeRef{}, err
	}
	var elems []witgraph.TypeRef
	for p.peek() != '>' {
		if len(elems) > 0 {
			if err := p.expect(','); err != nil {
				return witgraph.TypeRef{}, err
			}
		}
		t, err := p.typ()
		if err != nil {
			return witgraph.TypeRef{}, err
		}
		elems = append(elems, t)
	}
	p.pos++
	return witgraph.TupleOf(elems...), nil
}

// primitive recognises WIT primitive names using the component-model
// type parser.
func primitive(name string) (witgraph.Primitive, bool) {
	t, err := wit.ParseType(name)
	if err != nil {
		return 0, false
	}
	return primitiveOf(t)
}

func primitiveOf(t wit.Type) (witgraph.Primitive, bool) {
	switch t.(type) {
	case wit.Bool:
		return witgraph.Bool, true
	case wit.S8:
		return witgraph.S8, true
	case wit.U8:
		return witgraph.U8, true
	case wit.S16:
		return witgraph.S16, true
	case wit.U16:
		return witgraph.U16, true
	case wit.S32:
		return witgraph.S32, true
	case wit.U32:
		return witgraph.U32, true
	case wit.S64:
		return witgraph.S64, true
	case wit.U64:
		return witgraph.U64, true
	case wit.F32:
		return witgraph.F32, true
	case wit.F64:
		return witgraph.F64, true
	case wit.Char:
		return witgraph.Char, true
	case wit.String:
		return witgraph.String, true
	}
	return 0, false
}
