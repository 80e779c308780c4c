package scala_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func newMapper(g *w.Graph) *scala.TypeMapper {
	return scala.NewTarget(g, "com.example", "app").Types()
}

func TestMapPrimitives(t *testing.T) {
	tests := []struct {
		prim w.Primitive
		want string
	}{
		{w.Bool, "Boolean"},
		{w.S8, "Byte"},
		{w.U8, "scala.scalajs.wit.unsigned.UByte"},
		{w.S16, "Short"},
		{w.U16, "scala.scalajs.wit.unsigned.UShort"},
		{w.S32, "Int"},
		{w.U32, "scala.scalajs.wit.unsigned.UInt"},
		{w.S64, "Long"},
		{w.U64, "scala.scalajs.wit.unsigned.ULong"},
		{w.F32, "Float"},
		{w.F64, "Double"},
		{w.Char, "Char"},
		{w.String, "String"},
	}
	m := newMapper(w.NewBuilder().Graph())
	for _, tt := range tests {
		t.Run(tt.prim.String(), func(t *testing.T) {
			got, err := m.Map(w.Prim(tt.prim), scala.Context{Key: "k"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapComposites(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "shapes", nil)
	iface := b.Interface(pkg, "geometry")
	point := b.Record(w.InInterface(iface), "point", w.F("x", w.Prim(w.S32)))
	pair := b.Anonymous(w.TupleOf(w.Prim(w.S32), w.Prim(w.String)))
	g := b.Graph()

	local := scala.Context{Key: "com.example.test.shapes.geometry", Local: func(id w.TypeID) bool { return id == point.ID }}
	foreign := scala.Context{Key: "elsewhere"}

	tests := []struct {
		name string
		ref  w.TypeRef
		ctx  scala.Context
		want string
	}{
		{"list", w.ListOf(w.Prim(w.String)), local, "Array[String]"},
		{"option", w.OptionOf(w.Prim(w.U16)), local, "java.util.Optional[scala.scalajs.wit.unsigned.UShort]"},
		{"result both", w.ResultOf(w.Ptr(w.Prim(w.S32)), w.Ptr(w.Prim(w.String))), local, "scala.scalajs.wit.Result[Int, String]"},
		{"result no ok", w.ResultOf(nil, w.Ptr(w.Prim(w.String))), local, "scala.scalajs.wit.Result[Unit, String]"},
		{"result bare", w.ResultOf(nil, nil), local, "scala.scalajs.wit.Result[Unit, Unit]"},
		{"tuple", w.TupleOf(w.Prim(w.Bool), w.Prim(w.F32), w.Prim(w.Char)), local, "scala.scalajs.wit.Tuple3[Boolean, Float, Char]"},
		{"empty tuple", w.TupleOf(), local, "Unit"},
		{"local named", w.ListOf(point.Ref()), local, "Array[Point]"},
		{"foreign named", w.ListOf(point.Ref()), foreign, "Array[com.example.test.shapes.geometry.Point]"},
		{"anonymous expanded", w.OptionOf(pair.Ref()), local, "java.util.Optional[scala.scalajs.wit.Tuple2[Int, String]]"},
		{"nested", w.ListOf(w.OptionOf(w.ListOf(w.Prim(w.U8)))), local, "Array[java.util.Optional[Array[scala.scalajs.wit.unsigned.UByte]]]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newMapper(g).Map(tt.ref, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMapResults(t *testing.T) {
	m := newMapper(w.NewBuilder().Graph())
	ctx := scala.Context{Key: "k"}

	none, err := m.Results(nil, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Unit", none)

	one, err := m.Results([]w.Param{w.P("", w.Prim(w.S64))}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "Long", one)

	many, err := m.Results([]w.Param{w.P("a", w.Prim(w.S64)), w.P("b", w.Prim(w.String))}, ctx)
	require.NoError(t, err)
	assert.Equal(t, "scala.scalajs.wit.Tuple2[Long, String]", many)
}

func TestMapDeduplicatesInstantiations(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "dedup", nil)
	iface := b.Interface(pkg, "lists")
	names := b.Alias(w.InInterface(iface), "names", w.ListOf(w.Prim(w.String)))
	g := b.Graph()

	m := newMapper(g)
	ctx := scala.Context{Key: "a"}
	for _, ref := range []w.TypeRef{
		w.ListOf(w.Prim(w.String)),
		w.ListOf(w.Prim(w.String)),
		w.OptionOf(w.ListOf(w.Prim(w.String))),
	} {
		_, err := m.Map(ref, ctx)
		require.NoError(t, err)
	}
	_, err := m.Map(w.ListOf(w.Prim(w.String)), scala.Context{Key: "b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"list<string>", "option<list<string>>"}, m.InstantiationKeys())

	// Shapes naming a TypeDef are cached per module.
	_, err = m.Map(w.ListOf(names.Ref()), ctx)
	require.NoError(t, err)
	_, err = m.Map(w.ListOf(names.Ref()), scala.Context{Key: "b"})
	require.NoError(t, err)
	inst := m.Instantiations()
	assert.Len(t, inst, 4)
	assert.Equal(t, "Array[com.example.test.dedup.lists.Names]", inst["list<#0>@a"])
}

func TestMapUnsupported(t *testing.T) {
	b := w.NewBuilder()
	res := b.Anonymous(w.Prim(w.S32))
	res.Kind = w.KindResource
	res.Resource = &w.Resource{}
	g := b.Graph()

	tests := []struct {
		name string
		ref  w.TypeRef
		kind error
	}{
		{"future", w.FutureOf(nil), diag.ErrUnsupported},
		{"stream", w.StreamOf(w.Ptr(w.Prim(w.U8))), diag.ErrUnsupported},
		{"error-context", w.ErrorContext(), diag.ErrUnsupported},
		{"inside option", w.OptionOf(w.StreamOf(nil)), diag.ErrUnsupported},
		{"anonymous resource", res.Ref(), diag.ErrUnsupported},
		{"dangling", w.Ref(42), diag.ErrDanglingReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newMapper(g).Map(tt.ref, scala.Context{Key: "k"})
			require.ErrorIs(t, err, tt.kind)
		})
	}
}
