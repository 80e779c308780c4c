package loader_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bytecodealliance.org/wit"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/internal/loader"
	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func named(name string, kind wit.TypeDefKind) *wit.TypeDef {
	return &wit.TypeDef{Name: &name, Kind: kind}
}

func TestTypeFromWITPrimitivesAndComposites(t *testing.T) {
	tests := []struct {
		name string
		in   wit.Type
		want w.TypeRef
	}{
		{"u32", wit.U32{}, w.Prim(w.U32)},
		{"string", wit.String{}, w.Prim(w.String)},
		{"list", &wit.TypeDef{Kind: &wit.List{Type: wit.U8{}}}, w.ListOf(w.Prim(w.U8))},
		{"option", &wit.TypeDef{Kind: &wit.Option{Type: wit.S64{}}}, w.OptionOf(w.Prim(w.S64))},
		{"result", &wit.TypeDef{Kind: &wit.Result{OK: wit.U32{}, Err: wit.String{}}},
			w.ResultOf(w.Ptr(w.Prim(w.U32)), w.Ptr(w.Prim(w.String)))},
		{"result without ok", &wit.TypeDef{Kind: &wit.Result{Err: wit.String{}}},
			w.ResultOf(nil, w.Ptr(w.Prim(w.String)))},
		{"tuple", &wit.TypeDef{Kind: &wit.Tuple{Types: []wit.Type{wit.U32{}, wit.Char{}}}},
			w.TupleOf(w.Prim(w.U32), w.Prim(w.Char))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := w.NewBuilder()
			got, err := loader.TypeFromWIT(b, w.Owner{}, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Empty(t, b.Graph().Types, "inline composites declare nothing")
		})
	}
}

func TestWITImporterNamedDefinitions(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "rt", nil), "types")
	im := loader.NewWITImporter(b, w.InInterface(iface))

	point := named("point", &wit.Record{Fields: []wit.Field{
		{Name: "x", Type: wit.S32{}},
		{Name: "y", Type: wit.S32{}},
	}})
	color := named("color", &wit.Enum{Cases: []wit.EnumCase{{Name: "red"}, {Name: "green"}}})
	perms := named("perms", &wit.Flags{Flags: []wit.Flag{{Name: "read"}, {Name: "write"}}})
	shape := named("shape", &wit.Variant{Cases: []wit.Case{
		{Name: "dot", Type: point},
		{Name: "empty"},
	}})
	points := named("points", &wit.List{Type: point})

	for _, in := range []wit.Type{point, color, perms, shape, points, point} {
		_, err := im.Type(in)
		require.NoError(t, err)
	}

	g := b.Graph()
	require.NoError(t, g.Validate())
	require.Len(t, iface.Types, 5, "point is declared once")

	var kinds []w.Kind
	for _, id := range iface.Types {
		td, _ := g.TypeDef(id)
		kinds = append(kinds, td.Kind)
	}
	assert.Equal(t, []w.Kind{w.KindRecord, w.KindEnum, w.KindFlags, w.KindVariant, w.KindList}, kinds)

	shapeDef, _ := g.TypeDef(iface.Types[3])
	require.NotNil(t, shapeDef.Variant.Cases[0].Type)
	assert.Equal(t, w.Ref(iface.Types[0]), *shapeDef.Variant.Cases[0].Type)
	assert.Nil(t, shapeDef.Variant.Cases[1].Type)

	pointsDef, _ := g.TypeDef(iface.Types[4])
	assert.Equal(t, w.ListOf(w.Ref(iface.Types[0])), pointsDef.Type)
}

func TestWITImporterRecursiveAndHandles(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "rt", nil), "tree")
	im := loader.NewWITImporter(b, w.InInterface(iface))

	node := named("node", nil)
	node.Kind = &wit.Record{Fields: []wit.Field{
		{Name: "children", Type: &wit.TypeDef{Kind: &wit.List{Type: node}}},
	}}
	ref, err := im.Type(node)
	require.NoError(t, err)

	nodeDef, ok := b.Graph().TypeDef(ref.Def)
	require.True(t, ok)
	assert.Equal(t, w.ListOf(ref), nodeDef.Record.Fields[0].Type)

	file := named("file", &wit.Resource{})
	own, err := im.Type(&wit.TypeDef{Kind: &wit.Own{Type: file}})
	require.NoError(t, err)
	assert.Equal(t, w.RefOwn, own.Kind)
	borrow, err := im.Type(&wit.TypeDef{Kind: &wit.Borrow{Type: file}})
	require.NoError(t, err)
	assert.Equal(t, w.BorrowOf(own.Def), borrow)

	require.NoError(t, b.Graph().Validate())
}

func TestWITImporterErrors(t *testing.T) {
	tests := []struct {
		name string
		in   wit.Type
		kind error
	}{
		{"nil", nil, diag.ErrInvalidGraph},
		{"handle without resource", &wit.TypeDef{Kind: &wit.Own{}}, diag.ErrInvalidGraph},
		{"anonymous record", &wit.TypeDef{Kind: &wit.Record{}}, diag.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.TypeFromWIT(w.NewBuilder(), w.Owner{}, tt.in)
			require.ErrorIs(t, err, tt.kind)
		})
	}
}
