package generator_test

import (
	"io"
	"log/slog"

	"github.com/Masterminds/semver/v3"

	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mathGraph is `docs:calc/math` with a point record and an add function,
// imported and exported by world `calculator`.
func mathGraph() *w.Graph {
	b := w.NewBuilder()
	pkg := b.Package("docs", "calc", nil)
	math := b.Interface(pkg, "math")
	b.Record(w.InInterface(math), "point",
		w.F("x", w.Prim(w.S32)),
		w.F("y", w.Prim(w.S32)),
	)
	b.Function(math, "add", []w.Param{w.P("a", w.Prim(w.S32)), w.P("b", w.Prim(w.S32))}, w.Prim(w.S32))

	world := b.World(pkg, "calculator")
	world.ImportInterface(math)
	world.ExportInterface(math)
	return b.Graph()
}

// kitchenGraph exercises every declaration kind in one imported interface.
func kitchenGraph() *w.Graph {
	b := w.NewBuilder()
	pkg := b.Package("test", "kitchen", semver.MustParse("0.1.0"))
	sink := b.Interface(pkg, "sink")
	sink.Docs = "Everything at once."
	owner := w.InInterface(sink)

	color := b.Enum(owner, "color", "red", "dark-green")
	shape := b.Variant(owner, "shape",
		w.C("circle", w.Ptr(w.Prim(w.F64))),
		w.C("square", w.Ptr(w.Prim(w.F64))),
		w.C("none", nil),
	)
	shape.Docs = "A drawable shape."
	b.Flags(owner, "perms", "read", "write", "exec")
	bytes := b.Alias(owner, "bytes", w.ListOf(w.Prim(w.U8)))

	blob := b.Resource(owner, "blob")
	b.Constructor(blob, w.P("init", bytes.Ref()))
	read := b.Method(blob, "read", []w.Param{w.P("n", w.Prim(w.U32))}, w.ListOf(w.Prim(w.U8)))
	read.Docs = "Reads up to n bytes."
	b.Static(blob, "merge", []w.Param{w.P("a", w.OwnOf(blob.ID)), w.P("b", w.OwnOf(blob.ID))}, w.OwnOf(blob.ID))

	b.Function(sink, "paint",
		[]w.Param{w.P("shape", shape.Ref()), w.P("color", color.Ref())},
		w.ResultOf(nil, w.Ptr(w.Prim(w.String))),
	)
	typ := b.Function(sink, "type", []w.Param{
		w.P("class", w.OptionOf(w.TupleOf(w.Prim(w.S64), w.Prim(w.Char)))),
	})
	typ.Results = []w.Param{w.P("ok", w.Prim(w.Bool)), w.P("count", w.Prim(w.U64))}

	world := b.World(pkg, "kitchen")
	world.ImportInterface(sink)
	return b.Graph()
}
