package generator_test

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/generator"
	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func generate(t *testing.T, g *w.Graph, opts generator.Options) (*generator.Result, error) {
	t.Helper()
	return generator.New(discardLogger(), opts).Generate(g)
}

func modulePaths(res *generator.Result) []string {
	paths := make([]string, len(res.Modules))
	for i, m := range res.Modules {
		paths[i] = m.Path
	}
	return paths
}

func moduleAt(t *testing.T, res *generator.Result, path string) scala.Module {
	t.Helper()
	for _, m := range res.Modules {
		if m.Path == path {
			return m
		}
	}
	require.Failf(t, "module not generated", "path %s, have %v", path, modulePaths(res))
	return scala.Module{}
}

func TestGenerateGolden(t *testing.T) {
	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)

	tests := []struct {
		name   string
		graph  func() *w.Graph
		path   string
		golden string
	}{
		{"math import", mathGraph, "com/example/docs/calc/math.scala", "math_import"},
		{"math export", mathGraph, "com/example/exports/docs/calc/math.scala", "math_export"},
		{"kitchen sink", kitchenGraph, "com/example/test/kitchen/sink.scala", "kitchen_sink"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := generate(t, tt.graph(), generator.Options{BasePackage: "com.example"})
			require.NoError(t, err)
			gold.Assert(t, tt.golden, []byte(moduleAt(t, res, tt.path).Content))
		})
	}
}

func TestGenerateMath(t *testing.T) {
	res, err := generate(t, mathGraph(), generator.Options{BasePackage: "com.example"})
	require.NoError(t, err)

	assert.Equal(t, "calculator", res.World)
	assert.Equal(t, []string{
		"com/example/docs/calc/math.scala",
		"com/example/exports/docs/calc/math.scala",
	}, modulePaths(res))
	assert.Equal(t, 1, res.Imports)
	assert.Equal(t, 1, res.Exports)
	assert.Equal(t, "Generated 2 Scala files (1 imports, 1 exports)", res.Summary())

	imp := moduleAt(t, res, "com/example/docs/calc/math.scala")
	assert.Equal(t, "com.example.docs.calc", imp.Package)
	assert.Equal(t, w.Import, imp.Direction)
	exp := moduleAt(t, res, "com/example/exports/docs/calc/math.scala")
	assert.Equal(t, "com.example.exports.docs.calc", exp.Package)
	assert.Equal(t, w.Export, exp.Direction)

	assert.Equal(t, 1, countDeclarations(res, "final case class Point("),
		"an interface imported and exported declares its types on the import side only")
}

func TestGenerateDefaultBasePackage(t *testing.T) {
	res, err := generate(t, mathGraph(), generator.Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"componentmodel/docs/calc/math.scala",
		"componentmodel/exports/docs/calc/math.scala",
	}, modulePaths(res))
}

func TestGenerateIsDeterministic(t *testing.T) {
	first, err := generate(t, kitchenGraph(), generator.Options{BasePackage: "com.example", Workers: 1})
	require.NoError(t, err)
	for _, workers := range []int{1, 4, 16} {
		again, err := generate(t, kitchenGraph(), generator.Options{BasePackage: "com.example", Workers: workers})
		require.NoError(t, err)
		assert.Equal(t, first.Modules, again.Modules, "workers=%d", workers)
	}
}

func TestSelectWorld(t *testing.T) {
	twoWorlds := func() *w.Graph {
		b := w.NewBuilder()
		pkg := b.Package("test", "worlds", nil)
		iface := b.Interface(pkg, "shared")
		b.Function(iface, "ping", nil)
		b.World(pkg, "alpha").ImportInterface(iface)
		b.World(pkg, "beta").ExportInterface(iface)
		return b.Graph()
	}

	t.Run("ambiguous without selection", func(t *testing.T) {
		res, err := generate(t, twoWorlds(), generator.Options{})
		require.ErrorIs(t, err, diag.ErrAmbiguousWorld)
		assert.Nil(t, res)
		assert.Contains(t, err.Error(), "alpha, beta")
	})

	t.Run("unknown name", func(t *testing.T) {
		res, err := generate(t, twoWorlds(), generator.Options{World: "gamma"})
		require.ErrorIs(t, err, diag.ErrUnknownWorld)
		assert.Nil(t, res)
	})

	t.Run("no worlds", func(t *testing.T) {
		b := w.NewBuilder()
		b.Interface(b.Package("test", "empty", nil), "lonely")
		res, err := generate(t, b.Graph(), generator.Options{})
		require.ErrorIs(t, err, diag.ErrUnknownWorld)
		assert.Nil(t, res)
	})

	t.Run("explicit selection", func(t *testing.T) {
		res, err := generate(t, twoWorlds(), generator.Options{World: "beta"})
		require.NoError(t, err)
		assert.Equal(t, "beta", res.World)
		assert.Equal(t, []string{"componentmodel/exports/test/worlds/shared.scala"}, modulePaths(res))
	})
}

func TestGenerateRecursiveRecord(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "tree", nil)
	iface := b.Interface(pkg, "nodes")
	node := b.Declare(w.InInterface(iface), "node", w.KindRecord)
	node.Record.Fields = []w.Field{
		w.F("value", w.Prim(w.S32)),
		w.F("next", w.OptionOf(node.Ref())),
	}
	b.World(pkg, "tree").ImportInterface(iface)

	res, err := generate(t, b.Graph(), generator.Options{BasePackage: "com.example"})
	require.NoError(t, err)
	content := moduleAt(t, res, "com/example/test/tree/nodes.scala").Content
	assert.Contains(t, content, "final case class Node(value: Int, next: java.util.Optional[Node])")
}

func TestGenerateExportedResourceIsUnsupported(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "files", nil)
	iface := b.Interface(pkg, "handles")
	b.Resource(w.InInterface(iface), "file")
	b.World(pkg, "files").ExportInterface(iface)

	res, err := generate(t, b.Graph(), generator.Options{})
	require.ErrorIs(t, err, diag.ErrUnsupported)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "test:files/handles.file")
}

func TestGenerateUnsupportedTypes(t *testing.T) {
	tests := []struct {
		name string
		ref  w.TypeRef
	}{
		{"future", w.FutureOf(w.Ptr(w.Prim(w.U8)))},
		{"stream", w.StreamOf(w.Ptr(w.Prim(w.U8)))},
		{"error-context", w.ErrorContext()},
		{"nested stream", w.ListOf(w.StreamOf(nil))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := w.NewBuilder()
			pkg := b.Package("test", "async", nil)
			iface := b.Interface(pkg, "io")
			b.Function(iface, "take", []w.Param{w.P("input", tt.ref)})
			b.World(pkg, "async").ImportInterface(iface)

			res, err := generate(t, b.Graph(), generator.Options{})
			require.ErrorIs(t, err, diag.ErrUnsupported)
			assert.Nil(t, res)
		})
	}
}

func TestGenerateNameCollision(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "web", nil)
	iface := b.Interface(pkg, "client")
	b.Function(iface, "get-url", nil)
	b.Function(iface, "get-URL", nil)
	b.World(pkg, "web").ImportInterface(iface)

	res, err := generate(t, b.Graph(), generator.Options{})
	require.ErrorIs(t, err, diag.ErrNameCollision)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), `"get-url" and "get-URL" both derive to "getUrl"`)
}

func TestGenerateFlagsOverflow(t *testing.T) {
	names := make([]string, 65)
	for i := range names {
		names[i] = "f" + strings.Repeat("x", i)
	}
	b := w.NewBuilder()
	pkg := b.Package("test", "bits", nil)
	iface := b.Interface(pkg, "wide")
	b.Flags(w.InInterface(iface), "too-many", names...)
	b.World(pkg, "bits").ImportInterface(iface)

	res, err := generate(t, b.Graph(), generator.Options{})
	require.ErrorIs(t, err, diag.ErrFlagWidthOverflow)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "65 flags exceed the 64-bit maximum")
}

func countDeclarations(res *generator.Result, decl string) int {
	n := 0
	for _, m := range res.Modules {
		n += strings.Count(m.Content, decl)
	}
	return n
}

// A world that only exports `app` still needs the types of `geo` because
// `app` mentions `geo.point`. The implicit module declares types only.
func TestGenerateImplicitImport(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "maps", nil)
	geo := b.Interface(pkg, "geo")
	point := b.Record(w.InInterface(geo), "point", w.F("lat", w.Prim(w.F64)), w.F("lon", w.Prim(w.F64)))
	b.Function(geo, "origin", nil, point.Ref())
	app := b.Interface(pkg, "app")
	b.Function(app, "locate", []w.Param{w.P("name", w.Prim(w.String))}, w.OptionOf(point.Ref()))
	b.World(pkg, "maps").ExportInterface(app)

	res, err := generate(t, b.Graph(), generator.Options{BasePackage: "com.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"com/example/exports/test/maps/app.scala",
		"com/example/test/maps/geo.scala",
	}, modulePaths(res))
	assert.Equal(t, 1, res.Imports)

	app1 := moduleAt(t, res, "com/example/exports/test/maps/app.scala").Content
	assert.Contains(t, app1, "def locate(name: String): java.util.Optional[com.example.test.maps.geo.Point]\n")

	assert.Equal(t, 1, countDeclarations(res, "final case class Point("), "point must be declared exactly once")

	geo1 := moduleAt(t, res, "com/example/test/maps/geo.scala").Content
	assert.Contains(t, geo1, "  final case class Point(lat: Double, lon: Double)\n")
	assert.NotContains(t, geo1, "WitImport")
	assert.NotContains(t, geo1, "def origin")
}

// Types of an exported interface are declared by its export module and no
// import module is generated for it.
func TestGenerateExportedInterfaceOwnsItsTypes(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "maps", nil)
	geo := b.Interface(pkg, "geo")
	point := b.Record(w.InInterface(geo), "point", w.F("lat", w.Prim(w.F64)), w.F("lon", w.Prim(w.F64)))
	b.Function(geo, "origin", nil, point.Ref())
	app := b.Interface(pkg, "app")
	b.Function(app, "locate", nil, point.Ref())
	world := b.World(pkg, "maps")
	world.ExportInterface(geo)
	world.ExportInterface(app)

	res, err := generate(t, b.Graph(), generator.Options{BasePackage: "com.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"com/example/exports/test/maps/app.scala",
		"com/example/exports/test/maps/geo.scala",
	}, modulePaths(res))
	assert.Equal(t, 0, res.Imports)
	assert.Equal(t, 1, countDeclarations(res, "final case class Point("))
	assert.Equal(t, 0, countDeclarations(res, "WitImport"))

	const ref = "com.example.exports.test.maps.Geo.Point"
	geo1 := moduleAt(t, res, "com/example/exports/test/maps/geo.scala").Content
	assert.Contains(t, geo1, "  def origin(): "+ref+"\n")
	assert.Contains(t, geo1, "\n\nobject Geo {\n")
	app1 := moduleAt(t, res, "com/example/exports/test/maps/app.scala").Content
	assert.Contains(t, app1, "  def locate(): "+ref+"\n")
}

func TestGenerateWorldItems(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "host", nil)
	world := b.World(pkg, "host-app")
	level := b.Enum(w.InWorld(world), "level", "info", "warn")
	world.ImportType(level)
	world.ImportFunction(w.NewFunction("log", []w.Param{w.P("level", level.Ref()), w.P("msg", w.Prim(w.String))}))
	world.ExportFunction(w.NewFunction("run", nil, w.ResultOf(nil, nil)))
	world.ExportFunction(w.NewFunction("threshold", nil, level.Ref()))

	res, err := generate(t, b.Graph(), generator.Options{BasePackage: "com.example"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"com/example/exports/host_app.scala",
		"com/example/host_app/package.scala",
	}, modulePaths(res))

	imp := moduleAt(t, res, "com/example/host_app/package.scala").Content
	assert.True(t, strings.HasPrefix(imp, "package com.example\n\npackage object host_app {\n"), imp)
	assert.Contains(t, imp, "sealed trait Level\n")
	assert.Contains(t, imp, `@scala.scalajs.wit.annotation.WitImport("$root", "log")`)
	assert.Contains(t, imp, "def log(level: Level, msg: String): Unit = scala.scalajs.wit.native\n")

	exp := moduleAt(t, res, "com/example/exports/host_app.scala").Content
	assert.True(t, strings.HasPrefix(exp, "package com.example.exports\n\n@scala.scalajs.wit.annotation.WitExportInterface\ntrait HostApp {\n"), exp)
	assert.NotContains(t, exp, "sealed trait Level")
	assert.Contains(t, exp, `@scala.scalajs.wit.annotation.WitExport("$root", "run")`)
	assert.Contains(t, exp, "def run(): scala.scalajs.wit.Result[Unit, Unit]\n")
	assert.Contains(t, exp, "def threshold(): com.example.host_app.Level\n")
}

func TestGenerateRejectsInvalidGraph(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("test", "broken", nil)
	iface := b.Interface(pkg, "bad")
	b.Function(iface, "f", []w.Param{w.P("x", w.Ref(99))})
	b.World(pkg, "broken").ImportInterface(iface)

	res, err := generate(t, b.Graph(), generator.Options{})
	require.ErrorIs(t, err, diag.ErrDanglingReference)
	assert.Nil(t, res)
}
