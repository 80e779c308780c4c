package scala_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	w "github.com/Alia5/wit-bindgen-scala/witgraph"
)

func render(t *testing.T, g *w.Graph, iface *w.Interface, dir w.Direction) (scala.Module, error) {
	t.Helper()
	unit, err := scala.NewTarget(g, "com.example", "app").PrepareInterface(iface, dir, scala.DeclareAll)
	if err != nil {
		return scala.Module{}, err
	}
	return unit.Render()
}

func TestFlagsRepr(t *testing.T) {
	tests := []struct {
		count int
		bits  int
		repr  string
		ok    bool
	}{
		{0, 8, "Byte", true},
		{1, 8, "Byte", true},
		{8, 8, "Byte", true},
		{9, 16, "Short", true},
		{16, 16, "Short", true},
		{17, 32, "Int", true},
		{32, 32, "Int", true},
		{33, 64, "Long", true},
		{64, 64, "Long", true},
		{65, 0, "", false},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			bits, repr, ok := scala.FlagsRepr(tt.count)
			assert.Equal(t, tt.bits, bits)
			assert.Equal(t, tt.repr, repr)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func flagNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("f%d", i)
	}
	return names
}

func TestRenderFlagsWidths(t *testing.T) {
	tests := []struct {
		count    int
		contains []string
	}{
		{9, []string{
			"@scala.scalajs.wit.annotation.WitFlags(9)",
			"final case class Bits(value: Short) {",
			"def |(other: Bits): Bits = Bits((value | other.value).toShort)",
			"val f8 = Bits((1 << 8).toShort)",
		}},
		{20, []string{
			"final case class Bits(value: Int) {",
			"def unary_~ : Bits = Bits(~value)",
			"val f19 = Bits(1 << 19)",
		}},
		{64, []string{
			"@scala.scalajs.wit.annotation.WitFlags(64)",
			"final case class Bits(value: Long) {",
			"def &(other: Bits): Bits = Bits(value & other.value)",
			"val f63 = Bits(1L << 63)",
		}},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.count), func(t *testing.T) {
			b := w.NewBuilder()
			iface := b.Interface(b.Package("test", "flags", nil), "perms")
			b.Flags(w.InInterface(iface), "bits", flagNames(tt.count)...)

			mod, err := render(t, b.Graph(), iface, w.Import)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, mod.Content, want)
			}
		})
	}
}

func TestPrepareFlagsOverflow(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "flags", nil), "perms")
	b.Flags(w.InInterface(iface), "bits", flagNames(65)...)

	_, err := render(t, b.Graph(), iface, w.Import)
	require.ErrorIs(t, err, diag.ErrFlagWidthOverflow)
}

func TestRenderEscapesKeywords(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "object", nil), "match")
	b.Record(w.InInterface(iface), "yield", w.F("val", w.Prim(w.S32)), w.F("lazy", w.Prim(w.Bool)))
	b.Function(iface, "new", []w.Param{w.P("this", w.Prim(w.String))})

	mod, err := render(t, b.Graph(), iface, w.Import)
	require.NoError(t, err)
	assert.Equal(t, "com/example/test/object/match.scala", mod.Path)
	assert.Equal(t, "com.example.test.`object`", mod.Package)
	assert.Contains(t, mod.Content, "package object `match` {\n")
	assert.Contains(t, mod.Content, "final case class Yield(`val`: Int, `lazy`: Boolean)\n")
	assert.Contains(t, mod.Content, "def `new`(`this`: String): Unit = scala.scalajs.wit.native\n")
}

func TestPrepareFieldCollision(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "dupes", nil), "records")
	b.Record(w.InInterface(iface), "pair", w.F("first-value", w.Prim(w.S32)), w.F("first_value", w.Prim(w.S32)))

	_, err := render(t, b.Graph(), iface, w.Import)
	require.ErrorIs(t, err, diag.ErrNameCollision)
	assert.Contains(t, err.Error(), "firstValue")
}

func TestRenderVariantDocs(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "docs", nil), "events")
	ev := b.Variant(w.InInterface(iface), "event",
		w.Case{Name: "key-down", Type: w.Ptr(w.Prim(w.Char)), Docs: "A key was pressed."},
		w.C("quit", nil),
	)
	ev.Docs = "Input events.\n\nDelivered in order."

	mod, err := render(t, b.Graph(), iface, w.Import)
	require.NoError(t, err)
	assert.Contains(t, mod.Content, ""+
		"  /** Input events.\n"+
		"   *\n"+
		"   *  Delivered in order.\n"+
		"   */\n"+
		"  @scala.scalajs.wit.annotation.WitVariant\n"+
		"  sealed trait Event\n"+
		"  object Event {\n"+
		"    /** A key was pressed.\n"+
		"     */\n"+
		"    final case class KeyDown(value: Char) extends Event\n"+
		"    case object Quit extends Event\n"+
		"  }\n")
}

func TestPrepareResource(t *testing.T) {
	build := func() (*w.Graph, *w.Interface) {
		b := w.NewBuilder()
		iface := b.Interface(b.Package("wasi", "io", nil), "streams")
		res := b.Resource(w.InInterface(iface), "input-stream")
		b.Method(res, "read-all", nil, w.ListOf(w.Prim(w.U8)))
		b.Method(res, "subscribe", []w.Param{w.P("other", w.BorrowOf(res.ID))})
		return b.Graph(), iface
	}

	t.Run("import", func(t *testing.T) {
		g, iface := build()
		mod, err := render(t, g, iface, w.Import)
		require.NoError(t, err)
		assert.Contains(t, mod.Content, "  // Resources\n")
		assert.NotContains(t, mod.Content, "// Type definitions")
		assert.Contains(t, mod.Content, `@scala.scalajs.wit.annotation.WitResourceImport("wasi:io/streams", "input-stream")`)
		assert.Contains(t, mod.Content, `@scala.scalajs.wit.annotation.WitResourceMethod("read-all")`)
		assert.Contains(t, mod.Content, "    def readAll(): Array[scala.scalajs.wit.unsigned.UByte] = scala.scalajs.wit.native\n")
		assert.Contains(t, mod.Content, "    def subscribe(other: InputStream): Unit = scala.scalajs.wit.native\n")
		assert.Contains(t, mod.Content, "    def close(): Unit = scala.scalajs.wit.native\n")
		assert.Contains(t, mod.Content, "  object InputStream {\n  }\n")
	})

	t.Run("export is unsupported", func(t *testing.T) {
		g, iface := build()
		_, err := render(t, g, iface, w.Export)
		require.ErrorIs(t, err, diag.ErrUnsupported)
	})
}

func TestPrepareResourceCloseIsReserved(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "res", nil), "handles")
	res := b.Resource(w.InInterface(iface), "file")
	b.Method(res, "close", nil)

	_, err := render(t, b.Graph(), iface, w.Import)
	require.ErrorIs(t, err, diag.ErrNameCollision)
}

func TestScaladocEscapesCommentDelimiters(t *testing.T) {
	b := w.NewBuilder()
	iface := b.Interface(b.Package("test", "fs", nil), "paths")
	pattern := b.Record(w.InInterface(iface), "pattern", w.F("text", w.Prim(w.String)))
	pattern.Docs = "glob like a/*/b and then */ escapes"

	mod, err := render(t, b.Graph(), iface, w.Import)
	require.NoError(t, err)
	assert.Contains(t, mod.Content,
		"  /** glob like a/&#42;/b and then *&#47; escapes\n"+
			"   */\n"+
			"  @scala.scalajs.wit.annotation.WitRecord\n")
	assert.Equal(t, 1, strings.Count(mod.Content, "*/"))
}

func TestPrepareCaseNamedAfterItsType(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *w.Builder, owner w.Owner)
	}{
		{"variant", func(b *w.Builder, owner w.Owner) {
			b.Variant(owner, "value", w.C("value", w.Ptr(w.Prim(w.S32))))
		}},
		{"enum", func(b *w.Builder, owner w.Owner) {
			b.Enum(owner, "mode", "fast", "mode")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := w.NewBuilder()
			iface := b.Interface(b.Package("test", "cases", nil), "shapes")
			tt.build(b, w.InInterface(iface))

			_, err := render(t, b.Graph(), iface, w.Import)
			require.ErrorIs(t, err, diag.ErrNameCollision)
		})
	}
}

func TestPrepareInterfaceContents(t *testing.T) {
	build := func() (*w.Graph, *w.Interface) {
		b := w.NewBuilder()
		geo := b.Interface(b.Package("test", "maps", nil), "geo")
		point := b.Record(w.InInterface(geo), "point", w.F("lat", w.Prim(w.F64)))
		b.Function(geo, "origin", nil, point.Ref())
		return b.Graph(), geo
	}

	t.Run("export declares types in the companion", func(t *testing.T) {
		g, geo := build()
		target := scala.NewTarget(g, "com.example", "maps")
		target.SetTypeHomes(func(w.InterfaceID) w.Direction { return w.Export })
		unit, err := target.PrepareInterface(geo, w.Export, scala.DeclareAll)
		require.NoError(t, err)
		mod, err := unit.Render()
		require.NoError(t, err)
		assert.Equal(t, "package com.example.exports.test.maps\n\n"+
			"@scala.scalajs.wit.annotation.WitExportInterface\n"+
			"trait Geo {\n\n"+
			"  // Functions\n"+
			"  @scala.scalajs.wit.annotation.WitExport(\"test:maps/geo\", \"origin\")\n"+
			"  def origin(): com.example.exports.test.maps.Geo.Point\n\n"+
			"}\n\n"+
			"object Geo {\n\n"+
			"  // Type definitions\n"+
			"  @scala.scalajs.wit.annotation.WitRecord\n"+
			"  final case class Point(lat: Double)\n\n"+
			"}\n", mod.Content)
	})

	t.Run("types only", func(t *testing.T) {
		g, geo := build()
		unit, err := scala.NewTarget(g, "com.example", "maps").PrepareInterface(geo, w.Import, scala.DeclareTypes)
		require.NoError(t, err)
		mod, err := unit.Render()
		require.NoError(t, err)
		assert.Contains(t, mod.Content, "  final case class Point(lat: Double)\n")
		assert.NotContains(t, mod.Content, "// Functions")
		assert.NotContains(t, mod.Content, "WitImport")
	})

	t.Run("functions only", func(t *testing.T) {
		g, geo := build()
		unit, err := scala.NewTarget(g, "com.example", "maps").PrepareInterface(geo, w.Export, scala.DeclareFunctions)
		require.NoError(t, err)
		mod, err := unit.Render()
		require.NoError(t, err)
		assert.Contains(t, mod.Content, "  def origin(): com.example.test.maps.geo.Point\n")
		assert.NotContains(t, mod.Content, "object Geo")
		assert.NotContains(t, mod.Content, "case class Point")
	})
}

func TestLayout(t *testing.T) {
	b := w.NewBuilder()
	pkg := b.Package("my-org", "http-types", nil)
	iface := b.Interface(pkg, "outgoing-handler")
	bare := b.Interface(nil, "inline-api")
	world := b.World(pkg, "proxy-world")

	layout := scala.NewTarget(b.Graph(), "com.example", "proxy-world").Layout()
	tests := []struct {
		name string
		loc  scala.Location
		want scala.Location
	}{
		{"interface import", layout.Interface(iface, w.Import), scala.Location{
			Package:   "com.example.my_org.http_types",
			Object:    "outgoing_handler",
			Path:      "com/example/my_org/http_types/outgoing_handler.scala",
			Qualifier: "com.example.my_org.http_types.outgoing_handler",
		}},
		{"interface export", layout.Interface(iface, w.Export), scala.Location{
			Package:   "com.example.exports.my_org.http_types",
			Object:    "OutgoingHandler",
			Path:      "com/example/exports/my_org/http_types/outgoing_handler.scala",
			Qualifier: "com.example.exports.my_org.http_types.OutgoingHandler",
			Export:    true,
		}},
		{"package-less interface", layout.Interface(bare, w.Import), scala.Location{
			Package:   "com.example.proxy_world",
			Object:    "inline_api",
			Path:      "com/example/proxy_world/inline_api.scala",
			Qualifier: "com.example.proxy_world.inline_api",
		}},
		{"world import", layout.World(world, w.Import), scala.Location{
			Package:   "com.example",
			Object:    "proxy_world",
			Path:      "com/example/proxy_world/package.scala",
			Qualifier: "com.example.proxy_world",
		}},
		{"world export", layout.World(world, w.Export), scala.Location{
			Package:   "com.example.exports",
			Object:    "ProxyWorld",
			Path:      "com/example/exports/proxy_world.scala",
			Qualifier: "com.example.exports.ProxyWorld",
			Export:    true,
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc)
		})
	}
}
