package scala

import (
	"path"
	"strings"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/naming"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

const exportsSegment = "exports"

// Location is where a generated module lives in the Scala package tree.
type Location struct {
	Package   string // package clause, keywords escaped
	Object    string // package object (import) or trait (export) name
	Path      string // slash-separated file path, never escaped
	Qualifier string // fully qualified prefix for members of the module
	Export    bool
}

// Layout maps interfaces and worlds onto package clauses and file paths
// below a base package.
type Layout struct {
	namer *naming.Namer
	base  []string
	world string
}

// NewLayout returns a Layout rooted at basePackage (dot separated). world
// stands in for the package of interfaces that have none.
func NewLayout(namer *naming.Namer, basePackage, world string) *Layout {
	var base []string
	for _, seg := range strings.Split(basePackage, ".") {
		if seg != "" {
			base = append(base, seg)
		}
	}
	return &Layout{namer: namer, base: base, world: world}
}

// Interface locates the module generated for iface in direction dir.
func (l *Layout) Interface(iface *witgraph.Interface, dir witgraph.Direction) Location {
	var raw []string
	if iface.Package != nil {
		raw = []string{iface.Package.Namespace, iface.Package.Name}
	} else {
		raw = []string{l.world}
	}
	if dir == witgraph.Export {
		raw = append([]string{exportsSegment}, raw...)
	}

	pkg, dirs := l.segments(raw)
	loc := Location{
		Package: strings.Join(pkg, "."),
		Path:    path.Join(append(dirs, l.namer.Case(iface.Name, naming.ModuleCase)+".scala")...),
		Export:  dir == witgraph.Export,
	}
	if loc.Export {
		loc.Object = l.namer.Derive(iface.Name, naming.TypeCase)
	} else {
		loc.Object = l.namer.Derive(iface.Name, naming.ModuleCase)
	}
	loc.Qualifier = qualify(loc.Package, loc.Object)
	return loc
}

// World locates the module holding world-level items in direction dir.
func (l *Layout) World(w *witgraph.World, dir witgraph.Direction) Location {
	if dir == witgraph.Export {
		pkg, dirs := l.segments([]string{exportsSegment})
		loc := Location{
			Package: strings.Join(pkg, "."),
			Object:  l.namer.Derive(w.Name, naming.TypeCase),
			Path:    path.Join(append(dirs, l.namer.Case(w.Name, naming.ModuleCase)+".scala")...),
			Export:  true,
		}
		loc.Qualifier = qualify(loc.Package, loc.Object)
		return loc
	}

	pkg, dirs := l.segments(nil)
	loc := Location{
		Package: strings.Join(pkg, "."),
		Object:  l.namer.Derive(w.Name, naming.ModuleCase),
		Path:    path.Join(append(dirs, l.namer.Case(w.Name, naming.ModuleCase), "package.scala")...),
	}
	loc.Qualifier = qualify(loc.Package, loc.Object)
	return loc
}

// segments returns the escaped package segments and raw directory segments
// for base followed by raw.
func (l *Layout) segments(raw []string) (pkg, dirs []string) {
	for _, seg := range l.base {
		pkg = append(pkg, l.namer.Escape(seg))
		dirs = append(dirs, seg)
	}
	for _, seg := range raw {
		if seg == exportsSegment {
			pkg = append(pkg, seg)
			dirs = append(dirs, seg)
			continue
		}
		pkg = append(pkg, l.namer.Derive(seg, naming.ModuleCase))
		dirs = append(dirs, l.namer.Case(seg, naming.ModuleCase))
	}
	return pkg, dirs
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}
