package loader

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/Masterminds/semver/v3"
	"go.bytecodealliance.org/wit"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// DecodeResolve parses the JSON printed by `wasm-tools component wit --json`.
func DecodeResolve(data []byte) (*wit.Resolve, error) {
	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, diag.New(diag.PhaseLoad, diag.KindInvalidGraph).
			Detail("decode wasm-tools document").
			Cause(err).
			Build()
	}
	return res, nil
}

// resolveConverter maps a wit.Resolve onto a graph. Every named definition
// is declared before any body is converted, so use-aliases and recursive
// references find their target regardless of arena order.
type resolveConverter struct {
	b      *witgraph.Builder
	im     *WITImporter
	pkgs   map[*wit.Package]*witgraph.Package
	ifaces map[*wit.Interface]*witgraph.Interface
	worlds map[*wit.World]*witgraph.World
}

// FromResolve converts res into a validated graph.
func FromResolve(res *wit.Resolve) (*witgraph.Graph, error) {
	b := witgraph.NewBuilder()
	c := &resolveConverter{
		b:      b,
		im:     NewWITImporter(b, witgraph.Owner{}),
		pkgs:   map[*wit.Package]*witgraph.Package{},
		ifaces: map[*wit.Interface]*witgraph.Interface{},
		worlds: map[*wit.World]*witgraph.World{},
	}
	c.im.ownerOf = c.owner

	for _, p := range res.Packages {
		if _, err := c.pkg(p); err != nil {
			return nil, err
		}
	}
	inline := inlineNames(res.Worlds)
	for _, i := range res.Interfaces {
		name := inline[i]
		if i.Name != nil {
			name = *i.Name
		}
		pkg, err := c.pkg(i.Package)
		if err != nil {
			return nil, err
		}
		iface := b.Interface(pkg, name)
		iface.Docs = i.Docs.Contents
		c.ifaces[i] = iface
	}
	for _, w := range res.Worlds {
		pkg, err := c.pkg(w.Package)
		if err != nil {
			return nil, err
		}
		world := b.World(pkg, w.Name)
		world.Docs = w.Docs.Contents
		c.worlds[w] = world
	}

	var shells []*wit.TypeDef
	for _, td := range res.TypeDefs {
		if td.Name == nil || *td.Name == "" || td.Owner == nil {
			continue
		}
		if _, ok := c.im.defs[td]; ok {
			continue
		}
		c.im.shell(td, *td.Name)
		shells = append(shells, td)
	}
	for _, td := range shells {
		if err := c.im.fill(td, c.im.defs[td]); err != nil {
			return nil, err
		}
	}

	for _, i := range res.Interfaces {
		if err := c.functions(i); err != nil {
			return nil, err
		}
	}
	for _, w := range res.Worlds {
		if err := c.worldItems(w); err != nil {
			return nil, err
		}
	}

	g := b.Graph()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func (c *resolveConverter) pkg(p *wit.Package) (*witgraph.Package, error) {
	if p == nil {
		return nil, nil
	}
	if pkg, ok := c.pkgs[p]; ok {
		return pkg, nil
	}
	var version *semver.Version
	if p.Name.Version != nil {
		v, err := semver.NewVersion(p.Name.Version.String())
		if err != nil {
			return nil, diag.New(diag.PhaseLoad, diag.KindInvalidGraph).
				Entity(p.Name.Namespace+":"+p.Name.Package).
				Detail("invalid version %q", p.Name.Version.String()).
				Cause(err).
				Build()
		}
		version = v
	}
	pkg := c.b.Package(p.Name.Namespace, p.Name.Package, version)
	pkg.Docs = p.Docs.Contents
	c.pkgs[p] = pkg
	return pkg, nil
}

// inlineNames names the anonymous interfaces declared inside worlds by
// their world item key.
func inlineNames(worlds []*wit.World) map[*wit.Interface]string {
	names := map[*wit.Interface]string{}
	for _, w := range worlds {
		for key, item := range w.Imports.All() {
			if ref, ok := item.(*wit.InterfaceRef); ok && ref.Interface.Name == nil {
				names[ref.Interface] = key
			}
		}
		for key, item := range w.Exports.All() {
			if ref, ok := item.(*wit.InterfaceRef); ok && ref.Interface.Name == nil {
				names[ref.Interface] = key
			}
		}
	}
	return names
}

func (c *resolveConverter) owner(td *wit.TypeDef) (witgraph.Owner, bool) {
	switch o := td.Owner.(type) {
	case *wit.Interface:
		if iface, ok := c.ifaces[o]; ok {
			return witgraph.InInterface(iface), true
		}
	case *wit.World:
		if w, ok := c.worlds[o]; ok {
			return witgraph.InWorld(w), true
		}
	}
	return witgraph.Owner{}, false
}

// functions attaches the interface's functions. Resource members are
// recognised by their mangled "[method]res.name" style names.
func (c *resolveConverter) functions(i *wit.Interface) error {
	iface := c.ifaces[i]
	for _, f := range i.Functions.All() {
		prefix, target, member := splitFunctionName(f.Name)
		if prefix == "" {
			fn, err := c.function(f, f.Name, false)
			if err != nil {
				return err
			}
			iface.Functions = append(iface.Functions, fn)
			continue
		}

		res := c.resource(iface, target)
		if res == nil {
			return invalid(iface.Name+"."+f.Name, "no resource %q in interface", target)
		}
		switch prefix {
		case "constructor":
			fn, err := c.function(f, res.Name, false)
			if err != nil {
				return err
			}
			// The own<resource> result is implied by the constructor.
			fn.Kind, fn.Resource, fn.Results = witgraph.Constructor, res.ID, nil
			res.Resource.Constructors = append(res.Resource.Constructors, fn)
		case "method":
			fn, err := c.function(f, member, true)
			if err != nil {
				return err
			}
			fn.Kind, fn.Resource = witgraph.Method, res.ID
			res.Resource.Methods = append(res.Resource.Methods, fn)
		case "static":
			fn, err := c.function(f, member, false)
			if err != nil {
				return err
			}
			fn.Kind, fn.Resource = witgraph.Static, res.ID
			res.Resource.Statics = append(res.Resource.Statics, fn)
		default:
			return diag.Unsupported(diag.PhaseLoad, iface.Name+"."+f.Name, fmt.Sprintf("%s functions have no graph equivalent", prefix))
		}
	}
	return nil
}

func (c *resolveConverter) resource(iface *witgraph.Interface, name string) *witgraph.TypeDef {
	for _, id := range iface.Types {
		td, ok := c.b.Graph().TypeDef(id)
		if ok && td.Name == name && td.Kind == witgraph.KindResource {
			return td
		}
	}
	return nil
}

// function converts f. Methods drop their leading self parameter, which the
// graph carries implicitly.
func (c *resolveConverter) function(f *wit.Function, name string, method bool) (*witgraph.Function, error) {
	params := f.Params
	if method && len(params) > 0 {
		params = params[1:]
	}
	fn := &witgraph.Function{Name: name, Docs: f.Docs.Contents}
	for _, p := range params {
		t, err := c.im.Type(p.Type)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", f.Name, p.Name, err)
		}
		fn.Params = append(fn.Params, witgraph.P(p.Name, t))
	}
	for _, r := range functionResults(f) {
		t, err := c.im.Type(r.Type)
		if err != nil {
			return nil, fmt.Errorf("%s result: %w", f.Name, err)
		}
		fn.Results = append(fn.Results, witgraph.Param{Name: r.Name, Type: t})
	}
	return fn, nil
}

func (c *resolveConverter) worldItems(w *wit.World) error {
	world := c.worlds[w]
	add := func(dir witgraph.Direction, key string, item wit.WorldItem) error {
		switch it := item.(type) {
		case *wit.InterfaceRef:
			iface, ok := c.ifaces[it.Interface]
			if !ok {
				return invalid(w.Name+"."+key, "interface outside the resolve")
			}
			if dir == witgraph.Import {
				world.ImportInterface(iface)
			} else {
				world.ExportInterface(iface)
			}
		case *wit.Function:
			fn, err := c.function(it, it.Name, false)
			if err != nil {
				return err
			}
			if dir == witgraph.Import {
				world.ImportFunction(fn)
			} else {
				world.ExportFunction(fn)
			}
		case *wit.TypeDef:
			def, ok := c.im.defs[it]
			if !ok {
				return invalid(w.Name+"."+key, "type outside the resolve")
			}
			if dir == witgraph.Import {
				world.ImportType(def)
			} else {
				world.ExportType(def)
			}
		default:
			return diag.Unsupported(diag.PhaseLoad, w.Name+"."+key, fmt.Sprintf("%T has no graph equivalent", item))
		}
		return nil
	}
	for key, item := range w.Imports.All() {
		if err := add(witgraph.Import, key, item); err != nil {
			return err
		}
	}
	for key, item := range w.Exports.All() {
		if err := add(witgraph.Export, key, item); err != nil {
			return err
		}
	}
	return nil
}

// splitFunctionName splits "[method]blob.read" into its kind prefix,
// resource and member. Freestanding names return an empty prefix.
func splitFunctionName(name string) (prefix, resource, member string) {
	if !strings.HasPrefix(name, "[") {
		return "", "", name
	}
	prefix, rest, ok := strings.Cut(name[1:], "]")
	if !ok {
		return "", "", name
	}
	resource, member, _ = strings.Cut(rest, ".")
	return prefix, resource, member
}

// functionResults reads the results of f across wit releases: older ones
// carry named Results, newer ones a single Result type.
func functionResults(f *wit.Function) []wit.Param {
	v := reflect.ValueOf(f).Elem()
	if r := v.FieldByName("Results"); r.IsValid() {
		if params, ok := r.Interface().([]wit.Param); ok {
			return params
		}
	}
	if r := v.FieldByName("Result"); r.IsValid() && r.Kind() == reflect.Interface && !r.IsNil() {
		if t, ok := r.Interface().(wit.Type); ok {
			return []wit.Param{{Type: t}}
		}
	}
	return nil
}
