package loader

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// scope is the set of type names visible to one interface or world.
type scope struct {
	entity string
	pkg    *witgraph.Package
	local  map[string]*witgraph.TypeDef
}

type pendingType struct {
	scope *scope
	doc   TypeDoc
	def   *witgraph.TypeDef
}

type graphBuilder struct {
	b        *witgraph.Builder
	packages map[string]*witgraph.Package // "ns:name" and "ns:name@version"
	ifaces   map[string]*witgraph.Interface
	scopes   map[witgraph.InterfaceID]*scope
	pending  []pendingType
}

// Build converts a decoded document into a validated graph. Types are declared
// before any body is resolved, so forward and recursive references work.
func Build(doc *Document) (*witgraph.Graph, error) {
	gb := &graphBuilder{
		b:        witgraph.NewBuilder(),
		packages: map[string]*witgraph.Package{},
		ifaces:   map[string]*witgraph.Interface{},
		scopes:   map[witgraph.InterfaceID]*scope{},
	}

	type ifaceDoc struct {
		iface *witgraph.Interface
		doc   InterfaceDoc
	}
	var ifaces []ifaceDoc
	for _, pd := range doc.Packages {
		pkg, err := gb.pkg(pd)
		if err != nil {
			return nil, err
		}
		for _, id := range pd.Interfaces {
			iface, err := gb.iface(pkg, id)
			if err != nil {
				return nil, err
			}
			ifaces = append(ifaces, ifaceDoc{iface, id})
		}
	}
	for _, id := range doc.Interfaces {
		iface, err := gb.iface(nil, id)
		if err != nil {
			return nil, err
		}
		ifaces = append(ifaces, ifaceDoc{iface, id})
	}

	worlds := make([]*witgraph.World, len(doc.Worlds))
	worldScopes := make([]*scope, len(doc.Worlds))
	for i, wd := range doc.Worlds {
		w, s, err := gb.world(wd)
		if err != nil {
			return nil, err
		}
		worlds[i], worldScopes[i] = w, s
	}

	for _, p := range gb.pending {
		if err := gb.body(p); err != nil {
			return nil, err
		}
	}
	for _, id := range ifaces {
		s := gb.scopes[id.iface.ID]
		for _, fd := range id.doc.Functions {
			f, err := gb.function(s, fd, witgraph.Freestanding, nil)
			if err != nil {
				return nil, err
			}
			id.iface.Functions = append(id.iface.Functions, f)
		}
	}
	for i, wd := range doc.Worlds {
		if err := gb.worldItems(worlds[i], worldScopes[i], wd); err != nil {
			return nil, err
		}
	}

	g := gb.b.Graph()
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

func invalid(entity, format string, args ...any) error {
	return diag.New(diag.PhaseLoad, diag.KindInvalidGraph).Entity(entity).Detail(format, args...).Build()
}

func (gb *graphBuilder) pkg(pd PackageDoc) (*witgraph.Package, error) {
	if pd.Namespace == "" || pd.Name == "" {
		return nil, invalid(pd.Namespace+":"+pd.Name, "package needs a namespace and a name")
	}
	var version *semver.Version
	if pd.Version != "" {
		v, err := semver.NewVersion(pd.Version)
		if err != nil {
			return nil, diag.New(diag.PhaseLoad, diag.KindInvalidGraph).
				Entity(pd.Namespace+":"+pd.Name).
				Detail("invalid version %q", pd.Version).
				Cause(err).
				Build()
		}
		version = v
	}
	p := gb.b.Package(pd.Namespace, pd.Name, version)
	p.Docs = pd.Docs

	key := pd.Namespace + ":" + pd.Name
	if _, dup := gb.packages[p.String()]; dup {
		return nil, invalid(p.String(), "package declared twice")
	}
	gb.packages[p.String()] = p
	if _, taken := gb.packages[key]; !taken {
		gb.packages[key] = p
	}
	return p, nil
}

func (gb *graphBuilder) iface(pkg *witgraph.Package, id InterfaceDoc) (*witgraph.Interface, error) {
	if id.Name == "" {
		return nil, invalid(fmt.Sprint(pkg), "interface without a name")
	}
	iface := gb.b.Interface(pkg, id.Name)
	iface.Docs = id.Docs
	identity := iface.Identity()
	if _, dup := gb.ifaces[identity]; dup {
		return nil, invalid(identity, "interface declared twice")
	}
	gb.ifaces[identity] = iface

	s := &scope{entity: identity, pkg: pkg, local: map[string]*witgraph.TypeDef{}}
	gb.scopes[iface.ID] = s
	for _, td := range id.Types {
		if err := gb.declare(s, witgraph.InInterface(iface), td); err != nil {
			return nil, err
		}
	}
	return iface, nil
}

func (gb *graphBuilder) world(wd WorldDoc) (*witgraph.World, *scope, error) {
	if wd.Name == "" {
		return nil, nil, invalid(wd.Package, "world without a name")
	}
	var pkg *witgraph.Package
	if wd.Package != "" {
		p, ok := gb.packages[wd.Package]
		if !ok {
			return nil, nil, diag.DanglingReference(diag.PhaseLoad, wd.Name, fmt.Sprintf("package %q is not declared", wd.Package))
		}
		pkg = p
	}
	w := gb.b.World(pkg, wd.Name)
	w.Docs = wd.Docs

	s := &scope{entity: wd.Name, pkg: pkg, local: map[string]*witgraph.TypeDef{}}
	for _, items := range [][]ItemDoc{wd.Imports, wd.Exports} {
		for _, item := range items {
			if item.Type == nil {
				continue
			}
			if _, seen := s.local[item.Type.Name]; seen {
				continue
			}
			if err := gb.declare(s, witgraph.InWorld(w), *item.Type); err != nil {
				return nil, nil, err
			}
		}
	}
	return w, s, nil
}

// declare allocates td in s. The body is resolved later by body.
func (gb *graphBuilder) declare(s *scope, owner witgraph.Owner, td TypeDoc) error {
	entity := s.entity + "." + td.Name
	if td.Name == "" {
		return invalid(s.entity, "type without a name")
	}
	if _, dup := s.local[td.Name]; dup {
		return invalid(entity, "type declared twice")
	}

	var kind witgraph.Kind
	set := 0
	if td.Type != "" {
		kind, set = witgraph.KindAlias, set+1
	}
	if td.Record != nil {
		kind, set = witgraph.KindRecord, set+1
	}
	if td.Variant != nil {
		kind, set = witgraph.KindVariant, set+1
	}
	if td.Enum != nil {
		kind, set = witgraph.KindEnum, set+1
	}
	if td.Flags != nil {
		kind, set = witgraph.KindFlags, set+1
	}
	if td.Resource != nil {
		kind, set = witgraph.KindResource, set+1
	}
	if set != 1 {
		return invalid(entity, "expected exactly one of type, record, variant, enum, flags or resource; found %d", set)
	}

	def := gb.b.Declare(owner, td.Name, kind)
	def.Docs = td.Docs
	s.local[td.Name] = def
	gb.pending = append(gb.pending, pendingType{scope: s, doc: td, def: def})
	return nil
}

func (gb *graphBuilder) body(p pendingType) error {
	def, doc := p.def, p.doc
	entity := p.scope.entity + "." + doc.Name
	switch def.Kind {
	case witgraph.KindAlias:
		t, err := gb.parse(p.scope, doc.Type, entity)
		if err != nil {
			return err
		}
		def.Type = t
		def.Kind = witgraph.KindOf(t)
	case witgraph.KindRecord:
		for _, f := range doc.Record.Fields {
			t, err := gb.parse(p.scope, f.Type, entity+"."+f.Name)
			if err != nil {
				return err
			}
			def.Record.Fields = append(def.Record.Fields, witgraph.Field{Name: f.Name, Type: t, Docs: f.Docs})
		}
	case witgraph.KindVariant:
		for _, c := range doc.Variant {
			vc := witgraph.Case{Name: c.Name, Docs: c.Docs}
			if c.Type != "" {
				t, err := gb.parse(p.scope, c.Type, entity+"."+c.Name)
				if err != nil {
					return err
				}
				vc.Type = &t
			}
			def.Variant.Cases = append(def.Variant.Cases, vc)
		}
	case witgraph.KindEnum:
		for _, c := range doc.Enum {
			def.Enum.Cases = append(def.Enum.Cases, witgraph.EnumCase{Name: c})
		}
	case witgraph.KindFlags:
		for _, f := range doc.Flags {
			def.Flags.Flags = append(def.Flags.Flags, witgraph.Flag{Name: f})
		}
	case witgraph.KindResource:
		for _, group := range []struct {
			kind witgraph.FunctionKind
			docs []FunctionDoc
			dst  *[]*witgraph.Function
		}{
			{witgraph.Constructor, doc.Resource.Constructors, &def.Resource.Constructors},
			{witgraph.Method, doc.Resource.Methods, &def.Resource.Methods},
			{witgraph.Static, doc.Resource.Statics, &def.Resource.Statics},
		} {
			for _, fd := range group.docs {
				f, err := gb.function(p.scope, fd, group.kind, def)
				if err != nil {
					return err
				}
				*group.dst = append(*group.dst, f)
			}
		}
	}
	return nil
}

// function converts fd. Methods drop a leading `self` parameter, and
// constructors take the resource's name.
func (gb *graphBuilder) function(s *scope, fd FunctionDoc, kind witgraph.FunctionKind, res *witgraph.TypeDef) (*witgraph.Function, error) {
	f := &witgraph.Function{Name: fd.Name, Kind: kind, Docs: fd.Docs}
	owner := s.entity
	if res != nil {
		f.Resource = res.ID
		owner += "." + res.Name
		if kind == witgraph.Constructor {
			f.Name = res.Name
		}
	}
	if f.Name == "" {
		return nil, invalid(owner, "function without a name")
	}
	entity := owner + "." + f.Name

	params := fd.Params
	if kind == witgraph.Method && len(params) > 0 && params[0].Name == "self" {
		params = params[1:]
	}
	for _, pd := range params {
		t, err := gb.parse(s, pd.Type, entity+"."+pd.Name)
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, witgraph.Param{Name: pd.Name, Type: t})
	}
	if kind == witgraph.Constructor {
		return f, nil
	}
	for _, rd := range fd.Results {
		t, err := gb.parse(s, rd.Type, entity)
		if err != nil {
			return nil, err
		}
		f.Results = append(f.Results, witgraph.Param{Name: rd.Name, Type: t})
	}
	return f, nil
}

func (gb *graphBuilder) worldItems(w *witgraph.World, s *scope, wd WorldDoc) error {
	for _, group := range []struct {
		dir   witgraph.Direction
		items []ItemDoc
	}{
		{witgraph.Import, wd.Imports},
		{witgraph.Export, wd.Exports},
	} {
		for i, item := range group.items {
			set := 0
			for _, present := range []bool{item.Interface != "", item.Function != nil, item.Type != nil} {
				if present {
					set++
				}
			}
			if set != 1 {
				return invalid(w.Name, "%s item %d needs exactly one of interface, function or type", group.dir, i)
			}

			var wi witgraph.WorldItem
			switch {
			case item.Interface != "":
				iface, ok := gb.lookupInterface(s, item.Interface)
				if !ok {
					return diag.DanglingReference(diag.PhaseLoad, w.Name, fmt.Sprintf("interface %q is not declared", item.Interface))
				}
				wi = witgraph.WorldItem{Kind: witgraph.ItemInterface, Interface: iface.ID}
			case item.Function != nil:
				f, err := gb.function(s, *item.Function, witgraph.Freestanding, nil)
				if err != nil {
					return err
				}
				wi = witgraph.WorldItem{Kind: witgraph.ItemFunction, Function: f}
			default:
				wi = witgraph.WorldItem{Kind: witgraph.ItemType, Type: s.local[item.Type.Name].ID}
			}
			if group.dir == witgraph.Import {
				w.Imports = append(w.Imports, wi)
			} else {
				w.Exports = append(w.Exports, wi)
			}
		}
	}
	return nil
}

func (gb *graphBuilder) parse(s *scope, expr, entity string) (witgraph.TypeRef, error) {
	if strings.TrimSpace(expr) == "" {
		return witgraph.TypeRef{}, invalid(entity, "missing type")
	}
	t, err := ParseTypeExpr(expr, func(name string) (witgraph.TypeID, error) {
		return gb.resolve(s, name, entity)
	})
	if err == nil {
		return t, nil
	}
	if _, ok := diag.KindOf(err); ok {
		return witgraph.TypeRef{}, err
	}
	return witgraph.TypeRef{}, diag.New(diag.PhaseLoad, diag.KindInvalidGraph).Entity(entity).Cause(err).Build()
}

// resolve looks name up in s, then as `iface.name` within the scope's
// package, then as a fully qualified `ns:pkg/iface.name`.
func (gb *graphBuilder) resolve(s *scope, name, entity string) (witgraph.TypeID, error) {
	if td, ok := s.local[name]; ok {
		return td.ID, nil
	}
	if dot := strings.LastIndex(name, "."); dot > 0 {
		if iface, ok := gb.lookupInterface(s, name[:dot]); ok {
			if td, ok := gb.scopes[iface.ID].local[name[dot+1:]]; ok {
				return td.ID, nil
			}
		}
	}
	return 0, diag.DanglingReference(diag.PhaseLoad, entity, fmt.Sprintf("type %q is not declared", name))
}

// lookupInterface finds an interface by identity. Unqualified names resolve
// within the scope's package first, then among package-less interfaces.
func (gb *graphBuilder) lookupInterface(s *scope, name string) (*witgraph.Interface, bool) {
	if iface, ok := gb.ifaces[name]; ok {
		return iface, true
	}
	if !strings.Contains(name, ":") && s.pkg != nil {
		qualified := s.pkg.Namespace + ":" + s.pkg.Name + "/" + name
		if s.pkg.Version != nil {
			qualified += "@" + s.pkg.Version.Original()
		}
		if iface, ok := gb.ifaces[qualified]; ok {
			return iface, true
		}
	}
	return nil, false
}
