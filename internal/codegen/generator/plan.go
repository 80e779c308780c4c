package generator

import (
	"fmt"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// plannedModule is one output module before names are registered. World
// modules have a nil iface.
type plannedModule struct {
	dir      witgraph.Direction
	iface    *witgraph.Interface
	implicit bool
	contents scala.Contents
	types    []witgraph.TypeID
	funcs    []*witgraph.Function
}

type ifaceKey struct {
	id  witgraph.InterfaceID
	dir witgraph.Direction
}

type plan struct {
	graph   *witgraph.Graph
	world   *witgraph.World
	modules []*plannedModule

	ifaces     map[ifaceKey]*plannedModule
	worldMods  map[witgraph.Direction]*plannedModule
	worldTypes map[witgraph.TypeID]bool
}

// newPlan lists the modules for world: imports then exports in declaration
// order, followed by interfaces imported implicitly because generated code
// references their types.
//
// Every interface's types are declared by exactly one module, its home: the
// import module when the world imports the interface, otherwise its export
// module. Implicit imports carry types only.
func newPlan(g *witgraph.Graph, world *witgraph.World) (*plan, error) {
	p := &plan{
		graph:      g,
		world:      world,
		ifaces:     map[ifaceKey]*plannedModule{},
		worldMods:  map[witgraph.Direction]*plannedModule{},
		worldTypes: map[witgraph.TypeID]bool{},
	}
	for _, dir := range []witgraph.Direction{witgraph.Import, witgraph.Export} {
		for _, item := range world.Items(dir) {
			if err := p.add(item, dir); err != nil {
				return nil, err
			}
		}
	}
	for key, m := range p.ifaces {
		if key.dir == witgraph.Import || p.home(key.id) == witgraph.Export {
			m.contents |= scala.DeclareTypes
		}
	}
	if err := p.elaborate(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *plan) add(item witgraph.WorldItem, dir witgraph.Direction) error {
	switch item.Kind {
	case witgraph.ItemInterface:
		iface, ok := p.graph.Interface(item.Interface)
		if !ok {
			return diag.DanglingReference(diag.PhasePlan, p.world.Name, fmt.Sprintf("interface #%d does not exist", item.Interface))
		}
		p.interfaceModule(iface, dir, scala.DeclareFunctions)
	case witgraph.ItemFunction:
		m := p.worldModule(dir)
		m.funcs = append(m.funcs, item.Function)
	case witgraph.ItemType:
		return p.worldType(item.Type)
	}
	return nil
}

func (p *plan) interfaceModule(iface *witgraph.Interface, dir witgraph.Direction, contents scala.Contents) *plannedModule {
	key := ifaceKey{id: iface.ID, dir: dir}
	if m, ok := p.ifaces[key]; ok {
		m.contents |= contents
		return m
	}
	m := &plannedModule{dir: dir, iface: iface, contents: contents}
	p.ifaces[key] = m
	p.modules = append(p.modules, m)
	return m
}

// home returns the direction of the module that declares the types of the
// interface id. Interfaces the world does not mention resolve to Import; the
// elaboration adds their module.
func (p *plan) home(id witgraph.InterfaceID) witgraph.Direction {
	if _, ok := p.ifaces[ifaceKey{id: id, dir: witgraph.Import}]; ok {
		return witgraph.Import
	}
	if _, ok := p.ifaces[ifaceKey{id: id, dir: witgraph.Export}]; ok {
		return witgraph.Export
	}
	return witgraph.Import
}

func (p *plan) planned(id witgraph.InterfaceID) bool {
	for _, dir := range []witgraph.Direction{witgraph.Import, witgraph.Export} {
		if _, ok := p.ifaces[ifaceKey{id: id, dir: dir}]; ok {
			return true
		}
	}
	return false
}

func (p *plan) worldModule(dir witgraph.Direction) *plannedModule {
	if m, ok := p.worldMods[dir]; ok {
		return m
	}
	m := &plannedModule{dir: dir}
	p.worldMods[dir] = m
	p.modules = append(p.modules, m)
	return m
}

// worldType places a world-level type in the import world module. World
// types are declared once, whichever list names them.
func (p *plan) worldType(id witgraph.TypeID) error {
	td, ok := p.graph.TypeDef(id)
	if !ok {
		return diag.DanglingReference(diag.PhasePlan, p.world.Name, fmt.Sprintf("type #%d does not exist", id))
	}
	if td.Owner.Kind == witgraph.OwnerWorld && td.Owner.World != p.world.ID {
		return diag.New(diag.PhasePlan, diag.KindInvalidGraph).
			Entity(p.graph.Describe(id)).
			Detail("type belongs to a world other than %q", p.world.Name).
			Build()
	}
	if p.worldTypes[id] {
		return nil
	}
	p.worldTypes[id] = true
	m := p.worldModule(witgraph.Import)
	m.types = append(m.types, id)
	return nil
}

// elaborate adds the import modules that declare types referenced from
// planned modules. It repeats until no module gains a new dependency.
func (p *plan) elaborate() error {
	for {
		before := len(p.modules) + len(p.worldTypes)
		for i := 0; i < len(p.modules); i++ {
			if err := p.require(p.modules[i]); err != nil {
				return err
			}
		}
		if len(p.modules)+len(p.worldTypes) == before {
			return nil
		}
	}
}

func (p *plan) require(m *plannedModule) error {
	var firstErr error
	for _, ref := range p.refs(m) {
		p.graph.VisitNamed(ref, func(td *witgraph.TypeDef) {
			if firstErr != nil || p.declares(m, td) {
				return
			}
			switch td.Owner.Kind {
			case witgraph.OwnerInterface:
				if p.planned(td.Owner.Interface) {
					return
				}
				if iface, ok := p.graph.Interface(td.Owner.Interface); ok {
					p.interfaceModule(iface, witgraph.Import, scala.DeclareTypes).implicit = true
				}
			case witgraph.OwnerWorld:
				firstErr = p.worldType(td.ID)
			}
		})
		if firstErr != nil {
			return firstErr
		}
	}
	return nil
}

// declares reports whether td is declared inside m itself.
func (p *plan) declares(m *plannedModule, td *witgraph.TypeDef) bool {
	if m.iface != nil {
		return m.contents&scala.DeclareTypes != 0 &&
			td.Owner.Kind == witgraph.OwnerInterface && td.Owner.Interface == m.iface.ID
	}
	return m.dir == witgraph.Import && p.worldTypes[td.ID]
}

func (p *plan) refs(m *plannedModule) []witgraph.TypeRef {
	var refs []witgraph.TypeRef
	types := m.types
	funcs := m.funcs
	if m.iface != nil {
		types, funcs = nil, nil
		if m.contents&scala.DeclareTypes != 0 {
			types = m.iface.Types
		}
		if m.contents&scala.DeclareFunctions != 0 {
			funcs = m.iface.Functions
		}
	}
	for _, id := range types {
		if td, ok := p.graph.TypeDef(id); ok {
			refs = append(refs, witgraph.BodyRefs(td)...)
		}
	}
	for _, f := range funcs {
		refs = append(refs, witgraph.FunctionRefs(f)...)
	}
	return refs
}
