package generator

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

// DefaultBasePackage is used when Options.BasePackage is empty.
const DefaultBasePackage = "componentmodel"

type Options struct {
	// BasePackage is the dot-separated Scala package all output lives under.
	BasePackage string
	// World selects the world to generate. It may be empty when the graph
	// holds exactly one world.
	World string
	// Workers bounds concurrent rendering; zero means GOMAXPROCS.
	Workers int
}

type Generator struct {
	logger *slog.Logger
	opts   Options
}

// Result is the output of one generation run, sorted by path.
type Result struct {
	World   string
	Modules []scala.Module
	Imports int
	Exports int
}

func New(logger *slog.Logger, opts Options) *Generator {
	if opts.BasePackage == "" {
		opts.BasePackage = DefaultBasePackage
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Generator{
		logger: logger,
		opts:   opts,
	}
}

// Generate transforms graph into Scala modules. Any error aborts the run and
// no modules are returned.
func (g *Generator) Generate(graph *witgraph.Graph) (*Result, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}

	world, err := g.SelectWorld(graph)
	if err != nil {
		return nil, err
	}
	g.logger.Info("Generating Scala bindings", "world", world.Name, "base", g.opts.BasePackage)

	p, err := newPlan(graph, world)
	if err != nil {
		return nil, err
	}

	target := scala.NewTarget(graph, g.opts.BasePackage, world.Name)
	target.SetTypeHomes(p.home)
	units := make([]*scala.Unit, len(p.modules))
	for i, m := range p.modules {
		var unit *scala.Unit
		if m.iface != nil {
			unit, err = target.PrepareInterface(m.iface, m.dir, m.contents)
		} else {
			unit, err = target.PrepareWorld(world, m.dir, m.types, m.funcs)
		}
		if err != nil {
			return nil, err
		}
		if m.implicit {
			g.logger.Debug("Elaborated implicit import", "interface", m.iface.Identity(), "file", unit.Path)
		}
		units[i] = unit
	}

	modules, err := g.render(units)
	if err != nil {
		return nil, err
	}

	sort.Slice(modules, func(i, j int) bool { return modules[i].Path < modules[j].Path })
	res := &Result{World: world.Name, Modules: modules}
	for i, m := range modules {
		if i > 0 && modules[i-1].Path == m.Path {
			return nil, diag.New(diag.PhasePlan, diag.KindNameCollision).
				Entity(m.Path).
				Detail("two modules map to the same file").
				Build()
		}
		if m.Direction == witgraph.Export {
			res.Exports++
		} else {
			res.Imports++
		}
		g.logger.Debug("Generated module", "file", m.Path, "package", m.Package, "direction", m.Direction)
	}

	g.logger.Info("Generated Scala bindings", "files", len(modules), "imports", res.Imports, "exports", res.Exports)
	return res, nil
}

// render executes the prepared units concurrently. Each result lands in the
// slot of its unit, and the first error in unit order wins.
func (g *Generator) render(units []*scala.Unit) ([]scala.Module, error) {
	modules := make([]scala.Module, len(units))
	errs := make([]error, len(units))

	var eg errgroup.Group
	eg.SetLimit(g.opts.Workers)
	for i, u := range units {
		eg.Go(func() error {
			modules[i], errs[i] = u.Render()
			return errs[i]
		})
	}
	_ = eg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return modules, nil
}

// SelectWorld picks the world named in the options, or the only world.
func (g *Generator) SelectWorld(graph *witgraph.Graph) (*witgraph.World, error) {
	names := graph.WorldNames()
	if g.opts.World != "" {
		w, ok := graph.World(g.opts.World)
		if !ok {
			return nil, diag.UnknownWorld(g.opts.World, names)
		}
		return w, nil
	}
	switch len(names) {
	case 0:
		return nil, diag.UnknownWorld("", nil)
	case 1:
		w, _ := graph.World(names[0])
		return w, nil
	}
	return nil, diag.AmbiguousWorld(names)
}

// Summary formats the run outcome the way the CLI reports it.
func (r *Result) Summary() string {
	return fmt.Sprintf("Generated %d Scala files (%d imports, %d exports)", len(r.Modules), r.Imports, r.Exports)
}
