package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/generator"
	"github.com/Alia5/wit-bindgen-scala/internal/loader"
	"github.com/Alia5/wit-bindgen-scala/internal/log"
)

// Source selects the document and world to generate from. It is shared by
// generate and verify so both see the same output.
type Source struct {
	Path        string `arg:"" name:"path" help:"Resolved WIT document (.json, .yaml, .yml or .toml)" type:"existingfile"`
	OutDir      string `help:"Root directory of the generated Scala sources" default:"./src/main/scala" env:"WIT_BINDGEN_SCALA_OUT_DIR"`
	BasePackage string `help:"Scala package all bindings are nested under" default:"componentmodel" env:"WIT_BINDGEN_SCALA_BASE_PACKAGE"`
	World       string `help:"World to generate; may be omitted when the document holds exactly one" env:"WIT_BINDGEN_SCALA_WORLD"`
	Workers     int    `help:"Concurrent module renderers; 0 uses every CPU" default:"0" env:"WIT_BINDGEN_SCALA_WORKERS"`
}

func (s *Source) generate(logger *slog.Logger) (*generator.Result, error) {
	g, err := loader.LoadFile(logger, s.Path)
	if err != nil {
		return nil, err
	}
	res, err := generator.New(logger, generator.Options{
		BasePackage: s.BasePackage,
		World:       s.World,
		Workers:     s.Workers,
	}).Generate(g)
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", s.Path, err)
	}
	return res, nil
}

type Generate struct {
	Source   `embed:""`
	Manifest bool `help:"Write a digest manifest next to the generated sources" env:"WIT_BINDGEN_SCALA_MANIFEST"`
}

// Run is called by Kong when the generate command is executed. rawLogger
// receives the content of every generated file.
func (c *Generate) Run(logger *slog.Logger, rawLogger log.RawLogger) error {
	logger.Info("Starting Scala binding generation", "input", c.Path, "output", c.OutDir)

	res, err := c.generate(logger)
	if err != nil {
		return err
	}
	for _, m := range res.Modules {
		rawLogger.Log(m.Path, []byte(m.Content))
	}
	if err := generator.WriteModules(logger, c.OutDir, res.Modules); err != nil {
		return err
	}
	if c.Manifest {
		if err := generator.WriteManifest(c.OutDir, res.Modules); err != nil {
			return err
		}
		logger.Info("Wrote manifest", "file", generator.ManifestName)
	}
	logger.Info(res.Summary(), "world", res.World)
	return nil
}
