package cmd

import (
	"fmt"
	"log/slog"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/generator"
)

type Verify struct {
	Source `embed:""`
}

// Run regenerates in memory and compares with the tree in OutDir. Any
// difference is reported and makes the command fail.
func (c *Verify) Run(logger *slog.Logger) error {
	res, err := c.generate(logger)
	if err != nil {
		return err
	}
	drifts, err := generator.Verify(c.OutDir, res.Modules)
	if err != nil {
		return err
	}
	for _, d := range drifts {
		logger.Warn("Generated file out of date", "file", d.Path, "drift", d.Kind)
	}
	if len(drifts) > 0 {
		return fmt.Errorf("%d of %d generated files in %s are out of date; rerun generate", len(drifts), len(res.Modules), c.OutDir)
	}
	logger.Info("Generated bindings are up to date", "files", len(res.Modules), "output", c.OutDir)
	return nil
}
