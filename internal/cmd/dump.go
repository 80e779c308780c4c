package cmd

import (
	"io"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/Alia5/wit-bindgen-scala/internal/loader"
)

type Dump struct {
	Path string `arg:"" name:"path" help:"Resolved WIT document (.json, .yaml, .yml or .toml)" type:"existingfile"`

	Out io.Writer `kong:"-"`
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Run prints the graph loaded from Path after validation.
func (c *Dump) Run(logger *slog.Logger) error {
	g, err := loader.LoadFile(logger, c.Path)
	if err != nil {
		return err
	}
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	dumpConfig.Fdump(out, g)
	return nil
}
