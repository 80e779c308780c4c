// Package config defines the command-line surface of wit-bindgen-scala.
package config

import (
	"github.com/alecthomas/kong"

	"github.com/Alia5/wit-bindgen-scala/internal/cmd"
)

type LogConfig struct {
	Level   string `help:"Log level: trace, debug, info, warn, error" default:"info" enum:"trace,debug,info,warn,error" env:"WIT_BINDGEN_SCALA_LOG_LEVEL"`
	File    string `help:"Also write logs to this file" env:"WIT_BINDGEN_SCALA_LOG_FILE"`
	RawFile string `help:"Write the content of every generated file to this path" env:"WIT_BINDGEN_SCALA_LOG_RAW_FILE"`
}

type CLI struct {
	Version    kong.VersionFlag `help:"Print the version and exit"`
	ConfigFile string           `name:"config" help:"Configuration file (JSON, YAML or TOML)" type:"path" env:"WIT_BINDGEN_SCALA_CONFIG"`
	Log        LogConfig        `embed:"" prefix:"log."`

	Generate cmd.Generate      `cmd:"" configfile:"" help:"Generate Scala bindings for a world"`
	Verify   cmd.Verify        `cmd:"" configfile:"" help:"Check that generated bindings on disk are up to date"`
	Dump     cmd.Dump          `cmd:"" help:"Print the loaded WIT graph"`
	Config   cmd.ConfigCommand `cmd:"" help:"Configuration helpers"`
}

// ConfigCommands names the commands tagged configfile, each of which may
// have its own <command>.json/.yaml/.toml configuration file.
func ConfigCommands() ([]string, error) {
	parser, err := kong.New(&CLI{})
	if err != nil {
		return nil, err
	}
	var names []string
	for _, n := range parser.Model.Children {
		if n.Type == kong.CommandNode && n.Tag.Has("configfile") {
			names = append(names, n.Name)
		}
	}
	return names, nil
}
