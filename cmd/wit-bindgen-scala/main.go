package main

import (
	"os"
	"strings"

	"github.com/Alia5/wit-bindgen-scala/internal/config"
	"github.com/Alia5/wit-bindgen-scala/internal/configpaths"
	"github.com/Alia5/wit-bindgen-scala/internal/log"
	"github.com/Alia5/wit-bindgen-scala/internal/version"

	"github.com/alecthomas/kong"
	kongtoml "github.com/alecthomas/kong-toml"
	kongyaml "github.com/alecthomas/kong-yaml"
)

func main() {

	commands, err := config.ConfigCommands()
	if err != nil {
		_, _ = os.Stderr.WriteString("invalid command line model: " + err.Error() + "\n")
		os.Exit(2)
	}
	paths := configpaths.ConfigCandidatePaths(findUserConfig(os.Args[1:]), commands...)

	var cli config.CLI
	ctx := kong.Parse(&cli,
		kong.Name("wit-bindgen-scala"),
		kong.Description("Scala.js bindings generator for WebAssembly component interfaces"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
		// Load configuration from JSON/YAML/TOML in priority order; flags/env override config values.
		kong.Configuration(kong.JSON, paths.JSON...),
		kong.Configuration(kongyaml.Loader, paths.YAML...),
		kong.Configuration(kongtoml.Loader, paths.TOML...),
	)

	logger, closeFiles, err := log.SetupLogger(cli.Log.Level, cli.Log.File)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to setup logger: " + err.Error() + "\n")
		os.Exit(2)
	}
	defer func() {
		for _, c := range closeFiles {
			_ = c.Close()
		}
	}()

	var rawLogger log.RawLogger
	if cli.Log.RawFile != "" {
		f, err := os.OpenFile(cli.Log.RawFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Error("failed to open raw log file", "file", cli.Log.RawFile, "error", err)
			rawLogger = log.NewRaw(nil)
		} else {
			rawLogger = log.NewRaw(f)
			closeFiles = append(closeFiles, f)
		}
	} else if cli.Log.Level == "trace" {
		rawLogger = log.NewRaw(os.Stdout)
	} else {
		rawLogger = log.NewRaw(nil)
	}

	ctx.Bind(logger)
	ctx.BindTo(rawLogger, (*log.RawLogger)(nil))

	if err := ctx.Run(); err != nil {
		logger.Error("wit-bindgen-scala failed", log.ErrorAttrs(err)...)
		for _, c := range closeFiles {
			_ = c.Close()
		}
		ctx.Exit(1)
	}
}

func findUserConfig(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if strings.HasPrefix(a, "--config=") {
			return a[len("--config="):]
		}
		if a == "--config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	if v := os.Getenv("WIT_BINDGEN_SCALA_CONFIG"); v != "" {
		return v
	}
	return ""
}
