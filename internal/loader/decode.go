package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"github.com/Alia5/wit-bindgen-scala/internal/diag"
	"github.com/Alia5/wit-bindgen-scala/witgraph"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"

	// FormatWasmTools is the output of `wasm-tools component wit --json`.
	FormatWasmTools Format = "wasm-tools"
)

// FormatFromPath picks the document format from the file extension. A
// ".wit.json" suffix marks wasm-tools output.
func FormatFromPath(path string) (Format, bool) {
	if strings.HasSuffix(strings.ToLower(path), ".wit.json") {
		return FormatWasmTools, true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	case ".toml":
		return FormatTOML, true
	}
	return "", false
}

// Decode parses data as a Document in the given format. JSON and YAML input
// is decoded strictly; unknown keys are rejected.
func Decode(data []byte, format Format) (*Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&doc)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case FormatTOML:
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, diag.New(diag.PhaseLoad, diag.KindUnsupported).
			Entity(string(format)).
			Detail("unknown document format").
			Build()
	}
	if err != nil {
		return nil, diag.New(diag.PhaseLoad, diag.KindInvalidGraph).
			Detail("decode %s document", format).
			Cause(err).
			Build()
	}
	return &doc, nil
}

// Load decodes data and builds the graph it describes.
func Load(data []byte, format Format) (*witgraph.Graph, error) {
	if format == FormatWasmTools {
		res, err := DecodeResolve(data)
		if err != nil {
			return nil, err
		}
		return FromResolve(res)
	}
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return Build(doc)
}

// LoadFile reads the document at path, choosing the format by extension.
func LoadFile(logger *slog.Logger, path string) (*witgraph.Graph, error) {
	format, ok := FormatFromPath(path)
	if !ok {
		return nil, diag.New(diag.PhaseLoad, diag.KindUnsupported).
			Entity(path).
			Detail("unrecognised extension %q; expected .wit.json, .json, .yaml, .yml or .toml", filepath.Ext(path)).
			Build()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.New(diag.PhaseLoad, diag.KindIO).Entity(path).Detail("read document").Cause(err).Build()
	}
	logger.Debug("Loading WIT document", "path", path, "format", format, "bytes", len(data))

	g, err := Load(data, format)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	logger.Info("Loaded WIT document",
		"path", path,
		"packages", len(g.Packages),
		"interfaces", len(g.Interfaces),
		"types", len(g.Types),
		"worlds", len(g.Worlds),
	)
	return g, nil
}
