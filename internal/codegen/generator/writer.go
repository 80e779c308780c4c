package generator

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
)

// WriteModules writes every module below outDir, creating directories as needed.
func WriteModules(logger *slog.Logger, outDir string, modules []scala.Module) error {
	for _, m := range modules {
		dest := filepath.Join(outDir, filepath.FromSlash(m.Path))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return ioError(dest, "create directory", err)
		}
		if err := os.WriteFile(dest, []byte(m.Content), 0o644); err != nil {
			return ioError(dest, "write file", err)
		}
		logger.Debug("Wrote module", "file", dest)
	}
	logger.Info("Wrote Scala bindings", "output", outDir, "files", len(modules))
	return nil
}

type DriftKind string

const (
	DriftMissing DriftKind = "missing"
	DriftChanged DriftKind = "changed"
	// DriftEdited marks a file whose content no longer matches the digest the
	// manifest recorded for it, so it was modified after generation.
	DriftEdited DriftKind = "edited"
	DriftStale  DriftKind = "stale"
)

// Drift is one difference between a fresh generation and the tree on disk.
type Drift struct {
	Path string
	Kind DriftKind
}

// Verify compares modules with the files below outDir. With a manifest
// present, files that differ from their recorded digest are reported as
// edited rather than changed, and files listed in the manifest that are no
// longer generated are reported as stale.
func Verify(outDir string, modules []scala.Module) ([]Drift, error) {
	previous, hasManifest, err := ReadManifest(outDir)
	if err != nil {
		return nil, err
	}
	recorded := make(map[string]string, len(previous.Entries))
	for _, e := range previous.Entries {
		recorded[e.Path] = e.Digest
	}

	var drifts []Drift
	fresh := make(map[string]bool, len(modules))
	for _, m := range modules {
		fresh[m.Path] = true
		data, err := os.ReadFile(filepath.Join(outDir, filepath.FromSlash(m.Path)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
			drifts = append(drifts, Drift{Path: m.Path, Kind: DriftMissing})
		case err != nil:
			return nil, ioError(m.Path, "read file", err)
		case !bytes.Equal(data, []byte(m.Content)):
			kind := DriftChanged
			if digest, ok := recorded[m.Path]; ok && digest != Digest(data) {
				kind = DriftEdited
			}
			drifts = append(drifts, Drift{Path: m.Path, Kind: kind})
		}
	}

	if hasManifest {
		for _, e := range previous.Entries {
			if fresh[e.Path] {
				continue
			}
			if _, err := os.Stat(filepath.Join(outDir, filepath.FromSlash(e.Path))); err == nil {
				drifts = append(drifts, Drift{Path: e.Path, Kind: DriftStale})
			}
		}
	}

	sort.Slice(drifts, func(i, j int) bool { return drifts[i].Path < drifts[j].Path })
	return drifts, nil
}

func ioError(path, op string, err error) error {
	return diag.New(diag.PhaseWrite, diag.KindIO).Entity(path).Detail("%s", op).Cause(err).Build()
}
