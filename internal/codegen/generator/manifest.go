package generator

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/Alia5/wit-bindgen-scala/internal/codegen/scala"
	"github.com/Alia5/wit-bindgen-scala/internal/diag"
)

// ManifestName is the file written next to the generated tree.
const ManifestName = ".wit-bindgen-scala.sum"

const digestPrefix = "blake2b-256:"

type ManifestEntry struct {
	Path   string
	Digest string
}

// Manifest lists the digest of every generated file, sorted by path.
type Manifest struct {
	Entries []ManifestEntry
}

func NewManifest(modules []scala.Module) Manifest {
	m := Manifest{Entries: make([]ManifestEntry, 0, len(modules))}
	for _, mod := range modules {
		m.Entries = append(m.Entries, ManifestEntry{Path: mod.Path, Digest: Digest([]byte(mod.Content))})
	}
	sort.Slice(m.Entries, func(i, j int) bool { return m.Entries[i].Path < m.Entries[j].Path })
	return m
}

// Digest returns the prefixed blake2b-256 digest of data.
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return digestPrefix + hex.EncodeToString(sum[:])
}

// Marshal renders one `<digest>  <path>` line per entry.
func (m Manifest) Marshal() []byte {
	var b bytes.Buffer
	for _, e := range m.Entries {
		b.WriteString(e.Digest)
		b.WriteString("  ")
		b.WriteString(e.Path)
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func ParseManifest(data []byte) (Manifest, error) {
	var m Manifest
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		digest, path, ok := strings.Cut(text, "  ")
		if !ok || !strings.HasPrefix(digest, digestPrefix) {
			return Manifest{}, diag.New(diag.PhaseWrite, diag.KindIO).
				Entity(ManifestName).
				Detail("malformed line %d", line).
				Build()
		}
		m.Entries = append(m.Entries, ManifestEntry{Path: strings.TrimSpace(path), Digest: digest})
	}
	if err := sc.Err(); err != nil {
		return Manifest{}, ioError(ManifestName, "read manifest", err)
	}
	return m, nil
}

// WriteManifest writes the manifest for modules into outDir.
func WriteManifest(outDir string, modules []scala.Module) error {
	dest := filepath.Join(outDir, ManifestName)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return ioError(outDir, "create directory", err)
	}
	if err := os.WriteFile(dest, NewManifest(modules).Marshal(), 0o644); err != nil {
		return ioError(dest, "write manifest", err)
	}
	return nil
}

// ReadManifest loads the manifest in outDir. ok is false when none exists.
func ReadManifest(outDir string) (Manifest, bool, error) {
	data, err := os.ReadFile(filepath.Join(outDir, ManifestName))
	if errors.Is(err, fs.ErrNotExist) {
		return Manifest{}, false, nil
	}
	if err != nil {
		return Manifest{}, false, ioError(ManifestName, "read manifest", err)
	}
	m, err := ParseManifest(data)
	if err != nil {
		return Manifest{}, false, err
	}
	return m, true, nil
}
