package configpaths

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "wit-bindgen-scala"

// DefaultConfigDir returns the platform-specific configuration directory for wit-bindgen-scala.
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if appdata := os.Getenv("AppData"); appdata != "" {
			return filepath.Join(appdata, appName), nil
		}
		return "", errors.New("AppData not set")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appName), nil
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName), nil
		}
		return "", errors.New("HOME not set")
	}
}

// DefaultNamedConfigPath returns baseName with the extension for format inside
// DefaultConfigDir.
func DefaultNamedConfigPath(baseName, format string) (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	ext := "json"
	switch format {
	case "yaml", "yml":
		ext = "yaml"
	case "toml":
		ext = "toml"
	}
	return filepath.Join(dir, baseName+"."+ext), nil
}

// EnsureDir ensures the directory for a given file path exists.
func EnsureDir(filePath string) error {
	dir := filepath.Dir(filePath)
	return os.MkdirAll(dir, 0o755)
}

// Candidates holds config file paths per format, in priority order.
type Candidates struct {
	JSON, YAML, TOML []string
}

func (c *Candidates) add(path string) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		c.YAML = append(c.YAML, path)
	case ".toml":
		c.TOML = append(c.TOML, path)
	default:
		c.JSON = append(c.JSON, path)
	}
}

// addBases adds base.json, base.yaml, base.yml and base.toml under dir for
// every base.
func (c *Candidates) addBases(dir string, bases []string) {
	for _, base := range bases {
		for _, ext := range []string{".json", ".yaml", ".yml", ".toml"} {
			c.add(filepath.Join(dir, base+ext))
		}
	}
}

// ConfigCandidatePaths lists the config files kong should try. An explicit
// userPath comes first and is routed by extension, unknown extensions being
// read as JSON. Each search directory then contributes "config" and one file
// per name in commands; the working directory also accepts the app name.
func ConfigCandidatePaths(userPath string, commands ...string) Candidates {
	var c Candidates
	if userPath != "" {
		c.add(userPath)
	}

	bases := append([]string{"config"}, commands...)
	if wd, err := os.Getwd(); err == nil {
		c.addBases(wd, append([]string{appName}, bases...))
	}
	if dir, err := DefaultConfigDir(); err == nil {
		c.addBases(dir, bases)
	}
	if runtime.GOOS != "windows" {
		c.addBases(filepath.Join("/etc", appName), bases)
	}
	return c
}
