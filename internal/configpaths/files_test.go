package configpaths

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigCandidatePaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(t.TempDir(), "xdg"))
	t.Setenv("AppData", filepath.Join(t.TempDir(), "appdata"))
	wd := t.TempDir()
	t.Chdir(wd)

	c := ConfigCandidatePaths("custom/settings.yml", "generate", "verify")

	require.NotEmpty(t, c.YAML)
	assert.Equal(t, "custom/settings.yml", c.YAML[0], "explicit path comes first")
	assert.Equal(t, []string{
		filepath.Join(wd, appName+".json"),
		filepath.Join(wd, "config.json"),
		filepath.Join(wd, "generate.json"),
		filepath.Join(wd, "verify.json"),
	}, c.JSON[:4])
	assert.Contains(t, c.TOML, filepath.Join(wd, "verify.toml"))
	assert.Contains(t, c.YAML, filepath.Join(wd, "generate.yml"))

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Contains(t, c.JSON, filepath.Join(dir, "generate.json"))
	assert.NotContains(t, c.JSON, filepath.Join(dir, appName+".json"), "the app name is only a candidate in the working directory")
	if runtime.GOOS != "windows" {
		assert.Equal(t, filepath.Join("/etc", appName, "verify.toml"), c.TOML[len(c.TOML)-1])
	}
}

func TestConfigCandidatePathsRoutesUnknownExtensionToJSON(t *testing.T) {
	c := ConfigCandidatePaths("settings.conf")
	assert.Equal(t, "settings.conf", c.JSON[0])
}
