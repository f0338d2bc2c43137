package parsing

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.False(t, cfg.GetBool("parser.trace"))
	assert.True(t, cfg.GetBool("parser.skip"))
	assert.Equal(t, 10000, cfg.GetInt("parser.max_depth"))
	assert.Equal(t, 0, cfg.GetInt("log.verbosity"))
	assert.Equal(t, "", cfg.GetString("log.path"))

	assert.PanicsWithValue(t, "can't read setting `parser.trace` of type bool as int",
		func() { cfg.GetInt("parser.trace") })
	assert.PanicsWithValue(t, "can't assign string to setting `parser.max_depth` of type int",
		func() { cfg.SetString("parser.max_depth", "deep") })
	assert.PanicsWithValue(t, "bool setting `missing` does not exist",
		func() { cfg.GetBool("missing") })

	cfg.SetInt("parser.max_depth", 3)
	assert.Equal(t, 3, cfg.GetInt("parser.max_depth"))
}

func TestConfigString(t *testing.T) {
	cfg := NewConfig()
	cfg.SetString("log.path", "parse.log")

	assert.Equal(t, `log.path         : parse.log (string)
log.verbosity    : 0 (int)
parser.max_depth : 10000 (int)
parser.skip      : true (bool)
parser.trace     : false (bool)`, cfg.String())
}

func TestLoadConfig(t *testing.T) {
	for _, test := range []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "cminor.toml",
			content: `
[parser]
trace = true
max_depth = 64

[log]
verbosity = 2
`,
		},
		{
			name: "yaml",
			file: "cminor.yaml",
			content: `
parser:
  trace: true
  max_depth: 64
log:
  verbosity: 2
`,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, test.file, test.content))
			require.NoError(t, err)
			assert.True(t, cfg.GetBool("parser.trace"))
			assert.Equal(t, 64, cfg.GetInt("parser.max_depth"))
			assert.Equal(t, 2, cfg.GetInt("log.verbosity"))
			// untouched settings keep their defaults
			assert.True(t, cfg.GetBool("parser.skip"))
		})
	}
}

func TestLoadConfigErrors(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "bad.toml", "[parser]\nskip = 3\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "setting `parser.skip` must be bool, not int")

	_, err = LoadConfig(writeConfig(t, "cminor.ini", "x=1"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown configuration format `.ini`")

	_, err = LoadConfig(writeConfig(t, "broken.yaml", "parser: [\n"))
	require.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestConfigDrivesDomain(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, "cminor.toml", "[parser]\nmax_depth = 2\n"))
	require.NoError(t, err)
	ConfigureLogging(cfg)

	d := NewDomain(cfg)
	register(d, nestingGrammar())
	_, err = d.MustGrammar("P").Parse("((()))", 0, "")
	assert.ErrorIs(t, err, ErrMaxDepth)
}
