package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/headfix/internal/testutil"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "headfix.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0600))
	return cfgPath
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("templates-dir", "", "templates directory")
	flags.String("base-path", "", "base path")
	flags.StringSlice("hide-id-always", nil, "tags")
	flags.Int("jobs", 0, "jobs")
	flags.Bool("repair", true, "repair")
	return flags
}

// TestConfig_Validate tests the Config.Validate method.
func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errSubstr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "empty templates_dir", mutate: func(c *Config) { c.TemplatesDir = "" }, errSubstr: "templates_dir is required"},
		{name: "relative base path", mutate: func(c *Config) { c.BasePath = "app" }, errSubstr: "base_path must start with"},
		{name: "unknown output", mutate: func(c *Config) { c.OutputFormat = "yaml" }, errSubstr: "unknown output format"},
		{name: "no jobs", mutate: func(c *Config) { c.Jobs = 0 }, errSubstr: "jobs must be at least 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestConfig_ValidateDirectories(t *testing.T) {
	cfg := Defaults()
	cfg.TemplatesDir = t.TempDir()
	assert.NoError(t, cfg.ValidateDirectories())

	cfg.TemplatesDir = filepath.Join(cfg.TemplatesDir, "missing")
	err := cfg.ValidateDirectories()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "templates directory does not exist")
}

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "verbose: false\n")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Dir(cfgPath), cfg.ProjectRoot)
	assert.Equal(t, filepath.Dir(cfgPath), cfg.TemplatesDir, "default templates dir is the project root")
	assert.Equal(t, "/", cfg.BasePath)
	assert.True(t, cfg.Repair)
	assert.True(t, cfg.EncodeAnchorHref)
	assert.False(t, cfg.Minify)
	assert.Equal(t, DefaultJobs, cfg.Jobs)
	assert.Equal(t, "auto", cfg.OutputFormat)
	assert.Empty(t, cfg.HideIDAlways)
	assert.Same(t, cfg, GetCurrentConfig())
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_File(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, `templates_dir: site
base_path: /app/
minify: true
repair: false
hide_id_always:
  - span
  - div
jobs: 2
`)

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(filepath.Dir(cfgPath), "site"), cfg.TemplatesDir)
	assert.Equal(t, "/app/", cfg.BasePath)
	assert.True(t, cfg.Minify)
	assert.False(t, cfg.Repair)
	assert.Equal(t, []string{"span", "div"}, cfg.HideIDAlways)
	assert.Equal(t, 2, cfg.Jobs)
}

func TestLoadConfig_Invalid(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "base_path: app\n")

	_, err := LoadConfig(cfgPath, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestLoadConfig_MissingFile(t *testing.T) {
	ResetConfig()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

// TestLoadConfig_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoadConfig_EnvPrecedenceOverFile(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "base_path: /from-file/\njobs: 2\n")

	t.Setenv("HEADFIX_BASE_PATH", "/from-env/")
	t.Setenv("HEADFIX_HIDE_ID_ALWAYS", "span, div")
	t.Setenv("HEADFIX_MINIFY", "true")

	cfg, err := LoadConfig(cfgPath, nil)
	require.NoError(t, err)

	assert.Equal(t, "/from-env/", cfg.BasePath, "env var should override config file")
	assert.Equal(t, []string{"span", "div"}, cfg.HideIDAlways, "comma separated env values decode into a list")
	assert.True(t, cfg.Minify)
	assert.Equal(t, 2, cfg.Jobs)
}

// TestLoadConfig_FlagPrecedence tests that flags override env vars and config file.
func TestLoadConfig_FlagPrecedence(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "base_path: /from-file/\n")
	t.Setenv("HEADFIX_BASE_PATH", "/from-env/")

	flags := testFlags()
	require.NoError(t, flags.Set("base-path", "/from-flag/"))
	require.NoError(t, flags.Set("hide-id-always", "p,em"))
	require.NoError(t, flags.Set("repair", "false"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "/from-flag/", cfg.BasePath, "flag value should override config file and env var")
	assert.Equal(t, []string{"p", "em"}, cfg.HideIDAlways)
	assert.False(t, cfg.Repair)
}

// TestLoadConfig_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoadConfig_FlagNotSetUsesEnv(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "verbose: false\n")
	t.Setenv("HEADFIX_JOBS", "8")

	cfg, err := LoadConfig(cfgPath, testFlags())
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Jobs, "env var should be used when flag is not set")
	assert.True(t, cfg.Repair, "unset flag keeps the default")
}

func TestLoadConfig_TemplatesDirFlagIsRelativeToCWD(t *testing.T) {
	ResetConfig()
	cfgPath := writeConfig(t, "templates_dir: from_file\n")

	flags := testFlags()
	require.NoError(t, flags.Set("templates-dir", "testdata"))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	want, err := filepath.Abs("testdata")
	require.NoError(t, err)
	assert.Equal(t, want, cfg.TemplatesDir)
}

func TestFindProjectRootUpward(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "headfix.yml"), nil, 0600))

	assert.Equal(t, root, findProjectRootUpward(nested))
	assert.Equal(t, filepath.Join(root, "headfix.yml"), configExistsIn(root))
	assert.Empty(t, configExistsIn(nested))
}

func TestLogger(t *testing.T) {
	assert.NotNil(t, GetLogger(context.Background()), "discard fallback")

	logger := testutil.NewTestLogger(t)
	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.Equal(t, loggerKey{}, LoggerKey())
}
