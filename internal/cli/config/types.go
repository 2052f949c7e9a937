// Package config provides configuration management for the headfix CLI.
package config

// Config holds all CLI configuration options.
type Config struct {
	TemplatesDir     string   `koanf:"templates_dir"`
	BasePath         string   `koanf:"base_path"`
	Minify           bool     `koanf:"minify"`
	Repair           bool     `koanf:"repair"`
	Verbose          bool     `koanf:"verbose"`
	OutputFormat     string   `koanf:"output"`
	HideIDAlways     []string `koanf:"hide_id_always"`
	EncodeAnchorHref bool     `koanf:"encode_anchor_href"`
	Jobs             int      `koanf:"jobs"`

	// ProjectRoot is the directory relative paths resolve against.
	ProjectRoot string `koanf:"-"`
}

// Default configuration values.
const (
	DefaultTemplatesDir = "."
	DefaultBasePath     = "/"
	DefaultOutput       = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultJobs         = 4
)

// Output modes accepted by the output option.
var OutputModes = []string{"auto", "text", "markdown", "json"}

// Defaults returns a Config with every default applied.
func Defaults() *Config {
	return &Config{
		TemplatesDir:     DefaultTemplatesDir,
		BasePath:         DefaultBasePath,
		Repair:           true,
		OutputFormat:     DefaultOutput,
		EncodeAnchorHref: true,
		Jobs:             DefaultJobs,
	}
}
