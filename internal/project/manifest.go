package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/BurntSushi/toml"

	"vic/internal/dialect"
	"vic/internal/format"
)

// Manifest is a decoded vic.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the vic.toml layout. Pointer fields stay nil when the key
// is absent so that merging keeps lower-precedence values.
type Config struct {
	Format  FormatConfig  `toml:"format"`
	Dialect DialectConfig `toml:"dialect"`
}

type FormatConfig struct {
	TabSize      *int64 `toml:"tab_size"`
	InsertSpaces *bool  `toml:"insert_spaces"`
}

type DialectConfig struct {
	Asm []string `toml:"asm"`
	Bin []string `toml:"bin"`
}

// LoadManifest finds vic.toml starting at startDir and decodes it.
// ok is false when no manifest exists; that is not an error.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	manifestPath, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

// LoadConfig decodes and validates the manifest at path.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("format", "tab_size") && *cfg.Format.TabSize <= 0 {
		return Config{}, fmt.Errorf("%s: [format].tab_size must be positive, got %d", path, *cfg.Format.TabSize)
	}
	for _, ext := range append(append([]string(nil), cfg.Dialect.Asm...), cfg.Dialect.Bin...) {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return Config{}, fmt.Errorf("%s: [dialect] extension %q must start with a dot", path, ext)
		}
	}
	return cfg, nil
}

// FormatOptions layers the manifest's [format] section over base.
func (c Config) FormatOptions(base format.Options) (format.Options, error) {
	opt := base
	if c.Format.TabSize != nil {
		n, err := safecast.Conv[int](*c.Format.TabSize)
		if err != nil {
			return base, fmt.Errorf("[format].tab_size: %w", err)
		}
		opt.TabSize = n
	}
	if c.Format.InsertSpaces != nil {
		opt.InsertSpaces = *c.Format.InsertSpaces
	}
	return opt, nil
}

// Extensions layers the manifest's [dialect] section over base. Entries
// listed in the manifest win over built-in ones for the same extension.
func (c Config) Extensions(base dialect.Extensions) dialect.Extensions {
	out := make(dialect.Extensions, len(base)+len(c.Dialect.Asm)+len(c.Dialect.Bin))
	for ext, k := range base {
		out[ext] = k
	}
	for _, ext := range c.Dialect.Asm {
		out[strings.ToLower(ext)] = dialect.Asm
	}
	for _, ext := range c.Dialect.Bin {
		out[strings.ToLower(ext)] = dialect.Bin
	}
	return out
}

// DefaultManifest returns the vic.toml written by `vic init`.
func DefaultManifest() string {
	return `# Vic project settings
[format]
tab_size = 4
insert_spaces = true

[dialect]
asm = [".vic"]
bin = [".vicbin"]
`
}
