package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vic/internal/dialect"
	"vic/internal/format"
	"vic/internal/project"
)

// settings are the effective formatter settings of one command run:
// defaults < vic.toml < flags.
type settings struct {
	Options    format.Options
	Dialect    dialect.Kind
	Extensions dialect.Extensions
	Manifest   string // path of the vic.toml in effect, if any
}

// addFormatFlags registers the flags that override vic.toml.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().Int("tab-size", 0, "spaces per indent level (default from vic.toml or 4)")
	cmd.Flags().Bool("use-tabs", false, "indent with a tab character instead of spaces")
	cmd.Flags().String("dialect", "auto", "dialect (auto|asm|bin)")
}

// resolveSettings loads vic.toml starting from startDir and applies the
// command's flags on top.
func resolveSettings(cmd *cobra.Command, startDir string) (settings, error) {
	s := settings{
		Options:    format.DefaultOptions(),
		Extensions: dialect.DefaultExtensions(),
	}

	manifest, ok, err := project.LoadManifest(startDir)
	if err != nil {
		return s, err
	}
	if ok {
		s.Manifest = manifest.Path
		if s.Options, err = manifest.Config.FormatOptions(s.Options); err != nil {
			return s, fmt.Errorf("%s: %w", manifest.Path, err)
		}
		s.Extensions = manifest.Config.Extensions(s.Extensions)
	}

	flags := cmd.Flags()
	if flags.Changed("tab-size") {
		n, err := flags.GetInt("tab-size")
		if err != nil {
			return s, err
		}
		s.Options.TabSize = n
		s.Options.InsertSpaces = true
	}
	if flags.Changed("use-tabs") {
		useTabs, err := flags.GetBool("use-tabs")
		if err != nil {
			return s, err
		}
		s.Options.InsertSpaces = !useTabs
	}
	dialectFlag, err := flags.GetString("dialect")
	if err != nil {
		return s, err
	}
	if s.Dialect, err = dialect.ParseKind(dialectFlag); err != nil {
		return s, err
	}

	if s.Dialect != dialect.Bin {
		if err := s.Options.Validate(); err != nil {
			return s, err
		}
	}
	return s, nil
}

// manifestStart picks the directory vic.toml lookup starts from: the first
// path argument, or the working directory.
func manifestStart(args []string) string {
	if len(args) == 0 || args[0] == "-" {
		return "."
	}
	info, err := os.Stat(args[0])
	if err != nil || info.IsDir() {
		return args[0]
	}
	return filepath.Dir(args[0])
}
