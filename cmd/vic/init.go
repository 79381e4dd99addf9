package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"vic/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a vic.toml with default formatter settings",
	Long: `Initialize a Vic project by writing vic.toml with the default [format]
and [dialect] settings. If [path] is omitted, initializes the current
directory. A non-existing path is created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

// runInit writes vic.toml into the target directory, creating the directory
// when needed. It refuses to overwrite an existing manifest.
func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(project.DefaultManifest()), 0o600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Initialized vic project in %s\n", rel)
	fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", project.ManifestName)
	return nil
}
