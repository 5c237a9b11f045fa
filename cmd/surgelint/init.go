package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"surgelint/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a surgelint.toml",
	Long: `Create a surgelint.toml with the recommended rules in [path] or in the
current directory. With --package the manifest also declares a package
named after the directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().Bool("package", false, "declare a [package] section")
}

const manifestTemplate = `[lint]
tags = [%s]
report = "pretty"

[lint.files]
include = ["."]
exclude = []
`

const packageTemplate = `[package]
name = %q
exports = []

`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	asPackage, err := cmd.Flags().GetBool("package")
	if err != nil {
		return fmt.Errorf("failed to get package flag: %w", err)
	}

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
		return fmt.Errorf("already initialized: %s exists", manifestPath)
	}

	tags := `"recommended"`
	content := ""
	if asPackage {
		name := filepath.Base(target)
		if !project.IsValidModuleIdent(name) {
			return fmt.Errorf("directory name %q is not a valid package name", name)
		}
		tags += `, "package"`
		content = fmt.Sprintf(packageTemplate, name)
	}
	content += fmt.Sprintf(manifestTemplate, tags)
	if err := os.WriteFile(manifestPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	// шаблон обязан читаться тем же парсером
	if _, err := project.LoadManifest(manifestPath); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", manifestPath)
	return nil
}
