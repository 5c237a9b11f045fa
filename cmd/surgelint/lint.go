package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"surgelint/internal/cache"
	"surgelint/internal/config"
	"surgelint/internal/diagfmt"
	"surgelint/internal/driver"
	"surgelint/internal/lint"
	"surgelint/internal/logging"
)

var lintCmd = &cobra.Command{
	Use:   "lint [files...]",
	Short: "Lint surge sources",
	Long: `Lint .sg files and directories. Without arguments the files come from
[lint.files] of the nearest surgelint.toml, or from the current directory.
Pass "-" to lint standard input.`,
	RunE: runLint,
}

func init() {
	registerLintFlags(lintCmd)
}

func registerLintFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("fix", false, "apply safe fixes and write files back")
	cmd.Flags().Bool("json", false, "shortcut for --reporter=json")
	cmd.Flags().Bool("compact", false, "shortcut for --reporter=compact")
	cmd.Flags().StringSlice("rules-tags", nil, "rule tags to enable (empty value disables tag defaults)")
	cmd.Flags().StringSlice("rules-include", nil, "rule codes to enable in addition to tags")
	cmd.Flags().StringSlice("rules-exclude", nil, "rule codes to disable")
	cmd.Flags().StringSlice("ignore", nil, "files or globs to skip")
	cmd.Flags().String("config", "", "path to surgelint.toml")
	cmd.Flags().Bool("no-config", false, "do not look for surgelint.toml")
}

func readLintFlags(cmd *cobra.Command, args []string) (config.LintFlags, error) {
	flags := config.LintFlags{Files: args}
	var err error
	if flags.Fix, err = cmd.Flags().GetBool("fix"); err != nil {
		return flags, fmt.Errorf("failed to get fix flag: %w", err)
	}
	if flags.Config, err = cmd.Flags().GetString("config"); err != nil {
		return flags, fmt.Errorf("failed to get config flag: %w", err)
	}
	if flags.NoConfig, err = cmd.Flags().GetBool("no-config"); err != nil {
		return flags, fmt.Errorf("failed to get no-config flag: %w", err)
	}
	lists := []struct {
		name string
		dst  *[]string
	}{
		{"rules-include", &flags.Include},
		{"rules-exclude", &flags.Exclude},
		{"ignore", &flags.Ignore},
	}
	for _, l := range lists {
		values, err := cmd.Flags().GetStringSlice(l.name)
		if err != nil {
			return flags, fmt.Errorf("failed to get %s flag: %w", l.name, err)
		}
		*l.dst = config.SplitList(values)
	}
	// --rules-tags="" отключает теги по умолчанию
	if cmd.Flags().Changed("rules-tags") {
		values, err := cmd.Flags().GetStringSlice("rules-tags")
		if err != nil {
			return flags, fmt.Errorf("failed to get rules-tags flag: %w", err)
		}
		flags.Tags = config.SplitList(values)
		if flags.Tags == nil {
			flags.Tags = []string{}
		}
	}
	return flags, nil
}

// reporterShortcut applies --json and --compact on top of --reporter.
func reporterShortcut(cmd *cobra.Command, settings *config.Settings) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	asCompact, err := cmd.Flags().GetBool("compact")
	if err != nil {
		return fmt.Errorf("failed to get compact flag: %w", err)
	}
	switch {
	case asJSON && asCompact:
		return errors.New("--json and --compact are mutually exclusive")
	case asJSON:
		settings.Reporter = diagfmt.KindJSON.String()
	case asCompact:
		settings.Reporter = diagfmt.KindCompact.String()
	}
	return nil
}

func runLint(cmd *cobra.Command, args []string) error {
	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	stopTracing, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer stopTracing()

	v := config.NewViper()
	if err := config.BindFlags(v, cmd); err != nil {
		return err
	}
	settings, err := config.LoadSettings(v)
	if err != nil {
		return err
	}
	if err := reporterShortcut(cmd, &settings); err != nil {
		return err
	}
	flags, err := readLintFlags(cmd, args)
	if err != nil {
		return err
	}

	useColor, err := resolveColor(settings.Color, os.Stderr)
	if err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: settings.LogLevel, JSON: settings.LogJSON, Color: useColor})
	if err != nil {
		return err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	opts, err := config.ResolveLintOptions(flags, settings, cwd)
	if err != nil {
		return err
	}
	configured, err := lint.ConfigureRulesNonEmpty(opts.Rules, opts.Shape)
	if err != nil {
		return err
	}
	linter := lint.New(configured.Rules)
	logger.Debug("rules configured", logger.Args("rules", len(configured.Rules), "surface", configured.Surface))

	// JSON идёт в stdout, чтобы его можно было перенаправить
	out := cmd.ErrOrStderr()
	if opts.Reporter == diagfmt.KindJSON {
		out = cmd.OutOrStdout()
		useColor = false
	}

	runOpts := driver.Options{
		Analyzer:  linter,
		Fix:       opts.Fix,
		Jobs:      settings.Jobs,
		Workspace: opts.Workspace,
		Surface:   configured.Surface,
		Logger:    logger,
	}

	if opts.Stdin {
		runOpts.Reporter = diagfmt.New(opts.Reporter, out, diagfmt.Options{BaseDir: cwd, Color: useColor})
		outcome, err := driver.LintStdin(cmd.Context(), cmd.InOrStdin(), cwd, runOpts)
		if err != nil {
			return err
		}
		return finishLint(cmd, outcome)
	}

	files, err := driver.CollectFiles(opts.Patterns)
	if err != nil {
		return err
	}
	runOpts.Cache = openCache(settings, configured, files, logger)

	uiValue, err := cmd.Root().PersistentFlags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiValue)
	if err != nil {
		return err
	}

	var outcome driver.Outcome
	if opts.Reporter != diagfmt.KindJSON && shouldUseTUI(mode) {
		// отчёт печатается после того, как UI освободит терминал
		var buf bytes.Buffer
		runOpts.Reporter = diagfmt.New(opts.Reporter, &buf, diagfmt.Options{BaseDir: cwd, Color: useColor})
		outcome, err = runLintWithUI(cmd.Context(), "surgelint", files, runOpts)
		if _, copyErr := io.Copy(out, &buf); copyErr != nil && err == nil {
			err = copyErr
		}
	} else {
		runOpts.Reporter = diagfmt.New(opts.Reporter, out, diagfmt.Options{BaseDir: cwd, Color: useColor})
		outcome, err = driver.Run(cmd.Context(), files, runOpts)
	}
	if err != nil {
		return err
	}
	return finishLint(cmd, outcome)
}

// openCache returns the incremental cache for this run, or cache.Disabled
// when the cache directory is unusable.
func openCache(settings config.Settings, configured lint.ConfiguredRules, files []string, logger *pterm.Logger) cache.Gateway {
	if settings.NoCache {
		return cache.Disabled
	}
	dir := settings.CacheDir
	if dir == "" {
		var err error
		if dir, err = cache.DefaultDir(); err != nil {
			logger.Warn("incremental cache disabled", logger.Args("error", err))
			return cache.Disabled
		}
	}
	store, err := cache.OpenDiskStore(dir)
	if err != nil {
		logger.Warn("incremental cache disabled", logger.Args("dir", dir, "error", err))
		return cache.Disabled
	}
	return cache.New(store, configured.IncrementalCacheState(), files, cache.WithLogger(logger))
}

func finishLint(cmd *cobra.Command, outcome driver.Outcome) error {
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if timings {
		printTimings(cmd.ErrOrStderr(), outcome)
	}
	if !outcome.Success {
		return errLintFailed
	}
	return nil
}
