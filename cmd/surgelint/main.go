package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"surgelint/internal/version"
)

// errLintFailed marks a run that reported problems. main exits 1 without
// printing it.
var errLintFailed = errors.New("lint failed")

var rootCmd = &cobra.Command{
	Use:           "surgelint",
	Short:         "Linter for surge sources",
	Long:          `surgelint checks .sg files, applies safe fixes and validates workspace export surfaces`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// main registers subcommands and persistent flags and runs the root command.
// Any error exits with status 1.
func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(lintCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	registerPersistentFlags(rootCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errLintFailed) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// registerPersistentFlags adds the global flags shared by every subcommand.
func registerPersistentFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.String("log-level", "warn", "log level (off|trace|debug|info|warn|error)")
	pf.Bool("log-json", false, "emit logs as JSON")
	pf.Int("jobs", 0, "number of files linted concurrently (0 = GOMAXPROCS)")
	pf.String("cache-dir", "", "incremental cache directory (default: user cache dir)")
	pf.Bool("no-cache", false, "disable the incremental cache")
	pf.String("reporter", "", "report format (pretty|compact|json)")
	pf.Bool("timings", false, "show timing information")
	pf.String("ui", "off", "progress UI (auto|on|off)")

	pf.String("trace", "", "trace output path (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|phase|detail|debug)")
	pf.String("trace-format", "auto", "trace format (auto|text|ndjson)")

	pf.String("cpu-profile", "", "write CPU profile to file")
	pf.String("mem-profile", "", "write heap profile to file")
	pf.String("runtime-trace", "", "write Go runtime trace to file")
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// resolveColor maps the --color value onto a decision for output f.
func resolveColor(mode string, f *os.File) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", "auto":
		return isTerminal(f) && os.Getenv("NO_COLOR") == "", nil
	case "on", "always":
		return true, nil
	case "off", "never":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
}
