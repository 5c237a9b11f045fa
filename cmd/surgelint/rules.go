package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"surgelint/internal/diag"
	"surgelint/internal/lint"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [code]",
	Short: "List built-in lint rules",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().Bool("json", false, "print rules as JSON")
}

func runRules(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	useColor, err := resolveColor(colorMode, os.Stdout)
	if err != nil {
		return err
	}

	rules := lint.AllRules()
	if len(args) == 1 {
		r, ok := lint.RuleByCode(diag.Code(args[0]))
		if !ok {
			return fmt.Errorf("unknown rule %q", args[0])
		}
		rules = []lint.Rule{r}
	}

	infos := make([]lint.RuleInfo, 0, len(rules))
	for _, r := range rules {
		infos = append(infos, lint.RuleInfo{Code: r.Code(), Tags: r.Tags(), Docs: r.Docs()})
	}
	if asJSON {
		return renderRulesJSON(cmd.OutOrStdout(), infos)
	}
	renderRulesPretty(cmd.OutOrStdout(), infos, len(args) == 1, useColor)
	return nil
}

func renderRulesJSON(out io.Writer, infos []lint.RuleInfo) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(infos)
}

// renderRulesPretty prints one line per rule, or the full docs when full is set.
func renderRulesPretty(out io.Writer, infos []lint.RuleInfo, full, useColor bool) {
	codeColor := color.New(color.FgCyan, color.Bold)
	tagColor := color.New(color.FgHiBlack)
	if !useColor {
		codeColor.DisableColor()
		tagColor.DisableColor()
	}

	width := 0
	for _, info := range infos {
		width = max(width, len(info.Code))
	}
	for _, info := range infos {
		docs := strings.TrimSpace(info.Docs)
		if full {
			fmt.Fprintf(out, "%s %s\n\n%s\n", codeColor.Sprint(info.Code), tagColor.Sprintf("[%s]", strings.Join(info.Tags, ", ")), docs)
			continue
		}
		summary, _, _ := strings.Cut(docs, "\n")
		pad := strings.Repeat(" ", width-len(info.Code))
		fmt.Fprintf(out, "%s%s  %s %s\n", codeColor.Sprint(info.Code), pad, summary, tagColor.Sprintf("[%s]", strings.Join(info.Tags, ", ")))
	}
}
