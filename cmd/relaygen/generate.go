package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/tools/go/packages"

	"relaygen/internal/cliprint"
	"relaygen/internal/diag"
	"relaygen/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate [package pattern]",
	Short: "Discover handlers and write generated artifacts to disk",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runGenerate,
}

var checkCmd = &cobra.Command{
	Use:   "check [package pattern]",
	Short: "Discover handlers and report diagnostics without writing files",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	generateCmd.Flags().String("out", ".", "directory generated files are written to")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	result, genErr := runPipelineFor(cmd, args)
	if err := writeDiagnostics(cmd, result.Diagnostics); err != nil {
		return err
	}
	if critical, ok := genErr.(*pipeline.CriticalFault); ok {
		return critical
	}
	for name, src := range result.Files {
		if err := os.WriteFile(filepath.Join(out, name), []byte(src), 0o644); err != nil {
			return fmt.Errorf("relaygen: write %s: %w", name, err)
		}
	}
	if genErr != nil {
		return genErr
	}
	return nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	result, genErr := runPipelineFor(cmd, args)
	if err := writeDiagnostics(cmd, result.Diagnostics); err != nil {
		return err
	}
	return genErr
}

func runPipelineFor(cmd *cobra.Command, args []string) (pipeline.Result, error) {
	pattern := "."
	if len(args) == 1 {
		pattern = args[0]
	}

	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return pipeline.Result{}, err
	}
	opts, err := loadOptions(configPath)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("relaygen: load config: %w", err)
	}

	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
			packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports | packages.NeedDeps,
		Context: cmd.Context(),
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("relaygen: load package %q: %w", pattern, err)
	}
	if len(pkgs) == 0 {
		return pipeline.Result{}, fmt.Errorf("relaygen: no packages matched %q", pattern)
	}

	var files = make(map[string]string)
	var diags []diag.Diagnostic
	var firstErr error
	for _, pkg := range pkgs {
		result, runErr := pipeline.Run(cmd.Context(), pkg, opts, pipeline.NoFaults{})
		for name, src := range result.Files {
			files[name] = src
		}
		diags = append(diags, result.Diagnostics...)
		if runErr != nil && firstErr == nil {
			firstErr = runErr
		}
	}
	return pipeline.Result{Files: files, Diagnostics: diags}, firstErr
}

func writeDiagnostics(cmd *cobra.Command, diags []diag.Diagnostic) error {
	if len(diags) == 0 {
		return nil
	}
	colorMode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}
	if maxDiags > 0 && len(diags) > maxDiags {
		diags = diags[:maxDiags]
	}
	cliprint.Pretty(os.Stderr, diags, cliprint.Options{Color: resolveColor(colorMode)})
	return nil
}

func resolveColor(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return term.IsTerminal(int(os.Stderr.Fd()))
	}
}
