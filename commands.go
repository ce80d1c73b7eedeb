package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/hearme/internal/tool"
)

var (
	showAllMarkdown bool
	lengthMode      string

	scanCmd = &cobra.Command{
		Use:   "scan [DIR]",
		Short: "Discover documentation files in a workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			tb, err := newToolbox()
			if err != nil {
				return err
			}
			result, err := tb.ScanWorkspace(rootArg(args), showAllMarkdown)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [DIR]",
		Short: "Scan and classify documentation files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := newToolbox()
			if err != nil {
				return err
			}
			analysis, err := analyzeWorkspace(cmd, tb, rootArg(args))
			if err != nil {
				return err
			}
			return printJSON(analysis)
		},
	}

	planCmd = &cobra.Command{
		Use:   "plan [DIR]",
		Short: "Propose narration order and speakers for a workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := newToolbox()
			if err != nil {
				return err
			}
			analysis, err := analyzeWorkspace(cmd, tb, rootArg(args))
			if err != nil {
				return err
			}
			return printJSON(tb.ProposeAudioPlan(cmd.Context(), analysis.Documents))
		},
	}

	contextCmd = &cobra.Command{
		Use:   "context [DIR]",
		Short: "Prepare narration-ready context from a workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tb, err := newToolbox()
			if err != nil {
				return err
			}
			mode, err := tb.LengthMode(lengthMode)
			if err != nil {
				return err
			}
			analysis, err := analyzeWorkspace(cmd, tb, rootArg(args))
			if err != nil {
				return err
			}
			return printJSON(tb.PrepareAudioContext(analysis.Documents, mode))
		},
	}

	enginesCmd = &cobra.Command{
		Use:   "engines",
		Short: "List registered TTS engines and their availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tb, err := newToolbox()
			if err != nil {
				return err
			}
			return printJSON(tb.Registry().Descriptors(cmd.Context()))
		},
	}
)

func init() {
	scanCmd.Flags().BoolVarP(&showAllMarkdown, "all", "a", false, "include every markdown file, not just documentation locations")
	analyzeCmd.Flags().BoolVarP(&showAllMarkdown, "all", "a", false, "include every markdown file, not just documentation locations")
	planCmd.Flags().BoolVarP(&showAllMarkdown, "all", "a", false, "include every markdown file, not just documentation locations")
	contextCmd.Flags().BoolVarP(&showAllMarkdown, "all", "a", false, "include every markdown file, not just documentation locations")
	contextCmd.Flags().StringVarP(&lengthMode, "length", "l", "", "length mode: overview, balanced, thorough or agent-decided")
}

func rootArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return "."
}

// analyzeWorkspace chains scan and classification, surfacing scan warnings
// on stderr so stdout stays pure JSON.
func analyzeWorkspace(cmd *cobra.Command, tb *tool.Toolbox, root string) (tool.Analysis, error) {
	scanned, err := tb.ScanWorkspace(root, showAllMarkdown)
	if err != nil {
		return tool.Analysis{}, err
	}
	for _, w := range scanned.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", w)
	}

	paths := make([]string, len(scanned.Files))
	for i, f := range scanned.Files {
		paths[i] = f.Path
	}
	analysis, err := tb.AnalyzeDocuments(cmd.Context(), scanned.Root, paths)
	if err != nil {
		return tool.Analysis{}, err
	}
	analysis.Warnings = append(scanned.Warnings, analysis.Warnings...)
	return analysis, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
