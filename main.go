// Package main provides the entry point for the hearme CLI.
package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/dgnsrekt/hearme/internal/config"
	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/engine/dia"
	"github.com/dgnsrekt/hearme/internal/engine/kokoro"
	"github.com/dgnsrekt/hearme/internal/engine/mock"
	"github.com/dgnsrekt/hearme/internal/engine/piper"
	"github.com/dgnsrekt/hearme/internal/tool"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	debug      bool
	outputDir  string

	rootCmd = &cobra.Command{
		Use:   "hearme",
		Short: "Turn project documentation into listenable audio",
		Long: "\nhearme scans a workspace for documentation, classifies it, proposes a\n" +
			"narration plan, and renders a speaker-tagged script to audio through a\n" +
			"chain of local TTS engines.",
		SilenceErrors: false,
		SilenceUsage:  true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if debug || os.Getenv("HEARME_DEBUG") != "" {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

// newToolbox loads configuration and builds the engine registry every
// command shares. Flag overrides are applied after the config file and
// environment so they always win.
func newToolbox() (*tool.Toolbox, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	if outputDir != "" {
		cfg.Output.Dir = outputDir
	}

	reg := engine.NewRegistry()
	reg.Register(dia.New(dia.Config{
		Binary: cfg.Engines.Dia.Binary,
	}), engine.TierConversational)
	reg.Register(kokoro.New(kokoro.Config{
		Binary:       cfg.Engines.Kokoro.Binary,
		DefaultVoice: cfg.Engines.Kokoro.Voice,
	}), engine.TierQuality)
	reg.Register(piper.New(piper.Config{
		Binary: cfg.Engines.Piper.Binary,
		Model:  cfg.Engines.Piper.Model,
	}), engine.TierLightweight)
	reg.Register(mock.New(), engine.TierMock)

	return tool.New(cfg, reg), nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: hearme.yml in the workspace or user config dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output directory for rendered artifacts (default \".hear-me\")")

	rootCmd.AddCommand(scanCmd, analyzeCmd, planCmd, contextCmd, renderCmd, enginesCmd, configCmd)
}
