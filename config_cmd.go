package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/charmbracelet/x/editor"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
)

const defaultConfig = `# hearme configuration

audio:
  # preferred engine: dia, kokoro, piper or mock
  engine: "dia"
  # first fallback when the preferred engine is unavailable
  fallback_engine: "kokoro"
  # "auto" assigns voices from a fixed pool by speaker appearance order
  voices: "auto"
  # output audio format
  format: "wav"

defaults:
  # narration length: overview, balanced, thorough or agent-decided
  length: "balanced"

output:
  # artifact directory, relative to the workspace
  dir: ".hear-me"

privacy:
  # all synthesis is local; nothing opts into network engines yet
  allow_network: false

engines:
  # per-attempt synthesis timeout
  synthesis_timeout: "120s"
  # transient retries per engine
  retry_budget: 1

  piper:
    binary: "piper"
    # model: "/path/to/model.onnx"

  kokoro:
    binary: "kokoro-tts"
    voice: "af_heart"

  dia:
    binary: "dia-tts"

scanner:
  max_files: 100
  max_file_bytes: 1048576
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Edit the hearme config file",
	Long:    "\nEdit the hearme config file. We'll use EDITOR to determine which editor to use. If the config file doesn't exist, it will be created.",
	Example: "hearme config\nhearme config --config path/to/hearme.yml",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}

		c, err := editor.Cmd("hearme", configFile)
		if err != nil {
			return fmt.Errorf("unable to set config file: %w", err)
		}
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		if err := c.Run(); err != nil {
			return fmt.Errorf("unable to run command: %w", err)
		}

		fmt.Println("Wrote config file to:", configFile)
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		scope := gap.NewScope(gap.User, "hearme")
		dirs, err := scope.ConfigDirs()
		if err != nil || len(dirs) == 0 {
			return fmt.Errorf("could not find configuration directory: %w", err)
		}
		configFile = filepath.Join(dirs[0], "hearme.yml")
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
