package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/output"
	"github.com/dgnsrekt/hearme/internal/render"
	"github.com/dgnsrekt/hearme/internal/script"
)

var (
	renderFormat string
	voicesFile   string
	renderDocs   []string
	noPersist    bool

	renderCmd = &cobra.Command{
		Use:   "render [SCRIPT]",
		Short: "Render a speaker-tagged script to audio",
		Long: "\nRender reads a script (a JSON array of {speaker, text, pause_after}\n" +
			"segments) from a file or stdin, synthesizes it through the engine\n" +
			"fallback chain, and persists the artifact set. When every engine is\n" +
			"unavailable the script alone is persisted and the render reports\n" +
			"scriptOnly rather than failing.",
		Example: "hearme render script.json\ncat script.json | hearme render -",
		Args:    cobra.MaximumNArgs(1),
		RunE:    runRender,
	}
)

func init() {
	renderCmd.Flags().StringVarP(&renderFormat, "format", "f", "", "output audio format (default from config, \"wav\")")
	renderCmd.Flags().StringVar(&voicesFile, "voices", "", "JSON file mapping speaker labels to voice descriptors")
	renderCmd.Flags().StringArrayVar(&renderDocs, "doc", nil, "source document path recorded in the manifest (repeatable)")
	renderCmd.Flags().BoolVar(&noPersist, "no-persist", false, "print the render result without writing artifacts")
}

func runRender(cmd *cobra.Command, args []string) error {
	tb, err := newToolbox()
	if err != nil {
		return err
	}

	scr, err := readScript(args)
	if err != nil {
		return err
	}

	voices, err := readVoices(voicesFile)
	if err != nil {
		return err
	}

	result := tb.RenderAudio(cmd.Context(), scr, voices, renderFormat)
	if result.Status == render.StatusFailed {
		if err := printJSON(result); err != nil {
			return err
		}
		return fmt.Errorf("render failed: %s", result.Error)
	}

	if noPersist {
		return printJSON(result)
	}

	manifest, err := tb.PersistOutputs(result, result.Script, output.Metadata{Documents: renderDocs})
	if err != nil {
		return err
	}

	return printJSON(struct {
		render.Result
		Manifest *output.Manifest `json:"manifest"`
	}{result, manifest})
}

// readScript loads the script from the file argument, or stdin for "-" or
// no argument when stdin is piped.
func readScript(args []string) (script.Script, error) {
	var r io.Reader
	switch {
	case len(args) == 1 && args[0] != "-":
		f, err := os.Open(args[0])
		if err != nil {
			return nil, fmt.Errorf("unable to open script: %w", err)
		}
		defer f.Close() //nolint:errcheck
		r = f
	default:
		r = os.Stdin
	}
	return script.Parse(r)
}

func readVoices(path string) (map[string]engine.Voice, error) {
	if path == "" {
		return nil, nil
	}
	return render.LoadVoiceMap(path)
}
