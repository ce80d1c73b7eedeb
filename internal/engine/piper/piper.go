// Package piper integrates the Piper TTS binary: lightweight ONNX
// synthesis, single speaker, the last real engine in the default chain.
package piper

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	homedir "github.com/mitchellh/go-homedir"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/wav"
)

// Config holds Piper invocation settings.
type Config struct {
	Binary string // piper executable, default "piper"
	Model  string // path to a .onnx voice model
}

// Engine shells out to the piper binary per render.
type Engine struct {
	cfg Config
}

// New creates a Piper engine.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	return &Engine{cfg: cfg}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "piper" }

// Probe checks for the binary and the configured model. A found binary with
// a missing model is degraded: piper can still fall back to its bundled
// default voice.
func (e *Engine) Probe(context.Context) engine.Availability {
	if _, err := exec.LookPath(e.cfg.Binary); err != nil {
		return engine.AvailabilityMissing
	}
	if e.cfg.Model == "" {
		return engine.AvailabilityDegraded
	}
	model, err := homedir.Expand(e.cfg.Model)
	if err != nil {
		return engine.AvailabilityDegraded
	}
	if _, err := os.Stat(model); err != nil {
		log.Debug("piper model not found", "model", model)
		return engine.AvailabilityDegraded
	}
	return engine.AvailabilityInstalled
}

// Capabilities implements engine.Engine.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		MaxSpeakers: 1,
		Formats:     []string{"wav"},
	}
}

// Synthesize runs piper once over the joined script text. The orchestrator
// has already merged the script to a single speaker before calling here.
func (e *Engine) Synthesize(ctx context.Context, req engine.Request) (*engine.Audio, error) {
	args := []string{"--output-file", "-"}
	if e.cfg.Model != "" {
		if model, err := homedir.Expand(e.cfg.Model); err == nil {
			args = append(args, "--model", model)
		}
	}

	var text strings.Builder
	for i, seg := range req.Script {
		if i > 0 {
			text.WriteString("\n")
		}
		text.WriteString(seg.Text)
	}

	out, err := engine.RunSubprocess(ctx, text.String(), e.cfg.Binary, args...)
	if err != nil {
		return nil, err
	}
	return &engine.Audio{Data: out, Format: "wav", Duration: wav.Duration(out)}, nil
}
