// Package dia integrates the Dia conversational TTS model: the only
// multi-speaker engine in the default chain, producing two-host dialogue
// from a tagged script.
package dia

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/script"
	"github.com/dgnsrekt/hearme/internal/wav"
)

// Config holds Dia invocation settings.
type Config struct {
	Binary string // dia executable, default "dia-tts"
}

// Engine shells out to the dia binary with an [S1]/[S2] tagged script.
type Engine struct {
	cfg Config
}

// New creates a Dia engine.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "dia-tts"
	}
	return &Engine{cfg: cfg}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "dia" }

// Probe implements engine.Engine.
func (e *Engine) Probe(context.Context) engine.Availability {
	if _, err := exec.LookPath(e.cfg.Binary); err != nil {
		return engine.AvailabilityMissing
	}
	return engine.AvailabilityInstalled
}

// Capabilities implements engine.Engine.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		MultiSpeaker:  true,
		MaxSpeakers:   2,
		NonverbalCues: true,
		Formats:       []string{"wav"},
	}
}

// Synthesize formats the script into Dia's native tag grammar and runs one
// generation pass over the whole conversation.
func (e *Engine) Synthesize(ctx context.Context, req engine.Request) (*engine.Audio, error) {
	out, err := engine.RunSubprocess(ctx, FormatScript(req.Script), e.cfg.Binary, "--output", "-")
	if err != nil {
		return nil, err
	}
	return &engine.Audio{Data: out, Format: "wav", Duration: wav.Duration(out)}, nil
}

// FormatScript renders a script in Dia's [S1]/[S2] tag grammar. Speakers
// map to tags in first-appearance order; a third or later speaker collapses
// onto [S2], matching the model's two-voice limit.
func FormatScript(s script.Script) string {
	tags := make(map[string]string, 2)
	count := 0

	parts := make([]string, 0, len(s))
	for _, seg := range s {
		tag, ok := tags[seg.Speaker]
		if !ok {
			count++
			n := count
			if n > 2 {
				n = 2
			}
			tag = fmt.Sprintf("S%d", n)
			tags[seg.Speaker] = tag
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", tag, seg.Text))
	}
	return strings.Join(parts, " ")
}
