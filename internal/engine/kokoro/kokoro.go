// Package kokoro integrates the Kokoro TTS CLI: good quality CPU-friendly
// single-speaker synthesis, the quality tier of the default chain.
package kokoro

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/wav"
)

// Config holds Kokoro invocation settings.
type Config struct {
	Binary       string // kokoro executable, default "kokoro-tts"
	DefaultVoice string // voice id used when the map resolves nothing
}

// Engine shells out to the kokoro binary per segment and concatenates.
type Engine struct {
	cfg Config
}

// New creates a Kokoro engine.
func New(cfg Config) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "kokoro-tts"
	}
	if cfg.DefaultVoice == "" {
		cfg.DefaultVoice = "af_heart"
	}
	return &Engine{cfg: cfg}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "kokoro" }

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
		MaxSpeakers: 1,
		Formats:     []string{"wav", "mp3"},
	}
}

// Synthesize runs kokoro per segment and concatenates the output, inserting
// the script's pause gaps as silence. Non-wav formats cannot be spliced, so
// they run as a single pass over the joined text instead.
func (e *Engine) Synthesize(ctx context.Context, req engine.Request) (*engine.Audio, error) {
	format := req.Format
	if format == "" {
		format = "wav"
	}
	if format != "wav" {
		return e.synthesizeJoined(ctx, req, format)
	}

	streams := make([][]byte, 0, len(req.Script)*2)
	for _, seg := range req.Script {
		out, err := engine.RunSubprocess(ctx, seg.Text, e.cfg.Binary,
			"--voice", e.voiceFor(req, seg.Speaker), "--format", format, "--output", "-")
		if err != nil {
			return nil, err
		}
		streams = append(streams, out)

		if seg.PauseAfter > 0 {
			_, rate, err := wav.Data(out)
			if err != nil {
				return nil, fmt.Errorf("%w: kokoro emitted unparseable wav: %v", engine.ErrSynthesisFailed, err)
			}
			pause := time.Duration(seg.PauseAfter * float64(time.Second))
			streams = append(streams, wav.Silence(pause, rate))
		}
	}

	data, err := wav.Concat(streams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", engine.ErrSynthesisFailed, err)
	}
	return &engine.Audio{Data: data, Format: format, Duration: wav.Duration(data)}, nil
}

func (e *Engine) synthesizeJoined(ctx context.Context, req engine.Request, format string) (*engine.Audio, error) {
	speaker := ""
	var text strings.Builder
	for i, seg := range req.Script {
		if i > 0 {
			text.WriteString("\n")
		}
		if speaker == "" {
			speaker = seg.Speaker
		}
		text.WriteString(seg.Text)
	}

	out, err := engine.RunSubprocess(ctx, text.String(), e.cfg.Binary,
		"--voice", e.voiceFor(req, speaker), "--format", format, "--output", "-")
	if err != nil {
		return nil, err
	}
	return &engine.Audio{Data: out, Format: format}, nil
}

func (e *Engine) voiceFor(req engine.Request, speaker string) string {
	if v, ok := req.Voices[speaker]; ok && v.ID != "" {
		return v.ID
	}
	return e.cfg.DefaultVoice
}
