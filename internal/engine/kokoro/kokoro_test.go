package kokoro

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/hearme/internal/engine"
)

// TestNewDefaults tests binary and voice defaulting.
func TestNewDefaults(t *testing.T) {
	e := New(Config{})
	if e.cfg.Binary != "kokoro-tts" || e.cfg.DefaultVoice != "af_heart" {
		t.Errorf("defaults = %+v, want kokoro-tts with af_heart", e.cfg)
	}
}

// TestProbeMissingBinary tests that a nonexistent binary reads as missing.
func TestProbeMissingBinary(t *testing.T) {
	e := New(Config{Binary: filepath.Join(t.TempDir(), "kokoro-tts")})
	if a := e.Probe(context.Background()); a != engine.AvailabilityMissing {
		t.Errorf("Probe() = %v, want missing", a)
	}
}

// TestVoiceFor tests per-speaker voice resolution with fallback.
func TestVoiceFor(t *testing.T) {
	e := New(Config{DefaultVoice: "af_heart"})
	req := engine.Request{Voices: map[string]engine.Voice{
		"host": {ID: "am_adam"},
		"anon": {},
	}}

	if got := e.voiceFor(req, "host"); got != "am_adam" {
		t.Errorf("voiceFor(host) = %q, want am_adam", got)
	}
	if got := e.voiceFor(req, "anon"); got != "af_heart" {
		t.Errorf("voiceFor(empty id) = %q, want default", got)
	}
	if got := e.voiceFor(req, "stranger"); got != "af_heart" {
		t.Errorf("voiceFor(unmapped) = %q, want default", got)
	}
}
