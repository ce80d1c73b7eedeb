package render

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/engine/mock"
	"github.com/dgnsrekt/hearme/internal/script"
	"github.com/dgnsrekt/hearme/internal/wav"
)

// stubEngine lets tests shape capabilities and behavior per case.
type stubEngine struct {
	name  string
	avail engine.Availability
	caps  engine.Capabilities
	syn   func(engine.Request) (*engine.Audio, error)
	calls int
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Probe(context.Context) engine.Availability { return s.avail }

func (s *stubEngine) Capabilities() engine.Capabilities { return s.caps }

func (s *stubEngine) Synthesize(_ context.Context, req engine.Request) (*engine.Audio, error) {
	s.calls++
	if s.syn != nil {
		return s.syn(req)
	}
	return &engine.Audio{Data: wav.Silence(time.Second, 24000), Format: "wav", Duration: time.Second}, nil
}

func dialogue() script.Script {
	return script.Script{
		{Speaker: "host", Text: "Welcome to the project tour."},
		{Speaker: "expert", Text: "Happy to walk through it."},
	}
}

func setup(engines ...engine.Engine) (*Orchestrator, []engine.Engine) {
	reg := engine.NewRegistry()
	for i, e := range engines {
		reg.Register(e, engine.Tier(i))
	}
	return NewOrchestrator(reg), engines
}

// TestRenderSuccess tests the happy path through a capable engine.
func TestRenderSuccess(t *testing.T) {
	orch, chain := setup(mock.New())

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{})

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want success (warnings: %v)", result.Status, result.Warnings)
	}
	if result.Engine != "mock" {
		t.Errorf("Engine = %q, want mock", result.Engine)
	}
	if len(result.Audio) == 0 {
		t.Error("no audio returned")
	}
	if result.Format != "wav" {
		t.Errorf("Format = %q, want wav", result.Format)
	}
	if len(result.Voices) != 2 {
		t.Errorf("Voices = %v, want auto assignment for both speakers", result.Voices)
	}
}

// TestRenderEmptyScript tests validation of an empty script.
func TestRenderEmptyScript(t *testing.T) {
	orch, chain := setup(mock.New())

	result := orch.Render(context.Background(), script.Script{{Speaker: "a", Text: "   "}}, nil, true, chain, Options{})

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", result.Status)
	}
	if !strings.Contains(result.Error, "empty") {
		t.Errorf("Error = %q, want empty-script validation", result.Error)
	}
}

// TestRenderMissingVoiceMapping tests validation of explicit voice maps.
func TestRenderMissingVoiceMapping(t *testing.T) {
	orch, chain := setup(mock.New())
	voices := map[string]engine.Voice{"host": {ID: "af_heart"}}

	result := orch.Render(context.Background(), dialogue(), voices, false, chain, Options{})

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want failed", result.Status)
	}
	if !strings.Contains(result.Error, "expert") {
		t.Errorf("Error = %q, want the unmapped speaker named", result.Error)
	}
}

// TestRenderSpeakerDowngrade tests the merge onto a single narrator when
// only a single-speaker engine is usable, reported as degraded.
func TestRenderSpeakerDowngrade(t *testing.T) {
	var got engine.Request
	single := &stubEngine{
		name:  "piper",
		avail: engine.AvailabilityInstalled,
		caps:  engine.Capabilities{MaxSpeakers: 1, Formats: []string{"wav"}},
		syn: func(req engine.Request) (*engine.Audio, error) {
			got = req
			return &engine.Audio{Data: wav.Silence(time.Second, 22050), Format: "wav"}, nil
		},
	}
	orch, chain := setup(single)

	scr := dialogue()
	result := orch.Render(context.Background(), scr, nil, true, chain, Options{})

	if result.Status != StatusDegraded {
		t.Fatalf("Status = %s, want degraded (warnings: %v)", result.Status, result.Warnings)
	}
	if len(got.Script) != len(scr) {
		t.Fatalf("engine saw %d segments, want %d", len(got.Script), len(scr))
	}
	for i, seg := range got.Script {
		if seg.Speaker != "narrator" {
			t.Errorf("segment %d speaker = %q, want narrator", i, seg.Speaker)
		}
		if seg.Text != scr[i].Text {
			t.Errorf("segment %d text changed: %q", i, seg.Text)
		}
	}
	if len(result.Warnings) == 0 {
		t.Error("no downgrade warning recorded")
	}
}

// TestRenderFormatSubstitution tests falling back to a supported format.
func TestRenderFormatSubstitution(t *testing.T) {
	single := &stubEngine{
		name:  "kokoro",
		avail: engine.AvailabilityInstalled,
		caps:  engine.Capabilities{MaxSpeakers: 1, Formats: []string{"wav"}},
	}
	orch, chain := setup(single)
	scr := script.Script{{Speaker: "narrator", Text: "Hello."}}

	result := orch.Render(context.Background(), scr, nil, true, chain, Options{Format: "mp3"})

	if result.Status != StatusDegraded {
		t.Fatalf("Status = %s, want degraded", result.Status)
	}
	if result.Format != "wav" {
		t.Errorf("Format = %q, want substituted wav", result.Format)
	}
}

// TestRenderFallbackChain tests that a failing engine hands off to the next
// and success stops the chain.
func TestRenderFallbackChain(t *testing.T) {
	failing := mock.New()
	failing.SetFailure(engine.ErrResourceExhausted, -1)
	backup := &stubEngine{
		name:  "backup",
		avail: engine.AvailabilityInstalled,
		caps:  engine.Capabilities{MaxSpeakers: 10, Formats: []string{"wav"}},
	}
	orch, chain := setup(failing, backup)

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{})

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want success via backup", result.Status)
	}
	if result.Engine != "backup" {
		t.Errorf("Engine = %q, want backup", result.Engine)
	}
	if len(result.Warnings) == 0 {
		t.Error("no warning recorded for the failed engine")
	}
}

// TestRenderTransientRetry tests exactly one retry for transient failures.
func TestRenderTransientRetry(t *testing.T) {
	flaky := mock.New()
	flaky.SetFailure(engine.ErrSynthesisTimeout, 1)
	orch, chain := setup(flaky)

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{RetryBudget: 1})

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want success after retry", result.Status)
	}
	if got := flaky.Calls(); got != 2 {
		t.Errorf("engine called %d times, want 2", got)
	}
}

// TestRenderNoRetryWithoutBudget tests that a zero budget disables retries.
func TestRenderNoRetryWithoutBudget(t *testing.T) {
	flaky := mock.New()
	flaky.SetFailure(engine.ErrSynthesisTimeout, 1)
	orch, chain := setup(flaky)

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{RetryBudget: 0})

	if result.Status != StatusScriptOnly {
		t.Fatalf("Status = %s, want scriptOnly", result.Status)
	}
	if got := flaky.Calls(); got != 1 {
		t.Errorf("engine called %d times, want 1", got)
	}
}

// TestRenderScriptOnly tests total chain exhaustion: the script survives
// and every skip is explained.
func TestRenderScriptOnly(t *testing.T) {
	missing := mock.New()
	missing.SetAvailability(engine.AvailabilityMissing)
	orch, chain := setup(missing)

	scr := dialogue()
	result := orch.Render(context.Background(), scr, nil, true, chain, Options{})

	if result.Status != StatusScriptOnly {
		t.Fatalf("Status = %s, want scriptOnly", result.Status)
	}
	if len(result.Script) != len(scr) {
		t.Errorf("script not preserved: %d segments, want %d", len(result.Script), len(scr))
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "unavailable") {
		t.Errorf("Warnings = %v, want unavailable skip note", result.Warnings)
	}
	if missing.Calls() != 0 {
		t.Error("unavailable engine was invoked")
	}
}

// TestRenderPanicContained tests that an engine panic is treated as a
// failure, not a crash.
func TestRenderPanicContained(t *testing.T) {
	panicky := &stubEngine{
		name:  "panicky",
		avail: engine.AvailabilityInstalled,
		caps:  engine.Capabilities{MaxSpeakers: 10, Formats: []string{"wav"}},
		syn:   func(engine.Request) (*engine.Audio, error) { panic("model exploded") },
	}
	orch, chain := setup(panicky)

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{})

	if result.Status != StatusScriptOnly {
		t.Fatalf("Status = %s, want scriptOnly after contained panic", result.Status)
	}
}

// TestRenderEmptyAudioRejected tests that an engine returning no bytes does
// not count as success.
func TestRenderEmptyAudioRejected(t *testing.T) {
	hollow := &stubEngine{
		name:  "hollow",
		avail: engine.AvailabilityInstalled,
		caps:  engine.Capabilities{MaxSpeakers: 10, Formats: []string{"wav"}},
		syn:   func(engine.Request) (*engine.Audio, error) { return &engine.Audio{}, nil },
	}
	orch, chain := setup(hollow)

	result := orch.Render(context.Background(), dialogue(), nil, true, chain, Options{})

	if result.Status != StatusScriptOnly {
		t.Fatalf("Status = %s, want scriptOnly", result.Status)
	}
}

// TestAutoAssignDeterministic tests stable pool assignment by appearance
// order.
func TestAutoAssignDeterministic(t *testing.T) {
	scr := dialogue()

	first := AutoAssign(scr)
	for i := 0; i < 3; i++ {
		again := AutoAssign(scr)
		for speaker, v := range first {
			if again[speaker] != v {
				t.Fatalf("assignment for %q changed between runs", speaker)
			}
		}
	}

	if first["host"] == first["expert"] {
		t.Error("adjacent speakers share a voice")
	}
	if first["host"].Gender == first["expert"].Gender {
		t.Error("adjacent speakers share a gender, want alternation")
	}
}

// TestLoadVoiceMap tests reading a speaker-to-voice file and the error
// paths for missing and malformed files.
func TestLoadVoiceMap(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "voices.json")
	if err := os.WriteFile(good, []byte(`{"host": {"voice_id": "am_adam", "gender": "male"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	voices, err := LoadVoiceMap(good)
	if err != nil {
		t.Fatalf("LoadVoiceMap() error = %v", err)
	}
	if voices["host"].ID != "am_adam" || voices["host"].Gender != "male" {
		t.Errorf("LoadVoiceMap() = %+v, want am_adam for host", voices["host"])
	}

	if _, err := LoadVoiceMap(filepath.Join(dir, "nope.json")); err == nil {
		t.Error("LoadVoiceMap() accepted a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadVoiceMap(bad); err == nil {
		t.Error("LoadVoiceMap() accepted malformed JSON")
	}
}
