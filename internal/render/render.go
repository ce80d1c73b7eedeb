// Package render drives a speaker-tagged script through the engine
// fallback chain and returns a single result value. Nothing escapes the
// orchestrator boundary: every failure mode, including engine panics, is
// encoded in the Result.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/script"
)

// Status is the outcome class of a render.
type Status string

const (
	// StatusSuccess means an engine synthesized the script as requested.
	StatusSuccess Status = "success"
	// StatusDegraded means synthesis succeeded only after a capability
	// downgrade (speaker merge or format substitution).
	StatusDegraded Status = "degraded"
	// StatusScriptOnly means every engine failed; the script is preserved
	// for persistence. A defined degradation outcome, not an error.
	StatusScriptOnly Status = "scriptOnly"
	// StatusFailed means validation rejected the request before any engine
	// was touched.
	StatusFailed Status = "failed"
)

// ValidationError rejects a render request before any engine is invoked.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return "invalid render request: " + e.Reason }

// Result is the single return contract of the orchestrator.
type Result struct {
	Status     Status                  `json:"status"`
	Engine     string                  `json:"engine_used,omitempty"`
	OutputPath string                  `json:"output_path,omitempty"`
	Format     string                  `json:"format,omitempty"`
	Duration   time.Duration           `json:"-"`
	Warnings   []string                `json:"warnings"`
	Error      string                  `json:"error,omitempty"`
	Script     script.Script           `json:"script,omitempty"`
	Voices     map[string]engine.Voice `json:"voices,omitempty"`

	// Audio carries the synthesized bytes to the persister; it never
	// crosses a serialization boundary.
	Audio []byte `json:"-"`
}

// Options bound a single render.
type Options struct {
	Format      string        // requested output format
	Timeout     time.Duration // per synthesis attempt
	RetryBudget int           // transient retries per engine
}

// DefaultTimeout bounds one synthesis attempt. Local model engines can
// legitimately take minutes; a hung subprocess must still be cut off.
const DefaultTimeout = 120 * time.Second

func (o Options) withDefaults() Options {
	if o.Format == "" {
		o.Format = "wav"
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// Orchestrator walks an engine chain for each render request. Stateless
// between renders; engine health lives in the registry's probe cache.
type Orchestrator struct {
	registry *engine.Registry
}

// NewOrchestrator creates an orchestrator over the given registry.
func NewOrchestrator(reg *engine.Registry) *Orchestrator {
	return &Orchestrator{registry: reg}
}

// Render validates the request, then tries each engine in chain order with
// capability negotiation: skip unusable engines, merge speakers down when
// the engine supports fewer, substitute formats, retry transient failures
// once. The first success stops the chain; total failure yields scriptOnly.
func (o *Orchestrator) Render(ctx context.Context, scr script.Script, voices map[string]engine.Voice, auto bool, chain []engine.Engine, opts Options) Result {
	opts = opts.withDefaults()

	scr = scr.Normalize()
	if len(scr) == 0 {
		return Result{Status: StatusFailed, Error: (&ValidationError{Reason: "script is empty"}).Error(), Warnings: []string{}}
	}

	if auto {
		voices = AutoAssign(scr)
	} else {
		for _, speaker := range scr.Speakers() {
			if _, ok := voices[speaker]; !ok {
				err := &ValidationError{Reason: fmt.Sprintf("speaker %q has no voice mapping", speaker)}
				return Result{Status: StatusFailed, Error: err.Error(), Warnings: []string{}}
			}
		}
	}

	warnings := []string{}
	speakers := scr.Speakers()

	for _, eng := range chain {
		name := eng.Name()

		avail := o.registry.Probe(ctx, name)
		if !avail.Usable() {
			warnings = append(warnings, fmt.Sprintf("engine %s unavailable (%s), skipping", name, avail))
			log.Debug("engine skipped", "engine", name, "availability", avail)
			continue
		}

		caps := eng.Capabilities()
		attempt := scr
		attemptVoices := voices
		degraded := false

		// Speaker downgrade: merge onto one synthetic speaker, preserving
		// text and order. Only legal when the engine can speak at all.
		if len(speakers) > caps.MaxSpeakers {
			if caps.MaxSpeakers < 1 {
				warnings = append(warnings, fmt.Sprintf("engine %s declares no usable speakers, skipping", name))
				continue
			}
			attempt = scr.Merge("narrator")
			attemptVoices = map[string]engine.Voice{"narrator": firstVoice(speakers, voices)}
			degraded = true
			warnings = append(warnings, fmt.Sprintf("engine %s supports %d speaker(s); merged %d speakers onto a single narrator", name, caps.MaxSpeakers, len(speakers)))
		}

		// Format substitution: never fail solely for format mismatch while
		// the engine supports any format at all.
		format := opts.Format
		if !caps.SupportsFormat(format) {
			if len(caps.Formats) == 0 {
				warnings = append(warnings, fmt.Sprintf("engine %s declares no output formats, skipping", name))
				continue
			}
			substitute := caps.Formats[0]
			warnings = append(warnings, fmt.Sprintf("engine %s does not produce %s; substituting %s", name, format, substitute))
			format = substitute
			degraded = true
		}

		req := engine.Request{Script: attempt, Voices: attemptVoices, Format: format}

		audio, err := o.attempt(ctx, eng, req, opts.Timeout)
		if err != nil && engine.Transient(err) && opts.RetryBudget > 0 {
			warnings = append(warnings, fmt.Sprintf("engine %s failed transiently (%v), retrying once", name, err))
			audio, err = o.attempt(ctx, eng, req, opts.Timeout)
		}
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("engine %s failed: %v", name, err))
			log.Warn("synthesis failed, continuing chain", "engine", name, "err", err)
			continue
		}

		status := StatusSuccess
		if degraded {
			status = StatusDegraded
		}
		log.Info("render complete", "engine", name, "status", status, "format", format, "bytes", len(audio.Data))
		return Result{
			Status:   status,
			Engine:   name,
			Format:   format,
			Duration: audio.Duration,
			Warnings: warnings,
			Script:   scr,
			Voices:   voices,
			Audio:    audio.Data,
		}
	}

	// Chain exhausted. The script survives so the caller can persist a
	// text-only artifact set.
	log.Warn("all engines exhausted, returning script-only result", "engines", len(chain))
	return Result{
		Status:   StatusScriptOnly,
		Warnings: warnings,
		Script:   scr,
		Voices:   voices,
	}
}

// attempt runs one synthesis call under a timeout, containing panics so a
// misbehaving engine cannot break the orchestrator contract.
func (o *Orchestrator) attempt(ctx context.Context, eng engine.Engine, req engine.Request, timeout time.Duration) (audio *engine.Audio, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			audio = nil
			err = fmt.Errorf("%w: engine panic: %v", engine.ErrSynthesisFailed, r)
		}
	}()

	audio, err = eng.Synthesize(attemptCtx, req)
	if err != nil {
		return nil, err
	}
	if audio == nil || len(audio.Data) == 0 {
		return nil, fmt.Errorf("%w: engine returned no audio", engine.ErrSynthesisFailed)
	}
	return audio, nil
}

// firstVoice picks the first-appearing speaker's voice for the merged
// narrator, keeping downgraded output stable across runs.
func firstVoice(speakers []string, voices map[string]engine.Voice) engine.Voice {
	if len(speakers) > 0 {
		if v, ok := voices[speakers[0]]; ok {
			return v
		}
	}
	return voicePool[0]
}
