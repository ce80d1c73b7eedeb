// Package mock provides a placeholder audio engine for development and
// testing. It is always available and emits silent WAV audio sized to the
// script's estimated speaking time.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dgnsrekt/hearme/internal/engine"
	"github.com/dgnsrekt/hearme/internal/wav"
)

const (
	sampleRate     = 24000
	wordsPerMinute = 150
)

// Engine is the mock synthesis backend.
type Engine struct {
	mu           sync.Mutex
	delay        time.Duration
	failErr      error
	failCount    int // failures remaining before recovery; -1 fails forever
	availability engine.Availability
	calls        int
}

// New creates a mock engine with no simulated delay.
func New() *Engine {
	return &Engine{availability: engine.AvailabilityInstalled}
}

// Name implements engine.Engine.
func (e *Engine) Name() string { return "mock" }

// Probe implements engine.Engine.
func (e *Engine) Probe(context.Context) engine.Availability {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.availability
}

// Capabilities implements engine.Engine.
func (e *Engine) Capabilities() engine.Capabilities {
	return engine.Capabilities{
		MultiSpeaker: true,
		MaxSpeakers:  10,
		Formats:      []string{"wav"},
	}
}

// Synthesize returns silent placeholder audio. Duration is estimated from
// word count at 150 words per minute, with a half second floor.
func (e *Engine) Synthesize(ctx context.Context, req engine.Request) (*engine.Audio, error) {
	e.mu.Lock()
	e.calls++
	if e.failErr != nil && e.failCount != 0 {
		err := e.failErr
		if e.failCount > 0 {
			e.failCount--
		}
		e.mu.Unlock()
		return nil, err
	}
	delay := e.delay
	e.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, engine.ErrSynthesisTimeout
		}
	}

	words := 0
	for _, seg := range req.Script {
		words += len(strings.Fields(seg.Text))
	}
	duration := time.Duration(float64(words) / wordsPerMinute * float64(time.Minute))
	if duration < 500*time.Millisecond {
		duration = 500 * time.Millisecond
	}

	return &engine.Audio{
		Data:       wav.Silence(duration, sampleRate),
		Format:     "wav",
		SampleRate: sampleRate,
		Duration:   duration,
	}, nil
}

// SetFailure makes the next n Synthesize calls return err; n < 0 fails
// every call. Passing a nil error clears the failure.
func (e *Engine) SetFailure(err error, n int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.failErr = err
	e.failCount = n
}

// SetAvailability overrides the probed availability.
func (e *Engine) SetAvailability(a engine.Availability) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.availability = a
}

// SetDelay adds a simulated synthesis delay, for timeout tests.
func (e *Engine) SetDelay(d time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.delay = d
}

// Calls reports how many times Synthesize ran.
func (e *Engine) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}
