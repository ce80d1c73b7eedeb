// Package engine defines the capability surface shared by all audio
// synthesis backends and the registry that orders them into a fallback
// chain.
package engine

import (
	"context"
	"time"

	"github.com/dgnsrekt/hearme/internal/script"
)

// Availability is the probed state of an engine.
type Availability int

const (
	// AvailabilityUnknown means the engine has not been probed yet.
	AvailabilityUnknown Availability = iota
	// AvailabilityInstalled means the engine is fully usable.
	AvailabilityInstalled
	// AvailabilityMissing means the engine or a hard dependency is absent.
	AvailabilityMissing
	// AvailabilityDegraded means the engine is usable with reduced quality,
	// e.g. a default model in place of the configured one.
	AvailabilityDegraded
)

func (a Availability) String() string {
	switch a {
	case AvailabilityInstalled:
		return "installed"
	case AvailabilityMissing:
		return "missing"
	case AvailabilityDegraded:
		return "degraded"
	default:
		return "unknown"
	}
}

// Usable reports whether synthesis may be attempted in this state.
func (a Availability) Usable() bool {
	return a == AvailabilityInstalled || a == AvailabilityDegraded
}

// Capabilities are an engine's authoritative capability claims. The
// orchestrator never attempts an operation an engine did not declare.
type Capabilities struct {
	MultiSpeaker  bool     `json:"multi_speaker"`
	MaxSpeakers   int      `json:"max_speakers"`
	VoiceCloning  bool     `json:"voice_cloning"`
	NonverbalCues bool     `json:"nonverbal_cues"`
	Streaming     bool     `json:"streaming"`
	Formats       []string `json:"formats"`
}

// SupportsFormat reports whether the engine declared the given output format.
func (c Capabilities) SupportsFormat(format string) bool {
	for _, f := range c.Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Tier orders engines for the tail of the fallback chain.
type Tier int

const (
	// TierConversational covers multi-speaker conversational engines.
	TierConversational Tier = iota
	// TierQuality covers high-quality single or multi speaker engines.
	TierQuality
	// TierLightweight covers fast, low-resource engines.
	TierLightweight
	// TierMock covers development placeholders.
	TierMock
)

// Descriptor is the externally visible record of a registered engine.
type Descriptor struct {
	Name         string       `json:"name"`
	Capabilities Capabilities `json:"capabilities"`
	Availability string       `json:"availability"`
}

// Voice is an engine-agnostic voice descriptor. Gender is perceptual
// metadata used only for alternating auto-assignment.
type Voice struct {
	ID     string `json:"voice_id"`
	Style  string `json:"style,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Request carries one synthesis attempt. The script has already been
// validated and, if needed, downgraded to fit the engine's speaker count.
type Request struct {
	Script script.Script
	Voices map[string]Voice
	Format string
}

// Audio is the result of a successful synthesis.
type Audio struct {
	Data       []byte
	Format     string
	SampleRate int
	Duration   time.Duration
}

// Engine is the uniform contract every synthesis backend implements.
// Probe may be expensive (model load, subprocess spawn); the registry
// guarantees it runs at most once per engine per process.
type Engine interface {
	Name() string
	Probe(ctx context.Context) Availability
	Capabilities() Capabilities
	Synthesize(ctx context.Context, req Request) (*Audio, error)
}
