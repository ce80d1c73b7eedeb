// Package script defines the speaker-tagged narration script consumed by
// the render pipeline. Scripts are produced by the invoking agent; the text
// is never rewritten here, only validated and regrouped.
package script

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Segment is one speaker turn in a script. The wire shape is stable:
// additional optional fields may appear but consumers must ignore unknown
// fields.
type Segment struct {
	Speaker    string  `json:"speaker"`
	Text       string  `json:"text"`
	PauseAfter float64 `json:"pause_after,omitempty"` // seconds
}

// Script is an ordered sequence of segments. Order is narration order and
// must survive every transformation.
type Script []Segment

// Parse decodes a script from its canonical JSON wire shape.
func Parse(r io.Reader) (Script, error) {
	var s Script
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return s.Normalize(), nil
}

// Normalize drops segments with no speakable text and trims surrounding
// whitespace. Segment order is preserved.
func (s Script) Normalize() Script {
	out := make(Script, 0, len(s))
	for _, seg := range s {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		speaker := strings.TrimSpace(seg.Speaker)
		if speaker == "" {
			speaker = "narrator"
		}
		out = append(out, Segment{Speaker: speaker, Text: text, PauseAfter: seg.PauseAfter})
	}
	return out
}

// Speakers returns the distinct speaker labels in first-appearance order.
func (s Script) Speakers() []string {
	seen := make(map[string]bool, 4)
	var out []string
	for _, seg := range s {
		if !seen[seg.Speaker] {
			seen[seg.Speaker] = true
			out = append(out, seg.Speaker)
		}
	}
	return out
}

// Merge collapses every segment onto a single synthetic speaker, preserving
// text and order. Used for the single-speaker downgrade path.
func (s Script) Merge(speaker string) Script {
	out := make(Script, len(s))
	for i, seg := range s {
		out[i] = Segment{Speaker: speaker, Text: seg.Text, PauseAfter: seg.PauseAfter}
	}
	return out
}

// Words counts whitespace-separated words across all segments.
func (s Script) Words() int {
	n := 0
	for _, seg := range s {
		n += len(strings.Fields(seg.Text))
	}
	return n
}
