package script

import (
	"strings"
	"testing"
)

// TestParse tests decoding the canonical JSON wire shape.
func TestParse(t *testing.T) {
	input := `[
		{"speaker": "host", "text": "Welcome to the tour.", "pause_after": 0.5},
		{"speaker": "expert", "text": "Glad to be here."}
	]`

	s, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(s) != 2 {
		t.Fatalf("Parse() returned %d segments, want 2", len(s))
	}
	if s[0].Speaker != "host" || s[0].PauseAfter != 0.5 {
		t.Errorf("first segment = %+v, want host with 0.5s pause", s[0])
	}
	if s[1].Speaker != "expert" {
		t.Errorf("second segment speaker = %q, want %q", s[1].Speaker, "expert")
	}
}

// TestParseUnknownFields tests that unrecognized fields are ignored.
func TestParseUnknownFields(t *testing.T) {
	input := `[{"speaker": "narrator", "text": "Hello.", "emotion": "calm"}]`

	s, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(s) != 1 || s[0].Text != "Hello." {
		t.Errorf("Parse() = %+v, want single Hello. segment", s)
	}
}

// TestParseInvalid tests that malformed JSON is rejected.
func TestParseInvalid(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{"not": "an array"`)); err == nil {
		t.Error("Parse() accepted malformed JSON, want error")
	}
}

// TestNormalize tests blank-segment removal and speaker defaulting.
func TestNormalize(t *testing.T) {
	s := Script{
		{Speaker: "host", Text: "  First.  "},
		{Speaker: "host", Text: "   "},
		{Speaker: "", Text: "Unattributed."},
	}

	got := s.Normalize()
	if len(got) != 2 {
		t.Fatalf("Normalize() kept %d segments, want 2", len(got))
	}
	if got[0].Text != "First." {
		t.Errorf("Normalize() text = %q, want trimmed %q", got[0].Text, "First.")
	}
	if got[1].Speaker != "narrator" {
		t.Errorf("Normalize() empty speaker = %q, want %q", got[1].Speaker, "narrator")
	}
}

// TestSpeakers tests distinct label extraction in first-appearance order.
func TestSpeakers(t *testing.T) {
	s := Script{
		{Speaker: "host", Text: "a"},
		{Speaker: "expert", Text: "b"},
		{Speaker: "host", Text: "c"},
	}

	got := s.Speakers()
	want := []string{"host", "expert"}
	if len(got) != len(want) {
		t.Fatalf("Speakers() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Speakers()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

// TestMerge tests the single-speaker downgrade transformation.
func TestMerge(t *testing.T) {
	s := Script{
		{Speaker: "host", Text: "First.", PauseAfter: 1},
		{Speaker: "expert", Text: "Second."},
	}

	got := s.Merge("narrator")
	if len(got) != len(s) {
		t.Fatalf("Merge() changed segment count: %d, want %d", len(got), len(s))
	}
	for i, seg := range got {
		if seg.Speaker != "narrator" {
			t.Errorf("Merge()[%d].Speaker = %q, want narrator", i, seg.Speaker)
		}
		if seg.Text != s[i].Text {
			t.Errorf("Merge()[%d].Text = %q, want %q", i, seg.Text, s[i].Text)
		}
	}
	if got[0].PauseAfter != 1 {
		t.Error("Merge() dropped PauseAfter")
	}
}

// TestWords tests word counting across segments.
func TestWords(t *testing.T) {
	s := Script{
		{Speaker: "a", Text: "one two three"},
		{Speaker: "b", Text: "four five"},
	}
	if got := s.Words(); got != 5 {
		t.Errorf("Words() = %d, want 5", got)
	}
}
