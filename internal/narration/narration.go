// Package narration turns classified document structure into
// agent-consumable context: speakable sections only, bounded by a length
// budget, with raw code and table cells replaced by one-line descriptions.
package narration

import (
	"fmt"
	"strings"

	"github.com/dgnsrekt/hearme/internal/document"
)

// LengthMode selects the per-document word budget.
type LengthMode string

const (
	ModeOverview     LengthMode = "overview"
	ModeBalanced     LengthMode = "balanced"
	ModeThorough     LengthMode = "thorough"
	ModeAgentDecided LengthMode = "agent-decided"
)

const wordsPerMinute = 150

// TruncationMarker closes a document whose budget ran out. Truncation
// happens only at section boundaries, never mid-sentence.
const TruncationMarker = "[remaining content truncated]"

// Per-document word budgets, derived from 3, 8 and 15 minute speech
// targets at 150 wpm. Zero means uncapped.
var wordBudgets = map[LengthMode]int{
	ModeOverview:     450,
	ModeBalanced:     1200,
	ModeThorough:     2250,
	ModeAgentDecided: 0,
}

// ParseMode validates a length mode string, defaulting to balanced.
func ParseMode(s string) (LengthMode, error) {
	switch LengthMode(s) {
	case ModeOverview, ModeBalanced, ModeThorough, ModeAgentDecided:
		return LengthMode(s), nil
	case "":
		return ModeBalanced, nil
	}
	return ModeBalanced, fmt.Errorf("unknown length mode %q", s)
}

// Section is one speakable unit of narration context.
type Section struct {
	Type        string `json:"type"`
	Content     string `json:"content"`
	SpeakerHint string `json:"speaker_hint,omitempty"`
}

// DocumentContext is the narration-ready form of one document.
type DocumentContext struct {
	Path             string    `json:"path"`
	Title            string    `json:"title,omitempty"`
	Sections         []Section `json:"sections"`
	EstimatedWords   int       `json:"estimated_words"`
	EstimatedMinutes float64   `json:"estimated_duration_minutes"`
	Truncated        bool      `json:"truncated"`
}

// Context is the full prepared handoff to the agent.
type Context struct {
	Documents    []DocumentContext `json:"documents"`
	Mode         LengthMode        `json:"mode"`
	TotalWords   int               `json:"total_words"`
	TotalMinutes float64           `json:"total_duration_minutes"`
}

// Prepare transforms documents into narration context under the given
// length mode.
func Prepare(docs []*document.Document, mode LengthMode) Context {
	ctx := Context{Mode: mode}
	for _, d := range docs {
		dc := prepareDocument(d, mode)
		ctx.Documents = append(ctx.Documents, dc)
		ctx.TotalWords += dc.EstimatedWords
	}
	ctx.TotalMinutes = float64(ctx.TotalWords) / wordsPerMinute
	return ctx
}

func prepareDocument(d *document.Document, mode LengthMode) DocumentContext {
	budget := wordBudgets[mode]

	dc := DocumentContext{Path: d.Path, Title: d.Title}
	words := 0
	heading := "" // nearest preceding heading, for code block descriptions
	topics := 0

	for _, sec := range d.Sections {
		out, ok := transformSection(sec, heading)
		if !ok {
			continue
		}

		n := len(strings.Fields(out.Content))
		// Stop at the section boundary once the budget is spent. A heading
		// itself never tips the budget, but a spent budget stops before one
		// so a topic never opens with nothing under it.
		exhausted := words >= budget
		if sec.Type != document.SectionHeading {
			exhausted = exhausted || words+n > budget
		}
		if budget > 0 && exhausted {
			dc.Truncated = true
			dc.Sections = append(dc.Sections, Section{Type: "marker", Content: TruncationMarker})
			break
		}

		if sec.Type == document.SectionHeading {
			heading = sec.Content
			topics++
			// Alternate in a second voice on every third topic shift.
			if topics%3 == 0 {
				out.SpeakerHint = "peer"
			}
		}
		dc.Sections = append(dc.Sections, out)
		words += n
	}

	dc.EstimatedWords = words
	dc.EstimatedMinutes = float64(words) / wordsPerMinute
	return dc
}

// transformSection maps a parsed block to its speakable form. Raw code and
// raw table cells never reach narration context.
func transformSection(sec document.Section, heading string) (Section, bool) {
	switch sec.Type {
	case document.SectionHeading:
		return Section{Type: "heading", Content: sec.Content}, sec.Content != ""

	case document.SectionCodeBlock:
		lang := sec.Language
		if lang == "" {
			lang = "code"
		}
		desc := fmt.Sprintf("There is a %s code block here", lang)
		if heading != "" {
			desc = fmt.Sprintf("There is a %s code block here illustrating %q", lang, heading)
		}
		return Section{Type: "code_mention", Content: desc}, true

	case document.SectionTable:
		desc := fmt.Sprintf("There is a table here with %d rows and %d columns", sec.Rows, sec.Columns)
		if len(sec.Headers) > 0 {
			desc += fmt.Sprintf(" (headers: %s)", strings.Join(sec.Headers, ", "))
		}
		return Section{Type: "table_mention", Content: desc}, true

	case document.SectionList:
		items := strings.Split(sec.Content, "\n")
		if len(items) > 5 {
			head := strings.Join(items[:3], "; ")
			return Section{Type: "list", Content: fmt.Sprintf("%s; and %d more items", head, len(items)-3)}, true
		}
		return Section{Type: "list", Content: strings.Join(items, "; ")}, sec.Content != ""

	case document.SectionBlockquote:
		return Section{Type: "quote", Content: sec.Content}, sec.Content != ""

	case document.SectionParagraph:
		return Section{Type: "paragraph", Content: sec.Content}, sec.Content != ""
	}
	return Section{}, false
}
