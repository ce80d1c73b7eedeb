// Package plan proposes an audio generation strategy from classified
// documents: narration order, a provisional speaker set and ambiguity flags
// for the agent to resolve. Thin recommendation logic; the agent owns the
// final call.
package plan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dgnsrekt/hearme/internal/document"
	"github.com/dgnsrekt/hearme/internal/engine"
)

const wordsPerMinute = 150

// A document with fewer words reads as boilerplate, not substance.
const substantiveWords = 200

// OrderedDocument is one entry of the proposed narration order.
type OrderedDocument struct {
	Path     string            `json:"path"`
	Category document.Category `json:"category"`
	Order    int               `json:"order"`
	Reason   string            `json:"reason"`
}

// Plan is the proposal handed to the agent. Read-only once produced.
type Plan struct {
	Documents         []OrderedDocument `json:"documents"`
	Speakers          []string          `json:"proposed_speakers"`
	Ambiguities       []string          `json:"ambiguities,omitempty"`
	EstimatedDuration time.Duration     `json:"-"`
	EstimatedMinutes  float64           `json:"estimated_duration_minutes"`
}

// Category priority for narration order; lower narrates first. Discovery
// order breaks ties.
var categoryPriority = map[document.Category]int{
	document.CategoryOverview:     1,
	document.CategoryArchitecture: 2,
	document.CategoryGuide:        3,
	document.CategoryContributing: 4,
	document.CategoryUnknown:      5,
}

// Propose builds an audio plan for the given documents. The speaker count
// is capped at what the best currently available engine can render; this
// is the only place planning consults engine state.
func Propose(ctx context.Context, docs []*document.Document, reg *engine.Registry) Plan {
	ordered := orderDocuments(docs)

	speakers, ambiguities := proposeSpeakers(ctx, docs, reg)
	ambiguities = append(ambiguities, detectAmbiguities(docs)...)

	totalWords := 0
	for _, d := range docs {
		totalWords += d.WordCount
	}
	minutes := float64(totalWords) / wordsPerMinute

	return Plan{
		Documents:         ordered,
		Speakers:          speakers,
		Ambiguities:       ambiguities,
		EstimatedDuration: time.Duration(minutes * float64(time.Minute)),
		EstimatedMinutes:  minutes,
	}
}

func orderDocuments(docs []*document.Document) []OrderedDocument {
	idx := make([]int, len(docs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return categoryPriority[docs[idx[a]].Category] < categoryPriority[docs[idx[b]].Category]
	})

	out := make([]OrderedDocument, len(idx))
	for pos, i := range idx {
		out[pos] = OrderedDocument{
			Path:     docs[i].Path,
			Category: docs[i].Category,
			Order:    pos + 1,
			Reason:   fmt.Sprintf("%s document, category priority %d", docs[i].Category, categoryPriority[docs[i].Category]),
		}
	}
	return out
}

// proposeSpeakers picks 1 or 2 speakers from document shape, then caps the
// count at the best available engine's declared maximum. It never proposes
// more speakers than some usable engine can render.
func proposeSpeakers(ctx context.Context, docs []*document.Document, reg *engine.Registry) ([]string, []string) {
	substantive := 0
	signalSet := make(map[string]bool)
	for _, d := range docs {
		if d.WordCount >= substantiveWords {
			substantive++
		}
		for _, s := range d.Signals {
			signalSet[s] = true
		}
	}

	want := 2
	if substantive <= 1 || len(signalSet) < 3 {
		want = 1
	}

	var ambiguities []string
	maxRenderable := 1
	if best, ok := reg.BestAvailable(ctx); ok {
		maxRenderable = best.Capabilities().MaxSpeakers
	}
	if want > maxRenderable {
		want = maxRenderable
		if want < 1 {
			want = 1
		}
		ambiguities = append(ambiguities,
			"no multi-speaker engine is currently available; proposing a single narrator")
	}

	if want == 1 {
		return []string{"narrator"}, ambiguities
	}
	return []string{"host", "expert"}, ambiguities
}

func detectAmbiguities(docs []*document.Document) []string {
	var out []string

	overviews := 0
	for _, d := range docs {
		if d.Category == document.CategoryOverview {
			overviews++
		}
	}
	if overviews > 1 {
		out = append(out, fmt.Sprintf("%d overview documents found; confirm which one leads the narration", overviews))
	}

	totalWords := 0
	for _, d := range docs {
		totalWords += d.WordCount
	}
	if totalWords > 5000 {
		out = append(out, fmt.Sprintf("content is long (%d words); consider the overview length mode or fewer documents", totalWords))
	}

	return out
}
