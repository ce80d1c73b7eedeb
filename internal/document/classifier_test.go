package document

import (
	"reflect"
	"testing"
)

// TestClassifyCategories tests the rule priority: filename beats path
// beats content.
func TestClassifyCategories(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    Category
	}{
		{
			name:    "readme is overview",
			path:    "README.md",
			content: "# Project\n\nA thing.",
			want:    CategoryOverview,
		},
		{
			name:    "architecture filename",
			path:    "ARCHITECTURE.md",
			content: "# Layout",
			want:    CategoryArchitecture,
		},
		{
			name:    "design filename",
			path:    "docs/design.md",
			content: "# Design",
			want:    CategoryArchitecture,
		},
		{
			name:    "contributing filename",
			path:    "CONTRIBUTING.md",
			content: "# How to help",
			want:    CategoryContributing,
		},
		{
			name:    "guide filename",
			path:    "getting-started.md",
			content: "# Start here",
			want:    CategoryGuide,
		},
		{
			name:    "readme filename beats docs path",
			path:    "docs/README.md",
			content: "# Docs index",
			want:    CategoryOverview,
		},
		{
			name:    "adr directory",
			path:    "docs/adr/0001-use-postgres.md",
			content: "Status: accepted",
			want:    CategoryArchitecture,
		},
		{
			name:    "github directory",
			path:    ".github/PULL_REQUEST_TEMPLATE.md",
			content: "# PR checklist",
			want:    CategoryContributing,
		},
		{
			name:    "docs directory",
			path:    "docs/usage.md",
			content: "# Usage",
			want:    CategoryGuide,
		},
		{
			name:    "decision content outside known paths",
			path:    "notes.md",
			content: "We decided to split the service.",
			want:    CategoryArchitecture,
		},
		{
			name:    "architecture terms in content",
			path:    "overview-of-system.md",
			content: "The component layer talks to the data flow engine.",
			want:    CategoryArchitecture,
		},
		{
			name:    "install steps in content",
			path:    "setup-notes.md",
			content: "Install the binary, then run it.",
			want:    CategoryGuide,
		},
		{
			name:    "nothing matches",
			path:    "random.md",
			content: "Some prose with no markers at all.",
			want:    CategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Classify(tt.path, []byte(tt.content))
			if doc.Category != tt.want {
				t.Errorf("Classify(%s).Category = %s, want %s", tt.path, doc.Category, tt.want)
			}
		})
	}
}

// TestClassifySignals tests structural signal detection.
func TestClassifySignals(t *testing.T) {
	content := "# Title\n\n" +
		"```go\nfunc main() {}\n```\n\n" +
		"| a | b |\n|---|---|\n| 1 | 2 |\n\n" +
		"![diagram](arch.png)\n\n" +
		"We decided to use queues. The architecture has three layers.\n\n" +
		"Install it with the script.\n"

	doc := Classify("README.md", []byte(content))

	want := []string{
		"has-code-samples",
		"has-tables",
		"has-diagrams",
		"has-decisions",
		"has-architecture-terms",
		"has-install-steps",
	}
	if !reflect.DeepEqual(doc.Signals, want) {
		t.Errorf("Signals = %v, want %v", doc.Signals, want)
	}
}

// TestClassifyOutline tests heading extraction and title selection.
func TestClassifyOutline(t *testing.T) {
	content := "# My Project\n\nIntro text.\n\n## Install\n\nSteps.\n\n### Linux\n\nMore."

	doc := Classify("README.md", []byte(content))

	if doc.Title != "My Project" {
		t.Errorf("Title = %q, want My Project", doc.Title)
	}
	wantOutline := []Heading{
		{Level: 1, Title: "My Project"},
		{Level: 2, Title: "Install"},
		{Level: 3, Title: "Linux"},
	}
	if !reflect.DeepEqual(doc.Outline, wantOutline) {
		t.Errorf("Outline = %v, want %v", doc.Outline, wantOutline)
	}
}

// TestClassifyWordCountExcludesCode tests that code and table content never
// inflate the speakable word count.
func TestClassifyWordCountExcludesCode(t *testing.T) {
	prose := Classify("a.md", []byte("one two three four five"))
	withCode := Classify("b.md", []byte("one two three four five\n\n```\nlots of words inside a code block\n```\n"))

	if prose.WordCount != 5 {
		t.Fatalf("prose WordCount = %d, want 5", prose.WordCount)
	}
	if withCode.WordCount != prose.WordCount {
		t.Errorf("WordCount with code = %d, want %d", withCode.WordCount, prose.WordCount)
	}
}

// TestClassifyDeterministic tests that identical input yields identical
// records.
func TestClassifyDeterministic(t *testing.T) {
	content := []byte("# T\n\nBody text here.\n\n- a\n- b\n")
	first := Classify("docs/x.md", content)
	for i := 0; i < 3; i++ {
		if again := Classify("docs/x.md", content); !reflect.DeepEqual(again, first) {
			t.Fatalf("classification %d differs from first", i)
		}
	}
}
