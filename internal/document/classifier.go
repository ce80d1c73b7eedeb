package document

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Structural signal predicates. Each is pure and independent of the
// others; the detected set is the union of all that match.
var signalPredicates = []struct {
	name  string
	match func(content string) bool
}{
	{"has-code-samples", func(c string) bool { return strings.Contains(c, "```") }},
	{"has-tables", regexpPredicate(`(?m)^\s*\|.+\|`)},
	{"has-diagrams", func(c string) bool {
		return strings.Contains(c, "```mermaid") || strings.Contains(c, "![")
	}},
	{"has-decisions", regexpPredicate(`(?i)\b(adr|decision record|architecture decision|we decided|status:\s*accepted)\b`)},
	{"has-architecture-terms", regexpPredicate(`(?i)\b(architecture|component|subsystem|layer|data flow)\b`)},
	{"has-install-steps", regexpPredicate(`(?i)\b(install|setup|getting started|quick ?start)\b`)},
}

func regexpPredicate(expr string) func(string) bool {
	re := regexp.MustCompile(expr)
	return re.MatchString
}

// Category rules, evaluated in fixed priority order; the first match wins.
// Filename overrides beat path heuristics beat content heuristics.
var categoryRules = []struct {
	name     string
	match    func(path string, stem string, signals map[string]bool) bool
	category Category
}{
	{"filename-readme", stemIs("readme"), CategoryOverview},
	{"filename-architecture", stemIs("architecture", "design"), CategoryArchitecture},
	{"filename-contributing", stemIs("contributing", "contribute"), CategoryContributing},
	{"filename-guide", stemIs("guide", "tutorial", "getting-started", "getting_started", "quickstart"), CategoryGuide},
	{"path-adr", inDir("adr"), CategoryArchitecture},
	{"path-github", inDir(".github"), CategoryContributing},
	{"path-docs", inDir("docs", "doc", "documentation"), CategoryGuide},
	{"content-decisions", hasSignal("has-decisions"), CategoryArchitecture},
	{"content-architecture", hasSignal("has-architecture-terms"), CategoryArchitecture},
	{"content-install", hasSignal("has-install-steps"), CategoryGuide},
}

func stemIs(names ...string) func(string, string, map[string]bool) bool {
	return func(_, stem string, _ map[string]bool) bool {
		for _, n := range names {
			if strings.HasPrefix(stem, n) {
				return true
			}
		}
		return false
	}
}

func inDir(dirs ...string) func(string, string, map[string]bool) bool {
	return func(path, _ string, _ map[string]bool) bool {
		parts := strings.Split(strings.ToLower(filepath.ToSlash(filepath.Dir(path))), "/")
		for _, p := range parts {
			for _, d := range dirs {
				if p == d {
					return true
				}
			}
		}
		return false
	}
}

func hasSignal(name string) func(string, string, map[string]bool) bool {
	return func(_, _ string, signals map[string]bool) bool {
		return signals[name]
	}
}

// Classify parses raw document text and assigns a category and signals.
// Pure: identical input yields an identical record, so classification can
// run in parallel across files.
func Classify(path string, raw []byte) *Document {
	content := string(raw)
	sections := parseSections(raw)

	signalSet := make(map[string]bool, len(signalPredicates))
	var signals []string
	for _, p := range signalPredicates {
		if p.match(content) {
			signalSet[p.name] = true
			signals = append(signals, p.name)
		}
	}

	stem := strings.ToLower(filepath.Base(path))
	stem = strings.TrimSuffix(stem, filepath.Ext(stem))

	category := CategoryUnknown
	for _, rule := range categoryRules {
		if rule.match(path, stem, signalSet) {
			category = rule.category
			break
		}
	}

	var outline []Heading
	title := ""
	words := 0
	for _, sec := range sections {
		switch sec.Type {
		case SectionHeading:
			outline = append(outline, Heading{Level: sec.Level, Title: sec.Content})
			if title == "" && sec.Level == 1 {
				title = sec.Content
			}
			words += len(strings.Fields(sec.Content))
		case SectionCodeBlock, SectionTable:
			// not speakable, excluded from the word count
		default:
			words += len(strings.Fields(sec.Content))
		}
	}

	return &Document{
		Record: Record{
			Path:      filepath.ToSlash(path),
			SizeBytes: int64(len(raw)),
			Category:  category,
			Signals:   signals,
			Outline:   outline,
			Title:     title,
			WordCount: words,
		},
		Sections: sections,
	}
}
