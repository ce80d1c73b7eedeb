// Package document classifies documentation files: heading outline,
// structural signals and a category, plus the parsed section structure the
// narration preparer consumes.
package document

// Category buckets a document for plan ordering.
type Category string

const (
	CategoryArchitecture Category = "architecture"
	CategoryContributing Category = "contributing"
	CategoryOverview     Category = "overview"
	CategoryGuide        Category = "guide"
	CategoryUnknown      Category = "unknown"
)

// Heading is one entry of a document's outline.
type Heading struct {
	Level int    `json:"level"`
	Title string `json:"title"`
}

// Record is the immutable summary of a classified document. Path is unique
// within a pipeline run.
type Record struct {
	Path      string    `json:"path"`
	SizeBytes int64     `json:"size_bytes"`
	Category  Category  `json:"category"`
	Signals   []string  `json:"signals"`
	Outline   []Heading `json:"outline"`
	Title     string    `json:"title,omitempty"`
	WordCount int       `json:"word_count"`
}

// SectionType tags a parsed block for narration transforms.
type SectionType string

const (
	SectionHeading    SectionType = "heading"
	SectionParagraph  SectionType = "paragraph"
	SectionCodeBlock  SectionType = "code_block"
	SectionTable      SectionType = "table"
	SectionList       SectionType = "list"
	SectionBlockquote SectionType = "blockquote"
)

// Section is one parsed block of a document.
type Section struct {
	Type     SectionType
	Content  string
	Level    int    // headings only
	Language string // code blocks only
	Rows     int    // tables only
	Columns  int    // tables only
	Headers  []string
}

// Document pairs a record with the section structure it was derived from.
// Sections feed the narration preparer; the record is what crosses the
// tool boundary.
type Document struct {
	Record
	Sections []Section
}
