package transcript

// Source identifies where a course record came from.
type Source string

const (
	SourceInstitution Source = "institution"
	SourceTransfer    Source = "transfer"
	SourceInProgress  Source = "in-progress"

	// SourceManual marks records a caller adds by hand; the parser never
	// emits it.
	SourceManual Source = "manual"
)

// Course is a single course record extracted from a transcript. Records are
// created fresh per parse call and never mutated afterwards.
type Course struct {
	Subject string  `json:"subject"`
	Number  string  `json:"number"`
	Title   string  `json:"title"`
	Grade   string  `json:"grade,omitempty"`
	Units   float64 `json:"units"`
	Source  Source  `json:"source"`
}

// WarningKind classifies non-fatal parse warnings.
type WarningKind string

const (
	// WarnInvalidUnits marks a course-shaped line whose units token did not
	// parse as a non-negative number. The line is dropped.
	WarnInvalidUnits WarningKind = "invalid-units"

	// WarnLowConfidence marks a record whose title ends in a token that is
	// itself a valid grade, so the title/grade boundary may have misfired.
	// The record is kept but should be reviewed.
	WarnLowConfidence WarningKind = "low-confidence"
)

// Warning is a non-fatal problem encountered while parsing. Warnings never
// abort a parse.
type Warning struct {
	Kind   WarningKind `json:"kind"`
	Line   string      `json:"line"`
	Detail string      `json:"detail,omitempty"`
}

// Result is the output of a parse: courses in document order plus any
// warnings collected along the way.
type Result struct {
	Courses  []Course  `json:"courses"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ParseError indicates input that is structurally unusable as transcript
// text. Partial or empty parses are not errors.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return "transcript: " + e.Reason
}
