// Package transcript parses course records out of text extracted from a
// transcript PDF. The extraction layer hands over one loosely structured
// string per document; this package recognizes the section boundaries and
// course-line patterns inside it.
package transcript

import (
	"bufio"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/claude/gradepoint/internal/grades"
)

// levelTag is the literal that anchors the start of the course body on a line.
const levelTag = "UG"

// maxTitleLen caps titles after cleanup; anything longer is a parse artifact.
const maxTitleLen = 100

// maxWrapLines bounds how many physical lines a wrapped title may span.
const maxWrapLines = 3

var (
	// courseHeadRe matches the start of a course line: "CS 110 UG ..." or "SPAN 1XX ..."
	courseHeadRe = regexp.MustCompile(`^([A-Z]{2,4})\s+(\d+[A-Z]*|\d*XX)(\s|$)`)

	// numericTailRe matches a line ending in a units/quality-points number: "... 4.000 16.000"
	numericTailRe = regexp.MustCompile(`\d[\d.]*$`)

	// numericTokenRe matches a single numeric token, including malformed ones
	// ("3..0", "-2.0") so invalid units can be reported instead of re-glued
	// into the title.
	numericTokenRe = regexp.MustCompile(`^-?\d[\d.]*$`)

	// gradeShapeRe matches tokens that sit where a grade sits and look like
	// one: a short uppercase run with an optional +/- suffix. Tokens of this
	// shape that are outside the grade domain are still taken as the grade so
	// the calculator can surface them, instead of vanishing into the title.
	gradeShapeRe = regexp.MustCompile(`^[A-Z]{1,3}[+-]?$`)

	// glueRe reinserts the space PDF extraction sometimes drops between the
	// end of a title and the grade: "SpanishA 4.000" -> "Spanish A 4.000"
	glueRe = regexp.MustCompile(`([a-z])([A-Z]+[+-]?)(\s+[\d.]+)`)

	// artifactRe strips report captions and summary text that the greedy
	// title match can swallow on reflowed lines.
	artifactRe = regexp.MustCompile(`(?is)(DO NOT PRINT|Term Totals|Attempt Hours|Passed Hours|Earned Hours|GPA Hours|Quality Points|Current Term:|Cumulative:|Unofficial Transcript|College:|Major:|Academic Standing:|Subject).*$`)

	// copyrightRe marks the vendor footer that ends the last section.
	copyrightRe = regexp.MustCompile(`© 20\d\d Ellucian`)

	spaceRe = regexp.MustCompile(`\s+`)
)

// sectionMarkers are the case-sensitive literal headers that divide a
// transcript, in their canonical document order.
var sectionMarkers = []struct {
	Marker string
	Source Source
}{
	{"TRANSFER CREDIT", SourceTransfer},
	{"INSTITUTION CREDIT", SourceInstitution},
	{"COURSES IN PROGRESS", SourceInProgress},
}

// transcriptTotals terminates the course sections; everything after it is
// summary statistics.
const transcriptTotals = "TRANSCRIPT TOTALS"

// Parse extracts course records from raw transcript text. It returns a
// *ParseError only for input that is not usable as text at all; empty input
// or text with no recognizable course lines yields an empty result. Parse is
// stateless and idempotent, and output order follows input order.
func Parse(rawText string) (*Result, error) {
	if !utf8.ValidString(rawText) {
		return nil, &ParseError{Reason: "input is not valid UTF-8 text"}
	}

	res := &Result{Courses: []Course{}}
	for _, sec := range splitSections(rawText) {
		parseSection(sec.text, sec.source, res)
	}
	return res, nil
}

type section struct {
	source Source
	start  int
	text   string
}

// splitSections locates the three section markers and slices the text
// between them. A missing marker yields no section. Each section runs to the
// next marker, the transcript totals line, or the vendor footer.
func splitSections(text string) []section {
	var secs []section
	for _, m := range sectionMarkers {
		if idx := strings.Index(text, m.Marker); idx >= 0 {
			secs = append(secs, section{source: m.Source, start: idx})
		}
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i].start < secs[j].start })

	// Terminator positions that can end a section early.
	var stops []int
	if idx := strings.Index(text, transcriptTotals); idx >= 0 {
		stops = append(stops, idx)
	}
	if loc := copyrightRe.FindStringIndex(text); loc != nil {
		stops = append(stops, loc[0])
	}

	for i := range secs {
		end := len(text)
		if i+1 < len(secs) {
			end = secs[i+1].start
		}
		for _, stop := range stops {
			if stop > secs[i].start && stop < end {
				end = stop
			}
		}
		secs[i].text = text[secs[i].start:end]
	}
	return secs
}

// parseSection scans a section line by line, reflowing wrapped titles: a line
// that opens with a course head starts a logical line, and continuation lines
// are joined until the numeric tail (units, optional quality points) appears.
func parseSection(text string, source Source, res *Result) {
	scanner := bufio.NewScanner(strings.NewReader(text))

	var pending string
	joined := 0
	flush := func() {
		if pending != "" {
			parseCourseLine(pending, source, res)
			pending = ""
			joined = 0
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			flush()
			continue
		}
		if courseHeadRe.MatchString(line) {
			flush()
			if numericTailRe.MatchString(line) {
				parseCourseLine(line, source, res)
			} else {
				pending = line
			}
			continue
		}
		if pending != "" {
			pending += " " + line
			joined++
			if numericTailRe.MatchString(pending) || joined >= maxWrapLines {
				flush()
			}
			continue
		}
		// Headers, column captions, totals — skipped.
	}
	flush()
}

// parseCourseLine parses one logical course line. Lines that do not fit the
// course pattern are skipped silently; that is the normal case for captions
// that happen to start like a course head.
func parseCourseLine(line string, source Source, res *Result) {
	cleaned := glueRe.ReplaceAllString(line, "${1} ${2}${3}")
	toks := strings.Fields(cleaned)
	if len(toks) < 3 {
		return
	}

	subject, number := toks[0], toks[1]
	if !courseHeadRe.MatchString(cleaned) {
		return
	}
	rest := toks[2:]
	if len(rest) > 0 && rest[0] == levelTag {
		rest = rest[1:]
	}

	// Peel the numeric tail off the right: units, then optional quality
	// points. Quality points are recomputed downstream, so only their
	// position matters here. In-progress lines carry no quality-points
	// column, so only the last number is units there; peeling two would let
	// a title ending in a bare integer displace them.
	maxNums := 2
	if source == SourceInProgress {
		maxNums = 1
	}
	var nums []string
	for len(rest) > 0 && len(nums) < maxNums && numericTokenRe.MatchString(rest[len(rest)-1]) {
		nums = append([]string{rest[len(rest)-1]}, nums...)
		rest = rest[:len(rest)-1]
	}
	if len(nums) == 0 {
		return
	}

	// The grade, when present, is the first token left of the numeric tail
	// that exactly matches the grade domain. Scanning from the right keeps
	// titles containing grade-like words intact. In the institution section
	// a grade-shaped token outside the domain is still taken as the grade:
	// silently folding it into the title would hide it from the calculator's
	// unrecognized-grade reporting.
	grade := ""
	if len(rest) > 0 {
		last := rest[len(rest)-1]
		if grades.IsToken(last) || (source == SourceInstitution && gradeShapeRe.MatchString(last)) {
			grade = last
			rest = rest[:len(rest)-1]
		}
	}

	title := cleanTitle(strings.Join(rest, " "))
	if title == "" {
		return
	}

	units, err := strconv.ParseFloat(nums[0], 64)
	if err != nil || units < 0 {
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnInvalidUnits,
			Line:   line,
			Detail: fmt.Sprintf("units token %q", nums[0]),
		})
		return
	}

	// Section convention overrides whatever grade token the line carried:
	// transfer credit never contributes to GPA, in-progress courses have no
	// final grade yet.
	switch source {
	case SourceTransfer:
		grade = grades.TransferCredit
	case SourceInProgress:
		grade = ""
	}

	// If the remaining title still ends in a grade-domain token, the
	// boundary heuristic may have misfired (e.g. a title ending in "A").
	if last := lastToken(title); last != "" && grades.IsToken(last) {
		res.Warnings = append(res.Warnings, Warning{
			Kind:   WarnLowConfidence,
			Line:   line,
			Detail: fmt.Sprintf("title ends in grade-like token %q", last),
		})
	}

	res.Courses = append(res.Courses, Course{
		Subject: subject,
		Number:  number,
		Title:   title,
		Grade:   grade,
		Units:   units,
		Source:  source,
	})
}

// cleanTitle strips summary captions the greedy title match can pick up,
// collapses whitespace, and truncates runaway titles.
func cleanTitle(title string) string {
	title = artifactRe.ReplaceAllString(title, "")
	title = strings.TrimSpace(spaceRe.ReplaceAllString(title, " "))
	if len(title) > maxTitleLen {
		title = strings.TrimSpace(title[:maxTitleLen])
	}
	return title
}

func lastToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}
