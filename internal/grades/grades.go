// Package grades holds the fixed institutional grade scale shared by the
// transcript parser and the GPA calculator. The tables are process-wide
// constants and are never mutated at runtime.
package grades

// Points maps each letter grade to its quality-point value on the 4.0 scale.
var Points = map[string]float64{
	"A+": 4.0,
	"A":  4.0,
	"A-": 3.7,
	"B+": 3.3,
	"B":  3.0,
	"B-": 2.7,
	"C+": 2.3,
	"C":  2.0,
	"C-": 1.7,
	"D+": 1.3,
	"D":  1.0,
	"D-": 0.7,
	"F":  0.0,
}

// NonGPA is the set of grade markers that never contribute quality points:
// pass/fail, incompletes, withdrawals, audits, transfer credit, no-grade.
var NonGPA = map[string]bool{
	"P":   true,
	"S":   true,
	"U":   true,
	"I":   true,
	"IP":  true,
	"W":   true,
	"NR":  true,
	"AU":  true,
	"TCR": true,
	"NG":  true,
}

// Special markers assigned by section rather than read off the line.
const (
	TransferCredit = "TCR"
	InProgress     = "IP"
)

// IsToken reports whether s is a member of the grade domain (letter grades
// plus non-GPA markers). The parser uses this for the title/grade boundary.
func IsToken(s string) bool {
	if _, ok := Points[s]; ok {
		return true
	}
	return NonGPA[s]
}

// PointsFor returns the quality-point value for a grade and whether the
// grade is GPA-eligible.
func PointsFor(grade string) (float64, bool) {
	v, ok := Points[grade]
	return v, ok
}
