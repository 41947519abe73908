package builder

import (
	"fmt"

	"github.com/prepdeck/prepdeck/internal/marker"
	"github.com/prepdeck/prepdeck/internal/question"
)

// Warning is a non-fatal authoring problem surfaced at edit time. Whether
// warnings block saving is a Policy decision, not hard-coded.
type Warning struct {
	Part     int    `json:"part"`
	Question int    `json:"question"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

const (
	WarnDuplicateGap  = "duplicate_gap_number"
	WarnGapMismatch   = "gap_marker_mismatch"
	WarnNoCorrect     = "no_correct_option"
	WarnEmptyMatching = "empty_matching_sides"
)

// Validate walks the test and collects authoring warnings.
func Validate(t question.Test) []Warning {
	var out []Warning
	for pi, p := range t.Parts {
		for qi, q := range p.Questions {
			out = append(out, validateQuestion(pi, qi, q)...)
		}
	}
	return out
}

func validateQuestion(pi, qi int, q question.Question) []Warning {
	var out []Warning
	warn := func(code, msg string) {
		out = append(out, Warning{Part: pi, Question: qi, Code: code, Message: msg})
	}
	switch p := q.Payload.(type) {
	case question.GapTextPayload:
		nums := marker.Extract(p.Text)
		for _, d := range marker.Duplicates(nums) {
			warn(WarnDuplicateGap, fmt.Sprintf("marker [[%d]] appears more than once", d))
		}
		if len(nums) != len(p.Gaps) {
			warn(WarnGapMismatch, fmt.Sprintf("%d markers in text but %d gap answers", len(nums), len(p.Gaps)))
		}
	case question.TablePayload:
		var nums []int
		for _, row := range p.Rows {
			for _, cell := range row {
				if cell.Gap != nil {
					nums = append(nums, cell.Gap.Number)
				}
			}
		}
		for _, d := range marker.Duplicates(nums) {
			warn(WarnDuplicateGap, fmt.Sprintf("cell number %d appears more than once", d))
		}
	case question.MultiResponsePayload:
		any := false
		for _, o := range p.Options {
			if o.Correct {
				any = true
			}
		}
		if !any {
			warn(WarnNoCorrect, "no option is marked correct")
		}
	case question.MatchingPayload:
		if len(p.Left) == 0 || len(p.Right) == 0 {
			warn(WarnEmptyMatching, "matching question needs both left and right items")
		}
	}
	return out
}
