// Package answers maps student responses and ground-truth answers into one
// flat composite-key space, so the grading boundary can compare the two
// sides key by key regardless of question variant.
package answers

import (
	"fmt"
	"strings"

	"github.com/prepdeck/prepdeck/internal/marker"
	"github.com/prepdeck/prepdeck/internal/question"
)

const keySep = "__"

// Key builds the composite key for one gradable unit. sub is empty for
// whole-question types (short answer, true/false).
func Key(questionID, sub string) string {
	if sub == "" {
		return questionID
	}
	return questionID + keySep + sub
}

// OptionKey identifies one labeled option: "q1__B".
func OptionKey(questionID, label string) string { return Key(questionID, label) }

// GapKey identifies one numbered gap: "q1__gap3".
func GapKey(questionID string, number int) string {
	return Key(questionID, fmt.Sprintf("gap%d", number))
}

// CellKey identifies one table answer cell by coordinates: "q1__r0c2".
func CellKey(questionID string, row, col int) string {
	return Key(questionID, fmt.Sprintf("r%dc%d", row, col))
}

// ItemKey identifies a sub-item that carries its own id (group items,
// matching prompts, map points, form fields).
func ItemKey(questionID, itemID string) string { return Key(questionID, itemID) }

// QuestionID recovers the owning question id from a composite key.
func QuestionID(key string) string {
	if i := strings.Index(key, keySep); i >= 0 {
		return key[:i]
	}
	return key
}

// ResponseMap is the flat in-progress response state of one test session.
// Values are strings, booleans or string slices depending on the question
// type; the map is always replaced, never mutated in place.
type ResponseMap map[string]interface{}

// Capture writes one interaction and returns a new map. Single-select
// contexts (multiple choice, true/false) clear sibling keys under the same
// question id before writing; multi-select, gap and per-item contexts
// never touch siblings. Last write wins.
func Capture(m ResponseMap, q question.Question, key string, value interface{}) ResponseMap {
	out := make(ResponseMap, len(m)+1)
	qid := q.ID
	for k, v := range m {
		if q.Type.SingleSelect() && QuestionID(k) == qid {
			continue
		}
		out[k] = v
	}
	out[key] = value
	return out
}

// Clear removes one key, returning a new map.
func Clear(m ResponseMap, key string) ResponseMap {
	out := make(ResponseMap, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// Answer is one ground-truth entry: the literal authored value plus its
// |-split acceptable alternates in comparable form. Comparison itself is
// the grading boundary's business.
type Answer struct {
	Value  string   `json:"value"`
	Accept []string `json:"accept,omitempty"`
}

func textAnswer(s string) Answer {
	return Answer{Value: s, Accept: marker.Alternates(s)}
}

// ExtractKey derives the minimal ground-truth structure for q, keyed
// exactly like captured student responses. Selected options map to the
// literal "true" so a captured boolean selection compares positionally:
// a multiple-response student pick of {B} matches the key entry for B and
// nothing else.
func ExtractKey(q question.Question) map[string]Answer {
	out := map[string]Answer{}
	switch p := q.Payload.(type) {
	case question.ChoicePayload:
		if p.Answer != "" {
			out[OptionKey(q.ID, p.Answer)] = Answer{Value: "true"}
		}
	case question.MultiResponsePayload:
		for _, o := range p.Options {
			if o.Correct {
				out[OptionKey(q.ID, o.Label)] = Answer{Value: "true"}
			}
		}
	case question.GroupPayload:
		for _, it := range p.Items {
			out[ItemKey(q.ID, it.ID)] = Answer{Value: it.Correct}
		}
	case question.MatchingPayload:
		for li, ri := range p.Answers {
			if li < 0 || li >= len(p.Left) || ri < 0 || ri >= len(p.Right) {
				continue
			}
			out[ItemKey(q.ID, p.Left[li].ID)] = Answer{Value: p.Right[ri].Label}
		}
	case question.MapPayload:
		for _, pt := range p.Points {
			out[ItemKey(q.ID, pt.ID)] = textAnswer(pt.Answer)
		}
	case question.TablePayload:
		for r, row := range p.Rows {
			for c, cell := range row {
				if cell.Gap != nil {
					out[CellKey(q.ID, r, c)] = textAnswer(cell.Gap.Answer)
				}
			}
		}
	case question.GapTextPayload:
		for _, g := range p.Gaps {
			out[GapKey(q.ID, g.Number)] = textAnswer(g.Answer)
		}
	case question.FormPayload:
		for _, f := range p.Fields {
			out[ItemKey(q.ID, f.ID)] = textAnswer(f.Answer)
		}
	case question.ShortAnswerPayload:
		if p.Answer != "" {
			out[q.ID] = textAnswer(p.Answer)
		}
	case question.TrueFalsePayload:
		if p.Answer != "" {
			out[q.ID] = Answer{Value: p.Answer}
		}
	}
	return out
}

// ExtractTestKey flattens ExtractKey across every question of a test.
func ExtractTestKey(t question.Test) map[string]Answer {
	out := map[string]Answer{}
	for _, p := range t.Parts {
		for _, q := range p.Questions {
			for k, v := range ExtractKey(q) {
				out[k] = v
			}
		}
	}
	return out
}
