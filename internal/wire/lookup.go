package wire

import (
	"encoding/json"
	"strings"

	"github.com/prepdeck/prepdeck/internal/question"
)

// Each logical field that historically lived in more than one place gets
// one precedence-ordered lookup function here, so the fallback chains are
// explicit and testable in isolation: top-level field first, then the
// extra_data bag, then a type-appropriate derived value at the call site.

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func fromBag[T any](bag map[string]json.RawMessage, key string) (T, bool) {
	var zero T
	raw, ok := bag[key]
	if !ok || len(raw) == 0 {
		return zero, false
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, false
	}
	return v, true
}

func bagString(bag map[string]json.RawMessage, key string) string {
	s, _ := fromBag[string](bag, key)
	return s
}

// questionText: top-level question_text, then bag "question_text", then
// the legacy bag key "text".
func questionText(r Record) string {
	return firstNonEmpty(r.QuestionText,
		bagString(r.ExtraData, "question_text"),
		bagString(r.ExtraData, "text"))
}

// imageRef: top-level image, then the legacy inline image_base64 column,
// then bag "image".
func imageRef(r Record) string {
	return firstNonEmpty(r.Image, r.ImageBase64, bagString(r.ExtraData, "image"))
}

// optionRecords: top-level answer_options, then bag "answer_options", then
// the legacy bag key "options".
func optionRecords(r Record) []OptionRecord {
	if len(r.AnswerOptions) > 0 {
		return r.AnswerOptions
	}
	if opts, ok := fromBag[[]OptionRecord](r.ExtraData, "answer_options"); ok && len(opts) > 0 {
		return opts
	}
	opts, _ := fromBag[[]OptionRecord](r.ExtraData, "options")
	return opts
}

// gapRecords: bag "gaps" only; gap lists never lived top-level. The
// normalizer derives gaps from correct_answers when this returns none.
func gapRecords(r Record) []GapRecord {
	gaps, _ := fromBag[[]GapRecord](r.ExtraData, "gaps")
	return gaps
}

// singleAnswer resolves the one correct label for choice-family questions:
// bag "answer_index" into the labeled option list, then the explicit bag
// "answer" label, then the first element of correct_answers. The index is
// consulted first: records that carry both kept the index current and the
// label stale. Options must already be normalized so auto-assigned labels
// resolve too.
func singleAnswer(r Record, options []question.Option) string {
	if idx, ok := fromBag[int](r.ExtraData, "answer_index"); ok && idx >= 0 && idx < len(options) {
		return options[idx].Label
	}
	if a := bagString(r.ExtraData, "answer"); a != "" {
		return a
	}
	if len(r.CorrectAnswers) > 0 {
		return r.CorrectAnswers[0]
	}
	return ""
}

// textAnswer resolves a free-text answer: bag "answer", then the
// historical correct_answers array re-joined with the alternate separator.
func textAnswer(r Record) string {
	if a := bagString(r.ExtraData, "answer"); a != "" {
		return a
	}
	if len(r.CorrectAnswers) > 0 {
		return strings.Join(r.CorrectAnswers, " | ")
	}
	return ""
}
