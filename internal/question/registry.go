package question

import (
	"errors"
	"fmt"
)

// ErrUnknownType marks a question type not present in the registry. Callers
// fall back to a generic short-answer question and report the error; they
// must not drop the question silently.
var ErrUnknownType = errors.New("unknown question type")

var allTypes = []QType{
	MultipleChoice, MultipleChoiceGroup, Matching, MapDiagram, Table,
	GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion,
	FlowChart, Form, ShortAnswer, TrueFalse, MultipleResponse,
}

// Types returns every registered question type, in a stable order.
func Types() []QType {
	out := make([]QType, len(allTypes))
	copy(out, allTypes)
	return out
}

// Known reports whether t is a registered type.
func Known(t QType) bool {
	for _, k := range allTypes {
		if k == t {
			return true
		}
	}
	return false
}

// DefaultPayload returns a fresh, independent default payload for t. No
// mutable structure is shared between calls: editing one default can never
// leak into another question.
func DefaultPayload(t QType) (Payload, error) {
	switch t {
	case MultipleChoice:
		return ChoicePayload{Options: defaultOptions(2)}, nil
	case MultipleResponse:
		return MultiResponsePayload{Options: defaultOptions(3)}, nil
	case MultipleChoiceGroup:
		return GroupPayload{Items: []GroupItem{{
			Options: defaultOptions(2),
			Correct: "A",
			Points:  1,
		}}}, nil
	case Matching:
		return MatchingPayload{Answers: map[int]int{}}, nil
	case MapDiagram:
		return MapPayload{}, nil
	case Table:
		return TablePayload{Rows: [][]TableCell{{{}, {}}, {{}, {}}}}, nil
	case GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion, FlowChart:
		return GapTextPayload{}, nil
	case Form:
		return FormPayload{}, nil
	case ShortAnswer:
		return ShortAnswerPayload{}, nil
	case TrueFalse:
		return TrueFalsePayload{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// Fields returns the canonical storage field names for t, beyond the
// fields common to every type: the serializer writes exactly these, and
// the normalizer reads them first (legacy read aliases such as "options"
// or "answer_index" are accepted on top, never written back).
func Fields(t QType) ([]string, error) {
	switch t {
	case MultipleChoice:
		return []string{"answer_options", "answer", "correct_answers"}, nil
	case MultipleResponse:
		return []string{"answer_options", "correct_answers"}, nil
	case MultipleChoiceGroup:
		return []string{"items", "correct_answers"}, nil
	case Matching:
		return []string{"left_items", "right_items", "answers"}, nil
	case MapDiagram:
		return []string{"points", "correct_answers"}, nil
	case Table:
		return []string{"rows", "correct_answers"}, nil
	case GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion, FlowChart:
		return []string{"question_text", "gaps", "correct_answers"}, nil
	case Form:
		return []string{"fields", "correct_answers"}, nil
	case ShortAnswer:
		return []string{"answer", "correct_answers"}, nil
	case TrueFalse:
		return []string{"answer", "correct_answers"}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
}

// ExpectedPayload reports whether p is the payload shape t requires.
func ExpectedPayload(t QType, p Payload) bool {
	switch t {
	case MultipleChoice:
		_, ok := p.(ChoicePayload)
		return ok
	case MultipleResponse:
		_, ok := p.(MultiResponsePayload)
		return ok
	case MultipleChoiceGroup:
		_, ok := p.(GroupPayload)
		return ok
	case Matching:
		_, ok := p.(MatchingPayload)
		return ok
	case MapDiagram:
		_, ok := p.(MapPayload)
		return ok
	case Table:
		_, ok := p.(TablePayload)
		return ok
	case GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion, FlowChart:
		_, ok := p.(GapTextPayload)
		return ok
	case Form:
		_, ok := p.(FormPayload)
		return ok
	case ShortAnswer:
		_, ok := p.(ShortAnswerPayload)
		return ok
	case TrueFalse:
		_, ok := p.(TrueFalsePayload)
		return ok
	}
	return false
}

// Fallback builds the generic free-text question used when a stored type is
// not in the registry.
func Fallback(id string) Question {
	return Question{ID: id, Type: ShortAnswer, Payload: ShortAnswerPayload{}}
}

func defaultOptions(n int) []Option {
	opts := make([]Option, 0, n)
	for i := 0; i < n; i++ {
		opts = append(opts, Option{Label: NextLabel(labelsOf(opts))})
	}
	return opts
}
