package wire

import (
	"testing"

	"github.com/prepdeck/prepdeck/internal/question"
)

// filledPayload returns the registry default for typ with answers set, so
// serializing it exercises every field the type writes.
func filledPayload(t *testing.T, typ question.QType) question.Payload {
	t.Helper()
	p, err := question.DefaultPayload(typ)
	if err != nil {
		t.Fatalf("DefaultPayload(%s): %v", typ, err)
	}
	switch pl := p.(type) {
	case question.ChoicePayload:
		pl.Answer = "A"
		return pl
	case question.MultiResponsePayload:
		pl.Options[0].Correct = true
		return pl
	case question.MatchingPayload:
		pl.Left = []question.MatchItem{{ID: "l1", Text: "left"}}
		pl.Right = []question.Option{{Label: "A", Text: "right"}}
		pl.Answers = map[int]int{0: 0}
		return pl
	case question.MapPayload:
		pl.Points = []question.MapPoint{{ID: "p1", X: 10, Y: 20, Label: "1", Answer: "x"}}
		return pl
	case question.TablePayload:
		pl.Rows[0][0].Gap = &question.Gap{Number: 1, Answer: "x"}
		return pl
	case question.GapTextPayload:
		pl.Text = "fill [[1]] here"
		pl.Gaps = []question.Gap{{Number: 1, Answer: "x"}}
		return pl
	case question.FormPayload:
		pl.Fields = []question.FormField{{ID: "f1", Label: "Name", Answer: "x"}}
		return pl
	case question.ShortAnswerPayload:
		pl.Answer = "x"
		return pl
	case question.TrueFalsePayload:
		pl.Answer = "true"
		return pl
	}
	return p // group default already carries a correct label
}

// The serializer's per-type writes and the registry's Fields listing are
// maintained by hand in two places; this pins them to each other.
func TestSerializeWritesRegistryFields(t *testing.T) {
	for _, typ := range question.Types() {
		want, err := question.Fields(typ)
		if err != nil {
			t.Fatalf("Fields(%s): %v", typ, err)
		}
		rec := Serialize(question.Question{ID: "q1", Type: typ, Payload: filledPayload(t, typ)})

		got := map[string]bool{}
		for k := range rec.ExtraData {
			got[k] = true
		}
		if len(rec.AnswerOptions) > 0 {
			got["answer_options"] = true
		}
		if len(rec.CorrectAnswers) > 0 {
			got["correct_answers"] = true
		}
		if rec.QuestionText != "" {
			got["question_text"] = true
		}

		for _, f := range want {
			if !got[f] {
				t.Errorf("%s: field %q listed in Fields but never written", typ, f)
			}
			delete(got, f)
		}
		for k := range got {
			t.Errorf("%s: wrote %q, which Fields does not list", typ, k)
		}
	}
}
