package builder

import (
	"errors"
	"reflect"
	"testing"

	"github.com/prepdeck/prepdeck/internal/question"
)

func gapTest() question.Test {
	return question.Test{
		ID: "t1",
		Parts: []question.Part{{
			ID: "p1",
			Questions: []question.Question{{
				ID:   "q1",
				Type: question.GapFill,
				Payload: question.GapTextPayload{
					Text: "fill [[1]] and [[2]]",
					Gaps: []question.Gap{
						{Number: 1, Answer: "one"},
						{Number: 2, Answer: "two"},
					},
				},
			}},
		}},
	}
}

func mustApply(t *testing.T, tt question.Test, cmd Command) question.Test {
	t.Helper()
	out, err := Apply(tt, cmd)
	if err != nil {
		t.Fatalf("Apply(%T): %v", cmd, err)
	}
	return out
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	orig := gapTest()
	snapshot := gapTest()

	_ = mustApply(t, orig, EditText{Part: 0, Index: 0, Text: "only [[9]] now"})
	_ = mustApply(t, orig, SetPartTitle{Part: 0, Title: "renamed"})

	if !reflect.DeepEqual(orig, snapshot) {
		t.Errorf("input test mutated:\n got %+v\nwant %+v", orig, snapshot)
	}
}

func TestEditTextResyncsGaps(t *testing.T) {
	out := mustApply(t, gapTest(), EditText{Part: 0, Index: 0, Text: "now [[1]] then [[5]] then [[2]]"})
	p := out.Parts[0].Questions[0].Payload.(question.GapTextPayload)
	want := []question.Gap{
		{Number: 1, Answer: "one"},
		{Number: 5, Answer: "two"},
		{Number: 2},
	}
	if !reflect.DeepEqual(p.Gaps, want) {
		t.Errorf("gaps = %+v, want %+v", p.Gaps, want)
	}
}

func TestSetGapAnswer(t *testing.T) {
	out := mustApply(t, gapTest(), SetGapAnswer{Part: 0, Index: 0, Slot: 1, Answer: "2 | two"})
	p := out.Parts[0].Questions[0].Payload.(question.GapTextPayload)
	if p.Gaps[1].Answer != "2 | two" {
		t.Errorf("gaps = %+v", p.Gaps)
	}
	// out-of-range slot is a no-op
	same := mustApply(t, gapTest(), SetGapAnswer{Part: 0, Index: 0, Slot: 9, Answer: "x"})
	if !reflect.DeepEqual(same, gapTest()) {
		t.Errorf("out-of-range slot changed the test")
	}
}

func TestChangeTypeResetsPayload(t *testing.T) {
	out := mustApply(t, gapTest(), ChangeType{Part: 0, Index: 0, Type: question.MultipleChoice})
	q := out.Parts[0].Questions[0]
	if q.Type != question.MultipleChoice {
		t.Fatalf("type = %s", q.Type)
	}
	p, ok := q.Payload.(question.ChoicePayload)
	if !ok || len(p.Options) != 2 {
		t.Errorf("payload = %+v, want the fresh default", q.Payload)
	}
}

func TestChangeTypeSameTypeKeepsPayload(t *testing.T) {
	out := mustApply(t, gapTest(), ChangeType{Part: 0, Index: 0, Type: question.GapFill})
	p := out.Parts[0].Questions[0].Payload.(question.GapTextPayload)
	if len(p.Gaps) != 2 {
		t.Errorf("same-type change must not reset authored gaps: %+v", p)
	}
}

func TestChangeTypeUnknown(t *testing.T) {
	if _, err := Apply(gapTest(), ChangeType{Part: 0, Index: 0, Type: question.QType("essay")}); !errors.Is(err, question.ErrUnknownType) {
		t.Errorf("want ErrUnknownType, got %v", err)
	}
}

func choiceTest() question.Test {
	return question.Test{
		ID: "t1",
		Parts: []question.Part{{
			Questions: []question.Question{{
				ID:   "q1",
				Type: question.MultipleChoice,
				Payload: question.ChoicePayload{
					Options: []question.Option{
						{Label: "A", Text: "a"},
						{Label: "B", Text: "b"},
						{Label: "C", Text: "c"},
					},
					Answer: "B",
				},
			}},
		}},
	}
}

func TestRemoveOptionRelabelsAndFixesAnswer(t *testing.T) {
	out := mustApply(t, choiceTest(), RemoveOption{Part: 0, Index: 0, Label: "B"})
	p := out.Parts[0].Questions[0].Payload.(question.ChoicePayload)
	if len(p.Options) != 2 || p.Options[1].Label != "B" || p.Options[1].Text != "c" {
		t.Errorf("options = %+v", p.Options)
	}
	if p.Answer != "A" {
		t.Errorf("answer = %q, want fallback to first option", p.Answer)
	}
}

func TestAddOptionUsesNextLabel(t *testing.T) {
	out := mustApply(t, choiceTest(), AddOption{Part: 0, Index: 0})
	p := out.Parts[0].Questions[0].Payload.(question.ChoicePayload)
	if len(p.Options) != 4 || p.Options[3].Label != "D" {
		t.Errorf("options = %+v", p.Options)
	}
}

func TestSetAnswerLabelRejectsUnknownLabel(t *testing.T) {
	out := mustApply(t, choiceTest(), SetAnswerLabel{Part: 0, Index: 0, Label: "Z"})
	p := out.Parts[0].Questions[0].Payload.(question.ChoicePayload)
	if p.Answer != "B" {
		t.Errorf("answer = %q, unknown label must not stick", p.Answer)
	}
}

func TestMovePart(t *testing.T) {
	tt := question.Test{Parts: []question.Part{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	out := mustApply(t, tt, MovePart{From: 2, To: 0})
	ids := []string{out.Parts[0].ID, out.Parts[1].ID, out.Parts[2].ID}
	if !reflect.DeepEqual(ids, []string{"c", "a", "b"}) {
		t.Errorf("order = %v", ids)
	}
}

func TestBadTargets(t *testing.T) {
	tt := question.Test{Parts: []question.Part{{}}}
	cases := []Command{
		RemovePart{Part: 5},
		SetPartTitle{Part: -1, Title: "x"},
		MovePart{From: 0, To: 3},
	}
	for _, cmd := range cases {
		if _, err := Apply(tt, cmd); !errors.Is(err, ErrBadTarget) {
			t.Errorf("%T: want ErrBadTarget, got %v", cmd, err)
		}
	}
}

func TestGroupItemOptionFloor(t *testing.T) {
	tt := question.Test{Parts: []question.Part{{
		Questions: []question.Question{{
			ID:   "q1",
			Type: question.MultipleChoiceGroup,
			Payload: question.GroupPayload{Items: []question.GroupItem{{
				ID:      "i1",
				Correct: "A",
				Options: []question.Option{{Label: "A"}, {Label: "B"}},
			}}},
		}},
	}}}
	out := mustApply(t, tt, RemoveGroupItemOption{Part: 0, Index: 0, ItemID: "i1", Label: "B"})
	items := out.Parts[0].Questions[0].Payload.(question.GroupPayload).Items
	if len(items[0].Options) != 2 {
		t.Errorf("two-option floor violated: %+v", items[0].Options)
	}
}

func TestStageImageMarksPending(t *testing.T) {
	out := mustApply(t, gapTest(), StageImage{Part: 0, Index: 0, Image: "blob:tmp"})
	q := out.Parts[0].Questions[0]
	if q.Image != "blob:tmp" || !q.PendingImage {
		t.Errorf("question = %+v", q)
	}
}
