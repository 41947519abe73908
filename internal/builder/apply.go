package builder

import (
	"errors"
	"fmt"

	"github.com/prepdeck/prepdeck/internal/marker"
	"github.com/prepdeck/prepdeck/internal/question"
)

var ErrBadTarget = errors.New("builder: command target out of range")

// Apply executes one edit and returns the resulting test. The input test
// is never mutated: the edited path is copied, untouched parts and
// questions are shared. Transitions are synchronous and total for valid
// targets.
func Apply(t question.Test, cmd Command) (question.Test, error) {
	switch c := cmd.(type) {
	case SetTestTitle:
		t.Title = c.Title
		return t, nil
	case SetActive:
		t.Active = c.Active
		return t, nil
	case SetExplanationURL:
		t.ExplanationURL = c.URL
		return t, nil

	case AddPart:
		parts := clonePartSlice(t.Parts)
		t.Parts = append(parts, question.Part{Title: c.Title})
		return t, nil

	case RemovePart:
		if c.Part < 0 || c.Part >= len(t.Parts) {
			return t, targetErr(c.Part)
		}
		parts := clonePartSlice(t.Parts)
		t.Parts = append(parts[:c.Part], parts[c.Part+1:]...)
		return t, nil

	case MovePart:
		if c.From < 0 || c.From >= len(t.Parts) || c.To < 0 || c.To >= len(t.Parts) {
			return t, targetErr(c.From)
		}
		parts := clonePartSlice(t.Parts)
		p := parts[c.From]
		parts = append(parts[:c.From], parts[c.From+1:]...)
		parts = append(parts[:c.To], append([]question.Part{p}, parts[c.To:]...)...)
		t.Parts = parts
		return t, nil

	case SetPartTitle:
		return withPart(t, c.Part, func(p question.Part) question.Part {
			p.Title = c.Title
			return p
		})

	case SetPartAsset:
		return withPart(t, c.Part, func(p question.Part) question.Part {
			if c.Audio != "" {
				p.Audio = c.Audio
			}
			if c.Image != "" {
				p.Image = c.Image
			}
			return p
		})

	case AddQuestion:
		payload, err := question.DefaultPayload(c.Type)
		if err != nil {
			return t, err
		}
		return withPart(t, c.Part, func(p question.Part) question.Part {
			p.Questions = append(cloneQuestionSlice(p.Questions), question.Question{
				Type:    c.Type,
				Payload: payload,
			})
			return p
		})

	case RemoveQuestion:
		return withPart(t, c.Part, func(p question.Part) question.Part {
			if c.Index < 0 || c.Index >= len(p.Questions) {
				return p
			}
			qs := cloneQuestionSlice(p.Questions)
			p.Questions = append(qs[:c.Index], qs[c.Index+1:]...)
			return p
		})

	case ChangeType:
		payload, err := question.DefaultPayload(c.Type)
		if err != nil {
			return t, err
		}
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			if q.Type == c.Type {
				return q
			}
			q.Type = c.Type
			q.Payload = payload
			return q
		})

	case SetHeader:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			q.Header = c.Header
			return q
		})
	case SetInstruction:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			q.Instruction = c.Instruction
			return q
		})
	case SetTaskPrompt:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			q.TaskPrompt = c.Prompt
			return q
		})
	case StageImage:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			q.Image = c.Image
			q.PendingImage = true
			return q
		})

	case EditText:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			p, ok := q.Payload.(question.GapTextPayload)
			if !ok {
				return q
			}
			q.Payload = question.GapTextPayload{
				Text: c.Text,
				Gaps: marker.Resync(c.Text, p.Gaps),
			}
			return q
		})

	case SetGapAnswer:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			p, ok := q.Payload.(question.GapTextPayload)
			if !ok || c.Slot < 0 || c.Slot >= len(p.Gaps) {
				return q
			}
			gaps := make([]question.Gap, len(p.Gaps))
			copy(gaps, p.Gaps)
			gaps[c.Slot].Answer = c.Answer
			q.Payload = question.GapTextPayload{Text: p.Text, Gaps: gaps}
			return q
		})

	case AddOption:
		return withOptions(t, c.Part, c.Index, func(opts []question.Option) []question.Option {
			return append(opts, question.Option{Label: question.NextLabel(optionLabels(opts))})
		})

	case RemoveOption:
		edited, err := withOptions(t, c.Part, c.Index, func(opts []question.Option) []question.Option {
			kept := opts[:0:0]
			for _, o := range opts {
				if o.Label != c.Label {
					kept = append(kept, o)
				}
			}
			return question.Relabel(kept)
		})
		if err != nil {
			return t, err
		}
		// A removed single-choice answer falls back to the first option.
		return withQuestion(edited, c.Part, c.Index, func(q question.Question) question.Question {
			if p, ok := q.Payload.(question.ChoicePayload); ok {
				if !hasOptionLabel(p.Options, p.Answer) {
					if len(p.Options) > 0 {
						p.Answer = p.Options[0].Label
					} else {
						p.Answer = ""
					}
					q.Payload = p
				}
			}
			return q
		})

	case SetOptionText:
		return withOptions(t, c.Part, c.Index, func(opts []question.Option) []question.Option {
			out := make([]question.Option, len(opts))
			copy(out, opts)
			for i := range out {
				if out[i].Label == c.Label {
					out[i].Text = c.Text
				}
			}
			return out
		})

	case SetAnswerLabel:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			if p, ok := q.Payload.(question.ChoicePayload); ok && hasOptionLabel(p.Options, c.Label) {
				p.Answer = c.Label
				q.Payload = p
			}
			return q
		})

	case ToggleCorrect:
		return withOptions(t, c.Part, c.Index, func(opts []question.Option) []question.Option {
			out := make([]question.Option, len(opts))
			copy(out, opts)
			for i := range out {
				if out[i].Label == c.Label {
					out[i].Correct = !out[i].Correct
				}
			}
			return out
		})

	case AddGroupItem:
		return withGroup(t, c.Part, c.Index, func(items []question.GroupItem) []question.GroupItem {
			def, _ := question.DefaultPayload(question.MultipleChoiceGroup)
			return append(items, def.(question.GroupPayload).Items[0])
		})

	case RemoveGroupItem:
		return withGroup(t, c.Part, c.Index, func(items []question.GroupItem) []question.GroupItem {
			kept := items[:0:0]
			for _, it := range items {
				if it.ID != c.ItemID {
					kept = append(kept, it)
				}
			}
			return kept
		})

	case SetGroupItemPrompt:
		return withGroupItem(t, c.Part, c.Index, c.ItemID, func(it question.GroupItem) question.GroupItem {
			it.Prompt = c.Prompt
			return it
		})

	case SetGroupItemCorrect:
		return withGroupItem(t, c.Part, c.Index, c.ItemID, func(it question.GroupItem) question.GroupItem {
			for _, o := range it.Options {
				if o.Label == c.Label {
					it.Correct = c.Label
				}
			}
			return it
		})

	case RemoveGroupItemOption:
		return withGroupItem(t, c.Part, c.Index, c.ItemID, func(it question.GroupItem) question.GroupItem {
			if len(it.Options) <= 2 {
				return it // items never drop below two options
			}
			return it.RemoveOption(c.Label)
		})

	case SetTextAnswer:
		return withQuestion(t, c.Part, c.Index, func(q question.Question) question.Question {
			switch p := q.Payload.(type) {
			case question.ShortAnswerPayload:
				p.Answer = c.Answer
				q.Payload = p
			case question.TrueFalsePayload:
				p.Answer = c.Answer
				q.Payload = p
			}
			return q
		})
	}
	return t, fmt.Errorf("builder: unhandled command %T", cmd)
}

func targetErr(i int) error { return fmt.Errorf("%w: %d", ErrBadTarget, i) }

func withPart(t question.Test, idx int, fn func(question.Part) question.Part) (question.Test, error) {
	if idx < 0 || idx >= len(t.Parts) {
		return t, targetErr(idx)
	}
	parts := clonePartSlice(t.Parts)
	parts[idx] = fn(parts[idx])
	t.Parts = parts
	return t, nil
}

func withQuestion(t question.Test, part, idx int, fn func(question.Question) question.Question) (question.Test, error) {
	return withPart(t, part, func(p question.Part) question.Part {
		if idx < 0 || idx >= len(p.Questions) {
			return p
		}
		qs := cloneQuestionSlice(p.Questions)
		qs[idx] = fn(qs[idx])
		p.Questions = qs
		return p
	})
}

func withOptions(t question.Test, part, idx int, fn func([]question.Option) []question.Option) (question.Test, error) {
	return withQuestion(t, part, idx, func(q question.Question) question.Question {
		switch p := q.Payload.(type) {
		case question.ChoicePayload:
			p.Options = fn(p.Options)
			q.Payload = p
		case question.MultiResponsePayload:
			p.Options = fn(p.Options)
			q.Payload = p
		}
		return q
	})
}

func withGroup(t question.Test, part, idx int, fn func([]question.GroupItem) []question.GroupItem) (question.Test, error) {
	return withQuestion(t, part, idx, func(q question.Question) question.Question {
		if p, ok := q.Payload.(question.GroupPayload); ok {
			items := make([]question.GroupItem, len(p.Items))
			copy(items, p.Items)
			q.Payload = question.GroupPayload{Items: fn(items)}
		}
		return q
	})
}

func withGroupItem(t question.Test, part, idx int, itemID string, fn func(question.GroupItem) question.GroupItem) (question.Test, error) {
	return withGroup(t, part, idx, func(items []question.GroupItem) []question.GroupItem {
		for i := range items {
			if items[i].ID == itemID {
				items[i] = fn(items[i])
			}
		}
		return items
	})
}

func hasOptionLabel(opts []question.Option, label string) bool {
	for _, o := range opts {
		if o.Label == label {
			return true
		}
	}
	return false
}

func optionLabels(opts []question.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func clonePartSlice(parts []question.Part) []question.Part {
	out := make([]question.Part, len(parts))
	copy(out, parts)
	return out
}

func cloneQuestionSlice(qs []question.Question) []question.Question {
	out := make([]question.Question, len(qs))
	copy(out, qs)
	return out
}
