package wire

import (
	"strconv"

	"github.com/google/uuid"

	"github.com/prepdeck/prepdeck/internal/question"
)

// Serialize converts a canonical question back into the storage record the
// persistence boundary accepts. It is the normalizer's approximate inverse
// rather than byte-exact: the storage format legitimately admits several
// historical shapes, and downstream readers expect some values both
// top-level and in the extra_data bag, so both copies are written. New
// sub-structures get stable ids here; UI-only transients (PendingImage)
// are dropped.
func Serialize(q question.Question) Record {
	rec := Record{
		ID:           idOr(q.ID),
		QuestionType: string(q.Type),
		Header:       q.Header,
		Instruction:  q.Instruction,
		TaskPrompt:   q.TaskPrompt,
		Image:        q.Image,
		Points:       q.Points,
	}
	if !question.ExpectedPayload(q.Type, q.Payload) {
		if p, err := question.DefaultPayload(q.Type); err == nil {
			q.Payload = p
		}
	}

	switch p := q.Payload.(type) {
	case question.ChoicePayload:
		opts := serializeOptions(p.Options)
		rec.AnswerOptions = opts
		rec.setBag("answer_options", opts)
		if p.Answer != "" {
			rec.CorrectAnswers = []string{p.Answer}
			rec.setBag("answer", p.Answer)
		}

	case question.MultiResponsePayload:
		opts := serializeOptions(p.Options)
		rec.AnswerOptions = opts
		rec.setBag("answer_options", opts)
		var total float64
		for _, o := range p.Options {
			if o.Correct {
				rec.CorrectAnswers = append(rec.CorrectAnswers, o.Label)
				total += o.Points
			}
		}
		if total > 0 {
			rec.Points = total
		}

	case question.GroupPayload:
		items := make([]GroupItemRecord, 0, len(p.Items))
		var total float64
		for _, it := range p.Items {
			items = append(items, GroupItemRecord{
				ID:      idOr(it.ID),
				Prompt:  it.Prompt,
				Options: serializeOptions(it.Options),
				Correct: it.Correct,
				Points:  it.Points,
			})
			rec.CorrectAnswers = append(rec.CorrectAnswers, it.Correct)
			total += it.Points
		}
		rec.setBag("items", items)
		rec.Points = total

	case question.MatchingPayload:
		left := make([]MatchItemRecord, 0, len(p.Left))
		for _, l := range p.Left {
			left = append(left, MatchItemRecord{ID: idOr(l.ID), Text: l.Text})
		}
		rec.setBag("left_items", left)
		rec.setBag("right_items", serializeOptions(p.Right))
		answers := map[string]int{}
		for li, ri := range p.Answers {
			answers[strconv.Itoa(li)] = ri
		}
		rec.setBag("answers", answers)

	case question.MapPayload:
		pts := make([]PointRecord, 0, len(p.Points))
		for _, pt := range p.Points {
			pts = append(pts, PointRecord{
				ID: idOr(pt.ID), X: pt.X, Y: pt.Y, Label: pt.Label, Answer: pt.Answer,
			})
			rec.CorrectAnswers = append(rec.CorrectAnswers, pt.Answer)
		}
		rec.setBag("points", pts)

	case question.TablePayload:
		rows := make([][]CellRecord, len(p.Rows))
		for r, row := range p.Rows {
			rows[r] = make([]CellRecord, len(row))
			for c, cell := range row {
				cr := CellRecord{Text: cell.Text}
				if cell.Gap != nil {
					cr.Number = cell.Gap.Number
					cr.Answer = cell.Gap.Answer
					rec.CorrectAnswers = append(rec.CorrectAnswers, cell.Gap.Answer)
				}
				rows[r][c] = cr
			}
		}
		rec.setBag("rows", rows)

	case question.GapTextPayload:
		rec.QuestionText = p.Text
		rec.setBag("question_text", p.Text)
		gaps := make([]GapRecord, 0, len(p.Gaps))
		for _, g := range p.Gaps {
			gaps = append(gaps, GapRecord{Number: g.Number, Answer: g.Answer})
			// historical parallel array, still read by older consumers
			rec.CorrectAnswers = append(rec.CorrectAnswers, g.Answer)
		}
		rec.setBag("gaps", gaps)

	case question.FormPayload:
		fields := make([]FieldRecord, 0, len(p.Fields))
		for _, f := range p.Fields {
			fields = append(fields, FieldRecord{ID: idOr(f.ID), Label: f.Label, Answer: f.Answer})
			rec.CorrectAnswers = append(rec.CorrectAnswers, f.Answer)
		}
		rec.setBag("fields", fields)

	case question.ShortAnswerPayload:
		if p.Answer != "" {
			rec.setBag("answer", p.Answer)
			rec.CorrectAnswers = []string{p.Answer}
		}

	case question.TrueFalsePayload:
		if p.Answer != "" {
			rec.setBag("answer", p.Answer)
			rec.CorrectAnswers = []string{p.Answer}
		}
	}
	return rec
}

// SerializeTest writes the canonical test back to its storage shape, with
// part and question order stored positionally as index+1.
func SerializeTest(t question.Test) TestRecord {
	rec := TestRecord{
		ID:             idOr(t.ID),
		Title:          t.Title,
		Active:         t.Active,
		ExplanationURL: t.ExplanationURL,
	}
	for i, p := range t.Parts {
		pr := PartRecord{
			ID:    idOr(p.ID),
			Title: p.Title,
			Order: i + 1,
			Audio: p.Audio,
			Image: p.Image,
		}
		for j, q := range p.Questions {
			qr := Serialize(q)
			qr.Order = j + 1
			pr.Questions = append(pr.Questions, qr)
		}
		rec.Parts = append(rec.Parts, pr)
	}
	return rec
}

func serializeOptions(opts []question.Option) []OptionRecord {
	out := make([]OptionRecord, 0, len(opts))
	for _, o := range opts {
		or := OptionRecord{Label: o.Label, Text: o.Text}
		if o.Label == "" {
			or.Label = question.NextLabel(recordLabels(out))
		}
		if o.Points != 0 {
			pts := o.Points
			or.Points = &pts
		}
		if o.Correct {
			c := true
			or.Correct = &c
		}
		out = append(out, or)
	}
	return out
}

func recordLabels(recs []OptionRecord) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.Label
	}
	return out
}

func idOr(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}
