package wire

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/prepdeck/prepdeck/internal/marker"
	"github.com/prepdeck/prepdeck/internal/question"
)

// Normalize converts a persisted question record into the canonical model.
// It is pure and total for registered types: malformed input for a known
// type degrades to a best-effort partial question (missing pieces default
// per the registry) instead of failing the whole test load. Only an
// unregistered question_type produces an error; even then the returned
// question is a usable generic free-text fallback.
func Normalize(rec Record) (question.Question, error) {
	q := question.Question{
		ID:          rec.ID,
		Type:        question.QType(rec.QuestionType),
		Header:      rec.Header,
		Instruction: rec.Instruction,
		TaskPrompt:  rec.TaskPrompt,
		Image:       imageRef(rec),
		Points:      rec.Points,
	}

	switch q.Type {
	case question.MultipleChoice:
		opts := normalizeOptions(optionRecords(rec))
		q.Payload = question.ChoicePayload{
			Options: opts,
			Answer:  singleAnswer(rec, opts),
		}

	case question.MultipleResponse:
		recs := optionRecords(rec)
		opts := normalizeOptions(recs)
		correct := map[string]bool{}
		for _, a := range rec.CorrectAnswers {
			correct[a] = true
		}
		for i := range opts {
			if recs[i].Correct != nil {
				opts[i].Correct = *recs[i].Correct
			} else if correct[opts[i].Label] {
				opts[i].Correct = true
			}
		}
		q.Payload = question.MultiResponsePayload{Options: opts}

	case question.MultipleChoiceGroup:
		recs, _ := fromBag[[]GroupItemRecord](rec.ExtraData, "items")
		items := make([]question.GroupItem, 0, len(recs))
		for _, ir := range recs {
			items = append(items, normalizeGroupItem(ir))
		}
		q.Payload = question.GroupPayload{Items: items}

	case question.Matching:
		left, _ := fromBag[[]MatchItemRecord](rec.ExtraData, "left_items")
		right, _ := fromBag[[]OptionRecord](rec.ExtraData, "right_items")
		rawAnswers, _ := fromBag[map[string]int](rec.ExtraData, "answers")
		p := question.MatchingPayload{Answers: map[int]int{}}
		for _, l := range left {
			p.Left = append(p.Left, question.MatchItem{ID: l.ID, Text: l.Text})
		}
		p.Right = normalizeOptions(right)
		for k, v := range rawAnswers {
			li, err := strconv.Atoi(k)
			if err != nil || li < 0 || li >= len(p.Left) || v < 0 || v >= len(p.Right) {
				continue
			}
			p.Answers[li] = v
		}
		q.Payload = p

	case question.MapDiagram:
		pts, _ := fromBag[[]PointRecord](rec.ExtraData, "points")
		p := question.MapPayload{}
		for _, pr := range pts {
			p.Points = append(p.Points, question.MapPoint{
				ID: pr.ID, X: clampPct(pr.X), Y: clampPct(pr.Y),
				Label: pr.Label, Answer: pr.Answer,
			})
		}
		q.Payload = p

	case question.Table:
		rows, ok := fromBag[[][]CellRecord](rec.ExtraData, "rows")
		if !ok {
			// table without cells: degrade to the registry default grid
			q.Payload = mustDefault(question.Table)
			break
		}
		p := question.TablePayload{Rows: make([][]question.TableCell, len(rows))}
		for r, row := range rows {
			p.Rows[r] = make([]question.TableCell, len(row))
			for c, cell := range row {
				tc := question.TableCell{Text: cell.Text}
				if cell.Number > 0 {
					tc.Gap = &question.Gap{Number: cell.Number, Answer: cell.Answer}
				}
				p.Rows[r][c] = tc
			}
		}
		q.Payload = p

	case question.GapFill, question.SentenceCompletion, question.SummaryCompletion,
		question.NoteCompletion, question.FlowChart:
		text := questionText(rec)
		gaps := gapRecords(rec)
		p := question.GapTextPayload{Text: text}
		if len(gaps) > 0 {
			for _, g := range gaps {
				p.Gaps = append(p.Gaps, question.Gap{Number: g.Number, Answer: g.Answer})
			}
		} else if len(rec.CorrectAnswers) > 0 {
			// Older records kept only a parallel answer array; re-derive the
			// gap list positionally against the markers in the text.
			nums := marker.Extract(text)
			for i, a := range rec.CorrectAnswers {
				n := i + 1
				if i < len(nums) {
					n = nums[i]
				}
				p.Gaps = append(p.Gaps, question.Gap{Number: n, Answer: a})
			}
		}
		q.Payload = p

	case question.Form:
		fields, _ := fromBag[[]FieldRecord](rec.ExtraData, "fields")
		p := question.FormPayload{}
		for _, fr := range fields {
			p.Fields = append(p.Fields, question.FormField{ID: fr.ID, Label: fr.Label, Answer: fr.Answer})
		}
		q.Payload = p

	case question.ShortAnswer:
		q.Payload = question.ShortAnswerPayload{Answer: textAnswer(rec)}

	case question.TrueFalse:
		q.Payload = question.TrueFalsePayload{Answer: strings.ToLower(textAnswer(rec))}

	default:
		fb := question.Fallback(rec.ID)
		fb.Header = rec.Header
		fb.Instruction = rec.Instruction
		fb.TaskPrompt = rec.TaskPrompt
		fb.Image = imageRef(rec)
		fb.Points = rec.Points
		fb.Payload = question.ShortAnswerPayload{Answer: textAnswer(rec)}
		return fb, fmt.Errorf("question %q: %w: %q", rec.ID, question.ErrUnknownType, rec.QuestionType)
	}
	return q, nil
}

// NormalizeTest converts a whole persisted test. Part order is reconciled
// to slice position: records that carry explicit order fields are sorted
// stably by them first, then the field is forgotten. Per-question errors
// (unknown types) are joined and returned alongside the complete test, so
// one malformed question never blocks loading the rest.
func NormalizeTest(rec TestRecord) (question.Test, error) {
	t := question.Test{
		ID:             rec.ID,
		Title:          rec.Title,
		Active:         rec.Active,
		ExplanationURL: rec.ExplanationURL,
	}
	parts := make([]PartRecord, len(rec.Parts))
	copy(parts, rec.Parts)
	if anyOrdered(parts) {
		sort.SliceStable(parts, func(i, j int) bool { return parts[i].Order < parts[j].Order })
	}
	var errs []error
	for _, pr := range parts {
		p := question.Part{ID: pr.ID, Title: pr.Title, Audio: pr.Audio, Image: pr.Image}
		qrecs := make([]Record, len(pr.Questions))
		copy(qrecs, pr.Questions)
		if anyQuestionOrdered(qrecs) {
			sort.SliceStable(qrecs, func(i, j int) bool { return qrecs[i].Order < qrecs[j].Order })
		}
		for _, qr := range qrecs {
			q, err := Normalize(qr)
			if err != nil {
				errs = append(errs, err)
			}
			p.Questions = append(p.Questions, q)
		}
		t.Parts = append(t.Parts, p)
	}
	return t, errors.Join(errs...)
}

func normalizeOptions(recs []OptionRecord) []question.Option {
	opts := make([]question.Option, 0, len(recs))
	for _, or := range recs {
		o := question.Option{Label: or.Label, Text: or.Text}
		if or.Points != nil {
			o.Points = *or.Points
		}
		if o.Label == "" {
			o.Label = question.NextLabel(labelStrings(opts))
		}
		opts = append(opts, o)
	}
	return opts
}

func normalizeGroupItem(ir GroupItemRecord) question.GroupItem {
	it := question.GroupItem{
		ID:      ir.ID,
		Prompt:  ir.Prompt,
		Options: normalizeOptions(ir.Options),
		Correct: ir.Correct,
		Points:  ir.Points,
	}
	// Invariants: at least two options, exactly one correct label drawn
	// from the item's own option set.
	for len(it.Options) < 2 {
		it.Options = append(it.Options, question.Option{Label: question.NextLabel(labelStrings(it.Options))})
	}
	if !hasLabel(it.Options, it.Correct) {
		it.Correct = it.Options[0].Label
	}
	if it.Points == 0 {
		it.Points = 1
	}
	return it
}

func hasLabel(opts []question.Option, label string) bool {
	for _, o := range opts {
		if o.Label == label {
			return true
		}
	}
	return false
}

func labelStrings(opts []question.Option) []string {
	out := make([]string, len(opts))
	for i, o := range opts {
		out[i] = o.Label
	}
	return out
}

func clampPct(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func anyOrdered(parts []PartRecord) bool {
	for _, p := range parts {
		if p.Order != 0 {
			return true
		}
	}
	return false
}

func anyQuestionOrdered(recs []Record) bool {
	for _, r := range recs {
		if r.Order != 0 {
			return true
		}
	}
	return false
}

func mustDefault(t question.QType) question.Payload {
	p, err := question.DefaultPayload(t)
	if err != nil {
		// only reachable for unregistered types, which callers screen first
		panic(err)
	}
	return p
}
