package question

// Scrub returns a student-safe copy of q with all ground-truth answer data
// removed. Prompts, options, marker text and layout survive so the player
// can render the question.
func Scrub(q Question) Question {
	switch p := q.Payload.(type) {
	case ChoicePayload:
		p.Answer = ""
		p.Options = scrubOptions(p.Options)
		q.Payload = p
	case MultiResponsePayload:
		p.Options = scrubOptions(p.Options)
		q.Payload = p
	case GroupPayload:
		items := make([]GroupItem, len(p.Items))
		for i, it := range p.Items {
			it.Correct = ""
			it.Options = scrubOptions(it.Options)
			items[i] = it
		}
		q.Payload = GroupPayload{Items: items}
	case MatchingPayload:
		p.Answers = nil
		q.Payload = p
	case MapPayload:
		pts := make([]MapPoint, len(p.Points))
		for i, pt := range p.Points {
			pt.Answer = ""
			pts[i] = pt
		}
		q.Payload = MapPayload{Points: pts}
	case TablePayload:
		rows := make([][]TableCell, len(p.Rows))
		for r, row := range p.Rows {
			rows[r] = make([]TableCell, len(row))
			for c, cell := range row {
				if cell.Gap != nil {
					g := *cell.Gap
					g.Answer = ""
					cell.Gap = &g
				}
				rows[r][c] = cell
			}
		}
		q.Payload = TablePayload{Rows: rows}
	case GapTextPayload:
		gaps := make([]Gap, len(p.Gaps))
		for i, g := range p.Gaps {
			g.Answer = ""
			gaps[i] = g
		}
		q.Payload = GapTextPayload{Text: p.Text, Gaps: gaps}
	case FormPayload:
		fields := make([]FormField, len(p.Fields))
		for i, f := range p.Fields {
			f.Answer = ""
			fields[i] = f
		}
		q.Payload = FormPayload{Fields: fields}
	case ShortAnswerPayload:
		q.Payload = ShortAnswerPayload{}
	case TrueFalsePayload:
		q.Payload = TrueFalsePayload{}
	}
	return q
}

// ScrubTest applies Scrub to every question in t, returning a deep-enough
// copy that the caller can serve it without touching the original.
func ScrubTest(t Test) Test {
	parts := make([]Part, len(t.Parts))
	for i, p := range t.Parts {
		qs := make([]Question, len(p.Questions))
		for j, q := range p.Questions {
			qs[j] = Scrub(q)
		}
		p.Questions = qs
		parts[i] = p
	}
	t.Parts = parts
	return t
}

func scrubOptions(options []Option) []Option {
	out := make([]Option, len(options))
	for i, o := range options {
		o.Correct = false
		o.Points = 0
		out[i] = o
	}
	return out
}
