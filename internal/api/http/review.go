package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/prepdeck/prepdeck/internal/answers"
	"github.com/prepdeck/prepdeck/internal/marker"
	"github.com/prepdeck/prepdeck/internal/question"
	"github.com/prepdeck/prepdeck/internal/store"
	"github.com/prepdeck/prepdeck/internal/wire"
)

// segmentView is one rendered slice of gap-family text: literal text, or
// a gap slot with its expected answer.
type segmentView struct {
	Text   string `json:"text,omitempty"`
	Gap    int    `json:"gap,omitempty"`
	Answer string `json:"answer,omitempty"`
}

// ReviewSessionHandler assembles everything a reviewer needs for one
// sitting: the submitted responses, the full answer key and, for
// gap-family questions, the text already split around its gap slots.
func ReviewSessionHandler(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := st.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		rec, err := st.GetTestAdmin(r.Context(), s.TestID)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		t, _ := wire.NormalizeTest(rec)

		rendered := map[string][]segmentView{}
		for _, p := range t.Parts {
			for _, q := range p.Questions {
				if segs := renderGapText(q); segs != nil {
					rendered[q.ID] = segs
				}
			}
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"session":  s,
			"key":      answers.ExtractTestKey(t),
			"rendered": rendered,
		})
	}
}

func renderGapText(q question.Question) []segmentView {
	if !q.Type.GapFamily() {
		return nil
	}
	p, ok := q.Payload.(question.GapTextPayload)
	if !ok {
		return nil
	}
	var out []segmentView
	for seg := range marker.Render(p.Text, p.Gaps) {
		if seg.Gap != nil {
			out = append(out, segmentView{Gap: seg.Gap.Number, Answer: seg.Gap.Answer})
		} else {
			out = append(out, segmentView{Text: seg.Text})
		}
	}
	return out
}
