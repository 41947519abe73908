// Package wire converts between the persisted ("storage") shape of a test
// and the canonical in-memory model in internal/question. The storage shape
// is historically inconsistent: the same logical value may live top-level
// or inside the extra_data bag depending on which code path wrote it last,
// so Normalize reads through fixed precedence chains (lookup.go) and
// Serialize writes both locations where downstream readers expect either.
package wire

import "encoding/json"

// TestRecord is the persistence-boundary shape of a whole test.
type TestRecord struct {
	ID             string       `json:"id,omitempty"`
	Title          string       `json:"title"`
	Active         bool         `json:"active"`
	ExplanationURL string       `json:"explanation_link,omitempty"`
	Parts          []PartRecord `json:"parts"`
}

// PartRecord carries an Order field some historical writers set and some
// leave zero. Normalize reconciles order to slice position; Serialize
// always writes index+1.
type PartRecord struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Order     int      `json:"order,omitempty"`
	Audio     string   `json:"audio,omitempty"`
	Image     string   `json:"image,omitempty"`
	Questions []Record `json:"questions"`
}

// Record is one persisted question. Implementations must accept the union
// of shapes this struct can express, not one fixed schema.
type Record struct {
	ID             string                     `json:"id,omitempty"`
	QuestionType   string                     `json:"question_type"`
	QuestionText   string                     `json:"question_text,omitempty"`
	Header         string                     `json:"header,omitempty"`
	Instruction    string                     `json:"instruction,omitempty"`
	TaskPrompt     string                     `json:"task_prompt,omitempty"`
	Image          string                     `json:"image,omitempty"`
	ImageBase64    string                     `json:"image_base64,omitempty"`
	Order          int                        `json:"order,omitempty"`
	Points         float64                    `json:"points,omitempty"`
	ExtraData      map[string]json.RawMessage `json:"extra_data,omitempty"`
	CorrectAnswers []string                   `json:"correct_answers,omitempty"`
	AnswerOptions  []OptionRecord             `json:"answer_options,omitempty"`
}

// OptionRecord tolerates partially-filled options; a missing label is
// auto-assigned during normalization.
type OptionRecord struct {
	Label   string   `json:"label,omitempty"`
	Text    string   `json:"text,omitempty"`
	Points  *float64 `json:"points,omitempty"`
	Correct *bool    `json:"correct,omitempty"`
}

type GapRecord struct {
	Number int    `json:"number"`
	Answer string `json:"answer"`
}

type GroupItemRecord struct {
	ID      string         `json:"id,omitempty"`
	Prompt  string         `json:"prompt"`
	Options []OptionRecord `json:"options"`
	Correct string         `json:"correct_answer"`
	Points  float64        `json:"points"`
}

type CellRecord struct {
	Text   string `json:"text,omitempty"`
	Number int    `json:"number,omitempty"` // nonzero marks an answer cell
	Answer string `json:"answer,omitempty"`
}

type PointRecord struct {
	ID     string  `json:"id,omitempty"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Label  string  `json:"label"`
	Answer string  `json:"answer"`
}

type MatchItemRecord struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type FieldRecord struct {
	ID     string `json:"id,omitempty"`
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

func (r *Record) setBag(key string, v interface{}) {
	if r.ExtraData == nil {
		r.ExtraData = map[string]json.RawMessage{}
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	r.ExtraData[key] = raw
}
