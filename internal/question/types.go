package question

// QType enumerates the supported question variants. The set is closed:
// the normalizer, serializer and answer codec switch over it exhaustively,
// so adding a variant is a compile-visible change in each of them.
type QType string

const (
	MultipleChoice      QType = "multiple_choice"
	MultipleChoiceGroup QType = "multiple_choice_group"
	Matching            QType = "matching"
	MapDiagram          QType = "map_diagram"
	Table               QType = "table"
	GapFill             QType = "gap_fill"
	SentenceCompletion  QType = "sentence_completion"
	SummaryCompletion   QType = "summary_completion"
	NoteCompletion      QType = "note_completion"
	FlowChart           QType = "flow_chart"
	Form                QType = "form"
	ShortAnswer         QType = "short_answer"
	TrueFalse           QType = "true_false"
	MultipleResponse    QType = "multiple_response"
)

// GapFamily reports whether the type embeds [[N]] markers in free text
// and carries a parallel gap list.
func (t QType) GapFamily() bool {
	switch t {
	case GapFill, SentenceCompletion, SummaryCompletion, NoteCompletion, FlowChart:
		return true
	}
	return false
}

// ChoiceFamily reports whether the type is answered by picking labeled options.
func (t QType) ChoiceFamily() bool {
	switch t {
	case MultipleChoice, MultipleResponse, MultipleChoiceGroup:
		return true
	}
	return false
}

// SingleSelect reports whether capturing a response must clear sibling
// keys under the same question id (radio-button semantics).
func (t QType) SingleSelect() bool {
	return t == MultipleChoice || t == TrueFalse
}

// Option is one labeled choice. Labels are unique within their list and
// auto-assigned when absent (see labels.go).
type Option struct {
	Label   string  `json:"label"`
	Text    string  `json:"text"`
	Points  float64 `json:"points,omitempty"`
	Correct bool    `json:"correct,omitempty"`
}

// Gap is one numbered slot inside marker-bearing text. Number must match a
// [[Number]] occurrence; Answer may hold |-separated alternates.
type Gap struct {
	Number int    `json:"number"`
	Answer string `json:"answer"`
}

// GroupItem is one independent prompt inside a multiple_choice_group.
// It always has at least two options and exactly one correct label
// drawn from its own option set.
type GroupItem struct {
	ID      string   `json:"id"`
	Prompt  string   `json:"prompt"`
	Options []Option `json:"options"`
	Correct string   `json:"correct_answer"`
	Points  float64  `json:"points"`
}

// TableCell is either a literal text cell (Gap nil) or an answer cell
// whose number corresponds to a marker derived for the table.
type TableCell struct {
	Text string `json:"text,omitempty"`
	Gap  *Gap   `json:"gap,omitempty"`
}

// MapPoint is one labelled location on a map/diagram image, with
// coordinates normalized to 0-100 percent.
type MapPoint struct {
	ID     string  `json:"id"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Label  string  `json:"label"`
	Answer string  `json:"answer"`
}

// MatchItem is one left-hand prompt in a matching question.
type MatchItem struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// FormField is one label+answer row in a form completion question.
type FormField struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Answer string `json:"answer"`
}

// Payload is the closed set of type-specific question bodies. Exactly one
// concrete payload corresponds to each QType (gap-family types share
// GapText); see ExpectedPayload.
type Payload interface{ isPayload() }

type ChoicePayload struct {
	Options []Option `json:"options"`
	Answer  string   `json:"answer"` // correct option label
}

type MultiResponsePayload struct {
	Options []Option `json:"options"` // Correct flags mark the answer set
}

type GroupPayload struct {
	Items []GroupItem `json:"items"`
}

type MatchingPayload struct {
	Left    []MatchItem `json:"left"`
	Right   []Option    `json:"right"`
	Answers map[int]int `json:"answers"` // left index -> right index
}

type MapPayload struct {
	Points []MapPoint `json:"points"`
}

type TablePayload struct {
	Rows [][]TableCell `json:"rows"`
}

// GapText backs gap_fill and all completion variants: free text with
// [[N]] markers and a parallel gap list in marker order of appearance.
type GapTextPayload struct {
	Text string `json:"text"`
	Gaps []Gap  `json:"gaps"`
}

type FormPayload struct {
	Fields []FormField `json:"fields"`
}

type ShortAnswerPayload struct {
	Answer string `json:"answer"` // may hold |-separated alternates
}

type TrueFalsePayload struct {
	Answer string `json:"answer"` // "true" | "false" | "not_given"
}

func (ChoicePayload) isPayload()        {}
func (MultiResponsePayload) isPayload() {}
func (GroupPayload) isPayload()         {}
func (MatchingPayload) isPayload()      {}
func (MapPayload) isPayload()           {}
func (TablePayload) isPayload()         {}
func (GapTextPayload) isPayload()       {}
func (FormPayload) isPayload()          {}
func (ShortAnswerPayload) isPayload()   {}
func (TrueFalsePayload) isPayload()     {}

// Question is the canonical in-memory shape shared by the admin builder,
// the student player and the review renderer.
type Question struct {
	ID          string  `json:"id"`
	Type        QType   `json:"type"`
	Header      string  `json:"header,omitempty"`
	Instruction string  `json:"instruction,omitempty"`
	TaskPrompt  string  `json:"task_prompt,omitempty"`
	Image       string  `json:"image,omitempty"`
	Points      float64 `json:"points,omitempty"`
	Payload     Payload `json:"payload"`

	// PendingImage marks an image replacement staged in the editor but not
	// yet uploaded. Never persisted; the serializer strips it.
	PendingImage bool `json:"pending_image,omitempty"`
}

// Part is one section of a test: an optional audio/image asset plus an
// ordered question list. Order is positional (index+1), never stored.
type Part struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Audio     string     `json:"audio,omitempty"`
	Image     string     `json:"image,omitempty"`
	Questions []Question `json:"questions"`
}

// Test owns its parts; parts own their questions.
type Test struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Active         bool   `json:"active"`
	ExplanationURL string `json:"explanation_url,omitempty"`
	Parts          []Part `json:"parts"`
}
