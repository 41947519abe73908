// Package builder is the admin-side editing engine: every edit is a pure
// (test, command) -> test transition over the canonical model, so the three
// UIs that used to hand-patch shared state all funnel through one reducer.
package builder

import "github.com/prepdeck/prepdeck/internal/question"

// Command is one authoring edit. The set is closed; Apply matches it
// exhaustively.
type Command interface{ isCommand() }

type SetTestTitle struct{ Title string }
type SetActive struct{ Active bool }
type SetExplanationURL struct{ URL string }

type AddPart struct{ Title string }
type RemovePart struct{ Part int }
type MovePart struct{ From, To int }
type SetPartTitle struct {
	Part  int
	Title string
}

// SetPartAsset points a part at an uploaded audio or image key.
type SetPartAsset struct {
	Part  int
	Audio string
	Image string
}

type AddQuestion struct {
	Part int
	Type question.QType
}
type RemoveQuestion struct{ Part, Index int }

// ChangeType discards the question's payload and reinitializes it from the
// registry default. Lossy by design: switching a gap fill to a table has no
// meaningful field mapping.
type ChangeType struct {
	Part, Index int
	Type        question.QType
}

type SetHeader struct {
	Part, Index int
	Header      string
}
type SetInstruction struct {
	Part, Index int
	Instruction string
}
type SetTaskPrompt struct {
	Part, Index int
	Prompt      string
}

// StageImage marks a pending image replacement; the flag is transient and
// never serialized.
type StageImage struct {
	Part, Index int
	Image       string
}

// EditText replaces the marker-bearing text of a gap-family question and
// resyncs the gap list positionally against the new markers.
type EditText struct {
	Part, Index int
	Text        string
}

type SetGapAnswer struct {
	Part, Index int
	Slot        int // position in the gap list, not the marker number
	Answer      string
}

type AddOption struct{ Part, Index int }
type RemoveOption struct {
	Part, Index int
	Label       string
}
type SetOptionText struct {
	Part, Index int
	Label, Text string
}
type SetAnswerLabel struct {
	Part, Index int
	Label       string
}
type ToggleCorrect struct {
	Part, Index int
	Label       string
}

type AddGroupItem struct{ Part, Index int }
type RemoveGroupItem struct {
	Part, Index int
	ItemID      string
}
type SetGroupItemPrompt struct {
	Part, Index int
	ItemID      string
	Prompt      string
}
type SetGroupItemCorrect struct {
	Part, Index int
	ItemID      string
	Label       string
}
type RemoveGroupItemOption struct {
	Part, Index int
	ItemID      string
	Label       string
}

type SetTextAnswer struct {
	Part, Index int
	Answer      string
}

func (SetTestTitle) isCommand()          {}
func (SetActive) isCommand()             {}
func (SetExplanationURL) isCommand()     {}
func (AddPart) isCommand()               {}
func (RemovePart) isCommand()            {}
func (MovePart) isCommand()              {}
func (SetPartTitle) isCommand()          {}
func (SetPartAsset) isCommand()          {}
func (AddQuestion) isCommand()           {}
func (RemoveQuestion) isCommand()        {}
func (ChangeType) isCommand()            {}
func (SetHeader) isCommand()             {}
func (SetInstruction) isCommand()        {}
func (SetTaskPrompt) isCommand()         {}
func (StageImage) isCommand()            {}
func (EditText) isCommand()              {}
func (SetGapAnswer) isCommand()          {}
func (AddOption) isCommand()             {}
func (RemoveOption) isCommand()          {}
func (SetOptionText) isCommand()         {}
func (SetAnswerLabel) isCommand()        {}
func (ToggleCorrect) isCommand()         {}
func (AddGroupItem) isCommand()          {}
func (RemoveGroupItem) isCommand()       {}
func (SetGroupItemPrompt) isCommand()    {}
func (SetGroupItemCorrect) isCommand()   {}
func (RemoveGroupItemOption) isCommand() {}
func (SetTextAnswer) isCommand()         {}
