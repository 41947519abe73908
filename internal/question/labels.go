package question

// NextLabel yields the next unused letter in A, B, C, ... order. Past Z it
// doubles up (AA, AB, ...), which authoring never reaches in practice.
func NextLabel(existing []string) string {
	used := make(map[string]bool, len(existing))
	for _, l := range existing {
		used[l] = true
	}
	for i := 0; ; i++ {
		l := labelAt(i)
		if !used[l] {
			return l
		}
	}
}

func labelAt(i int) string {
	if i < 26 {
		return string(rune('A' + i))
	}
	return labelAt(i/26-1) + labelAt(i%26)
}

// Relabel reassigns contiguous labels (A, B, C, ...) preserving order, so
// labels stay gapless after a removal. Returns a new slice.
func Relabel(options []Option) []Option {
	out := make([]Option, len(options))
	for i, o := range options {
		o.Label = labelAt(i)
		out[i] = o
	}
	return out
}

// RemoveOption drops the option with the given label from item, relabels
// the remainder and remaps the item's correct answer: if the removed option
// was the correct one, the first remaining option becomes correct.
func (it GroupItem) RemoveOption(label string) GroupItem {
	kept := make([]Option, 0, len(it.Options))
	var removedIdx = -1
	for i, o := range it.Options {
		if o.Label == label {
			removedIdx = i
			continue
		}
		kept = append(kept, o)
	}
	if removedIdx == -1 {
		return it
	}
	// Track which surviving option the correct label pointed at before
	// relabeling shifts everything.
	correctIdx := -1
	for i, o := range kept {
		if o.Label == it.Correct {
			correctIdx = i
		}
	}
	it.Options = Relabel(kept)
	switch {
	case len(it.Options) == 0:
		it.Correct = ""
	case correctIdx >= 0:
		it.Correct = it.Options[correctIdx].Label
	default:
		it.Correct = it.Options[0].Label
	}
	return it
}

func labelsOf(options []Option) []string {
	out := make([]string, len(options))
	for i, o := range options {
		out[i] = o.Label
	}
	return out
}
