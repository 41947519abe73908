// Package marker parses the [[N]] gap-marker syntax embedded in question
// text. It is shared by the gap-fill family, table answer cells and the
// review renderer, so marker semantics live in exactly one place.
package marker

import (
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/prepdeck/prepdeck/internal/question"
)

var markerRe = regexp.MustCompile(`\[\[(\d+)\]\]`)

// Extract scans text left to right and returns the marker numbers in order
// of appearance, duplicates included. Duplicates are a validation problem,
// not a parse problem; Duplicates detects them separately.
func Extract(text string) []int {
	matches := markerRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]int, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue // digits too long for int; treat as literal text
		}
		out = append(out, n)
	}
	return out
}

// Duplicates returns each number that appears more than once in nums, once
// per offending number, in first-seen order.
func Duplicates(nums []int) []int {
	seen := map[int]int{}
	var out []int
	for _, n := range nums {
		seen[n]++
		if seen[n] == 2 {
			out = append(out, n)
		}
	}
	return out
}

// Resync re-derives the gap list after a text edit. Pairing is positional:
// the i-th marker in the new text keeps the answer of the i-th existing
// gap, new positions get empty answers, and gaps beyond the new marker
// count are dropped. Positional pairing preserves authored answers while
// the admin types, but reordering markers without editing answers can
// reassign an answer to a different number; that behavior is long-standing
// and is surfaced through validation warnings rather than changed here.
// Calling Resync twice with unchanged text returns an identical list.
func Resync(text string, existing []question.Gap) []question.Gap {
	nums := Extract(text)
	if len(nums) == 0 {
		return nil
	}
	out := make([]question.Gap, len(nums))
	for i, n := range nums {
		out[i] = question.Gap{Number: n}
		if i < len(existing) {
			out[i].Answer = existing[i].Answer
		}
	}
	return out
}

// Segment is one piece of rendered gap text: either a literal span (Gap
// nil) or a gap slot. Slots carry the marker's number even when no
// authored gap backs them yet.
type Segment struct {
	Text string
	Gap  *question.Gap
}

// Render splits text into an alternating sequence of literal spans and gap
// slots. The i-th slot takes the i-th gap's answer (positional, matching
// Resync); its number always comes from the marker itself. The sequence is
// lazy, finite and restartable, serving both the answer-entry editor and
// the read-only review renderer.
func Render(text string, gaps []question.Gap) iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		rest := text
		slot := 0
		for {
			loc := markerRe.FindStringSubmatchIndex(rest)
			if loc == nil {
				break
			}
			if loc[0] > 0 {
				if !yield(Segment{Text: rest[:loc[0]]}) {
					return
				}
			}
			n, _ := strconv.Atoi(rest[loc[2]:loc[3]])
			g := question.Gap{Number: n}
			if slot < len(gaps) {
				g.Answer = gaps[slot].Answer
			}
			if !yield(Segment{Gap: &g}) {
				return
			}
			slot++
			rest = rest[loc[1]:]
		}
		if rest != "" {
			yield(Segment{Text: rest})
		}
	}
}

// Alternates splits an answer string on the | separator and trims each
// alternate. "1 | one year" yields ["1", "one year"]. Empty alternates are
// dropped; a blank answer yields nil.
func Alternates(answer string) []string {
	if answer == "" {
		return nil
	}
	parts := strings.Split(answer, "|")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
