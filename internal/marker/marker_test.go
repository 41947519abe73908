package marker

import (
	"reflect"
	"testing"

	"github.com/prepdeck/prepdeck/internal/question"
)

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		text string
		want []int
	}{
		{"none", "plain text, no markers", nil},
		{"single", "The capital is [[1]].", []int{1}},
		{"ordered", "[[2]] before [[7]] before [[3]]", []int{2, 7, 3}},
		{"duplicates kept", "[[1]] and [[3]] and [[3]]", []int{1, 3, 3}},
		{"adjacent", "[[1]][[2]]", []int{1, 2}},
		{"malformed ignored", "[[x]] [[]] [ [1] ]", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Extract(tc.text); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Extract(%q) = %v, want %v", tc.text, got, tc.want)
			}
		})
	}
}

func TestDuplicates(t *testing.T) {
	cases := []struct {
		name string
		in   []int
		want []int
	}{
		{"none", []int{1, 2, 3}, nil},
		{"one dup", []int{1, 3, 3}, []int{3}},
		{"dup reported once", []int{5, 5, 5}, []int{5}},
		{"first-seen order", []int{2, 1, 2, 1}, []int{2, 1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Duplicates(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("Duplicates(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestResyncKeepsAnswersByPosition(t *testing.T) {
	existing := []question.Gap{
		{Number: 1, Answer: "Paris"},
		{Number: 2, Answer: "Rome"},
	}

	// A marker added in the middle shifts answers to the new positions.
	got := Resync("[[1]] then [[5]] then [[2]]", existing)
	want := []question.Gap{
		{Number: 1, Answer: "Paris"},
		{Number: 5, Answer: "Rome"},
		{Number: 2},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resync = %+v, want %+v", got, want)
	}
}

func TestResyncDropsTrailingGaps(t *testing.T) {
	existing := []question.Gap{
		{Number: 1, Answer: "a"},
		{Number: 2, Answer: "b"},
		{Number: 3, Answer: "c"},
	}
	got := Resync("only [[1]] left", existing)
	want := []question.Gap{{Number: 1, Answer: "a"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Resync = %+v, want %+v", got, want)
	}
}

func TestResyncIdempotent(t *testing.T) {
	text := "fill [[1]] and [[2]] here"
	first := Resync(text, []question.Gap{{Number: 1, Answer: "x"}})
	second := Resync(text, first)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second resync changed the list: %+v vs %+v", first, second)
	}
}

func TestResyncNoMarkers(t *testing.T) {
	if got := Resync("no markers here", []question.Gap{{Number: 1, Answer: "a"}}); got != nil {
		t.Errorf("want nil for markerless text, got %+v", got)
	}
}

func collect(text string, gaps []question.Gap) []Segment {
	var out []Segment
	for s := range Render(text, gaps) {
		out = append(out, s)
	}
	return out
}

func TestRenderAlternatesTextAndSlots(t *testing.T) {
	gaps := []question.Gap{{Number: 1, Answer: "Paris"}}
	segs := collect("The capital is [[1]].", gaps)
	if len(segs) != 3 {
		t.Fatalf("want 3 segments, got %d: %+v", len(segs), segs)
	}
	if segs[0].Text != "The capital is " || segs[0].Gap != nil {
		t.Errorf("segment 0 = %+v", segs[0])
	}
	if segs[1].Gap == nil || segs[1].Gap.Number != 1 || segs[1].Gap.Answer != "Paris" {
		t.Errorf("segment 1 = %+v", segs[1])
	}
	if segs[2].Text != "." {
		t.Errorf("segment 2 = %+v", segs[2])
	}
}

func TestRenderUnbackedSlotKeepsMarkerNumber(t *testing.T) {
	segs := collect("[[4]] tail", nil)
	if len(segs) != 2 || segs[0].Gap == nil {
		t.Fatalf("segments = %+v", segs)
	}
	if segs[0].Gap.Number != 4 || segs[0].Gap.Answer != "" {
		t.Errorf("slot = %+v", segs[0].Gap)
	}
}

func TestRenderRestartable(t *testing.T) {
	seq := Render("a [[1]] b", []question.Gap{{Number: 1, Answer: "x"}})
	var first, second int
	for range seq {
		first++
	}
	for range seq {
		second++
	}
	if first != second || first != 3 {
		t.Errorf("iteration counts differ: %d vs %d", first, second)
	}
}

func TestAlternates(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"Paris", []string{"Paris"}},
		{"1 | one year", []string{"1", "one year"}},
		{"a|b|c", []string{"a", "b", "c"}},
		{" | | ", nil},
	}
	for _, tc := range cases {
		if got := Alternates(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Alternates(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
