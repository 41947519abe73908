package question

import (
	"reflect"
	"testing"
)

func TestNextLabel(t *testing.T) {
	cases := []struct {
		name     string
		existing []string
		want     string
	}{
		{"empty", nil, "A"},
		{"after A B", []string{"A", "B"}, "C"},
		{"fills hole", []string{"A", "C"}, "B"},
		{"past Z", letters(26), "AA"},
		{"past AA", append(letters(26), "AA"), "AB"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NextLabel(tc.existing); got != tc.want {
				t.Errorf("NextLabel(%v) = %q, want %q", tc.existing, got, tc.want)
			}
		})
	}
}

func letters(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = string(rune('A' + i))
	}
	return out
}

func TestRelabelClosesGaps(t *testing.T) {
	in := []Option{
		{Label: "A", Text: "one"},
		{Label: "C", Text: "three"},
		{Label: "D", Text: "four"},
	}
	got := Relabel(in)
	want := []Option{
		{Label: "A", Text: "one"},
		{Label: "B", Text: "three"},
		{Label: "C", Text: "four"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Relabel = %+v, want %+v", got, want)
	}
	// input untouched
	if in[1].Label != "C" {
		t.Errorf("Relabel mutated its input: %+v", in)
	}
}

func TestGroupItemRemoveOption(t *testing.T) {
	base := GroupItem{
		Prompt:  "pick",
		Correct: "C",
		Options: []Option{
			{Label: "A", Text: "a"},
			{Label: "B", Text: "b"},
			{Label: "C", Text: "c"},
			{Label: "D", Text: "d"},
		},
	}

	t.Run("removal shifts correct label with its option", func(t *testing.T) {
		got := base.RemoveOption("B")
		if len(got.Options) != 3 {
			t.Fatalf("options = %+v", got.Options)
		}
		// "c" is now at index 1 with label B.
		if got.Options[1].Text != "c" || got.Options[1].Label != "B" {
			t.Errorf("options[1] = %+v", got.Options[1])
		}
		if got.Correct != "B" {
			t.Errorf("correct = %q, want B (still pointing at text \"c\")", got.Correct)
		}
	})

	t.Run("removing the correct option falls back to first", func(t *testing.T) {
		got := base.RemoveOption("C")
		if got.Correct != "A" {
			t.Errorf("correct = %q, want A", got.Correct)
		}
	})

	t.Run("unknown label is a no-op", func(t *testing.T) {
		got := base.RemoveOption("Z")
		if !reflect.DeepEqual(got, base) {
			t.Errorf("got %+v, want unchanged", got)
		}
	})

	t.Run("original item untouched", func(t *testing.T) {
		_ = base.RemoveOption("A")
		if len(base.Options) != 4 || base.Correct != "C" {
			t.Errorf("base mutated: %+v", base)
		}
	})
}
