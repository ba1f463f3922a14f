package keywords

import (
	"reflect"
	"testing"
)

func TestFrequencies(t *testing.T) {
	got := Frequencies("Faith, faith and GRACE! The grace of faith.")
	want := map[string]int{"faith": 3, "grace": 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Frequencies() = %v, want %v", got, want)
	}
}

func TestTop(t *testing.T) {
	freq := map[string]int{"faith": 3, "grace": 2, "hope": 2, "mercy": 1}

	got := Top(freq, 3)
	want := []string{"faith:3", "grace:2", "hope:2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Top() = %v, want %v", got, want)
	}

	if got := Top(freq, 10); len(got) != 4 {
		t.Errorf("Top() with n beyond size returned %d entries, want 4", len(got))
	}
}

func TestMerge(t *testing.T) {
	merged := Merge([]map[string]int{
		{"faith": 2, "grace": 1},
		{"faith": 1, "hope": 4},
		nil,
	})
	want := map[string]int{"faith": 3, "grace": 1, "hope": 4}
	if !reflect.DeepEqual(merged, want) {
		t.Errorf("Merge() = %v, want %v", merged, want)
	}
}

func TestSummary(t *testing.T) {
	got := Summary("faith faith grace", 2)
	if got != "faith:2, grace:1" {
		t.Errorf("Summary() = %q", got)
	}
}
