package query

import "testing"

func TestContainsWord(t *testing.T) {
	tests := []struct {
		text string
		word string
		want bool
	}{
		{"иванов и.и.", "иванов", true},
		{"иванова а.а.", "иванов", false},
		{"доц. иванов", "иванов", true},
		{"петров, иванов и.и.", "иванов", true},
		{"иванова а.а., иванов б.б.", "иванов", true},
		{"сидоров-иванов", "иванов", true},
		{"ivanov_x", "ivanov", false},
		{"иванов2", "иванов", false},
		{"", "иванов", false},
		{"иванов", "", false},
		{"и.и.", "и.и", true},
		{"abc", "a.c", false},
	}

	for _, tt := range tests {
		t.Run(tt.text+"/"+tt.word, func(t *testing.T) {
			if got := containsWord(tt.text, tt.word); got != tt.want {
				t.Errorf("containsWord(%q, %q) = %v, want %v", tt.text, tt.word, got, tt.want)
			}
		})
	}
}
