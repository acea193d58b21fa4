package dedupe

import "testing"

func TestGroupTotal(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want int
	}{
		{"empty", "", 0},
		{"json objects", `[{"sandwichCount":25,"description":"scouts"},{"sandwichCount":10,"description":"church"}]`, 35},
		{"json count field", `[{"count":40,"description":"school"}]`, 40},
		{"json mixed fields", `[{"sandwichCount":5},{"count":7}]`, 12},
		{"free text", "Scouts: 25, Church Group: 10", 35},
		{"free text single", "Marketing: 120", 120},
		{"malformed json", `[{"sandwichCount":`, 0},
		{"free text no counts", "just a note", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := GroupTotal(tc.in); got != tc.want {
				t.Fatalf("GroupTotal(%q) = %d, want %d", tc.in, got, tc.want)
			}
		})
	}
}
