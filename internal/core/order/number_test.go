package order

import "testing"

func TestNextOrderNumber(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		last string
		want string
	}{
		{name: "no prior order", last: "", want: "ORD-001"},
		{name: "increments numeric suffix", last: "ORD-007", want: "ORD-008"},
		{name: "unparseable suffix falls back", last: "ORD-ABC", want: "ORD-001"},
		{name: "no separator falls back", last: "ORD007", want: "ORD-001"},
		{name: "padding grows past 999", last: "ORD-999", want: "ORD-1000"},
		{name: "keeps growing", last: "ORD-1000", want: "ORD-1001"},
		{name: "foreign prefix still parses", last: "LEGACY-41", want: "ORD-042"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NextOrderNumber(tc.last); got != tc.want {
				t.Fatalf("NextOrderNumber(%q) = %q, want %q", tc.last, got, tc.want)
			}
		})
	}
}
