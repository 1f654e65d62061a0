package user

import "testing"

func TestNextEmployeeCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		last string
		want string
	}{
		{name: "no prior user", last: "", want: "T101"},
		{name: "increments", last: "T145", want: "T146"},
		{name: "first assigned then next", last: "T101", want: "T102"},
		{name: "unparseable falls back", last: "TEMP", want: "T101"},
		{name: "grows without padding", last: "T999", want: "T1000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NextEmployeeCode(tc.last); got != tc.want {
				t.Fatalf("NextEmployeeCode(%q) = %q, want %q", tc.last, got, tc.want)
			}
		})
	}
}
