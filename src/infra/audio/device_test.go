package audio

import "testing"

func TestClampSample(t *testing.T) {
	cases := []struct {
		name   string
		n      int
		length int
		want   int
	}{
		{"within bounds", 100, 1000, 100},
		{"beyond end", 1500, 1000, 999},
		{"exactly end", 1000, 1000, 999},
		{"negative", -5, 1000, 0},
		{"empty stream", 100, 0, 0},
		{"negative on empty stream", -5, 0, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := clampSample(tc.n, tc.length); got != tc.want {
				t.Errorf("clampSample(%d, %d) = %d, want %d", tc.n, tc.length, got, tc.want)
			}
		})
	}
}
