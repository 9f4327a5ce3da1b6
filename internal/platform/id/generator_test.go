package id

import "testing"

func TestSlug(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		parts []string
		want  string
	}{
		{name: "title and organizer", parts: []string{"Sunday Morning Social Ride", "Richmond Cycling Club"}, want: "sunday-morning-social-ride-richmond-cycling-club"},
		{name: "punctuation collapses", parts: []string{"Women's+ Climbing!!"}, want: "women-s-climbing"},
		{name: "empty parts", parts: []string{"", "  "}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Slug(tc.parts...); got != tc.want {
				t.Fatalf("Slug(%v) = %q, want %q", tc.parts, got, tc.want)
			}
		})
	}
}

func TestRandomGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewRandomGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}
	second, err := gen.NewID()
	if err != nil {
		t.Fatalf("new id: %v", err)
	}

	if len(first) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(first))
	}
	if first == second {
		t.Fatalf("expected distinct ids, got %q twice", first)
	}
}
