package utils

import "testing"

func TestGenerateSlug(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "Thomas Kremmel", want: "thomas-kremmel"},
		{input: "Max Böck", want: "max-boeck"},
		{input: "Datenschutz-Bestimmungen", want: "datenschutz-bestimmungen"},
		{input: "  story.one  ", want: "story-one"},
		{input: "Straße", want: "strasse"},
		{input: "Café Noël", want: "cafe-noel"},
		{input: "--already--slugged--", want: "already-slugged"},
		{input: "", want: ""},
		{input: "Über uns", want: "ueber-uns"},
		{input: "cleanvest-nachhaltige-investments", want: "cleanvest-nachhaltige-investments"},
	}

	for _, tc := range cases {
		if got := GenerateSlug(tc.input); got != tc.want {
			t.Fatalf("GenerateSlug(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}
