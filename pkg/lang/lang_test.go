package lang

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"de":     "de",
		" EN ":   "en",
		"de-at":  "de-AT",
		"en_gb":  "en-GB",
		"pt-BR ": "pt-BR",
	}
	for input, want := range cases {
		got, err := Normalize(input)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}

	for _, invalid := range []string{"", "d", "de-AT-x", "d3", "de-1"} {
		if _, err := Normalize(invalid); err == nil {
			t.Fatalf("expected Normalize(%q) to fail", invalid)
		}
	}
}

func TestBase(t *testing.T) {
	cases := map[string]string{
		"de":    "de",
		"en-GB": "en",
		"de_at": "de",
		" FR ":  "fr",
	}
	for input, want := range cases {
		got, err := Base(input)
		if err != nil {
			t.Fatalf("Base(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("Base(%q) = %q, want %q", input, got, want)
		}
	}

	if _, err := Base("en-GB-x"); err == nil {
		t.Fatalf("expected an error for a malformed code")
	}
}

func TestLookupKnowsBothSiteLanguages(t *testing.T) {
	de, ok := Lookup("DE")
	if !ok || de.DisplayName != "Deutsch" || de.FlagCode != "at" || de.ISO15897 != "de_DE" {
		t.Fatalf("unexpected german metadata: %+v (found=%v)", de, ok)
	}
	en, ok := Lookup("en")
	if !ok || en.DisplayName != "English" || en.FlagCode != "gb" || en.ISO15897 != "en_US" {
		t.Fatalf("unexpected english metadata: %+v (found=%v)", en, ok)
	}
	if _, ok := Lookup("fr"); ok {
		t.Fatalf("did not expect metadata for fr")
	}
}

func TestCodesAreSorted(t *testing.T) {
	codes := Codes()
	if len(codes) != 2 || codes[0] != "de" || codes[1] != "en" {
		t.Fatalf("unexpected codes %v", codes)
	}
}

func TestMatch(t *testing.T) {
	supported := []string{"de", "en"}

	cases := []struct {
		header string
		want   string
	}{
		{"de-AT,de;q=0.9,en;q=0.8", "de"},
		{"en-GB,en;q=0.9", "en"},
		{"fr-FR,en;q=0.5", "en"},
		{"fr-FR", "de"},
		{"", "de"},
		{"not a header;;;", "de"},
	}
	for _, tc := range cases {
		if got := Match(tc.header, supported, "de"); got != tc.want {
			t.Fatalf("Match(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}
