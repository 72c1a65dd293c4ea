package models

import (
	"encoding/json"
	"testing"
)

func TestSpecificDecodesRegisteredContentType(t *testing.T) {
	page := &Page{
		ID:          7,
		ContentType: ContentTypeTeamMember,
		Fields: JSONMap{
			"name":                "Mag. Thomas Kremmel",
			"organisational_role": "Geschäftsführer",
			"portrait":            float64(3),
		},
	}

	specific, err := Specific(page)
	if err != nil {
		t.Fatalf("Specific returned error: %v", err)
	}
	if specific.Page != page {
		t.Fatalf("expected the tree node to be kept")
	}

	member, ok := specific.Content.(*TeamMemberPage)
	if !ok {
		t.Fatalf("expected *TeamMemberPage, got %T", specific.Content)
	}
	if member.Name != "Mag. Thomas Kremmel" || member.OrganisationalRole != "Geschäftsführer" {
		t.Fatalf("unexpected decoded content: %+v", member)
	}
	if member.Portrait == nil || *member.Portrait != 3 {
		t.Fatalf("expected portrait reference 3, got %v", member.Portrait)
	}
}

func TestSpecificWithoutFieldsReturnsZeroContent(t *testing.T) {
	specific, err := Specific(&Page{ContentType: ContentTypeProjectIndex})
	if err != nil {
		t.Fatalf("Specific returned error: %v", err)
	}
	index, ok := specific.Content.(*ProjectIndexPage)
	if !ok || index.HeroTitle != "" {
		t.Fatalf("unexpected content %#v", specific.Content)
	}
}

func TestSpecificRejectsUnknownContentType(t *testing.T) {
	if _, err := Specific(&Page{ID: 1, ContentType: "blog_post"}); err == nil {
		t.Fatalf("expected an error for an unknown content type")
	}
}

func TestSpecificOfNilPage(t *testing.T) {
	specific, err := Specific(nil)
	if err != nil || specific != nil {
		t.Fatalf("expected nil, nil; got %v, %v", specific, err)
	}
}

func TestContentTypesAreRegisteredOnce(t *testing.T) {
	names := ContentTypes()
	if len(names) != 11 {
		t.Fatalf("expected 11 content types, got %d: %v", len(names), names)
	}
	for _, name := range names {
		if !IsContentType(name) {
			t.Fatalf("%q listed but not registered", name)
		}
	}
}

func TestJSONMapRoundTripThroughDriverValue(t *testing.T) {
	original := JSONMap{"hero_title": "Los gehts.", "body": []interface{}{map[string]interface{}{"type": "paragraph", "value": "<p>x</p>"}}}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("Value returned error: %v", err)
	}

	var fromString JSONMap
	if err := fromString.Scan(value); err != nil {
		t.Fatalf("Scan(string) returned error: %v", err)
	}
	var fromBytes JSONMap
	if err := fromBytes.Scan([]byte(value.(string))); err != nil {
		t.Fatalf("Scan([]byte) returned error: %v", err)
	}

	a, _ := json.Marshal(fromString)
	b, _ := json.Marshal(fromBytes)
	want, _ := json.Marshal(original)
	if string(a) != string(want) || string(b) != string(want) {
		t.Fatalf("round trip mismatch: %s / %s, want %s", a, b, want)
	}

	empty, err := JSONMap{}.Value()
	if err != nil || empty != nil {
		t.Fatalf("expected empty map to be stored as NULL, got %v (%v)", empty, err)
	}
}

func TestUnusablePassword(t *testing.T) {
	if (&User{Password: UnusablePasswordPrefix + "abc"}).HasUsablePassword() {
		t.Fatalf("expected prefixed password to be unusable")
	}
	if !(&User{Password: "$2a$10$hash"}).HasUsablePassword() {
		t.Fatalf("expected bcrypt hash to be usable")
	}
}
