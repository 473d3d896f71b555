package i18n

import "testing"

func TestTranslator_DefaultAndGerman(t *testing.T) {
	// default is en
	if msg := T("continuation_ambiguous", nil); msg == "continuation_ambiguous" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("de")
	if msg := T("continuation_ambiguous", nil); msg == "continuation row spans multiple arrays" {
		t.Fatalf("expected german message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_UnknownCodePassesThrough(t *testing.T) {
	if msg := T("no_such_code", nil); msg != "no_such_code" {
		t.Fatalf("unexpected message: %q", msg)
	}
}
