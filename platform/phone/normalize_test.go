package phone

import "testing"

func TestNormalizeE164_InternationalPrefix(t *testing.T) {
	got := NormalizeE164("+31 6 1234 5678")
	if got != "+31612345678" {
		t.Fatalf("expected +31612345678, got %q", got)
	}
}

func TestNormalizeE164_DefaultRegion(t *testing.T) {
	got := NormalizeE164("020 7946 0958")
	if got != "+442079460958" {
		t.Fatalf("expected +442079460958, got %q", got)
	}
}

func TestNormalizeE164_InvalidInputPassesThrough(t *testing.T) {
	got := NormalizeE164("  not a number ")
	if got != "not a number" {
		t.Fatalf("expected trimmed input back, got %q", got)
	}
}

func TestNormalizeE164_Empty(t *testing.T) {
	if got := NormalizeE164("   "); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
