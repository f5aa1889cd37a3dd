package intelligence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCalculateSuccessProbability_StrongCaseClampsAt95(t *testing.T) {
	rec := CaseRecord{
		VisaType: "Work Visa",
		Country:  "Canada",
		Documents: []Document{
			{Type: "financial", Uploaded: true, Required: true},
		},
		TravelHistory: []TravelEntry{{Country: "France"}},
	}

	// 70 +10 (work) +10 (canada) +15 (financial) +10 (travel) = 115, clamped.
	if got := CalculateSuccessProbability(rec); got != 95 {
		t.Fatalf("expected 95, got %d", got)
	}
}

func TestCalculateSuccessProbability_AlwaysWithinBounds(t *testing.T) {
	records := []CaseRecord{
		{},
		{VisaType: "Student Visa", Alerts: []Alert{{Message: "previously DENIED"}}},
		{
			VisaType: "student",
			Documents: []Document{
				{Type: "passport", Required: true},
				{Type: "photo", Required: true},
				{Type: "bank", Required: true},
			},
			Alerts: []Alert{{Message: "application rejected before"}},
		},
		{VisaType: "work", Country: "uk", TravelHistory: []TravelEntry{{}, {}}},
	}

	for i, rec := range records {
		got := CalculateSuccessProbability(rec)
		if got < 10 || got > 95 {
			t.Fatalf("record %d: probability %d outside [10, 95]", i, got)
		}
	}
}

func TestCalculateSuccessProbability_VisaTypeFirstMatchWins(t *testing.T) {
	// "tourist" matches before "work" even when both substrings appear.
	rec := CaseRecord{VisaType: "Tourist work permit"}
	if got := CalculateSuccessProbability(rec); got != 75 {
		t.Fatalf("expected 75, got %d", got)
	}
}

func TestCalculateSuccessProbability_CompletenessPenaltyIsFractional(t *testing.T) {
	rec := CaseRecord{
		Documents: []Document{
			{Type: "passport", Uploaded: true, Required: true},
			{Type: "photo", Required: true},
			{Type: "itinerary", Required: true},
		},
	}

	// ratio 1/3, penalty (1-1/3)*20 = 13.33; travel history absent so no
	// bonus: 70 - 13.33 = 56.67 -> 57.
	if got := CalculateSuccessProbability(rec); got != 57 {
		t.Fatalf("expected 57, got %d", got)
	}
}

func TestCalculateSuccessProbability_NoRequiredDocumentsSkipsPenalty(t *testing.T) {
	rec := CaseRecord{
		Documents: []Document{{Type: "photo", Uploaded: false, Required: false}},
	}
	if got := CalculateSuccessProbability(rec); got != 70 {
		t.Fatalf("expected 70 (no penalty without required docs), got %d", got)
	}
}

func TestDetermineRiskLevel_Thresholds(t *testing.T) {
	// Two missing required docs do not cross the missing>2 threshold; the
	// only indicator is the probability band.
	rec := CaseRecord{
		Documents: []Document{
			{Type: "passport", Required: true},
			{Type: "photo", Required: true},
			{Type: "financial", Uploaded: true},
		},
	}

	if got := DetermineRiskLevel(rec, 55); got != RiskMedium {
		t.Fatalf("expected medium with one indicator, got %s", got)
	}
	if got := DetermineRiskLevel(rec, 80); got != RiskLow {
		t.Fatalf("expected low with zero indicators, got %s", got)
	}
}

func TestDetermineRiskLevel_LowProbabilityAddsTwo(t *testing.T) {
	rec := CaseRecord{
		Documents: []Document{{Type: "financial", Uploaded: true, Required: true}},
	}
	// probability<40 contributes +2 and nothing else applies.
	if got := DetermineRiskLevel(rec, 35); got != RiskMedium {
		t.Fatalf("expected medium, got %s", got)
	}
}

func TestDetermineRiskLevel_CriticalAccumulation(t *testing.T) {
	rec := CaseRecord{
		Documents: []Document{
			{Type: "a", Required: true}, {Type: "b", Required: true},
			{Type: "c", Required: true}, {Type: "d", Required: true},
		},
		Alerts: []Alert{
			{Severity: "error", Message: "missing biometrics"},
			{Type: "urgent-action", Message: "call client"},
			{Type: "deadline-warning", Message: "3 days left"},
		},
	}

	// missing=4 (+1), two urgent alerts (+2), deadline-warning (+1),
	// probability<40 (+2), no financial docs (+1) => 7 indicators.
	if got := DetermineRiskLevel(rec, 30); got != RiskCritical {
		t.Fatalf("expected critical, got %s", got)
	}
}

func TestDeterminePriority_PresetShortCircuits(t *testing.T) {
	soon := time.Now().Add(30 * 24 * time.Hour)
	rec := CaseRecord{
		Priority:             "urgent",
		ExpectedDecisionDate: &soon,
	}
	if got := DeterminePriority(rec); got != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got)
	}

	rec.Priority = "express"
	if got := DeterminePriority(rec); got != PriorityExpress {
		t.Fatalf("expected express, got %s", got)
	}
}

func TestDeterminePriority_OneDayOutIsUrgentNotExpress(t *testing.T) {
	// Documented precedence: the <=7 branch subsumes <=2, so a decision one
	// day out is urgent, never express.
	tomorrow := time.Now().Add(24 * time.Hour)
	rec := CaseRecord{ExpectedDecisionDate: &tomorrow}

	if got := DeterminePriority(rec); got != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got)
	}
}

func TestDeterminePriority_AlertFallback(t *testing.T) {
	rec := CaseRecord{Alerts: []Alert{{Severity: "error", Message: "embassy query"}}}
	if got := DeterminePriority(rec); got != PriorityUrgent {
		t.Fatalf("expected urgent, got %s", got)
	}

	if got := DeterminePriority(CaseRecord{}); got != PriorityNormal {
		t.Fatalf("expected normal, got %s", got)
	}
}

func TestExtractRiskFlags_OrderAndContent(t *testing.T) {
	rec := CaseRecord{
		Documents: []Document{{Type: "passport", Uploaded: true, Required: true}},
	}

	flags := ExtractRiskFlags(rec, 80)

	want := []string{
		"No financial documentation provided",
		"No previous travel history documented",
	}
	if len(flags) != len(want) {
		t.Fatalf("expected %d flags, got %d: %v", len(want), len(flags), flags)
	}
	for i := range want {
		if flags[i] != want[i] {
			t.Fatalf("flag %d: expected %q, got %q", i, want[i], flags[i])
		}
	}
}

func TestExtractRiskFlags_MissingDocumentPluralization(t *testing.T) {
	one := CaseRecord{
		Documents: []Document{
			{Type: "passport", Required: true},
			{Type: "financial", Required: true, Uploaded: true},
		},
	}
	flags := ExtractRiskFlags(one, 80)
	if flags[0] != "1 required document missing" {
		t.Fatalf("expected singular message, got %q", flags[0])
	}

	two := CaseRecord{
		Documents: []Document{
			{Type: "passport", Required: true},
			{Type: "photo", Required: true},
		},
	}
	flags = ExtractRiskFlags(two, 80)
	if flags[0] != "2 required documents missing" {
		t.Fatalf("expected plural message, got %q", flags[0])
	}
}

func TestExtractRiskFlags_UrgentAlertMessagesPreserveOrder(t *testing.T) {
	rec := CaseRecord{
		Alerts: []Alert{
			{Severity: "error", Message: "first problem"},
			{Severity: "info", Message: "ignore me"},
			{Type: "urgent-action", Message: "second problem"},
		},
		TravelHistory: []TravelEntry{{}},
	}

	flags := ExtractRiskFlags(rec, 80)
	if len(flags) != 2 || flags[0] != "first problem" || flags[1] != "second problem" {
		t.Fatalf("unexpected flags: %v", flags)
	}
}

func TestExtractRiskFlags_LowProbabilityMessage(t *testing.T) {
	flags := ExtractRiskFlags(CaseRecord{TravelHistory: []TravelEntry{{}}}, 42)
	if len(flags) != 1 {
		t.Fatalf("expected 1 flag, got %v", flags)
	}
	if flags[0] != "Low success probability (42%) - requires additional documentation" {
		t.Fatalf("unexpected message: %q", flags[0])
	}
}

func TestGenerateRecommendations_NoFlags(t *testing.T) {
	rec := GenerateRecommendations(nil)

	if len(rec.Improvements) != 0 {
		t.Fatalf("expected no improvements, got %v", rec.Improvements)
	}
	if len(rec.Strengths) != 2 {
		t.Fatalf("expected 2 strengths, got %v", rec.Strengths)
	}
	if rec.Strengths[0] != "Application appears complete and well-documented" ||
		rec.Strengths[1] != "Strong supporting documentation provided" {
		t.Fatalf("unexpected strengths: %v", rec.Strengths)
	}
}

func TestGenerateRecommendations_ImprovementsFromFlagSubstrings(t *testing.T) {
	flags := []string{
		"2 required documents missing",
		"No financial documentation provided",
		"Low success probability (30%) - requires additional documentation",
		"Previous visa denial detected",
	}

	rec := GenerateRecommendations(flags)

	want := []string{
		"Provide all required documentation to support application",
		"Include stronger financial documentation (bank statements, employment letter)",
		"Consider applying for alternative visa category if eligible",
		"Address issues from previous application before reapplying",
	}
	if len(rec.Improvements) != len(want) {
		t.Fatalf("expected %d improvements, got %v", len(want), rec.Improvements)
	}
	for i := range want {
		if rec.Improvements[i] != want[i] {
			t.Fatalf("improvement %d: expected %q, got %q", i, want[i], rec.Improvements[i])
		}
	}
	if len(rec.Strengths) != 0 {
		t.Fatalf("expected no strengths with %d flags, got %v", len(flags), rec.Strengths)
	}
}

func TestGenerateRecommendations_FewFlagsSingleStrength(t *testing.T) {
	rec := GenerateRecommendations([]string{"No previous travel history documented"})
	if len(rec.Strengths) != 1 || rec.Strengths[0] != "Application has more strengths than critical issues" {
		t.Fatalf("unexpected strengths: %v", rec.Strengths)
	}
}

// fakeLookup implements DuplicateLookup for tests.
type fakeLookup struct {
	passports map[string]int
	emails    map[string]int
	names     map[string]int
	err       error
	calls     []string
}

func (f *fakeLookup) CountByPassportNumber(_ context.Context, normalized string, _ uuid.UUID) (int, error) {
	f.calls = append(f.calls, "passport:"+normalized)
	return f.passports[normalized], f.err
}

func (f *fakeLookup) CountByClientEmail(_ context.Context, normalized string, _ uuid.UUID) (int, error) {
	f.calls = append(f.calls, "email:"+normalized)
	return f.emails[normalized], f.err
}

func (f *fakeLookup) CountByClientName(_ context.Context, normalized string, _ uuid.UUID) (int, error) {
	f.calls = append(f.calls, "name:"+normalized)
	return f.names[normalized], f.err
}

func TestDetectDuplicates_PassportMatch(t *testing.T) {
	lookup := &fakeLookup{passports: map[string]int{"AB123456": 1}}
	engine := New(lookup, nil)

	rec := CaseRecord{PassportNumber: " ab 123456 "}
	if !engine.DetectDuplicates(context.Background(), uuid.New(), rec) {
		t.Fatal("expected duplicate for matching passport")
	}
	if len(lookup.calls) != 1 || !strings.HasPrefix(lookup.calls[0], "passport:") {
		t.Fatalf("expected single passport lookup, got %v", lookup.calls)
	}
}

func TestDetectDuplicates_FallsThroughToEmailAndName(t *testing.T) {
	lookup := &fakeLookup{names: map[string]int{"jane doe": 2}}
	engine := New(lookup, nil)

	rec := CaseRecord{
		PassportNumber: "X1", // too short to qualify
		ClientEmail:    "jane@example.com",
		ClientName:     "  Jane   DOE ",
	}
	if !engine.DetectDuplicates(context.Background(), uuid.New(), rec) {
		t.Fatal("expected duplicate via name match")
	}
	if len(lookup.calls) != 2 {
		t.Fatalf("expected email then name lookup, got %v", lookup.calls)
	}
}

func TestDetectDuplicates_NeverErrors(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("connection refused")}
	engine := New(lookup, nil)

	rec := CaseRecord{PassportNumber: "AB123456"}
	if engine.DetectDuplicates(context.Background(), uuid.New(), rec) {
		t.Fatal("expected false when lookup fails")
	}

	// Absent identifiers must not panic or query anything.
	empty := &fakeLookup{}
	if New(empty, nil).DetectDuplicates(context.Background(), uuid.New(), CaseRecord{}) {
		t.Fatal("expected false for empty record")
	}
	if len(empty.calls) != 0 {
		t.Fatalf("expected no lookups for empty record, got %v", empty.calls)
	}

	if New(nil, nil).DetectDuplicates(context.Background(), uuid.New(), rec) {
		t.Fatal("expected false with nil lookup")
	}
}

func TestEvaluate_ComposesAllOutputs(t *testing.T) {
	engine := New(&fakeLookup{}, nil)
	rec := CaseRecord{
		VisaType: "Work Visa",
		Country:  "Canada",
		Documents: []Document{
			{Type: "financial statement", Uploaded: true, Required: true},
		},
		TravelHistory: []TravelEntry{{Country: "Japan"}},
	}

	score := engine.Evaluate(context.Background(), uuid.New(), rec)

	if score.SuccessProbability != 95 {
		t.Fatalf("expected probability 95, got %d", score.SuccessProbability)
	}
	if score.RiskLevel != RiskLow {
		t.Fatalf("expected low risk, got %s", score.RiskLevel)
	}
	if score.Priority != PriorityNormal {
		t.Fatalf("expected normal priority, got %s", score.Priority)
	}
	if score.DuplicateDetected {
		t.Fatal("expected no duplicate")
	}
	if len(score.RiskFlags) != 0 {
		t.Fatalf("expected no flags, got %v", score.RiskFlags)
	}
	if len(score.Recommendations.Strengths) != 2 {
		t.Fatalf("expected 2 strengths, got %v", score.Recommendations.Strengths)
	}
}
