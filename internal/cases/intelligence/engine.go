// Package intelligence computes heuristic case scores: success probability,
// risk level, duplicate detection, priority, risk flags, and derived
// recommendations. All computations are deterministic functions of the case
// record; duplicate detection additionally performs one read-only repository
// lookup.
package intelligence

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"visadesk_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	// engineVersion tracks the scoring model for debugging and analysis.
	// Bump this when changing scoring logic significantly.
	engineVersion = "2026-v1"

	// Every case starts at this probability and factors add or subtract.
	baseProbability = 70.0

	// Probability is always reported within these bounds.
	minProbability = 10
	maxProbability = 95
)

// RiskLevel classifies how closely a case needs to be watched.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Priority classifies processing urgency.
type Priority string

const (
	PriorityNormal  Priority = "normal"
	PriorityUrgent  Priority = "urgent"
	PriorityExpress Priority = "express"
)

// Document is one entry of a case's document checklist.
type Document struct {
	Type     string
	Uploaded bool
	Required bool
}

// Alert is an advisory attached to a case by staff or automation.
type Alert struct {
	Message  string
	Severity string
	Type     string
}

// TravelEntry records one prior trip. Only the presence of entries matters
// for scoring.
type TravelEntry struct {
	Country    string
	TraveledAt time.Time
}

// CaseRecord is the read-only scoring input. Optional fields are nil/empty
// and treated as absent; the engine never mutates the record.
type CaseRecord struct {
	VisaType             string
	Country              string
	Documents            []Document
	TravelHistory        []TravelEntry
	Alerts               []Alert
	Priority             string
	ExpectedDecisionDate *time.Time
	PassportNumber       string
	ClientName           string
	ClientEmail          string
}

// Recommendations holds derived suggestions for a case.
type Recommendations struct {
	Improvements []string `json:"improvements"`
	Strengths    []string `json:"strengths"`
}

// Score is the transient computed projection for one case. It is recomputed
// on every read; nothing in the engine caches or invalidates it.
type Score struct {
	SuccessProbability int             `json:"successProbability"`
	RiskLevel          RiskLevel       `json:"riskLevel"`
	DuplicateDetected  bool            `json:"duplicateDetected"`
	Priority           Priority        `json:"priority"`
	RiskFlags          []string        `json:"riskFlags"`
	Recommendations    Recommendations `json:"recommendations"`
	Version            string          `json:"-"`
}

// DuplicateLookup is the read-only repository access used by duplicate
// detection. Counts exclude the case under evaluation.
type DuplicateLookup interface {
	CountByPassportNumber(ctx context.Context, normalized string, exclude uuid.UUID) (int, error)
	CountByClientEmail(ctx context.Context, normalized string, exclude uuid.UUID) (int, error)
	CountByClientName(ctx context.Context, normalized string, exclude uuid.UUID) (int, error)
}

// Engine evaluates cases.
type Engine struct {
	dups DuplicateLookup
	log  *logger.Logger
}

// New creates a scoring engine. dups may be nil, in which case duplicate
// detection always reports false.
func New(dups DuplicateLookup, log *logger.Logger) *Engine {
	return &Engine{dups: dups, log: log}
}

// Evaluate computes the full score for one case.
func (e *Engine) Evaluate(ctx context.Context, caseID uuid.UUID, rec CaseRecord) Score {
	probability := CalculateSuccessProbability(rec)
	flags := ExtractRiskFlags(rec, probability)

	return Score{
		SuccessProbability: probability,
		RiskLevel:          DetermineRiskLevel(rec, probability),
		DuplicateDetected:  e.DetectDuplicates(ctx, caseID, rec),
		Priority:           DeterminePriority(rec),
		RiskFlags:          flags,
		Recommendations:    GenerateRecommendations(flags),
		Version:            engineVersion,
	}
}

// CalculateSuccessProbability estimates approval likelihood as a percentage
// in [10, 95]. Adjustments are additive to a base of 70 and evaluated
// unconditionally in a fixed order.
func CalculateSuccessProbability(rec CaseRecord) int {
	probability := baseProbability

	// Visa type: only the first match in this priority order applies.
	visaType := strings.ToLower(rec.VisaType)
	if strings.Contains(visaType, "tourist") {
		probability += 5
	} else if strings.Contains(visaType, "student") {
		probability -= 5
	} else if strings.Contains(visaType, "work") {
		probability += 10
	}

	// Destination country approval-rate adjustment.
	switch strings.ToLower(rec.Country) {
	case "canada", "australia", "uk":
		probability += 10
	case "usa", "germany", "france":
		probability += 5
	}

	// Uploaded financial documentation is the strongest positive signal.
	if hasUploadedFinancialDoc(rec.Documents) {
		probability += 15
	}

	// Any documented prior travel helps.
	if len(rec.TravelHistory) > 0 {
		probability += 10
	}

	// Prior denial or rejection mentioned in any alert.
	if hasDenialAlert(rec.Alerts) {
		probability -= 20
	}

	// Completeness penalty: proportional to the missing share of required
	// documents. Skipped entirely when nothing is required so the ratio is
	// never a division by zero.
	required := countRequired(rec.Documents)
	if required > 0 {
		ratio := float64(countUploaded(rec.Documents)) / float64(required)
		if ratio < 1 {
			probability -= (1 - ratio) * 20
		}
	}

	return clampProbability(probability)
}

// DetermineRiskLevel counts unit-weighted risk indicators and maps the total
// through fixed thresholds. The classification is a strict function of the
// indicator count: >=5 critical, >=3 high, >=1 medium, else low.
func DetermineRiskLevel(rec CaseRecord, successProbability int) RiskLevel {
	indicators := 0

	// Missing-document severity. The uploaded count deliberately includes
	// non-required uploads, matching the historical behavior of the checklist.
	if len(rec.Documents) > 0 {
		missing := countRequired(rec.Documents) - countUploaded(rec.Documents)
		if missing > 2 {
			indicators++
		}
		if missing > 5 {
			indicators++
		}
	}

	// Every urgent alert counts on its own.
	indicators += len(urgentAlerts(rec.Alerts))

	// Suspicious activity or an approaching deadline.
	if hasSuspiciousAlert(rec.Alerts) {
		indicators++
	}

	// Low probability compounds risk.
	if successProbability < 40 {
		indicators += 2
	} else if successProbability < 60 {
		indicators++
	}

	// No financial documentation at all.
	if len(rec.Documents) > 0 && !hasUploadedFinancialDoc(rec.Documents) {
		indicators++
	}

	switch {
	case indicators >= 5:
		return RiskCritical
	case indicators >= 3:
		return RiskHigh
	case indicators >= 1:
		return RiskMedium
	default:
		return RiskLow
	}
}

// DetectDuplicates checks whether another stored case shares this case's
// normalized passport number, client email, or client name, in that
// precedence order. Any repository failure degrades to false; this method
// never propagates an error to the caller.
func (e *Engine) DetectDuplicates(ctx context.Context, caseID uuid.UUID, rec CaseRecord) bool {
	if e == nil || e.dups == nil {
		return false
	}

	if passport := normalizePassport(rec.PassportNumber); len(passport) > 5 {
		n, err := e.dups.CountByPassportNumber(ctx, passport, caseID)
		if err != nil {
			e.logLookupFailure("passport", err)
			return false
		}
		if n > 0 {
			return true
		}
	}

	if email := normalizeEmail(rec.ClientEmail); strings.Contains(email, "@") {
		n, err := e.dups.CountByClientEmail(ctx, email, caseID)
		if err != nil {
			e.logLookupFailure("email", err)
			return false
		}
		if n > 0 {
			return true
		}
	}

	if name := normalizeName(rec.ClientName); len(name) > 3 {
		n, err := e.dups.CountByClientName(ctx, name, caseID)
		if err != nil {
			e.logLookupFailure("name", err)
			return false
		}
		if n > 0 {
			return true
		}
	}

	return false
}

func (e *Engine) logLookupFailure(field string, err error) {
	if e.log != nil {
		e.log.Error("duplicate lookup failed", "field", field, "error", err)
	}
}

// DeterminePriority resolves processing urgency. A preset urgent/express
// priority short-circuits everything else.
//
// The day-threshold ordering below makes the express branch unreachable for
// decisions 3-7 days out, because <=7 is checked first. This matches the
// documented behavior of the legacy classifier and is asserted by test;
// do not reorder without a product decision.
func DeterminePriority(rec CaseRecord) Priority {
	switch rec.Priority {
	case string(PriorityUrgent):
		return PriorityUrgent
	case string(PriorityExpress):
		return PriorityExpress
	}

	if rec.ExpectedDecisionDate != nil {
		daysDiff := int(math.Ceil(time.Until(*rec.ExpectedDecisionDate).Hours() / 24))
		if daysDiff <= 7 {
			return PriorityUrgent
		} else if daysDiff <= 2 {
			return PriorityExpress
		}
	}

	for _, a := range rec.Alerts {
		if a.Type == "urgent-action" || a.Severity == "error" {
			return PriorityUrgent
		}
	}

	return PriorityNormal
}

// ExtractRiskFlags produces human-readable concern messages in detection
// order. Callers surface these directly to end users.
func ExtractRiskFlags(rec CaseRecord, successProbability int) []string {
	flags := []string{}

	if len(rec.Documents) > 0 {
		missing := countRequired(rec.Documents) - countUploaded(rec.Documents)
		if missing > 0 {
			noun := "document"
			if missing > 1 {
				noun = "documents"
			}
			flags = append(flags, strconv.Itoa(missing)+" required "+noun+" missing")
		}
	}

	for _, a := range urgentAlerts(rec.Alerts) {
		flags = append(flags, a.Message)
	}

	if successProbability < 50 {
		flags = append(flags, "Low success probability ("+strconv.Itoa(successProbability)+"%) - requires additional documentation")
	}

	if hasDenialAlert(rec.Alerts) {
		flags = append(flags, "Previous visa denial detected")
	}

	if len(rec.Documents) > 0 && !hasUploadedFinancialDoc(rec.Documents) {
		flags = append(flags, "No financial documentation provided")
	}

	if len(rec.TravelHistory) == 0 {
		flags = append(flags, "No previous travel history documented")
	}

	return flags
}

// GenerateRecommendations derives improvements and strengths from the flag
// list. Improvements key off substrings of the flag messages; strengths
// depend only on how many flags were raised.
func GenerateRecommendations(riskFlags []string) Recommendations {
	rec := Recommendations{Improvements: []string{}, Strengths: []string{}}

	if anyFlagContains(riskFlags, "missing") {
		rec.Improvements = append(rec.Improvements, "Provide all required documentation to support application")
	}
	if anyFlagContains(riskFlags, "financial") {
		rec.Improvements = append(rec.Improvements, "Include stronger financial documentation (bank statements, employment letter)")
	}
	if anyFlagContains(riskFlags, "probability") {
		rec.Improvements = append(rec.Improvements, "Consider applying for alternative visa category if eligible")
	}
	if anyFlagContains(riskFlags, "denial") {
		rec.Improvements = append(rec.Improvements, "Address issues from previous application before reapplying")
	}

	switch {
	case len(riskFlags) == 0:
		rec.Strengths = append(rec.Strengths,
			"Application appears complete and well-documented",
			"Strong supporting documentation provided",
		)
	case len(riskFlags) < 3:
		rec.Strengths = append(rec.Strengths, "Application has more strengths than critical issues")
	}

	return rec
}

// Helpers.

func countRequired(docs []Document) int {
	n := 0
	for _, d := range docs {
		if d.Required {
			n++
		}
	}
	return n
}

func countUploaded(docs []Document) int {
	n := 0
	for _, d := range docs {
		if d.Uploaded {
			n++
		}
	}
	return n
}

func hasUploadedFinancialDoc(docs []Document) bool {
	for _, d := range docs {
		if d.Uploaded && strings.Contains(strings.ToLower(d.Type), "financial") {
			return true
		}
	}
	return false
}

func hasDenialAlert(alerts []Alert) bool {
	for _, a := range alerts {
		msg := strings.ToLower(a.Message)
		if strings.Contains(msg, "denied") || strings.Contains(msg, "rejected") {
			return true
		}
	}
	return false
}

// urgentAlerts returns alerts that demand action, preserving input order.
func urgentAlerts(alerts []Alert) []Alert {
	out := []Alert{}
	for _, a := range alerts {
		if a.Severity == "error" || a.Type == "urgent-action" {
			out = append(out, a)
		}
	}
	return out
}

func hasSuspiciousAlert(alerts []Alert) bool {
	for _, a := range alerts {
		if a.Type == "deadline-warning" || strings.Contains(strings.ToLower(a.Message), "suspicious") {
			return true
		}
	}
	return false
}

func anyFlagContains(flags []string, substr string) bool {
	for _, f := range flags {
		if strings.Contains(strings.ToLower(f), substr) {
			return true
		}
	}
	return false
}

func clampProbability(value float64) int {
	clamped := math.Max(float64(minProbability), math.Min(float64(maxProbability), value))
	return int(math.Round(clamped))
}

func normalizePassport(s string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
