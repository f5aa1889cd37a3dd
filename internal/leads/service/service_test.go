package service

import (
	"errors"
	"testing"
	"time"

	"visadesk_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestTransitionAllowedForwardFunnel(t *testing.T) {
	allowed := []struct{ from, to string }{
		{StatusNew, StatusContacted},
		{StatusNew, StatusQualified},
		{StatusContacted, StatusQualified},
	}
	for _, tc := range allowed {
		if !transitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}
}

func TestTransitionAllowedLostFromAnyActiveStatus(t *testing.T) {
	for _, from := range []string{StatusNew, StatusContacted, StatusQualified} {
		if !transitionAllowed(from, StatusLost) {
			t.Fatalf("expected %s -> lost to be allowed", from)
		}
	}
}

func TestTransitionAllowedRejectsBackwardMoves(t *testing.T) {
	rejected := []struct{ from, to string }{
		{StatusContacted, StatusNew},
		{StatusQualified, StatusContacted},
		{StatusQualified, StatusNew},
		{StatusLost, StatusContacted},
		{StatusConverted, StatusNew},
	}
	for _, tc := range rejected {
		if transitionAllowed(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestConvertGuardRequiresQualifiedLead(t *testing.T) {
	if err := convertGuard(StatusQualified); err != nil {
		t.Fatalf("expected qualified lead to be convertible, got %v", err)
	}

	for _, status := range []string{StatusNew, StatusContacted} {
		err := convertGuard(status)
		if err == nil {
			t.Fatalf("expected %s lead to be rejected", status)
		}
		var appErr *apperr.Error
		if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
			t.Fatalf("expected validation error for %s, got %v", status, err)
		}
	}
}

func TestConvertGuardAlreadyConvertedIsConflict(t *testing.T) {
	err := convertGuard(StatusConverted)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}

	err = convertGuard(StatusLost)
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error for lost lead, got %v", err)
	}
}

func TestIntakeNoteCarriesAuthor(t *testing.T) {
	leadID := uuid.New()
	authorID := uuid.New()
	now := time.Now().UTC()

	note := intakeNote(leadID, authorID, "called twice, wants skilled worker visa", now)
	if note.AuthorID != authorID {
		t.Fatalf("expected author %s, got %s", authorID, note.AuthorID)
	}
	if note.AuthorID == uuid.Nil {
		t.Fatal("intake note must not have a nil author")
	}
	if note.LeadID != leadID {
		t.Fatalf("expected lead %s, got %s", leadID, note.LeadID)
	}
	if note.Body == "" || !note.CreatedAt.Equal(now) {
		t.Fatalf("unexpected note contents: %+v", note)
	}
}

func TestTransitionAllowedConvertedIsTerminalViaStatusUpdate(t *testing.T) {
	// Conversion happens through the convert operation, never a plain
	// status update.
	for _, from := range []string{StatusNew, StatusContacted, StatusQualified} {
		if transitionAllowed(from, StatusConverted) {
			t.Fatalf("expected %s -> converted to be rejected", from)
		}
	}
}
