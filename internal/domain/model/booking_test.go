package model

import (
	"testing"
	"time"
)

func TestBookingStatusValid(t *testing.T) {
	valid := []BookingStatus{
		BookingStatusPending, BookingStatusInProgress, BookingStatusCompleted, BookingStatusCancelled,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if BookingStatus("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusInProgress, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusInProgress, BookingStatusCompleted, true},
		{BookingStatusInProgress, BookingStatusCancelled, true},
		{BookingStatusInProgress, BookingStatusPending, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusPending, false},
	}
	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("CanTransitionTo(%q -> %q) = %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestBookingStatusTerminal(t *testing.T) {
	if BookingStatusPending.Terminal() || BookingStatusInProgress.Terminal() {
		t.Error("active statuses must not be terminal")
	}
	if !BookingStatusCompleted.Terminal() || !BookingStatusCancelled.Terminal() {
		t.Error("completed and cancelled must be terminal")
	}
}

func TestParseBookingStatus(t *testing.T) {
	if s, ok := ParseBookingStatus("  In_Progress "); !ok || s != BookingStatusInProgress {
		t.Errorf("ParseBookingStatus normalization failed: %q %v", s, ok)
	}
	if _, ok := ParseBookingStatus("done"); ok {
		t.Error("expected unknown status to be rejected")
	}
}

func TestCreateBookingRequestValidate(t *testing.T) {
	valid := CreateBookingRequest{
		CustomerID:    "c1",
		ServiceID:     "s1",
		ScheduledDate: time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		Address:       "42 Main St",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	missing := valid
	missing.Address = "   "
	if err := missing.Validate(); err == nil {
		t.Error("expected blank address to be rejected")
	}

	noDate := valid
	noDate.ScheduledDate = time.Time{}
	if err := noDate.Validate(); err == nil {
		t.Error("expected zero scheduled_date to be rejected")
	}
}
