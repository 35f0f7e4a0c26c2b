package circuitbreaker

import (
	"testing"
	"time"
)

func TestBreaker_AllowWhenClosed(t *testing.T) {
	b := New(3, 100*time.Millisecond)
	if !b.Allow("wh_a") {
		t.Fatal("expected closed circuit to allow")
	}
}

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	// 2 failures = still closed
	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")
	if !b.Allow("wh_a") {
		t.Fatal("should still allow before threshold")
	}

	// 3rd failure = open
	b.RecordFailure("wh_a")
	if b.Allow("wh_a") {
		t.Fatal("should be open after 3 failures")
	}
	if b.State("wh_a") != StateOpen {
		t.Fatalf("expected StateOpen, got %v", b.State("wh_a"))
	}
}

func TestBreaker_OpenToHalfOpenAfterCooldown(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")
	if b.Allow("wh_a") {
		t.Fatal("should be open")
	}

	time.Sleep(60 * time.Millisecond)

	// Should transition to half-open and allow one probe.
	if !b.Allow("wh_a") {
		t.Fatal("should allow probe in half-open")
	}
	if b.State("wh_a") != StateHalfOpen {
		t.Fatalf("expected StateHalfOpen, got %v", b.State("wh_a"))
	}

	// Second delivery while half-open should be held.
	if b.Allow("wh_a") {
		t.Fatal("should reject second delivery in half-open")
	}
}

func TestBreaker_HalfOpenSuccessCloses(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")
	time.Sleep(60 * time.Millisecond)
	b.Allow("wh_a") // Transitions to half-open

	b.RecordSuccess("wh_a")
	if b.State("wh_a") != StateClosed {
		t.Fatalf("expected StateClosed after success, got %v", b.State("wh_a"))
	}
	if !b.Allow("wh_a") {
		t.Fatal("should allow after recovery")
	}
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b := New(2, 50*time.Millisecond)

	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")
	time.Sleep(60 * time.Millisecond)
	b.Allow("wh_a") // Transitions to half-open

	b.RecordFailure("wh_a")
	if b.State("wh_a") != StateOpen {
		t.Fatalf("expected StateOpen after half-open failure, got %v", b.State("wh_a"))
	}
}

func TestBreaker_SuccessResets(t *testing.T) {
	b := New(3, 100*time.Millisecond)

	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")
	b.RecordSuccess("wh_a")

	// Should not trip with only 1 more failure (counter was reset).
	b.RecordFailure("wh_a")
	if !b.Allow("wh_a") {
		t.Fatal("should still be closed after reset")
	}
}

func TestBreaker_IndependentKeys(t *testing.T) {
	b := New(2, 100*time.Millisecond)

	b.RecordFailure("wh_a")
	b.RecordFailure("wh_a")

	// wh_a is open, wh_b should be unaffected.
	if b.Allow("wh_a") {
		t.Fatal("wh_a should be open")
	}
	if !b.Allow("wh_b") {
		t.Fatal("wh_b should be closed")
	}
}

func TestBreaker_UnknownKeyIsClosed(t *testing.T) {
	b := New(2, 100*time.Millisecond)
	if b.State("unknown") != StateClosed {
		t.Fatalf("expected StateClosed for unknown key, got %v", b.State("unknown"))
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half_open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
