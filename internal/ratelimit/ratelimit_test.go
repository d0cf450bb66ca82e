package ratelimit

import (
	"testing"
	"time"
)

func TestAllowUpToLimit(t *testing.T) {
	l := New(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Allow("key") {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	if l.Allow("key") {
		t.Error("attempt past the limit should be denied")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Minute)

	if !l.Allow("a") {
		t.Fatal("first attempt for a should be allowed")
	}
	if l.Allow("a") {
		t.Error("second attempt for a should be denied")
	}
	if !l.Allow("b") {
		t.Error("b should not be affected by a's attempts")
	}
}

func TestWindowSlides(t *testing.T) {
	l := New(2, 50*time.Millisecond)

	l.Allow("key")
	l.Allow("key")
	if l.Allow("key") {
		t.Fatal("third attempt inside window should be denied")
	}

	time.Sleep(60 * time.Millisecond)

	if !l.Allow("key") {
		t.Error("attempt after window expiry should be allowed")
	}
}

func TestDeniedAttemptNotRecorded(t *testing.T) {
	l := New(1, 50*time.Millisecond)

	l.Allow("key")
	// Denied attempts must not extend the lockout.
	l.Allow("key")

	time.Sleep(60 * time.Millisecond)

	if !l.Allow("key") {
		t.Error("attempt after window expiry should be allowed")
	}
}

func TestCleanupRemovesStaleKeys(t *testing.T) {
	l := New(1, 10*time.Millisecond)

	l.Allow("stale")
	time.Sleep(30 * time.Millisecond)
	l.cleanup()

	l.mu.RLock()
	defer l.mu.RUnlock()
	if _, ok := l.attempts["stale"]; ok {
		t.Error("stale key should have been cleaned up")
	}
}
