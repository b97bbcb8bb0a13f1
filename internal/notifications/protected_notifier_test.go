package notifications

import (
	"context"
	"errors"
	"testing"
	"time"
)

type scriptedNotifier struct {
	err   error
	calls int
}

func (s *scriptedNotifier) SendAccountWelcome(_ context.Context, _ SendAccountWelcomeInput) error {
	s.calls++
	return s.err
}

func TestProtectedNotifierOpensAfterThreshold(t *testing.T) {
	inner := &scriptedNotifier{err: errors.New("provider down")}

	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 2,
		Cooldown:         time.Hour,
	})

	input := SendAccountWelcomeInput{Email: "x@example.edu", FirstName: "X", Role: "teacher"}

	for i := 0; i < 2; i++ {
		if err := n.SendAccountWelcome(context.Background(), input); err == nil {
			t.Fatalf("call %d: expected provider error", i)
		}
	}

	err := n.SendAccountWelcome(context.Background(), input)

	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner called %d times after circuit opened, want 2", inner.calls)
	}
}

func TestProtectedNotifierRecoversAfterCooldown(t *testing.T) {
	inner := &scriptedNotifier{err: errors.New("provider down")}

	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{
		FailureThreshold: 1,
		Cooldown:         10 * time.Millisecond,
	})

	input := SendAccountWelcomeInput{Email: "x@example.edu", FirstName: "X", Role: "student"}

	if err := n.SendAccountWelcome(context.Background(), input); err == nil {
		t.Fatal("expected provider error")
	}

	if err := n.SendAccountWelcome(context.Background(), input); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("err = %v, want ErrCircuitOpen", err)
	}

	time.Sleep(20 * time.Millisecond)

	// provider healthy again; the half-open trial closes the circuit
	inner.err = nil

	if err := n.SendAccountWelcome(context.Background(), input); err != nil {
		t.Fatalf("trial call after cooldown: %v", err)
	}

	if err := n.SendAccountWelcome(context.Background(), input); err != nil {
		t.Fatalf("circuit should be closed again: %v", err)
	}
}

func TestProtectedNotifierPassesThroughSuccess(t *testing.T) {
	inner := &scriptedNotifier{}

	n := NewProtectedNotifier(inner, ProtectedNotifierConfig{})

	if err := n.SendAccountWelcome(context.Background(), SendAccountWelcomeInput{Email: "x@example.edu"}); err != nil {
		t.Fatalf("SendAccountWelcome: %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d", inner.calls)
	}
}
