package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/amqp"
)

type countingSender struct {
	calls atomic.Int32
	send  bool
}

func (s *countingSender) SendWeeklyTop(context.Context) (alert.Notice, bool) {
	s.calls.Add(1)
	if !s.send {
		return alert.Notice{}, false
	}
	return alert.Notice{ID: "n1", Message: "top"}, true
}

func TestWeeklyWorker_Tick(t *testing.T) {
	tests := []struct {
		name string
		send bool
		want bool
	}{
		{"sent", true, true},
		{"nothing to send", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &countingSender{send: tt.send}
			w := NewWeeklyWorker(s, time.Hour, nil)
			if got := w.Tick(context.Background()); got != tt.want {
				t.Errorf("Tick() = %v, want %v", got, tt.want)
			}
			if s.calls.Load() != 1 {
				t.Errorf("expected 1 call, got %d", s.calls.Load())
			}
		})
	}
}

func TestWeeklyWorker_RunTicksUntilCancelled(t *testing.T) {
	s := &countingSender{send: true}
	w := NewWeeklyWorker(s, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for s.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("worker did not tick")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestWeeklyWorker_SendsAtStartup(t *testing.T) {
	s := &countingSender{send: true}
	w := NewWeeklyWorker(s, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for s.calls.Load() < 1 {
		select {
		case <-deadline:
			t.Fatal("worker did not send at startup")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if got := s.calls.Load(); got != 1 {
		t.Errorf("expected exactly one send before the first tick, got %d", got)
	}
}

func TestWeeklyWorker_DisabledInterval(t *testing.T) {
	s := &countingSender{send: true}
	if err := NewWeeklyWorker(s, 0, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run returned %v", err)
	}
	if s.calls.Load() != 0 {
		t.Errorf("disabled worker sent %d summaries", s.calls.Load())
	}
}

func TestAlertHandler_PrintsOnce(t *testing.T) {
	var buf bytes.Buffer
	h := NewAlertHandler(&buf, nil)
	msg := &amqp.AlertMessage{
		ID:        "a1",
		Kind:      amqp.KindBudget,
		Message:   "Woaah!",
		Timestamp: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	for i := 0; i < 2; i++ {
		if err := h.HandleAlertMessage(context.Background(), msg); err != nil {
			t.Fatalf("HandleAlertMessage: %v", err)
		}
	}

	want := "[2024-03-01 09:30:00] budget Woaah!\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed") }

func TestAlertHandler_WriteErrorIsReturned(t *testing.T) {
	h := NewAlertHandler(failingWriter{}, nil)
	err := h.HandleAlertMessage(context.Background(), &amqp.AlertMessage{ID: "x", Kind: amqp.KindNotice})
	if err == nil || !strings.Contains(err.Error(), "closed") {
		t.Fatalf("expected write error, got %v", err)
	}
	// A failed write is not remembered, so a redelivery is printed.
	var buf bytes.Buffer
	h.out = &buf
	if err := h.HandleAlertMessage(context.Background(), &amqp.AlertMessage{ID: "x", Kind: amqp.KindNotice, Message: "m"}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "notice m") {
		t.Errorf("redelivery not printed: %q", buf.String())
	}
}
