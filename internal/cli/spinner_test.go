package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "Skeletonizing 42 lines...")
	s.w = &buf

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Skeletonizing 42 lines...") {
		t.Errorf("spinner output should contain the message, got %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("spinner should clear its line on Stop")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, "Working...")
	s.w = &buf

	s.Start()
	cancel()
	time.Sleep(200 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after parent context ends")
	}
	s.Stop() // still safe after the context already stopped the loop
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, "Working...")
	s.w = &buf

	s.Start()
	time.Sleep(150 * time.Millisecond)

	if !s.Cancelled() {
		t.Error("spinner should report cancellation after timeout")
	}
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinnerWithContext(context.Background(), "Working...")
	s.w = &buf

	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}
