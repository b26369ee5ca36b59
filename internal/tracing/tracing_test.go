package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// recordingSpan captures the calls End makes. The embedded interface is nil;
// only the overridden methods may be called.
type recordingSpan struct {
	trace.Span
	recorded []error
	status   codes.Code
	ended    bool
}

func (s *recordingSpan) RecordError(err error, _ ...trace.EventOption) {
	s.recorded = append(s.recorded, err)
}

func (s *recordingSpan) SetStatus(code codes.Code, _ string) { s.status = code }

func (s *recordingSpan) End(...trace.SpanEndOption) { s.ended = true }

func TestEnd_RecordsError(t *testing.T) {
	t.Parallel()

	span := &recordingSpan{}
	boom := errors.New("vector service unavailable")
	End(span, boom)

	if !span.ended {
		t.Error("span not ended")
	}
	if len(span.recorded) != 1 || !errors.Is(span.recorded[0], boom) {
		t.Errorf("recorded = %v, want [%v]", span.recorded, boom)
	}
	if span.status != codes.Error {
		t.Errorf("status = %v, want Error", span.status)
	}
}

func TestEnd_NilError(t *testing.T) {
	t.Parallel()

	span := &recordingSpan{}
	End(span, nil)

	if !span.ended {
		t.Error("span not ended")
	}
	if len(span.recorded) != 0 || span.status != codes.Unset {
		t.Errorf("unexpected error recording: %v %v", span.recorded, span.status)
	}
}

func TestStart_NoopProvider(t *testing.T) {
	t.Parallel()

	ctx, span := Start(context.Background(), "search.test")
	defer span.End()
	if ctx == nil {
		t.Fatal("Start returned nil context")
	}
	if span == nil {
		t.Fatal("Start returned nil span")
	}
	if span.IsRecording() {
		t.Error("span records without an installed provider")
	}
}
