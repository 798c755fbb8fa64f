package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// FileExporter appends finished spans to a JSONL file, one record per line.
// The format is stable enough to grep and small enough to tail during a
// slow startup investigation.
type FileExporter struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// SpanRecord is the JSONL shape of one exported span.
type SpanRecord struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	ParentID   string         `json:"parent_id,omitempty"`
	Name       string         `json:"name"`
	Kind       string         `json:"kind"`
	StartTime  time.Time      `json:"start_time"`
	EndTime    time.Time      `json:"end_time"`
	DurationMS float64        `json:"duration_ms"`
	Status     string         `json:"status,omitempty"`
	StatusMsg  string         `json:"status_message,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// NewFileExporter opens (or creates) the trace file for appending.
func NewFileExporter(path string) (*FileExporter, error) {
	path = filepath.Clean(path)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("creating trace directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening trace file: %w", err)
	}
	return &FileExporter{
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// ExportSpans writes each span as one JSON line.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, span := range spans {
		if err := e.enc.Encode(spanToRecord(span)); err != nil {
			return fmt.Errorf("encoding span %s: %w", span.Name(), err)
		}
	}
	return nil
}

// Shutdown closes the trace file.
func (e *FileExporter) Shutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Close()
	e.file = nil
	return err
}

func spanToRecord(span sdktrace.ReadOnlySpan) SpanRecord {
	ctx := span.SpanContext()
	rec := SpanRecord{
		TraceID:    ctx.TraceID().String(),
		SpanID:     ctx.SpanID().String(),
		Name:       span.Name(),
		Kind:       spanKindToString(span.SpanKind()),
		StartTime:  span.StartTime(),
		EndTime:    span.EndTime(),
		DurationMS: float64(span.EndTime().Sub(span.StartTime()).Microseconds()) / 1000.0,
	}
	if parent := span.Parent(); parent.HasSpanID() {
		rec.ParentID = parent.SpanID().String()
	}
	if status := span.Status(); status.Code != 0 {
		rec.Status = status.Code.String()
		rec.StatusMsg = status.Description
	}
	if attrs := span.Attributes(); len(attrs) > 0 {
		rec.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			rec.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	return rec
}

func spanKindToString(kind trace.SpanKind) string {
	switch kind {
	case trace.SpanKindInternal:
		return "internal"
	case trace.SpanKindServer:
		return "server"
	case trace.SpanKindClient:
		return "client"
	case trace.SpanKindProducer:
		return "producer"
	case trace.SpanKindConsumer:
		return "consumer"
	default:
		return "unspecified"
	}
}
