package monitoring

import (
	"context"
	"sync"
	"time"

	"bidgen/internal/logger"
)

// StageRecord is one timed pipeline stage. Tags are a flat mapping; nothing
// in the pipeline depends on how a sink stores them.
type StageRecord struct {
	Operation string
	Tags      map[string]string
	Duration  time.Duration
}

// AuditRecord is emitted once per completed section generation.
type AuditRecord struct {
	ID           string
	DocumentType string
	SectionTitle string
	Confidence   string
	OverallScore float64
	Grade        string
	CreatedAt    time.Time
	Detail       map[string]any
}

// Sink consumes performance and audit events produced by the pipeline.
type Sink interface {
	RecordStage(ctx context.Context, rec StageRecord)
	RecordAudit(ctx context.Context, rec AuditRecord) error
}

// StartStage begins timing a pipeline stage; the returned func records the
// elapsed duration on the sink. Safe to call with a nil sink.
func StartStage(sink Sink, operation string, tags map[string]string) func(ctx context.Context) {
	start := time.Now()
	return func(ctx context.Context) {
		if sink == nil {
			return
		}
		sink.RecordStage(ctx, StageRecord{
			Operation: operation,
			Tags:      tags,
			Duration:  time.Since(start),
		})
	}
}

// LogSink writes every event through the structured logger. It is the
// default sink when no audit store is configured.
type LogSink struct {
	log *logger.Logger
}

func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{log: log.With("component", "monitoring")}
}

func (s *LogSink) RecordStage(ctx context.Context, rec StageRecord) {
	kv := make([]interface{}, 0, 4+2*len(rec.Tags))
	kv = append(kv, "operation", rec.Operation, "duration_ms", rec.Duration.Milliseconds())
	for k, v := range rec.Tags {
		kv = append(kv, k, v)
	}
	s.log.Info("stage completed", kv...)
}

func (s *LogSink) RecordAudit(ctx context.Context, rec AuditRecord) error {
	s.log.Info("section generated",
		"audit_id", rec.ID,
		"document_type", rec.DocumentType,
		"section_title", rec.SectionTitle,
		"confidence", rec.Confidence,
		"overall_score", rec.OverallScore,
		"grade", rec.Grade,
	)
	return nil
}

// MemorySink collects records in memory. Used in tests to assert stage
// ordering and audit emission.
type MemorySink struct {
	mu     sync.Mutex
	stages []StageRecord
	audits []AuditRecord
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) RecordStage(ctx context.Context, rec StageRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stages = append(s.stages, rec)
}

func (s *MemorySink) RecordAudit(ctx context.Context, rec AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, rec)
	return nil
}

func (s *MemorySink) Stages() []StageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]StageRecord(nil), s.stages...)
}

func (s *MemorySink) Audits() []AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditRecord(nil), s.audits...)
}
