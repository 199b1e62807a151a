package monitoring

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"bidgen/internal/logger"
)

// SQLiteAuditSink persists audit records to a local SQLite database while
// forwarding stage timings to the structured logger. The pipeline never
// reads these rows back; they exist for operators.
type SQLiteAuditSink struct {
	db  *sql.DB
	log *logger.Logger
}

// NewSQLiteAuditSink creates or opens the audit database at path.
func NewSQLiteAuditSink(path string, log *logger.Logger) (*SQLiteAuditSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("open audit db %s: %w", path, err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS section_audits (
		id TEXT PRIMARY KEY,
		document_type TEXT NOT NULL,
		section_title TEXT NOT NULL,
		confidence TEXT NOT NULL,
		overall_score REAL NOT NULL,
		grade TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_audits_created ON section_audits(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init audit schema: %w", err)
	}

	return &SQLiteAuditSink{db: db, log: log.With("component", "audit")}, nil
}

func (s *SQLiteAuditSink) RecordStage(ctx context.Context, rec StageRecord) {
	kv := make([]interface{}, 0, 4+2*len(rec.Tags))
	kv = append(kv, "operation", rec.Operation, "duration_ms", rec.Duration.Milliseconds())
	for k, v := range rec.Tags {
		kv = append(kv, k, v)
	}
	s.log.Info("stage completed", kv...)
}

func (s *SQLiteAuditSink) RecordAudit(ctx context.Context, rec AuditRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	detail := "{}"
	if len(rec.Detail) > 0 {
		raw, err := json.Marshal(rec.Detail)
		if err != nil {
			return fmt.Errorf("encode audit detail: %w", err)
		}
		detail = string(raw)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO section_audits
		(id, document_type, section_title, confidence, overall_score, grade, created_at, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.DocumentType, rec.SectionTitle, rec.Confidence,
		rec.OverallScore, rec.Grade, rec.CreatedAt, detail,
	)
	if err != nil {
		return fmt.Errorf("save audit record: %w", err)
	}
	return nil
}

// Recent returns the newest audit records, most recent first.
func (s *SQLiteAuditSink) Recent(ctx context.Context, limit int) ([]AuditRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_type, section_title, confidence, overall_score, grade, created_at, detail
		FROM section_audits ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AuditRecord
	for rows.Next() {
		var rec AuditRecord
		var detail string
		if err := rows.Scan(&rec.ID, &rec.DocumentType, &rec.SectionTitle, &rec.Confidence,
			&rec.OverallScore, &rec.Grade, &rec.CreatedAt, &detail); err != nil {
			return nil, err
		}
		if detail != "" && detail != "{}" {
			_ = json.Unmarshal([]byte(detail), &rec.Detail)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteAuditSink) Close() error {
	return s.db.Close()
}
