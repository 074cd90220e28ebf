package webhook

import "context"

const ImportReportSchemaVersion = "2026-10-01"

type ImportReportPayload struct {
	SchemaVersion     string   `json:"schema_version"`
	ImportID          string   `json:"import_id"`
	SourcePath        string   `json:"source_path"`
	Status            string   `json:"status"`
	StartAt           string   `json:"start_at"`
	EndAt             string   `json:"end_at"`
	Timezone          string   `json:"timezone"`
	DurationSeconds   int64    `json:"duration_seconds"`
	LineCount         int      `json:"line_count"`
	MessageCount      int      `json:"message_count"`
	NoticeCount       int      `json:"notice_count"`
	UnclassifiedCount int      `json:"unclassified_count"`
	Channels          []string `json:"channels"`
	FirstMessageAt    string   `json:"first_message_at,omitempty"`
	LastMessageAt     string   `json:"last_message_at,omitempty"`
	Error             string   `json:"error,omitempty"`
	ErrorKind         string   `json:"error_kind,omitempty"`
	ErrorLine         int      `json:"error_line,omitempty"`
}

type Sender interface {
	SendImportReport(ctx context.Context, payload ImportReportPayload) error
}
