package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/chattyarchive/internal/chatty"
	"github.com/foxseedlab/chattyarchive/internal/webhook"
)

const reportTimeLayout = "2006-01-02 15:04:05"

func buildImportReportText(result *Result, timezone string, loc *time.Location) []byte {
	loc = safeLocation(loc)
	run := result.Import
	stats := result.Stats

	lines := []string{
		fmt.Sprintf("Import: %s", run.ID),
		fmt.Sprintf("Source: %s", run.SourcePath),
		fmt.Sprintf("Status: %s", run.Status),
		fmt.Sprintf("Period: %s ~ %s (%s)", run.StartedAt.In(loc).Format(reportTimeLayout), endedAt(result).In(loc).Format(reportTimeLayout), timezone),
		fmt.Sprintf("Lines: %d (messages %d, notices %d, joins %d, unclassified %d)", stats.Lines, stats.Messages, stats.Notices, stats.Joins, stats.Unclassified),
		fmt.Sprintf("Stored messages: %d", run.MessageCount),
		fmt.Sprintf("Channels: %s", joinOrNone(stats.Channels)),
	}
	if !stats.FirstMessageAt.IsZero() {
		lines = append(lines, fmt.Sprintf("Messages sent: %s ~ %s", stats.FirstMessageAt.Format(time.RFC3339), stats.LastMessageAt.Format(time.RFC3339)))
	}
	if result.Err != nil {
		lines = append(lines, "", fmt.Sprintf("Error: %v", result.Err))
	}
	return []byte(strings.Join(lines, "\n"))
}

func buildImportReportPayload(result *Result, timezone string, loc *time.Location) webhook.ImportReportPayload {
	loc = safeLocation(loc)
	run := result.Import
	stats := result.Stats
	ended := endedAt(result)

	durationSeconds := int64(ended.Sub(run.StartedAt).Seconds())
	if durationSeconds < 0 {
		durationSeconds = 0
	}
	channels := stats.Channels
	if channels == nil {
		channels = []string{}
	}

	payload := webhook.ImportReportPayload{
		SchemaVersion:     webhook.ImportReportSchemaVersion,
		ImportID:          run.ID,
		SourcePath:        run.SourcePath,
		Status:            string(run.Status),
		StartAt:           run.StartedAt.In(loc).Format(time.RFC3339),
		EndAt:             ended.In(loc).Format(time.RFC3339),
		Timezone:          timezone,
		DurationSeconds:   durationSeconds,
		LineCount:         stats.Lines,
		MessageCount:      run.MessageCount,
		NoticeCount:       stats.Notices,
		UnclassifiedCount: stats.Unclassified,
		Channels:          channels,
	}
	// Message times keep the offset the log was written in.
	if !stats.FirstMessageAt.IsZero() {
		payload.FirstMessageAt = stats.FirstMessageAt.Format(time.RFC3339)
		payload.LastMessageAt = stats.LastMessageAt.Format(time.RFC3339)
	}
	if result.Err != nil {
		payload.Error = result.Err.Error()
		payload.ErrorLine = chatty.LineOf(result.Err)
		if kind := chatty.Kind(result.Err); kind != nil {
			payload.ErrorKind = kind.Error()
		}
	}
	return payload
}

func endedAt(result *Result) time.Time {
	if result.Import.EndedAt != nil {
		return *result.Import.EndedAt
	}
	return result.Import.StartedAt
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func safeLocation(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
