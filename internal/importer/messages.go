package importer

import "github.com/foxseedlab/chattyarchive/internal/repository"

const (
	messageReportCompleted = ":page_facing_up: **Chat log imported.**"
	messageReportFailed    = ":warning: **Chat log import failed.** Messages before the failing line were kept."
	messageReportRunning   = ":hourglass: **Chat log import is still running.**"
)

func reportChannelMessage(status repository.ImportStatus) string {
	switch status {
	case repository.ImportStatusCompleted:
		return messageReportCompleted
	case repository.ImportStatusFailed:
		return messageReportFailed
	default:
		return messageReportRunning
	}
}
