// Package export renders attendance records into tabular files.
package export

import (
	"errors"
	"time"
)

// ErrNothingToExport means the requested scope has no attendance records.
// Callers report this instead of producing an empty file.
var ErrNothingToExport = errors.New("no attendance records to export")

// timeLayout is the human-readable layout used for the Confirmed At column.
const timeLayout = "1/2/2006, 3:04:05 PM"

// Record is a raw attendance row joined with its event and participant.
type Record struct {
	EventName        string
	ParticipantName  string
	ParticipantEmail string
	ConfirmedAt      time.Time
}

// Row is one formatted export row, ready for CSV or XLSX serialization.
type Row struct {
	EventName        string
	ParticipantName  string
	ParticipantEmail string
	ConfirmedAt      string
}

// Header is the column order for all export formats.
var Header = []string{"Event Name", "Participant Name", "Participant Email", "Confirmed At"}

// FormatRecords renders records into export rows, preserving input order.
// Records with a missing event or participant render as "N/A" rather than
// failing the whole export.
func FormatRecords(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, Row{
			EventName:        orNA(r.EventName),
			ParticipantName:  orNA(r.ParticipantName),
			ParticipantEmail: orNA(r.ParticipantEmail),
			ConfirmedAt:      r.ConfirmedAt.Local().Format(timeLayout),
		})
	}
	return rows
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
