package export

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatRecordsPreservesOrder(t *testing.T) {
	base := time.Date(2026, 3, 10, 14, 30, 0, 0, time.Local)
	records := []Record{
		{EventName: "Standup", ParticipantName: "Alice", ParticipantEmail: "alice@example.com", ConfirmedAt: base},
		{EventName: "Standup", ParticipantName: "Bob", ParticipantEmail: "bob@example.com", ConfirmedAt: base.Add(time.Minute)},
	}

	rows := FormatRecords(records)
	require.Len(t, rows, 2)
	assert.Equal(t, "Alice", rows[0].ParticipantName)
	assert.Equal(t, "Bob", rows[1].ParticipantName)
	assert.Equal(t, "3/10/2026, 2:30:00 PM", rows[0].ConfirmedAt)
	assert.Equal(t, "3/10/2026, 2:31:00 PM", rows[1].ConfirmedAt)
}

func TestFormatRecordsMissingFieldsRenderNA(t *testing.T) {
	rows := FormatRecords([]Record{{ConfirmedAt: time.Now()}})
	require.Len(t, rows, 1)
	assert.Equal(t, "N/A", rows[0].EventName)
	assert.Equal(t, "N/A", rows[0].ParticipantName)
	assert.Equal(t, "N/A", rows[0].ParticipantEmail)
	assert.NotEmpty(t, rows[0].ConfirmedAt)
}

func TestFormatRecordsEmpty(t *testing.T) {
	assert.Empty(t, FormatRecords(nil))
}
