package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRows() []Row {
	return []Row{
		{EventName: "Standup", ParticipantName: "Alice", ParticipantEmail: "alice@example.com", ConfirmedAt: "3/10/2026, 2:30:00 PM"},
		{EventName: "Standup", ParticipantName: "Bob", ParticipantEmail: "bob@example.com", ConfirmedAt: "3/10/2026, 2:31:00 PM"},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(sampleRows(), path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, lines, 3)
	assert.Equal(t, Header, lines[0])
	assert.Equal(t, []string{"Standup", "Alice", "alice@example.com", "3/10/2026, 2:30:00 PM"}, lines[1])
	assert.Equal(t, []string{"Standup", "Bob", "bob@example.com", "3/10/2026, 2:31:00 PM"}, lines[2])
}

func TestWriteCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	err := WriteCSV(nil, path)
	assert.ErrorIs(t, err, ErrNothingToExport)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	require.NoError(t, WriteXLSX(sampleRows(), path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	cells, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, Header, cells[0])
	assert.Equal(t, []string{"Standup", "Alice", "alice@example.com", "3/10/2026, 2:30:00 PM"}, cells[1])
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	err := WriteXLSX(nil, path)
	assert.ErrorIs(t, err, ErrNothingToExport)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestCleanupOld(t *testing.T) {
	dir := t.TempDir()
	oldFile := filepath.Join(dir, "old.csv")
	freshFile := filepath.Join(dir, "fresh.csv")
	require.NoError(t, os.WriteFile(oldFile, []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(freshFile, []byte("x"), 0o644))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(oldFile, stale, stale))

	CleanupOld(dir, 24*time.Hour, nil)

	_, err := os.Stat(oldFile)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(freshFile)
	assert.NoError(t, err)
}

func TestCleanupOldMissingDir(t *testing.T) {
	CleanupOld(filepath.Join(t.TempDir(), "missing"), time.Hour, nil)
}
