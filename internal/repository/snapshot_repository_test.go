package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filmbill/filmbill/internal/model"
)

// fakeRow feeds canned column values into a scan helper, in the column
// order of the backing SELECT.
type fakeRow struct {
	vals []any
}

func (r fakeRow) Scan(dest ...any) error {
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: want %d destinations, got %d", len(r.vals), len(dest))
	}
	for i, v := range r.vals {
		switch d := dest[i].(type) {
		case *uint64:
			*d = v.(uint64)
		case *string:
			*d = v.(string)
		case *int:
			*d = v.(int)
		case *float64:
			*d = v.(float64)
		case *bool:
			*d = v.(bool)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return fmt.Errorf("scan: unsupported destination %T at column %d", dest[i], i)
		}
	}
	return nil
}

func snapshotRow(warnings string) fakeRow {
	return fakeRow{vals: []any{
		uint64(7), "eastlight", 12, 38.5, "WARNING", warnings, true,
		time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC),
	}}
}

// The warnings column is free text, newline separated.  Healthy rows store
// the empty string, not a numeric sentinel.
func TestScanSnapshot_SplitsNewlineSeparatedWarnings(t *testing.T) {
	s, err := scanSnapshot(snapshotRow("count 12 is below 50% of baseline 38.5\ndegraded for 3 consecutive checks"))
	require.NoError(t, err)

	assert.Equal(t, uint64(7), s.ID)
	assert.Equal(t, "eastlight", s.VenueID)
	assert.Equal(t, model.SeverityWarning, s.Severity)
	assert.True(t, s.Alerted)
	require.Len(t, s.Warnings, 2)
	assert.Equal(t, "count 12 is below 50% of baseline 38.5", s.Warnings[0])
}

func TestScanSnapshot_EmptyWarningsColumn(t *testing.T) {
	s, err := scanSnapshot(snapshotRow(""))
	require.NoError(t, err)
	assert.Nil(t, s.Warnings, "no warning lines, not one empty line")
}
